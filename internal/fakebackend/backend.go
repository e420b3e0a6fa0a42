// Package fakebackend is an in-memory implementation of the inventory REST backend.
// Tests run it behind httptest; cmd/server can run it in-process for local
// development with FAKE_BACKEND=true.
package fakebackend

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-inventory-ui/companies"
	"github.com/jrsteele09/go-inventory-ui/token"
	"github.com/jrsteele09/go-inventory-ui/users"
)

var errNotFound = errors.New("not found")

// Account is a user the backend will sign in
type Account struct {
	users.User
	Password string
}

// Request is one call the backend received
type Request struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	ContentType   string
}

type Backend struct {
	lock       sync.RWMutex
	accounts   map[int64]*Account
	usernames  map[string]int64 // username to user id
	companies  map[int64]*companies.Company
	images     map[int64][]byte
	tokens     map[string]int64 // access token to user id
	resetCodes map[string]int64
	nextUserID int64
	nextCoID   int64
	requests   []Request

	creator *token.Creator
	mux     *http.ServeMux
}

// New creates an empty backend whose access tokens are signed with secret
func New(secret string) *Backend {
	b := &Backend{
		accounts:   make(map[int64]*Account),
		usernames:  make(map[string]int64),
		companies:  make(map[int64]*companies.Company),
		images:     make(map[int64][]byte),
		tokens:     make(map[string]int64),
		resetCodes: make(map[string]int64),
		creator:    token.NewCreator(token.NewHMACSigner(secret), time.Hour),
		mux:        http.NewServeMux(),
	}
	b.routes()
	return b
}

// NewSeeded creates a backend with one account per role (password "password") and two companies
func NewSeeded(secret string) *Backend {
	b := New(secret)
	for _, seed := range []struct{ username, first, last, role string }{
		{"admin", "Ada", "Lovelace", users.RoleAdmin},
		{"manager", "Grace", "Hopper", users.RoleManager},
		{"sales", "Sam", "Seller", users.RoleSales},
		{"user", "Una", "User", users.RoleUser},
	} {
		b.AddAccount(Account{
			User: users.User{
				Username:  seed.username,
				Email:     seed.username + "@inventory.local",
				FirstName: seed.first,
				LastName:  seed.last,
				Roles:     users.Roles{seed.role},
			},
			Password: "password",
		})
	}
	b.AddCompany(companies.Company{Name: "Acme Supplies", Email: "sales@acme.example"})
	b.AddCompany(companies.Company{Name: "Globex Storage", Email: "hello@globex.example"})
	return b
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.lock.Lock()
	b.requests = append(b.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		RawQuery:      r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
	})
	b.lock.Unlock()
	b.mux.ServeHTTP(w, r)
}

// AddAccount stores account, assigning an id when it has none
func (b *Backend) AddAccount(account Account) *Account {
	b.lock.Lock()
	defer b.lock.Unlock()
	if account.UserID == 0 {
		b.nextUserID++
		account.UserID = b.nextUserID
	} else if account.UserID > b.nextUserID {
		b.nextUserID = account.UserID
	}
	account.Roles = users.NormalizeRoles(account.Roles)
	account.AccountNonLocked = true
	account.Enabled = true
	b.accounts[account.UserID] = &account
	b.usernames[account.Username] = account.UserID
	return &account
}

func (b *Backend) AddCompany(company companies.Company) *companies.Company {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.nextCoID++
	company.ID = b.nextCoID
	b.companies[company.ID] = &company
	return &company
}

// User returns a copy of the stored user
func (b *Backend) User(id int64) (users.User, bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	account, ok := b.accounts[id]
	if !ok {
		return users.User{}, false
	}
	return account.User, true
}

func (b *Backend) Company(id int64) (companies.Company, bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	company, ok := b.companies[id]
	if !ok {
		return companies.Company{}, false
	}
	return *company, true
}

// Image returns the uploaded logo bytes of a company
func (b *Backend) Image(companyID int64) []byte {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.images[companyID]
}

// IssueToken signs in username without a password, for tests
func (b *Backend) IssueToken(username string) (string, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	id, ok := b.usernames[username]
	if !ok {
		return "", errNotFound
	}
	return b.issueLocked(b.accounts[id])
}

// RevokeAll invalidates every issued token, as a backend restart with a new key would
func (b *Backend) RevokeAll() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.tokens = make(map[string]int64)
}

// ResetCode returns the last password reset code issued for email
func (b *Backend) ResetCode(email string) string {
	b.lock.RLock()
	defer b.lock.RUnlock()
	for code, id := range b.resetCodes {
		if account, ok := b.accounts[id]; ok && strings.EqualFold(account.Email, email) {
			return code
		}
	}
	return ""
}

// Requests returns every call received so far
func (b *Backend) Requests() []Request {
	b.lock.RLock()
	defer b.lock.RUnlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// CountRequests counts calls matching method and path
func (b *Backend) CountRequests(method, path string) int {
	count := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			count++
		}
	}
	return count
}

func (b *Backend) issueLocked(account *Account) (string, error) {
	accessToken, err := b.creator.CreateAccessToken(account.Username, account.Roles)
	if err != nil {
		return "", err
	}
	b.tokens[accessToken] = account.UserID
	return accessToken, nil
}

// authenticated resolves the bearer token to an account
func (b *Backend) authenticated(r *http.Request) (*Account, bool) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.lock.RLock()
	defer b.lock.RUnlock()
	id, ok := b.tokens[raw]
	if !ok {
		return nil, false
	}
	account, ok := b.accounts[id]
	if !ok {
		return nil, false
	}
	snapshot := *account
	return &snapshot, true
}

func (b *Backend) sortedUsers(filter func(*Account) bool) []users.User {
	b.lock.RLock()
	defer b.lock.RUnlock()
	list := make([]users.User, 0, len(b.accounts))
	for _, account := range b.accounts {
		if filter == nil || filter(account) {
			list = append(list, account.User)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].UserID < list[j].UserID
	})
	return list
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func decode(r *http.Request, v any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeValidation(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Validation failed", "errors": fields})
}

func sortCompanies(list []companies.Company) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
}

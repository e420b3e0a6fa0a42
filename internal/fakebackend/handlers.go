package fakebackend

import (
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-inventory-ui/companies"
	"github.com/jrsteele09/go-inventory-ui/users"
)

func (b *Backend) routes() {
	b.mux.HandleFunc("POST /auth/signin", b.signin)
	b.mux.HandleFunc("POST /auth/signup", b.signup)
	b.mux.HandleFunc("GET /auth/user", b.requireAuth(b.profile))
	b.mux.HandleFunc("POST /auth/signout", b.requireAuth(b.signout))
	b.mux.HandleFunc("POST /auth/forgot-password", b.forgotPassword)
	b.mux.HandleFunc("POST /auth/reset-password", b.resetPassword)

	b.mux.HandleFunc("GET /users/all", b.requireAuth(b.listUsers))
	b.mux.HandleFunc("GET /users/search", b.requireAuth(b.searchUsers))
	b.mux.HandleFunc("GET /users/{id}", b.requireAuth(b.getUser))
	b.mux.HandleFunc("POST /users/create", b.requireAuth(b.createUser))
	b.mux.HandleFunc("PUT /users/update/role", b.requireAuth(b.updateRole))
	b.mux.HandleFunc("PUT /users/update/{id}", b.requireAuth(b.updateUser))
	b.mux.HandleFunc("DELETE /users/{id}", b.requireAuth(b.deleteUser))
	b.mux.HandleFunc("PUT /users/update-lock-status", b.requireAuth(b.updateLockStatus))
	b.mux.HandleFunc("PUT /users/update-enabled-status", b.requireAuth(b.updateEnabledStatus))
	b.mux.HandleFunc("PUT /users/roles", b.requireAuth(b.updateRoles))

	b.mux.HandleFunc("GET /companies/all", b.requireAuth(b.listCompanies))
	b.mux.HandleFunc("GET /companies/{id}", b.requireAuth(b.getCompany))
	b.mux.HandleFunc("POST /companies/create", b.requireAuth(b.createCompany))
	b.mux.HandleFunc("PUT /companies/{id}", b.requireAuth(b.updateCompany))
	b.mux.HandleFunc("DELETE /companies/{id}", b.requireAuth(b.deleteCompany))
	b.mux.HandleFunc("PUT /companies/{id}/image", b.requireAuth(b.uploadCompanyImage))
}

type authedHandler func(w http.ResponseWriter, r *http.Request, account *Account)

func (b *Backend) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := b.authenticated(r)
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Full authentication is required to access this resource")
			return
		}
		if !account.AccountNonLocked || !account.Enabled {
			writeMessage(w, http.StatusForbidden, "Account is locked or disabled")
			return
		}
		next(w, r, account)
	}
}

func (b *Backend) signin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	id, ok := b.usernames[req.Username]
	if !ok || b.accounts[id].Password != req.Password {
		writeMessage(w, http.StatusUnauthorized, "Bad credentials")
		return
	}
	account := b.accounts[id]
	if !account.AccountNonLocked {
		writeMessage(w, http.StatusLocked, "Account is locked")
		return
	}
	accessToken, err := b.issueLocked(account)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username":     account.Username,
		"roles":        account.Roles,
		"jwtToken":     accessToken,
		"refreshToken": b.creator.CreateRefreshToken(),
	})
}

func (b *Backend) signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  string   `json:"username"`
		Email     string   `json:"email"`
		Password  string   `json:"password"`
		FirstName string   `json:"firstName"`
		LastName  string   `json:"lastName"`
		Roles     []string `json:"role"`
	}
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}
	if fields := b.checkNewUser(req.Username, req.Email); len(fields) > 0 {
		writeValidation(w, fields)
		return
	}
	account := b.AddAccount(Account{
		User: users.User{
			Username:  req.Username,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Roles:     req.Roles,
		},
		Password: req.Password,
	})
	writeJSON(w, http.StatusCreated, profileOf(account))
}

func (b *Backend) profile(w http.ResponseWriter, r *http.Request, account *Account) {
	writeJSON(w, http.StatusOK, profileOf(account))
}

func (b *Backend) signout(w http.ResponseWriter, r *http.Request, account *Account) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.lock.Lock()
	delete(b.tokens, raw)
	b.lock.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}
	b.lock.Lock()
	for _, account := range b.accounts {
		if strings.EqualFold(account.Email, req.Email) {
			b.resetCodes[uuid.New().String()] = account.UserID
		}
	}
	b.lock.Unlock()
	writeMessage(w, http.StatusOK, "If the email exists, a reset link has been sent")
}

func (b *Backend) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	id, ok := b.resetCodes[req.Token]
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}
	delete(b.resetCodes, req.Token)
	b.accounts[id].Password = req.NewPassword
	writeMessage(w, http.StatusOK, "Password has been reset successfully")
}

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request, _ *Account) {
	writeJSON(w, http.StatusOK, b.sortedUsers(nil))
}

func (b *Backend) searchUsers(w http.ResponseWriter, r *http.Request, _ *Account) {
	keyword := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("keyword")))
	writeJSON(w, http.StatusOK, b.sortedUsers(func(a *Account) bool {
		for _, field := range []string{a.Username, a.Email, a.FirstName, a.LastName} {
			if strings.Contains(strings.ToLower(field), keyword) {
				return true
			}
		}
		return false
	}))
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request, _ *Account) {
	id, err := pathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	user, ok := b.User(id)
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (b *Backend) createUser(w http.ResponseWriter, r *http.Request, _ *Account) {
	var req users.CreateRequest
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}
	fields := b.checkNewUser(req.Username, req.Email)
	if len(req.Password) < 6 {
		fields["password"] = "must be at least 6 characters"
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return
	}
	account := b.AddAccount(Account{
		User: users.User{
			Username:  req.Username,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Roles:     req.Roles,
			CompanyID: req.CompanyID,
		},
		Password: req.Password,
	})
	writeJSON(w, http.StatusCreated, account.User)
}

func (b *Backend) updateUser(w http.ResponseWriter, r *http.Request, _ *Account) {
	id, err := pathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req users.UpdateRequest
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}
	updated, err := b.mutateUser(id, func(a *Account) {
		if req.Username != "" && req.Username != a.Username {
			delete(b.usernames, a.Username)
			a.Username = req.Username
			b.usernames[a.Username] = a.UserID
		}
		if req.Email != "" {
			a.Email = req.Email
		}
		if req.FirstName != "" {
			a.FirstName = req.FirstName
		}
		if req.LastName != "" {
			a.LastName = req.LastName
		}
		if req.CompanyID != nil {
			a.CompanyID = req.CompanyID
		}
	})
	if err != nil {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (b *Backend) deleteUser(w http.ResponseWriter, r *http.Request, caller *Account) {
	id, err := pathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	if id == caller.UserID {
		writeMessage(w, http.StatusConflict, "You cannot delete your own account")
		return
	}
	b.lock.Lock()
	account, ok := b.accounts[id]
	if ok {
		delete(b.accounts, id)
		delete(b.usernames, account.Username)
	}
	b.lock.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) updateRole(w http.ResponseWriter, r *http.Request, _ *Account) {
	var req users.RoleUpdate
	if err := decode(r, &req); err != nil || req.Role == "" {
		writeValidation(w, map[string]string{"role": "is required"})
		return
	}
	b.statusUpdate(w, req.UserID, func(a *Account) { a.Roles = users.NormalizeRoles([]string{req.Role}) }, "User role updated")
}

func (b *Backend) updateLockStatus(w http.ResponseWriter, r *http.Request, _ *Account) {
	var req users.LockStatusUpdate
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}
	b.statusUpdate(w, req.UserID, func(a *Account) { a.AccountNonLocked = !req.Lock }, "Lock status updated")
}

func (b *Backend) updateEnabledStatus(w http.ResponseWriter, r *http.Request, _ *Account) {
	var req users.EnabledStatusUpdate
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}
	b.statusUpdate(w, req.UserID, func(a *Account) { a.Enabled = req.Enabled }, "Enabled status updated")
}

func (b *Backend) updateRoles(w http.ResponseWriter, r *http.Request, _ *Account) {
	var req users.RolesUpdate
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}
	b.statusUpdate(w, req.UserID, func(a *Account) { a.Roles = users.NormalizeRoles(req.Roles) }, "Roles updated")
}

func (b *Backend) statusUpdate(w http.ResponseWriter, id int64, change func(*Account), message string) {
	if _, err := b.mutateUser(id, change); err != nil {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	writeMessage(w, http.StatusOK, message)
}

func (b *Backend) mutateUser(id int64, change func(*Account)) (users.User, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	account, ok := b.accounts[id]
	if !ok {
		return users.User{}, errNotFound
	}
	change(account)
	return account.User, nil
}

func (b *Backend) checkNewUser(username, email string) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(username) == "" {
		fields["username"] = "is required"
	}
	if !strings.Contains(email, "@") {
		fields["email"] = "must be a valid email"
	}
	b.lock.RLock()
	defer b.lock.RUnlock()
	if _, taken := b.usernames[username]; taken && username != "" {
		fields["username"] = "is already taken"
	}
	return fields
}

func (b *Backend) listCompanies(w http.ResponseWriter, r *http.Request, _ *Account) {
	b.lock.RLock()
	list := make([]companies.Company, 0, len(b.companies))
	for _, company := range b.companies {
		list = append(list, *company)
	}
	b.lock.RUnlock()
	sortCompanies(list)
	writeJSON(w, http.StatusOK, list)
}

func (b *Backend) getCompany(w http.ResponseWriter, r *http.Request, _ *Account) {
	id, err := pathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	company, ok := b.Company(id)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Company not found")
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (b *Backend) createCompany(w http.ResponseWriter, r *http.Request, _ *Account) {
	var req companies.CreateRequest
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeValidation(w, map[string]string{"name": "is required"})
		return
	}
	created := b.AddCompany(companies.Company{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		Website:     req.Website,
		Description: req.Description,
	})
	writeJSON(w, http.StatusCreated, created)
}

func (b *Backend) updateCompany(w http.ResponseWriter, r *http.Request, _ *Account) {
	id, err := pathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req companies.UpdateRequest
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed request")
		return
	}
	b.lock.Lock()
	company, ok := b.companies[id]
	if ok {
		image := company.Image
		*company = companies.Company{
			ID:          id,
			Name:        req.Name,
			Email:       req.Email,
			Phone:       req.Phone,
			Address:     req.Address,
			Website:     req.Website,
			Description: req.Description,
			Image:       image,
		}
	}
	var updated companies.Company
	if ok {
		updated = *company
	}
	b.lock.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "Company not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (b *Backend) deleteCompany(w http.ResponseWriter, r *http.Request, _ *Account) {
	id, err := pathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	b.lock.Lock()
	_, ok := b.companies[id]
	delete(b.companies, id)
	delete(b.images, id)
	b.lock.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "Company not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) uploadCompanyImage(w http.ResponseWriter, r *http.Request, _ *Account) {
	id, err := pathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeValidation(w, map[string]string{"image": "is required"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "unreadable image")
		return
	}

	b.lock.Lock()
	company, ok := b.companies[id]
	var updated companies.Company
	if ok {
		b.images[id] = data
		company.Image = "/images/companies/" + header.Filename
		updated = *company
	}
	b.lock.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "Company not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func profileOf(account *Account) users.UserProfile {
	return users.UserProfile{
		UserID:    account.UserID,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Username:  account.Username,
		Email:     account.Email,
		Roles:     account.Roles,
		Image:     account.Image,
	}
}

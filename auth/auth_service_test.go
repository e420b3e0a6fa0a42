package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-inventory-ui/api"
	"github.com/jrsteele09/go-inventory-ui/auth"
	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
	"github.com/jrsteele09/go-inventory-ui/internal/fakebackend"
	"github.com/jrsteele09/go-inventory-ui/navigation"
	"github.com/jrsteele09/go-inventory-ui/notify"
	"github.com/jrsteele09/go-inventory-ui/query"
	"github.com/jrsteele09/go-inventory-ui/session"
	"github.com/jrsteele09/go-inventory-ui/users"
	"github.com/stretchr/testify/require"
)

const secretStr = "test-secret"

// testFixture holds all test dependencies
type testFixture struct {
	backend *fakebackend.Backend
	server  *httptest.Server
	store   *session.PersistentStore
	cache   *query.Cache
	notices *notify.Recorder
	history *navigation.History
	service *auth.Service
}

func setupTestFixture(t *testing.T, options ...auth.ServiceOption) *testFixture {
	t.Helper()

	f := &testFixture{
		backend: fakebackend.NewSeeded(secretStr),
		store:   session.NewMemoryStore(),
		cache:   query.NewCache(),
		notices: notify.NewRecorder(),
		history: navigation.NewHistory("/dashboard"),
	}
	f.server = httptest.NewServer(f.backend)
	t.Cleanup(f.server.Close)

	client := api.New(api.Config{BaseURL: f.server.URL}, f.store, api.WithNotifier(f.notices))
	options = append([]auth.ServiceOption{auth.WithNavigator(f.history)}, options...)
	service, err := auth.NewService(client, f.store, f.cache, options...)
	require.NoError(t, err)
	f.service = service
	return f
}

func TestNewService_RequiresDependencies(t *testing.T) {
	client := api.New(api.Config{BaseURL: "http://localhost"}, session.NewMemoryStore())

	_, err := auth.NewService(nil, session.NewMemoryStore(), query.NewCache())
	require.Error(t, err)
	_, err = auth.NewService(client, nil, query.NewCache())
	require.Error(t, err)
	_, err = auth.NewService(client, session.NewMemoryStore(), nil)
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t)

	user, err := f.service.Login(context.Background(), "admin", "password")
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", user.DisplayName())
	require.Equal(t, int64(1), user.UserID)
	require.Equal(t, []string{users.RoleAdmin}, []string(user.Roles))

	require.True(t, f.store.IsAuthenticated())
	require.NotEmpty(t, f.store.AccessToken())
	require.NotEmpty(t, f.store.RefreshToken())
	require.Equal(t, "admin@inventory.local", f.store.User().Email)

	signin := f.backend.Requests()[0]
	require.Equal(t, "/auth/signin", signin.Path)
	require.Empty(t, signin.Authorization)
	require.Equal(t, 1, f.backend.CountRequests(http.MethodGet, auth.ProfileEndpoint))
}

func TestLogin_BadCredentials(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Login(context.Background(), "admin", "wrong")
	require.True(t, api.IsUnauthorized(err))
	require.False(t, f.store.IsAuthenticated())
	require.Empty(t, f.notices.Notices())

	_, err = f.service.Login(context.Background(), " ", "")
	require.ErrorIs(t, err, inverrors.ErrEmptyCredentials)
}

func TestCurrent_UsesProfileTTL(t *testing.T) {
	f := setupTestFixture(t, auth.WithProfileTTL(time.Hour))
	_, err := f.service.Login(context.Background(), "manager", "password")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		state := f.service.Current(context.Background())
		require.True(t, state.IsAuthenticated)
		require.False(t, state.IsLoading)
		require.NoError(t, state.Err)
		require.Equal(t, "manager", state.User.Username)
	}
	require.Equal(t, 1, f.backend.CountRequests(http.MethodGet, auth.ProfileEndpoint))
}

func TestCurrent_Anonymous(t *testing.T) {
	f := setupTestFixture(t)

	state := f.service.Current(context.Background())
	require.False(t, state.IsAuthenticated)
	require.Nil(t, state.User)
	require.Empty(t, f.backend.Requests())
}

func TestCurrent_DegradesToCachedUser(t *testing.T) {
	f := setupTestFixture(t)
	cached := users.UserProfile{UserID: 1, Username: "admin", Roles: users.Roles{users.RoleAdmin}}
	require.NoError(t, f.store.SetSession(cached, "abc", ""))
	f.server.Close()

	state := f.service.Current(context.Background())
	require.True(t, state.IsAuthenticated)
	require.True(t, api.IsNetwork(state.Err))
	require.Equal(t, "admin", state.User.Username)
	require.False(t, state.IsLoading)
}

func TestCurrent_ExpiredTokenClearsSession(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.service.Login(context.Background(), "admin", "password")
	require.NoError(t, err)
	f.backend.RevokeAll()
	f.cache.Invalidate(auth.ProfileKey)

	state := f.service.Current(context.Background())
	require.False(t, state.IsAuthenticated)
	require.Nil(t, state.User)
	require.True(t, api.IsUnauthorized(state.Err))
	require.Equal(t, session.Session{}, f.store.Snapshot())
}

func TestPeekAndRefresh(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.SetSession(users.UserProfile{Username: "sales", Roles: users.Roles{"sales"}}, mustToken(t, f, "sales"), ""))

	peek := f.service.Peek()
	require.True(t, peek.IsAuthenticated)
	require.True(t, peek.IsLoading)
	require.Equal(t, []string{users.RoleSales}, []string(peek.User.Roles))

	f.service.Refresh()
	require.Eventually(t, func() bool {
		return !f.service.Peek().IsLoading
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, "Sam Seller", f.service.Peek().User.DisplayName())
	require.Equal(t, "Sam Seller", f.store.User().DisplayName())
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t, auth.WithServerSignout())
	_, err := f.service.Login(context.Background(), "admin", "password")
	require.NoError(t, err)
	accessToken := f.store.AccessToken()
	f.notices.Drain()

	f.service.Logout(context.Background())

	require.Equal(t, session.Session{}, f.store.Snapshot())
	_, cached := f.cache.Peek(auth.ProfileKey)
	require.False(t, cached)
	require.Equal(t, navigation.HomePath, f.history.Path())
	require.Equal(t, []notify.Notice{{Level: notify.LevelSuccess, Category: notify.CategoryGeneral, Message: auth.LoggedOutMessage}}, f.notices.Notices())
	require.Equal(t, 1, f.backend.CountRequests(http.MethodPost, auth.SignoutEndpoint))

	for _, r := range f.backend.Requests() {
		if r.Path == auth.SignoutEndpoint {
			require.Equal(t, "Bearer "+accessToken, r.Authorization)
		}
	}
}

func TestLogout_ServerSignoutFailureIgnored(t *testing.T) {
	f := setupTestFixture(t, auth.WithServerSignout())
	require.NoError(t, f.store.SetSession(users.UserProfile{Username: "ghost"}, "abc", ""))
	f.server.Close()

	f.service.Logout(context.Background())
	require.False(t, f.store.IsAuthenticated())
	require.Equal(t, navigation.HomePath, f.history.Path())
}

func TestSignupAndPasswordReset(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	created, err := f.service.Signup(ctx, auth.SignupRequest{
		Username:        "newbie",
		Email:           "newbie@inventory.local",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FirstName:       "New",
	})
	require.NoError(t, err)
	require.Equal(t, "newbie", created.Username)
	require.Equal(t, []string{users.RoleUser}, []string(created.Roles))

	_, err = f.service.Signup(ctx, auth.SignupRequest{Username: "newbie", Email: "again@inventory.local", Password: "secret1"})
	var vErr *api.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "is already taken", vErr.Fields["username"])

	message, err := f.service.ForgotPassword(ctx, "newbie@inventory.local")
	require.NoError(t, err)
	require.NotEmpty(t, message)

	code := f.backend.ResetCode("newbie@inventory.local")
	require.NotEmpty(t, code)
	message, err = f.service.ResetPassword(ctx, auth.ResetPasswordRequest{Token: code, NewPassword: "changed1", ConfirmPassword: "changed1"})
	require.NoError(t, err)
	require.Equal(t, "Password has been reset successfully", message)

	_, err = f.service.Login(ctx, "newbie", "changed1")
	require.NoError(t, err)
}

func TestSubscribe(t *testing.T) {
	f := setupTestFixture(t)
	changes := make(chan struct{}, 16)
	unsubscribe := f.service.Subscribe(func() { changes <- struct{}{} })
	defer unsubscribe()

	_, err := f.service.Login(context.Background(), "user", "password")
	require.NoError(t, err)
	require.NotEmpty(t, changes)
}

func mustToken(t *testing.T, f *testFixture, username string) string {
	t.Helper()
	accessToken, err := f.backend.IssueToken(username)
	require.NoError(t, err)
	return accessToken
}

// gatedProfile holds GET /auth/user requests carrying the gated token until released
type gatedProfile struct {
	next     http.Handler
	mu       sync.Mutex
	token    string
	arrived  chan struct{}
	released chan struct{}
}

func (g *gatedProfile) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	gated := g.token != "" && r.Method == http.MethodGet && r.URL.Path == auth.ProfileEndpoint &&
		r.Header.Get("Authorization") == "Bearer "+g.token
	g.mu.Unlock()
	if gated {
		close(g.arrived)
		<-g.released
	}
	g.next.ServeHTTP(w, r)
}

func (g *gatedProfile) hold(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = token
	g.arrived = make(chan struct{})
	g.released = make(chan struct{})
}

func TestLogin_SlowProfileOfPreviousSessionIsDropped(t *testing.T) {
	backend := fakebackend.NewSeeded(secretStr)
	gate := &gatedProfile{next: backend}
	server := httptest.NewServer(gate)
	t.Cleanup(server.Close)

	store := session.NewMemoryStore()
	cache := query.NewCache()
	client := api.New(api.Config{BaseURL: server.URL}, store)
	service, err := auth.NewService(client, store, cache, auth.WithNavigator(navigation.NewHistory("/")))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = service.Login(ctx, "admin", "password")
	require.NoError(t, err)
	adminToken := store.AccessToken()

	gate.hold(adminToken)
	cache.Invalidate(auth.ProfileKey)
	done := make(chan struct{})
	go func() {
		defer close(done)
		service.Current(ctx)
	}()
	<-gate.arrived

	service.Logout(ctx)
	user, err := service.Login(ctx, "manager", "password")
	require.NoError(t, err)
	require.Equal(t, "manager", user.Username)
	managerToken := store.AccessToken()
	require.NotEqual(t, adminToken, managerToken)

	close(gate.released)
	<-done

	require.Equal(t, managerToken, store.AccessToken())
	require.Equal(t, "manager", store.User().Username)
	require.Equal(t, []string{users.RoleManager}, []string(store.User().Roles))

	state := service.Current(ctx)
	require.NoError(t, state.Err)
	require.Equal(t, "manager", state.User.Username)
}

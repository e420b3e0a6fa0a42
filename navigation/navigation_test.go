package navigation_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-inventory-ui/api"
	"github.com/jrsteele09/go-inventory-ui/navigation"
	"github.com/jrsteele09/go-inventory-ui/session"
	"github.com/jrsteele09/go-inventory-ui/users"
	"github.com/stretchr/testify/require"
)

func TestIsAuthPage(t *testing.T) {
	require.True(t, navigation.IsAuthPage("/login"))
	require.True(t, navigation.IsAuthPage("/login/"))
	require.True(t, navigation.IsAuthPage("/login?next=/dashboard"))
	require.True(t, navigation.IsAuthPage("/reset-password?token=x"))
	require.False(t, navigation.IsAuthPage("/"))
	require.False(t, navigation.IsAuthPage("/admin/users"))
	require.False(t, navigation.IsAuthPage("/loginx"))
}

func newClient(t *testing.T, handler api.UnauthorizedHandler) (*api.Client, *session.PersistentStore) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	store := session.NewMemoryStore()
	require.NoError(t, store.SetSession(users.UserProfile{UserID: 1, Username: "ada"}, "abc", ""))
	return api.New(api.Config{BaseURL: server.URL}, store, api.WithUnauthorizedHandler(handler)), store
}

func TestCoordinator_RedirectsToLoginAfterDelay(t *testing.T) {
	history := navigation.NewHistory("/admin/users")
	coordinator := navigation.NewCoordinator(history, history, navigation.WithDelay(20*time.Millisecond))
	client, store := newClient(t, coordinator)

	err := client.Get(context.Background(), "/users/all", nil)
	require.True(t, api.IsUnauthorized(err))
	require.Equal(t, session.Session{}, store.Snapshot())

	require.True(t, coordinator.Pending())
	require.Equal(t, "/admin/users", history.Path())

	require.Eventually(t, func() bool {
		return history.Path() == navigation.LoginPath
	}, time.Second, 5*time.Millisecond)
	require.False(t, coordinator.Pending())
	require.Equal(t, []string{navigation.LoginPath}, history.Visits())
}

func TestCoordinator_StaysOnLoginPage(t *testing.T) {
	history := navigation.NewHistory(navigation.LoginPath)
	coordinator := navigation.NewCoordinator(history, history, navigation.WithDelay(time.Millisecond))
	client, store := newClient(t, coordinator)

	err := client.Get(context.Background(), "/auth/user", nil)
	require.True(t, api.IsUnauthorized(err))
	require.False(t, store.IsAuthenticated())
	require.False(t, coordinator.Pending())

	time.Sleep(10 * time.Millisecond)
	require.Empty(t, history.Visits())
}

func TestCoordinator_CollapsesRepeatedFailures(t *testing.T) {
	history := navigation.NewHistory("/dashboard")
	coordinator := navigation.NewCoordinator(history, history, navigation.WithDelay(20*time.Millisecond))

	for i := 0; i < 3; i++ {
		coordinator.HandleUnauthorized(api.UnauthorizedEvent{Status: http.StatusUnauthorized, Endpoint: "/users/all"})
	}

	require.Eventually(t, func() bool {
		return len(history.Visits()) == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	require.Equal(t, []string{navigation.LoginPath}, history.Visits())
}

func TestCoordinator_ImmediateAndStop(t *testing.T) {
	history := navigation.NewHistory("/dashboard")
	immediate := navigation.NewCoordinator(history, history, navigation.WithDelay(0), navigation.WithLoginPath("/signin"))
	immediate.HandleUnauthorized(api.UnauthorizedEvent{Status: http.StatusForbidden})
	require.Equal(t, "/signin", history.Path())

	other := navigation.NewHistory("/dashboard")
	delayed := navigation.NewCoordinator(other, other, navigation.WithDelay(time.Hour))
	delayed.HandleUnauthorized(api.UnauthorizedEvent{Status: http.StatusUnauthorized})
	require.True(t, delayed.Pending())
	delayed.Stop()
	require.False(t, delayed.Pending())
	require.Empty(t, other.Visits())
}

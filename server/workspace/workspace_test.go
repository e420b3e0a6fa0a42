package workspace_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-inventory-ui/api"
	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
	"github.com/jrsteele09/go-inventory-ui/internal/fakebackend"
	"github.com/jrsteele09/go-inventory-ui/query"
	"github.com/jrsteele09/go-inventory-ui/server/workspace"
	"github.com/jrsteele09/go-inventory-ui/users"
	"github.com/stretchr/testify/require"
)

func newBuilder(t *testing.T) (*workspace.Builder, *fakebackend.Backend) {
	t.Helper()
	backend := fakebackend.NewSeeded("secret")
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)
	return workspace.NewBuilder(workspace.Config{
		API:        api.Config{BaseURL: server.URL},
		Stale:      query.DefaultStaleTimes(),
		ProfileTTL: time.Minute,
	}), backend
}

func TestBuilder_LoginAndRestore(t *testing.T) {
	builder, backend := newBuilder(t)
	ctx := context.Background()

	w := builder.Build()
	require.False(t, w.Store.IsAuthenticated())
	user, err := w.Auth.Login(ctx, "manager", "password")
	require.NoError(t, err)
	require.Equal(t, "Grace Hopper", user.DisplayName())

	restored, err := builder.Restore("manager", []string{users.RoleManager}, w.Store.AccessToken(), w.Store.RefreshToken())
	require.NoError(t, err)
	state := restored.Auth.Current(ctx)
	require.True(t, state.IsAuthenticated)
	require.Equal(t, "Grace", state.User.FirstName)

	companies, err := restored.Companies.List(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	require.Equal(t, 1, backend.CountRequests("GET", "/companies/all"))
}

func TestBuilder_RejectedTokenExpiresWorkspace(t *testing.T) {
	builder, backend := newBuilder(t)
	ctx := context.Background()

	w := builder.Build()
	_, err := w.Auth.Login(ctx, "admin", "password")
	require.NoError(t, err)
	require.False(t, w.Expired())
	w.Notices.Drain()

	backend.RevokeAll()
	_, err = w.Users.List(ctx)
	require.True(t, api.IsUnauthorized(err))
	require.True(t, w.Expired())
	require.False(t, w.Store.IsAuthenticated())

	notices := w.Notices.Drain()
	require.Len(t, notices, 1)
	require.Equal(t, api.SessionExpiredMessage, notices[0].Message)
}

func TestInMemoryRepo(t *testing.T) {
	builder, _ := newBuilder(t)
	repo := workspace.NewInMemoryRepo()

	_, err := repo.Get("missing")
	require.ErrorIs(t, err, inverrors.ErrNotFound)
	require.Error(t, repo.Upsert("", builder.Build()))

	old := builder.Build()
	old.Touch(time.Now().Add(-time.Hour))
	fresh := builder.Build()
	require.NoError(t, repo.Upsert("token-a", old))
	require.NoError(t, repo.Upsert("token-b", fresh))

	got, err := repo.Get("token-b")
	require.NoError(t, err)
	require.Same(t, fresh, got)

	require.Equal(t, 1, repo.Sweep(time.Now().Add(-workspace.DefaultIdleTimeout)))
	require.Equal(t, 1, repo.Len())

	require.NoError(t, repo.Delete("token-b"))
	require.NoError(t, repo.Delete("token-b"))
	require.Equal(t, 0, repo.Len())
}

func TestKey(t *testing.T) {
	require.Len(t, workspace.Key("abc"), 64)
	require.NotEqual(t, workspace.Key("abc"), workspace.Key("abd"))
}

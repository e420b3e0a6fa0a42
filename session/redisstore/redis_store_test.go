package redisstore_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-inventory-ui/session"
	"github.com/jrsteele09/go-inventory-ui/session/redisstore"
	"github.com/jrsteele09/go-inventory-ui/users"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestPersister_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	p := redisstore.New(client, redisstore.WithPrefix("test:"))
	require.Equal(t, "test:auth-storage", p.Key())

	store, err := session.NewStore(p)
	require.NoError(t, err)
	require.False(t, store.IsAuthenticated())

	err = store.SetSession(users.UserProfile{UserID: 3, Username: "sam", Roles: users.Roles{"ROLE_SALES"}}, "access", "refresh")
	require.NoError(t, err)
	require.True(t, mr.Exists("test:auth-storage"))

	reloaded, err := session.NewStore(redisstore.New(client, redisstore.WithPrefix("test:")))
	require.NoError(t, err)
	require.True(t, store.Snapshot().Equal(reloaded.Snapshot()))

	reloaded.ClearUser()
	raw, err := mr.Get("test:auth-storage")
	require.NoError(t, err)
	require.JSONEq(t, `{"user":null,"accessToken":null,"refreshToken":null}`, raw)
}

func TestPersister_Connect(t *testing.T) {
	mr := miniredis.RunT(t)

	p, err := redisstore.Connect(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	_, ok, err := p.Load(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPersister_ConnectFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := redisstore.Connect(context.Background(), addr)
	require.Error(t, err)
}

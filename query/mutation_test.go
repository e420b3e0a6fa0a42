package query_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/go-inventory-ui/api"
	"github.com/jrsteele09/go-inventory-ui/notify"
	"github.com/jrsteele09/go-inventory-ui/query"
	"github.com/stretchr/testify/require"
)

func warm(t *testing.T, cache *query.Cache, keys ...query.Key) {
	t.Helper()
	for _, key := range keys {
		_, err := cache.Fetch(context.Background(), key, time.Hour, func(context.Context) (any, error) { return "v", nil })
		require.NoError(t, err)
	}
}

func TestMutation_SuccessInvalidatesAndNotifies(t *testing.T) {
	cache := query.NewCache()
	notices := notify.NewRecorder()
	warm(t, cache, query.ListKey("users"), query.DetailKey("users", 7), query.DetailKey("users", 8))

	m := query.NewMutation(cache, notices, query.MutationConfig[int64, struct{}]{
		Run: func(ctx context.Context, id int64) (struct{}, error) { return struct{}{}, nil },
		Invalidates: func(id int64, _ struct{}) []query.Key {
			return []query.Key{query.ListKey("users"), query.DetailKey("users", id)}
		},
		SuccessMessage: "Saved",
	})

	_, err := m.Mutate(context.Background(), 7)
	require.NoError(t, err)

	require.True(t, cache.State(query.ListKey("users")).Invalidated)
	require.True(t, cache.State(query.DetailKey("users", 7)).Invalidated)
	require.False(t, cache.State(query.DetailKey("users", 8)).Invalidated)
	require.Equal(t, []notify.Notice{{Level: notify.LevelSuccess, Category: notify.CategoryGeneral, Message: "Saved"}}, notices.Notices())
	require.Equal(t, 0, m.Pending())
}

func TestMutation_FailureNotices(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want notify.Notice
	}{
		{
			name: "validation summary",
			err:  &api.ValidationError{Status: 400, Message: "invalid", Fields: map[string]string{"email": "required", "name": "too short"}},
			want: notify.Notice{Level: notify.LevelError, Category: notify.CategoryValidation, Message: "email: required; name: too short"},
		},
		{
			name: "generic error",
			err:  &api.HTTPError{Status: 500, Message: "Internal error"},
			want: notify.Notice{Level: notify.LevelError, Category: notify.CategoryGeneral, Message: "Internal error"},
		},
		{
			name: "network",
			err:  &api.NetworkError{Err: errors.New("dial tcp: refused")},
			want: notify.Notice{Level: notify.LevelError, Category: notify.CategoryConnection, Message: api.ConnectionProblemMessage},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := query.NewCache()
			notices := notify.NewRecorder()
			warm(t, cache, query.ListKey("users"))

			m := query.NewMutation(cache, notices, query.MutationConfig[string, string]{
				Run:            func(ctx context.Context, in string) (string, error) { return "", tt.err },
				Invalidates:    func(string, string) []query.Key { return []query.Key{query.ListKey("users")} },
				SuccessMessage: "Saved",
			})
			_, err := m.Mutate(context.Background(), "x")
			require.ErrorIs(t, err, tt.err)
			require.False(t, cache.State(query.ListKey("users")).Invalidated)
			require.Equal(t, []notify.Notice{tt.want}, notices.Notices())
		})
	}
}

func TestMutation_IndependentConcurrentCalls(t *testing.T) {
	release := make(chan struct{})
	m := query.NewMutation(query.NewCache(), nil, query.MutationConfig[int, int]{
		Run: func(ctx context.Context, in int) (int, error) {
			<-release
			if in < 0 {
				return 0, errors.New("negative")
			}
			return in * 2, nil
		},
	})

	ok := m.Go(context.Background(), 21)
	bad := m.Go(context.Background(), -1)
	require.Equal(t, 2, m.Pending())
	require.True(t, ok.Pending())
	require.True(t, bad.Pending())
	require.NoError(t, ok.Err())

	close(release)

	out, err := ok.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, out)

	_, err = bad.Wait(context.Background())
	require.EqualError(t, err, "negative")
	require.EqualError(t, bad.Err(), "negative")

	require.Eventually(t, func() bool { return m.Pending() == 0 }, time.Second, time.Millisecond)
}

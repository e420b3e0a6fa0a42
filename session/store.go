package session

import (
	"context"
	"sync"
	"time"

	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
	"github.com/jrsteele09/go-inventory-ui/users"
	"github.com/rs/zerolog"
)

// Store is the contract every consumer of the session depends on. The API client,
// the auth facade and the logout paths all take a Store so tests can inject one
// backed by a MemoryPersister.
type Store interface {
	Snapshot() Session
	User() *users.UserProfile
	AccessToken() string
	RefreshToken() string
	IsAuthenticated() bool

	// SetSession is the login write: user and both tokens replaced together
	SetSession(user users.UserProfile, accessToken, refreshToken string) error
	// SetUser replaces the user of an authenticated session. nil clears the session.
	SetUser(user *users.UserProfile) error
	// SetUserFor is SetUser that only applies while accessToken is still the stored token
	SetUserFor(accessToken string, user *users.UserProfile) error
	// SetTokens replaces the tokens of an authenticated session. An empty access token clears the session.
	SetTokens(accessToken, refreshToken string) error
	// ClearUser resets user and tokens. It is the only way to log out and is idempotent.
	ClearUser()

	// Subscribe registers fn to be called with the new state after every change
	Subscribe(fn func(Session)) (unsubscribe func())
}

// Persister is the durable storage behind a PersistentStore
type Persister interface {
	Load(ctx context.Context) (Session, bool, error)
	Save(ctx context.Context, s Session) error
}

const persistTimeout = 5 * time.Second

var _ Store = (*PersistentStore)(nil)

// PersistentStore keeps the session in memory and writes it through to a Persister
// on every change.
type PersistentStore struct {
	mu          sync.RWMutex
	state       Session
	persister   Persister
	logger      zerolog.Logger
	subscribers map[int]func(Session)
	nextSubID   int
}

type StoreOption func(*PersistentStore)

func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *PersistentStore) {
		s.logger = logger
	}
}

// NewStore rehydrates the session from persister. A corrupt or half-populated entry
// is discarded and the store starts empty.
func NewStore(persister Persister, opts ...StoreOption) (*PersistentStore, error) {
	if persister == nil {
		persister = NewMemoryPersister()
	}
	s := &PersistentStore{
		persister:   persister,
		logger:      zerolog.Nop(),
		subscribers: make(map[int]func(Session)),
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	restored, ok, err := persister.Load(ctx)
	if err != nil {
		return nil, inverrors.Mark(inverrors.ErrSessionStorage, err, "[session NewStore] load")
	}
	if ok {
		s.state = sanitize(restored)
	}
	return s, nil
}

// NewMemoryStore is a store that forgets everything when the process exits
func NewMemoryStore() *PersistentStore {
	s, _ := NewStore(NewMemoryPersister())
	return s
}

func (s *PersistentStore) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *PersistentStore) User() *users.UserProfile {
	return s.Snapshot().User
}

func (s *PersistentStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

func (s *PersistentStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RefreshToken
}

func (s *PersistentStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated()
}

func (s *PersistentStore) SetSession(user users.UserProfile, accessToken, refreshToken string) error {
	if accessToken == "" {
		s.ClearUser()
		return nil
	}
	normalized := user.Normalized()
	return s.replace(func(Session) (Session, error) {
		return Session{User: &normalized, AccessToken: accessToken, RefreshToken: refreshToken}, nil
	})
}

func (s *PersistentStore) SetUser(user *users.UserProfile) error {
	if user == nil {
		s.ClearUser()
		return nil
	}
	normalized := user.Normalized()
	return s.replace(func(current Session) (Session, error) {
		if current.AccessToken == "" {
			return current, inverrors.ErrNotAuthenticated
		}
		current.User = &normalized
		return current, nil
	})
}

// SetUserFor returns ErrSessionChanged, leaving the session untouched, when the
// stored access token is no longer accessToken.
func (s *PersistentStore) SetUserFor(accessToken string, user *users.UserProfile) error {
	if user == nil {
		return inverrors.ErrNotAuthenticated
	}
	normalized := user.Normalized()
	return s.replace(func(current Session) (Session, error) {
		if current.AccessToken == "" {
			return current, inverrors.ErrNotAuthenticated
		}
		if current.AccessToken != accessToken {
			return current, inverrors.ErrSessionChanged
		}
		current.User = &normalized
		return current, nil
	})
}

func (s *PersistentStore) SetTokens(accessToken, refreshToken string) error {
	if accessToken == "" {
		s.ClearUser()
		return nil
	}
	return s.replace(func(current Session) (Session, error) {
		if current.User == nil {
			return current, inverrors.ErrNotAuthenticated
		}
		current.AccessToken = accessToken
		current.RefreshToken = refreshToken
		return current, nil
	})
}

func (s *PersistentStore) ClearUser() {
	if err := s.replace(func(Session) (Session, error) { return Session{}, nil }); err != nil {
		s.logger.Warn().Err(err).Msg("session cleared in memory but not in storage")
	}
}

func (s *PersistentStore) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// replace applies change under the write lock, persists the result and notifies
// subscribers once the lock is released. Unchanged state is neither saved nor announced.
func (s *PersistentStore) replace(change func(Session) (Session, error)) error {
	s.mu.Lock()
	next, err := change(s.state.Clone())
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if next.Equal(s.state) {
		s.mu.Unlock()
		return nil
	}
	s.state = next

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	saveErr := s.persister.Save(ctx, next.Clone())
	cancel()

	subscribers := make([]func(Session), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(next.Clone())
	}

	if saveErr != nil {
		s.logger.Error().Err(saveErr).Msg("failed to persist session")
		return inverrors.Mark(inverrors.ErrSessionStorage, saveErr, "[session] save")
	}
	return nil
}

// Package auth is the facade the rest of the application uses for "who is logged
// in". It reconciles the persisted session with a live profile fetch and owns the
// sign-in, sign-up, password and logout flows.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/go-inventory-ui/api"
	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
	"github.com/jrsteele09/go-inventory-ui/navigation"
	"github.com/jrsteele09/go-inventory-ui/notify"
	"github.com/jrsteele09/go-inventory-ui/query"
	"github.com/jrsteele09/go-inventory-ui/session"
	"github.com/jrsteele09/go-inventory-ui/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultProfileTTL = 5 * time.Minute

	SigninEndpoint         = "/auth/signin"
	SignupEndpoint         = "/auth/signup"
	ProfileEndpoint        = "/auth/user"
	ForgotPasswordEndpoint = "/auth/forgot-password"
	ResetPasswordEndpoint  = "/auth/reset-password"
	SignoutEndpoint        = "/auth/signout"

	LoggedOutMessage = "You have been logged out"
)

// ProfileKey is the cache entry of the live profile
var ProfileKey = query.Key{Resource: "auth", Filter: "user"}

// State is the current-user view. User is the fresh profile when one is loaded and
// the persisted user otherwise, so it is only nil when neither has data.
type State struct {
	User            *users.UserProfile
	IsAuthenticated bool
	IsLoading       bool
	Err             error
}

type Service struct {
	client        *api.Client
	store         session.Store
	cache         *query.Cache
	navigator     navigation.Navigator
	notifier      notify.Notifier
	validator     *Validator
	profileTTL    time.Duration
	serverSignout bool
	logger        zerolog.Logger
}

type ServiceOption func(*Service)

func WithNavigator(nav navigation.Navigator) ServiceOption {
	return func(s *Service) {
		s.navigator = nav
	}
}

func WithNotifier(n notify.Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithProfileTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.profileTTL = ttl
		}
	}
}

// WithServerSignout makes Logout tell the backend as well
func WithServerSignout() ServiceOption {
	return func(s *Service) {
		s.serverSignout = true
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(client *api.Client, store session.Store, cache *query.Cache, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[NewService] client is required")
	}
	if store == nil {
		return nil, errors.New("[NewService] store is required")
	}
	if cache == nil {
		return nil, errors.New("[NewService] cache is required")
	}

	s := &Service{
		client:     client,
		store:      store,
		cache:      cache,
		navigator:  navigation.NavigatorFunc(func(string) {}),
		notifier:   client.Notifier(),
		validator:  NewValidator(),
		profileTTL: DefaultProfileTTL,
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func (s *Service) Store() session.Store {
	return s.store
}

func (s *Service) Client() *api.Client {
	return s.client
}

func (s *Service) Cache() *query.Cache {
	return s.cache
}

// Login signs in and writes user and tokens in one step. The stored user starts as
// the username and roles from the sign-in reply and is replaced by the full profile
// when that fetch succeeds.
func (s *Service) Login(ctx context.Context, username, password string) (*users.UserProfile, error) {
	if err := s.validator.ValidateCredentials(username, password); err != nil {
		return nil, err
	}

	var resp SigninResponse
	req := SigninRequest{Username: strings.TrimSpace(username), Password: password}
	if err := s.client.Post(ctx, SigninEndpoint, req, &resp, api.SkipAuth(), api.WithoutErrorToast()); err != nil {
		return nil, err
	}
	if resp.JWTToken == "" {
		return nil, MissingJWTErr
	}
	if resp.Username == "" {
		resp.Username = req.Username
	}

	provisional := users.UserProfile{Username: resp.Username, Roles: resp.Roles}
	if err := s.store.SetSession(provisional, resp.JWTToken, resp.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "[Login] store session")
	}

	s.cache.Remove(ProfileKey)
	if _, err := query.FetchAs(ctx, s.cache, ProfileKey, s.profileTTL, s.fetchProfile); err != nil {
		s.logger.Warn().Err(err).Str("username", resp.Username).Msg("profile fetch after login failed, keeping sign-in roles")
	}

	user := s.store.User()
	if user == nil {
		return nil, inverrors.ErrNotAuthenticated
	}
	notify.Success(s.notifier, "Welcome back, "+user.DisplayName())
	return user, nil
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (*users.UserProfile, error) {
	if err := s.validator.ValidateSignup(req); err != nil {
		return nil, err
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	var created users.UserProfile
	if err := s.client.Post(ctx, SignupEndpoint, req, &created, api.SkipAuth(), api.WithoutErrorToast()); err != nil {
		return nil, err
	}
	created = created.Normalized()
	notify.Success(s.notifier, "Account created. You can now log in.")
	return &created, nil
}

// ForgotPassword asks the backend to email a reset link and returns its message
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	if err := s.validator.ValidateEmail(email); err != nil {
		return "", err
	}
	var resp MessageResponse
	req := ForgotPasswordRequest{Email: strings.TrimSpace(email)}
	if err := s.client.Post(ctx, ForgotPasswordEndpoint, req, &resp, api.SkipAuth(), api.WithoutErrorToast()); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) (string, error) {
	if err := s.validator.ValidateReset(req); err != nil {
		return "", err
	}
	var resp MessageResponse
	if err := s.client.Post(ctx, ResetPasswordEndpoint, req, &resp, api.SkipAuth(), api.WithoutErrorToast()); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Current returns the current-user view, fetching the profile when the cached one
// is older than the profile TTL. It never fails: a fetch error degrades to the
// persisted user and is reported in State.Err.
func (s *Service) Current(ctx context.Context) State {
	if !s.store.IsAuthenticated() {
		return State{User: s.store.User()}
	}

	profile, err := query.FetchAs(ctx, s.cache, ProfileKey, s.profileTTL, s.fetchProfile)
	state := State{User: s.store.User(), IsAuthenticated: s.store.IsAuthenticated(), Err: err}
	if err == nil && profile != nil && state.IsAuthenticated {
		state.User = profile
	}
	return state
}

// Peek is the non-blocking form of Current
func (s *Service) Peek() State {
	state := State{User: s.store.User(), IsAuthenticated: s.store.IsAuthenticated()}
	if !state.IsAuthenticated {
		return state
	}

	cached := s.cache.State(ProfileKey)
	state.Err = cached.Err
	if profile, ok := cached.Value.(*users.UserProfile); ok && cached.Loaded && profile != nil {
		state.User = profile
	}
	state.IsLoading = !cached.Loaded && cached.Err == nil
	return state
}

// Refresh refetches the profile in the background
func (s *Service) Refresh() {
	s.cache.Invalidate(ProfileKey)
	s.cache.Prefetch(ProfileKey, s.profileTTL, func(ctx context.Context) (any, error) {
		return s.fetchProfile(ctx)
	})
}

// Logout clears the session and every cached read, then navigates home
func (s *Service) Logout(ctx context.Context) {
	if s.serverSignout && s.store.IsAuthenticated() {
		if err := s.client.Post(ctx, SignoutEndpoint, nil, nil, api.WithoutErrorToast()); err != nil {
			s.logger.Debug().Err(err).Msg("server signout failed, logging out locally")
		}
	}
	s.store.ClearUser()
	s.cache.Clear()
	s.navigator.Navigate(navigation.HomePath)
	notify.Success(s.notifier, LoggedOutMessage)
}

// Subscribe calls fn whenever the session or the cached profile changes
func (s *Service) Subscribe(fn func()) func() {
	unsubscribeStore := s.store.Subscribe(func(session.Session) { fn() })
	unsubscribeCache := s.cache.Subscribe(func(key query.Key) {
		if key == ProfileKey {
			fn()
		}
	})
	return func() {
		unsubscribeStore()
		unsubscribeCache()
	}
}

// fetchProfile loads /auth/user and writes it back to the store. A reply that
// arrives after the session moved on to another token is discarded.
func (s *Service) fetchProfile(ctx context.Context) (*users.UserProfile, error) {
	accessToken := s.store.AccessToken()
	var profile users.UserProfile
	if err := s.client.Get(ctx, ProfileEndpoint, &profile, api.WithoutErrorToast()); err != nil {
		return nil, err
	}
	profile = profile.Normalized()
	err := s.store.SetUserFor(accessToken, &profile)
	switch {
	case inverrors.Is(err, inverrors.ErrSessionChanged), inverrors.Is(err, inverrors.ErrNotAuthenticated):
		s.logger.Debug().Str("username", profile.Username).Msg("dropping profile fetched for a previous session")
		return nil, inverrors.ErrSessionChanged
	case err != nil:
		s.logger.Warn().Err(err).Msg("failed to store fetched profile")
	}
	return &profile, nil
}

// Package workspace holds the client core of one signed-in browser: its session
// store, query cache, auth facade and resources. The web front-end keeps one per
// access token so cached reads survive across page loads.
package workspace

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-inventory-ui/api"
	"github.com/jrsteele09/go-inventory-ui/auth"
	"github.com/jrsteele09/go-inventory-ui/companies/companyapi"
	"github.com/jrsteele09/go-inventory-ui/navigation"
	"github.com/jrsteele09/go-inventory-ui/notify"
	"github.com/jrsteele09/go-inventory-ui/query"
	"github.com/jrsteele09/go-inventory-ui/session"
	"github.com/jrsteele09/go-inventory-ui/users"
	"github.com/jrsteele09/go-inventory-ui/users/userapi"
	"github.com/rs/zerolog"
)

type Workspace struct {
	Store     *session.PersistentStore
	Cache     *query.Cache
	Auth      *auth.Service
	Users     *userapi.Resource
	Companies *companyapi.Resource
	// Notices collects the flashes shown on the next rendered page
	Notices *notify.Recorder
	History *navigation.History

	expired  atomic.Bool
	mu       sync.Mutex
	lastUsed time.Time
}

// Expired reports whether the backend rejected this workspace's token
func (w *Workspace) Expired() bool {
	return w.expired.Load()
}

func (w *Workspace) Touch(now time.Time) {
	w.mu.Lock()
	w.lastUsed = now
	w.mu.Unlock()
}

func (w *Workspace) LastUsed() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastUsed
}

type Config struct {
	API           api.Config
	Stale         query.StaleTimes
	ProfileTTL    time.Duration
	ServerSignout bool
}

// Builder assembles workspaces that share transport, metrics and logging
type Builder struct {
	cfg        Config
	clientOpts []api.ClientOption
	logger     zerolog.Logger
	now        func() time.Time
}

type BuilderOption func(*Builder)

// WithClientOptions are applied to every workspace's API client
func WithClientOptions(opts ...api.ClientOption) BuilderOption {
	return func(b *Builder) {
		b.clientOpts = append(b.clientOpts, opts...)
	}
}

func WithLogger(logger zerolog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.now = now
	}
}

func NewBuilder(cfg Config, opts ...BuilderOption) *Builder {
	b := &Builder{cfg: cfg, logger: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns an anonymous workspace
func (b *Builder) Build() *Workspace {
	w := &Workspace{
		Store:   session.NewMemoryStore(),
		Cache:   query.NewCache(query.WithLogger(b.logger), query.WithClock(b.now)),
		Notices: notify.NewRecorder(),
		History: navigation.NewHistory(navigation.HomePath),
	}
	w.Touch(b.now())

	opts := append([]api.ClientOption{}, b.clientOpts...)
	opts = append(opts,
		api.WithNotifier(w.Notices),
		api.WithLogger(b.logger),
		api.WithUnauthorizedHandler(api.UnauthorizedHandlerFunc(func(evt api.UnauthorizedEvent) {
			w.expired.Store(true)
			b.logger.Debug().Int("status", evt.Status).Str("endpoint", evt.Endpoint).Msg("workspace token rejected")
		})),
	)
	client := api.New(b.cfg.API, w.Store, opts...)

	authOpts := []auth.ServiceOption{
		auth.WithNavigator(w.History),
		auth.WithProfileTTL(b.cfg.ProfileTTL),
		auth.WithLogger(b.logger),
	}
	if b.cfg.ServerSignout {
		authOpts = append(authOpts, auth.WithServerSignout())
	}
	// NewService only fails on nil dependencies
	w.Auth, _ = auth.NewService(client, w.Store, w.Cache, authOpts...)
	w.Users = userapi.NewResource(client, w.Cache, b.cfg.Stale)
	w.Companies = companyapi.NewResource(client, w.Cache, b.cfg.Stale)
	return w
}

// Restore builds a workspace for a token the browser already holds, e.g. after a
// restart of the front-end. The user starts as the token's claims and is replaced
// by the live profile on first use.
func (b *Builder) Restore(username string, roles []string, accessToken, refreshToken string) (*Workspace, error) {
	w := b.Build()
	if err := w.Store.SetSession(users.UserProfile{Username: username, Roles: roles}, accessToken, refreshToken); err != nil {
		return nil, err
	}
	return w, nil
}

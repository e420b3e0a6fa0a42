// Package cli is the inventoryctl terminal client. The session is kept in a file
// under the data folder, or in Redis, so a login survives between invocations.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-inventory-ui/api"
	"github.com/jrsteele09/go-inventory-ui/auth"
	"github.com/jrsteele09/go-inventory-ui/companies/companyapi"
	"github.com/jrsteele09/go-inventory-ui/guard"
	"github.com/jrsteele09/go-inventory-ui/internal/config"
	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
	"github.com/jrsteele09/go-inventory-ui/navigation"
	"github.com/jrsteele09/go-inventory-ui/notify"
	"github.com/jrsteele09/go-inventory-ui/query"
	"github.com/jrsteele09/go-inventory-ui/session"
	"github.com/jrsteele09/go-inventory-ui/session/redisstore"
	"github.com/jrsteele09/go-inventory-ui/users"
	"github.com/jrsteele09/go-inventory-ui/users/userapi"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const loginHint = "Run `inventoryctl login` to sign in."

// App carries the flags and the client core shared by every command
type App struct {
	cfg        config.Config
	persister  session.Persister
	httpClient *http.Client
	logger     zerolog.Logger

	flagAPIURL    string
	flagDataDir   string
	flagBackend   string
	flagRedisAddr string
	flagNoColour  bool
	flagDebug     bool

	store     *session.PersistentStore
	client    *api.Client
	auth      *auth.Service
	users     *userapi.Resource
	companies *companyapi.Resource
	closers   []io.Closer
}

type Option func(*App)

// WithPersister replaces the file or Redis session storage chosen by flags
func WithPersister(p session.Persister) Option {
	return func(a *App) {
		a.persister = p
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) {
		a.httpClient = hc
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// NewRootCmd creates the inventoryctl command tree
func NewRootCmd(cfg config.Config, opts ...Option) *cobra.Command {
	app := &App{cfg: cfg, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(app)
	}

	root := &cobra.Command{
		Use:           "inventoryctl",
		Short:         "Manage inventory users and companies from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.connect(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			app.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.flagAPIURL, "api-url", cfg.GetAPIBaseURL(), "Backend API base URL (or API_BASE_URL env)")
	flags.StringVar(&app.flagDataDir, "data-dir", cfg.GetDataFolder(), "Folder holding the file session (or FOLDER env)")
	flags.StringVar(&app.flagBackend, "session-backend", cfg.GetSessionBackend(), "Session storage: file or redis (or SESSION_BACKEND env)")
	flags.StringVar(&app.flagRedisAddr, "redis-addr", cfg.GetRedisAddr(), "Redis address for the redis session backend (or REDIS_ADDR env)")
	flags.BoolVar(&app.flagNoColour, "no-colour", false, "Disable coloured output")
	flags.BoolVar(&app.flagDebug, "debug", false, "Enable debug logging")

	root.AddCommand(
		app.newLoginCmd(),
		app.newLogoutCmd(),
		app.newWhoamiCmd(),
		app.newUsersCmd(),
		app.newCompaniesCmd(),
	)
	return root
}

// connect builds the client core for the command about to run
func (a *App) connect(cmd *cobra.Command) error {
	logger := a.logger
	if a.flagDebug {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: a.flagNoColour}).
			Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}

	persister, err := a.openPersister(cmd.Context())
	if err != nil {
		return err
	}
	a.store, err = session.NewStore(persister, session.WithLogger(logger))
	if err != nil {
		return err
	}

	notifier := notify.NewWriter(cmd.ErrOrStderr(), !a.flagNoColour)
	// The login command counts as an auth page, so a rejected sign-in prints no hint
	location := navigation.LocationFunc(func() string { return "/" + cmd.Name() })
	coordinator := navigation.NewCoordinator(navigation.NavigatorFunc(func(string) {
		fmt.Fprintln(cmd.ErrOrStderr(), loginHint)
	}), location, navigation.WithDelay(0), navigation.WithLogger(logger))

	clientOpts := []api.ClientOption{
		api.WithNotifier(notifier),
		api.WithUnauthorizedHandler(coordinator),
		api.WithLogger(logger),
	}
	if a.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(a.httpClient))
	}
	a.client = api.New(api.Config{BaseURL: a.flagAPIURL, Timeout: a.cfg.GetAPITimeout()}, a.store, clientOpts...)

	cache := query.NewCache(query.WithLogger(logger))
	a.auth, err = auth.NewService(a.client, a.store, cache,
		auth.WithNotifier(notifier),
		auth.WithProfileTTL(a.cfg.GetProfileTTL()),
		auth.WithServerSignout(),
		auth.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	stale := query.StaleTimes{
		List:   a.cfg.GetListStaleTime(),
		Detail: a.cfg.GetDetailStaleTime(),
		Search: a.cfg.GetSearchStaleTime(),
	}
	a.users = userapi.NewResource(a.client, cache, stale)
	a.companies = companyapi.NewResource(a.client, cache, stale)
	return nil
}

func (a *App) openPersister(ctx context.Context) (session.Persister, error) {
	if a.persister != nil {
		return a.persister, nil
	}
	switch strings.ToLower(a.flagBackend) {
	case config.SessionBackendFile:
		return session.NewFilePersister(a.flagDataDir)
	case config.SessionBackendRedis:
		p, err := redisstore.Connect(ctx, a.flagRedisAddr)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, p)
		return p, nil
	}
	return nil, fmt.Errorf("unknown session backend %q (want %s or %s)", a.flagBackend, config.SessionBackendFile, config.SessionBackendRedis)
}

func (a *App) close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
	a.closers = nil
}

// require applies the route guard to a command: the signed-in user must hold one
// of roles, or any role when none are given.
func (a *App) require(ctx context.Context, roles ...string) (*users.UserProfile, error) {
	state := a.auth.Current(ctx)
	switch guard.Evaluate(state, roles).Decision {
	case guard.Allow:
		return state.User, nil
	case guard.RedirectUnauthorized:
		labels := make([]string, len(roles))
		for i, role := range roles {
			labels[i] = users.RoleLabel(role)
		}
		return nil, fmt.Errorf("%w: requires %s", inverrors.ErrForbidden, strings.Join(labels, " or "))
	}
	if state.Err != nil && !api.IsUnauthorized(state.Err) {
		return nil, state.Err
	}
	return nil, fmt.Errorf("%w. %s", inverrors.ErrNotAuthenticated, loginHint)
}

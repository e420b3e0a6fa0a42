// Package server is the web front-end: server-rendered pages for login, signup,
// password reset, role dashboards and the users and companies screens, all backed
// by one client-core workspace per signed-in browser.
package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-inventory-ui/api"
	"github.com/jrsteele09/go-inventory-ui/internal/colours"
	"github.com/jrsteele09/go-inventory-ui/internal/config"
	"github.com/jrsteele09/go-inventory-ui/query"
	"github.com/jrsteele09/go-inventory-ui/server/workspace"
	"github.com/jrsteele09/go-inventory-ui/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const contentTypeHTML = "text/html; charset=utf-8"

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	inspector  *token.Inspector
	builder    *workspace.Builder
	workspaces workspace.Repo
	registry   *prometheus.Registry
	templates  map[string]*template.Template
	logger     zerolog.Logger

	httpClient *http.Client
	now        func() time.Time
}

type Option func(*Server)

// WithHTTPClient replaces the transport used to reach the backend
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Server) {
		s.httpClient = hc
	}
}

func WithWorkspaceRepo(repo workspace.Repo) Option {
	return func(s *Server) {
		s.workspaces = repo
	}
}

// WithRegistry exposes metrics from registry on /metrics instead of a private one
func WithRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

func New(cfg config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("[Server New] config is required")
	}

	s := &Server{
		env:    cfg.GetEnv(),
		mux:    http.NewServeMux(),
		config: cfg,
		logger: log.Logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workspaces == nil {
		s.workspaces = workspace.NewInMemoryRepo()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	var signer token.Signer
	if secret := cfg.GetAuthSecret(); secret != "" {
		signer = token.NewHMACSigner(secret)
	}
	s.inspector = token.NewInspector(signer)

	clientOpts := []api.ClientOption{api.WithMetrics(api.NewMetrics(s.registry))}
	if s.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(s.httpClient))
	}
	s.builder = workspace.NewBuilder(workspace.Config{
		API: api.Config{BaseURL: cfg.GetAPIBaseURL(), Timeout: cfg.GetAPITimeout()},
		Stale: query.StaleTimes{
			List:   cfg.GetListStaleTime(),
			Detail: cfg.GetDetailStaleTime(),
			Search: cfg.GetSearchStaleTime(),
		},
		ProfileTTL:    cfg.GetProfileTTL(),
		ServerSignout: true,
	}, workspace.WithClientOptions(clientOpts...), workspace.WithLogger(s.logger), workspace.WithClock(s.now))

	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}
	s.templates = templates

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// SweepWorkspaces drops idle workspaces every interval until ctx ends
func (s *Server) SweepWorkspaces(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.workspaces.Sweep(s.now().Add(-idle)); removed > 0 {
				s.logger.Debug().Int("removed", removed).Msg("idle workspaces swept")
			}
		}
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Debug().Msgf("[%-19s] %s", colours.Method(method), path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

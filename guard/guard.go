// Package guard decides whether the current user may see a role-gated view
package guard

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-inventory-ui/auth"
	"github.com/jrsteele09/go-inventory-ui/navigation"
	"github.com/rs/zerolog"
)

type Decision int

const (
	// Pending means the profile is still loading and nothing conclusive may render
	Pending Decision = iota
	Allow
	RedirectLogin
	RedirectUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectUnauthorized:
		return "redirect-unauthorized"
	default:
		return "pending"
	}
}

type Result struct {
	Decision        Decision
	HasRequiredRole bool
}

// Redirect is the path a redirect decision leads to, empty otherwise
func (r Result) Redirect() string {
	switch r.Decision {
	case RedirectLogin:
		return navigation.LoginPath
	case RedirectUnauthorized:
		return navigation.UnauthorizedPath
	}
	return ""
}

// Evaluate applies the policy: loading is pending, anonymous goes to the login page,
// a role set that misses every required role goes to the unauthorized page. An
// empty requirement admits any authenticated user.
func Evaluate(state auth.State, required []string) Result {
	hasRole := state.User.HasAnyRole(required)
	switch {
	case state.IsLoading:
		return Result{Decision: Pending, HasRequiredRole: hasRole}
	case !state.IsAuthenticated || state.User == nil:
		return Result{Decision: RedirectLogin}
	case !hasRole:
		return Result{Decision: RedirectUnauthorized}
	}
	return Result{Decision: Allow, HasRequiredRole: true}
}

// Facade is the part of the auth facade a guard needs
type Facade interface {
	Current(ctx context.Context) auth.State
	Peek() auth.State
	Subscribe(fn func()) func()
}

// Guard re-evaluates the policy whenever the session or the profile changes and
// navigates when the decision turns into a redirect.
type Guard struct {
	facade   Facade
	nav      navigation.Navigator
	required []string
	onChange func(Result)
	logger   zerolog.Logger

	mu      sync.Mutex
	last    Result
	started bool
}

type Option func(*Guard)

// WithOnChange is called with every new decision
func WithOnChange(fn func(Result)) Option {
	return func(g *Guard) {
		g.onChange = fn
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

func New(facade Facade, nav navigation.Navigator, required []string, opts ...Option) *Guard {
	g := &Guard{
		facade:   facade,
		nav:      nav,
		required: required,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check loads the current state, records and returns the decision without navigating
func (g *Guard) Check(ctx context.Context) Result {
	result := Evaluate(g.facade.Current(ctx), g.required)
	g.mu.Lock()
	g.last = result
	g.started = true
	g.mu.Unlock()
	return result
}

// Last is the most recent decision
func (g *Guard) Last() Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Watch evaluates until ctx ends
func (g *Guard) Watch(ctx context.Context) error {
	signal := make(chan struct{}, 1)
	unsubscribe := g.facade.Subscribe(func() {
		select {
		case signal <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	g.settle(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-signal:
			g.settle(ctx)
		}
	}
}

// settle publishes the non-blocking view and, while it is pending, waits for the
// profile and publishes again.
func (g *Guard) settle(ctx context.Context) {
	if g.apply(Evaluate(g.facade.Peek(), g.required)).Decision != Pending {
		return
	}
	g.apply(Evaluate(g.facade.Current(ctx), g.required))
}

func (g *Guard) apply(result Result) Result {
	g.mu.Lock()
	changed := !g.started || g.last != result
	g.last = result
	g.started = true
	g.mu.Unlock()

	if !changed {
		return result
	}
	g.logger.Debug().Str("decision", result.Decision.String()).Strs("required", g.required).Msg("guard decision")
	if g.onChange != nil {
		g.onChange(result)
	}
	if path := result.Redirect(); path != "" && g.nav != nil {
		g.nav.Navigate(path)
	}
	return result
}

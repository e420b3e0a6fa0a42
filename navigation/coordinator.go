package navigation

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-inventory-ui/api"
	"github.com/rs/zerolog"
)

const DefaultRedirectDelay = 1500 * time.Millisecond

var _ api.UnauthorizedHandler = (*Coordinator)(nil)

// Coordinator schedules the login redirect that follows an unauthorized response.
// The delay leaves the session-expired notice on screen for a moment. Several
// failures while a redirect is pending collapse into that one redirect.
type Coordinator struct {
	nav       Navigator
	location  Location
	delay     time.Duration
	loginPath string
	logger    zerolog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

type CoordinatorOption func(*Coordinator)

func WithDelay(delay time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.delay = delay
	}
}

func WithLoginPath(path string) CoordinatorOption {
	return func(c *Coordinator) {
		c.loginPath = path
	}
}

func WithLogger(logger zerolog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func NewCoordinator(nav Navigator, location Location, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		nav:       nav,
		location:  location,
		delay:     DefaultRedirectDelay,
		loginPath: LoginPath,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) HandleUnauthorized(evt api.UnauthorizedEvent) {
	if c.location != nil && IsAuthPage(c.location.Path()) {
		c.logger.Debug().Int("status", evt.Status).Str("endpoint", evt.Endpoint).Msg("unauthorized on an auth page, staying put")
		return
	}

	if c.delay <= 0 {
		c.nav.Navigate(c.loginPath)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		return
	}
	c.logger.Debug().Int("status", evt.Status).Str("endpoint", evt.Endpoint).Dur("delay", c.delay).Msg("login redirect scheduled")
	c.timer = time.AfterFunc(c.delay, func() {
		c.mu.Lock()
		c.timer = nil
		c.mu.Unlock()
		c.nav.Navigate(c.loginPath)
	})
}

// Pending reports whether a redirect is scheduled but has not fired yet
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// Stop cancels a scheduled redirect
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

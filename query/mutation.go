package query

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jrsteele09/go-inventory-ui/api"
	"github.com/jrsteele09/go-inventory-ui/notify"
)

// MutationConfig describes one kind of write
type MutationConfig[In, Out any] struct {
	// Run performs the backend call
	Run func(ctx context.Context, in In) (Out, error)
	// Invalidates lists the keys a successful call may have changed
	Invalidates func(in In, out Out) []Key
	// SuccessMessage is shown after a successful call. Empty means no notice.
	SuccessMessage string
	// Describe builds the success message from the call when it depends on the input
	Describe func(in In, out Out) string
}

// Mutation runs writes against the backend. Calls are independent of one another:
// there is no queueing or de-duplication, each call carries its own outcome, and
// the mutation only counts how many are in flight.
type Mutation[In, Out any] struct {
	cache    *Cache
	notifier notify.Notifier
	cfg      MutationConfig[In, Out]
	pending  atomic.Int64
}

func NewMutation[In, Out any](cache *Cache, notifier notify.Notifier, cfg MutationConfig[In, Out]) *Mutation[In, Out] {
	if notifier == nil {
		notifier = notify.Nop
	}
	return &Mutation[In, Out]{cache: cache, notifier: notifier, cfg: cfg}
}

// Mutate runs one call and waits for it. On success the affected keys are
// invalidated before Mutate returns; on failure nothing is invalidated.
func (m *Mutation[In, Out]) Mutate(ctx context.Context, in In) (Out, error) {
	m.pending.Add(1)
	defer m.pending.Add(-1)
	return m.run(ctx, in)
}

func (m *Mutation[In, Out]) run(ctx context.Context, in In) (Out, error) {
	out, err := m.cfg.Run(ctx, in)
	if err != nil {
		if notice, ok := api.NoticeFor(err); ok {
			m.notifier.Notify(notice)
		}
		return out, err
	}

	if m.cache != nil && m.cfg.Invalidates != nil {
		m.cache.Invalidate(m.cfg.Invalidates(in, out)...)
	}
	message := m.cfg.SuccessMessage
	if m.cfg.Describe != nil {
		message = m.cfg.Describe(in, out)
	}
	if message != "" {
		notify.Success(m.notifier, message)
	}
	return out, nil
}

// Go starts a call in the background
func (m *Mutation[In, Out]) Go(ctx context.Context, in In) *Call[Out] {
	call := &Call[Out]{done: make(chan struct{})}
	m.pending.Add(1)
	go func() {
		defer m.pending.Add(-1)
		out, err := m.run(ctx, in)
		call.finish(out, err)
	}()
	return call
}

// Pending is the number of calls in flight
func (m *Mutation[In, Out]) Pending() int {
	return int(m.pending.Load())
}

// Call is the handle of one background mutation
type Call[Out any] struct {
	once sync.Once
	done chan struct{}
	out  Out
	err  error
}

func (c *Call[Out]) finish(out Out, err error) {
	c.once.Do(func() {
		c.out, c.err = out, err
		close(c.done)
	})
}

func (c *Call[Out]) Done() <-chan struct{} {
	return c.done
}

func (c *Call[Out]) Pending() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the call finishes or ctx ends
func (c *Call[Out]) Wait(ctx context.Context) (Out, error) {
	select {
	case <-c.done:
		return c.out, c.err
	case <-ctx.Done():
		var zero Out
		return zero, ctx.Err()
	}
}

// Err is the call's error once finished, nil before that
func (c *Call[Out]) Err() error {
	if c.Pending() {
		return nil
	}
	return c.err
}

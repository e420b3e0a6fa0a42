// Package query caches backend reads by Key and runs writes that invalidate them.
// Reads inside their staleness window are served from memory, concurrent reads of
// one key share a single request, and a mutation marks every key it may have
// touched as invalidated so the next read goes back to the server.
package query

import (
	"context"
	"strconv"
	"sync"
	"time"

	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the server state for a key
type Fetcher func(ctx context.Context) (any, error)

// State is a point-in-time view of one entry
type State struct {
	Value       any
	Err         error
	FetchedAt   time.Time
	Loaded      bool
	Fetching    bool
	Invalidated bool
}

type entry struct {
	value       any
	err         error
	fetchedAt   time.Time
	loaded      bool
	fetching    bool
	invalidated bool
	generation  uint64
}

type Cache struct {
	mu          sync.RWMutex
	entries     map[Key]*entry
	group       singleflight.Group
	now         func() time.Time
	logger      zerolog.Logger
	subscribers map[int]func(Key)
	nextSubID   int
	// epoch advances on Clear so fetches started before it are never joined again
	epoch uint64
}

type CacheOption func(*Cache)

// WithClock replaces time.Now
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

func WithLogger(logger zerolog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries:     make(map[Key]*entry),
		now:         time.Now,
		logger:      zerolog.Nop(),
		subscribers: make(map[int]func(Key)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the cached value for key while it is younger than staleTime and not
// invalidated, otherwise it calls fetch. Callers fetching the same key at the same
// time share one call, which runs detached from any single caller's cancellation;
// each caller stops waiting when its own ctx is done. A failed fetch keeps the
// previous value but reports the error.
func (c *Cache) Fetch(ctx context.Context, key Key, staleTime time.Duration, fetch Fetcher) (any, error) {
	if fetch == nil {
		return nil, inverrors.ErrQueryDisabled
	}
	if value, ok := c.fresh(key, staleTime); ok {
		return value, nil
	}

	c.mu.RLock()
	epoch := c.epoch
	c.mu.RUnlock()

	shared := context.WithoutCancel(ctx)
	results := c.group.DoChan(flightKey(epoch, key), func() (any, error) {
		return c.load(shared, key, epoch, fetch)
	})
	select {
	case res := <-results:
		if res.Shared {
			c.logger.Debug().Str("key", key.String()).Msg("joined in-flight fetch")
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func flightKey(epoch uint64, key Key) string {
	return strconv.FormatUint(epoch, 10) + "|" + key.String()
}

// FetchAs is Fetch with the value typed
func FetchAs[T any](ctx context.Context, c *Cache, key Key, staleTime time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	value, err := c.Fetch(ctx, key, staleTime, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, nil
	}
	return typed, nil
}

func (c *Cache) fresh(key Key, staleTime time.Duration) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || !e.loaded || e.invalidated || e.err != nil {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= staleTime {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) load(ctx context.Context, key Key, epoch uint64, fetch Fetcher) (any, error) {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return nil, inverrors.ErrSessionChanged
	}
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	e.fetching = true
	generation := e.generation
	c.mu.Unlock()
	c.publish(key)

	value, err := fetch(ctx)

	c.mu.Lock()
	e.fetching = false
	// a Remove or Clear while in flight detached e; its result is not stored
	current := c.entries[key] == e && c.epoch == epoch
	if current {
		if err != nil {
			e.err = err
		} else {
			e.value = value
			e.err = nil
			e.loaded = true
			e.fetchedAt = c.now()
			// an invalidation that landed mid-flight still stands
			e.invalidated = e.generation != generation
		}
	}
	c.mu.Unlock()
	if current {
		c.publish(key)
	}

	if err != nil {
		return nil, err
	}
	return value, nil
}

// Prefetch warms key in the background
func (c *Cache) Prefetch(key Key, staleTime time.Duration, fetch Fetcher) {
	go func() {
		if _, err := c.Fetch(context.Background(), key, staleTime, fetch); err != nil {
			c.logger.Debug().Err(err).Str("key", key.String()).Msg("prefetch failed")
		}
	}()
}

// Peek returns the last loaded value for key regardless of staleness
func (c *Cache) Peek(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || !e.loaded {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) State(key Key) State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return State{}
	}
	return State{
		Value:       e.value,
		Err:         e.err,
		FetchedAt:   e.fetchedAt,
		Loaded:      e.loaded,
		Fetching:    e.fetching,
		Invalidated: e.invalidated,
	}
}

// Invalidate marks keys so the next Fetch goes to the server. Invalidating a list key
// also invalidates the filtered lists of the same resource. Repeating an
// invalidation is harmless.
func (c *Cache) Invalidate(keys ...Key) {
	var touched []Key
	c.mu.Lock()
	for stored, e := range c.entries {
		for _, key := range keys {
			if key.covers(stored) {
				e.invalidated = true
				e.generation++
				touched = append(touched, stored)
				break
			}
		}
	}
	c.mu.Unlock()
	for _, key := range touched {
		c.publish(key)
	}
}

// InvalidateResource invalidates every entry of resource
func (c *Cache) InvalidateResource(resource string) {
	var touched []Key
	c.mu.Lock()
	for stored, e := range c.entries {
		if stored.Resource == resource {
			e.invalidated = true
			e.generation++
			touched = append(touched, stored)
		}
	}
	c.mu.Unlock()
	for _, key := range touched {
		c.publish(key)
	}
}

// Remove forgets key entirely. A fetch of key already in flight is not joined by
// later callers and its result is dropped.
func (c *Cache) Remove(key Key) {
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	c.group.Forget(flightKey(c.epoch, key))
	c.mu.Unlock()
	if ok {
		c.publish(key)
	}
}

// Clear forgets every entry and every fetch in flight
func (c *Cache) Clear() {
	c.mu.Lock()
	keys := make([]Key, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	c.entries = make(map[Key]*entry)
	c.epoch++
	c.mu.Unlock()
	for _, key := range keys {
		c.publish(key)
	}
}

// Subscribe calls fn with the key of every entry that changes
func (c *Cache) Subscribe(fn func(Key)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

func (c *Cache) publish(key Key) {
	c.mu.RLock()
	subscribers := make([]func(Key), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subscribers = append(subscribers, fn)
	}
	c.mu.RUnlock()
	for _, fn := range subscribers {
		fn(key)
	}
}

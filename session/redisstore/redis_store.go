// Package redisstore persists the client session in Redis, for CLI installs that
// share one session across machines or containers.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-inventory-ui/session"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "inventory:"

var _ session.Persister = (*Persister)(nil)

type Persister struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

type Option func(*Persister)

// WithPrefix namespaces the entry key; the key is always <prefix>auth-storage
func WithPrefix(prefix string) Option {
	return func(p *Persister) {
		p.key = prefix + session.StorageName
	}
}

// WithTTL expires the entry after ttl of inactivity. Zero keeps it forever.
func WithTTL(ttl time.Duration) Option {
	return func(p *Persister) {
		p.ttl = ttl
	}
}

func New(client *redis.Client, opts ...Option) *Persister {
	p := &Persister{
		client: client,
		key:    defaultPrefix + session.StorageName,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Connect dials addr and checks the connection before returning a persister
func Connect(ctx context.Context, addr string, opts ...Option) (*Persister, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[redisstore Connect] ping %s: %w", addr, err)
	}
	return New(client, opts...), nil
}

func (p *Persister) Key() string {
	return p.key
}

func (p *Persister) Load(ctx context.Context) (session.Session, bool, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.Session{}, false, nil
	}
	if err != nil {
		return session.Session{}, false, fmt.Errorf("get %s: %w", p.key, err)
	}
	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return session.Session{}, false, nil
	}
	return s, true, nil
}

func (p *Persister) Save(ctx context.Context, s session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := p.client.Set(ctx, p.key, data, p.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", p.key, err)
	}
	return nil
}

func (p *Persister) Close() error {
	return p.client.Close()
}

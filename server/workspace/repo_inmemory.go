package workspace

import (
	"fmt"
	"sync"
	"time"

	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

type InMemoryRepo struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace // token hash -> workspace
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		workspaces: make(map[string]*Workspace),
	}
}

func (r *InMemoryRepo) Upsert(accessToken string, w *Workspace) error {
	if accessToken == "" {
		return fmt.Errorf("accessToken is required")
	}
	if w == nil {
		return fmt.Errorf("workspace is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.workspaces[Key(accessToken)] = w
	return nil
}

func (r *InMemoryRepo) Get(accessToken string) (*Workspace, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("accessToken is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workspaces[Key(accessToken)]
	if !ok {
		return nil, inverrors.ErrNotFound
	}
	return w, nil
}

func (r *InMemoryRepo) Delete(accessToken string) error {
	if accessToken == "" {
		return fmt.Errorf("accessToken is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workspaces, Key(accessToken)) // Already gone is fine
	return nil
}

func (r *InMemoryRepo) Sweep(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for key, w := range r.workspaces {
		if w.LastUsed().Before(cutoff) {
			delete(r.workspaces, key)
			removed++
		}
	}
	return removed
}

func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workspaces)
}

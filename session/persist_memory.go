package session

import (
	"context"
	"encoding/json"
	"sync"
)

var _ Persister = (*MemoryPersister)(nil)

// MemoryPersister keeps the serialized session in memory. Storing bytes rather than
// the struct exercises the same encoding a durable persister uses.
type MemoryPersister struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (m *MemoryPersister) Load(_ context.Context) (Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return Session{}, false, nil
	}
	var s Session
	if err := json.Unmarshal(m.data, &s); err != nil {
		return Session{}, false, err
	}
	return s, true, nil
}

func (m *MemoryPersister) Save(_ context.Context, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

// Raw returns the last serialized session, nil if nothing was saved
func (m *MemoryPersister) Raw() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]byte(nil), m.data...)
}

package scenario

import (
	"context"
	"sort"
	"sync"
)

// Store keeps at most one Context per user.
type Store interface {
	// Get returns the user's context or nil when there is none.
	Get(ctx context.Context, userID int64) (*Context, error)
	// Set stores sc, replacing any previous context of the same user.
	Set(ctx context.Context, sc *Context) error
	// Reset removes the user's context; unknown users are a no-op.
	Reset(ctx context.Context, userID int64) error
	// List returns every stored context.
	List(ctx context.Context) ([]*Context, error)
}

// MemoryStore is a process-local Store safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	contexts map[int64]*Context
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contexts: make(map[int64]*Context)}
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (*Context, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.contexts[userID].Clone(), nil
}

func (m *MemoryStore) Set(_ context.Context, sc *Context) error {
	if sc == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contexts[sc.UserID] = sc.Clone()
	return nil
}

func (m *MemoryStore) Reset(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.contexts, userID)
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]*Context, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Context, 0, len(m.contexts))
	for _, sc := range m.contexts {
		out = append(out, sc.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// Len reports how many contexts are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.contexts)
}

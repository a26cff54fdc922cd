package assistantsapi

import (
	"context"
	"sync"
)

//go:generate mockgen -source=cache.go -destination=../../mocks/mockassistantsapi/cache_mock.gen.go -package mockassistantsapi

// AffinityCache maps an assistant to its vector store.
// An entry with empty ID is stored for assistants without a vector store.
// Entries are never evicted.
type AffinityCache interface {
	// Name returns the name of the cache implementation
	Name() string
	// Get returns the cached entry
	Get(ctx context.Context, assistantID string) (*VectorStore, bool, error)
	// PutIfAbsent stores the entry if the assistant is not cached yet,
	// and returns the cached entry
	PutIfAbsent(ctx context.Context, assistantID string, vs *VectorStore) (*VectorStore, error)
	// Put stores the entry
	Put(ctx context.Context, assistantID string, vs *VectorStore) error
	// Delete removes the entry
	Delete(ctx context.Context, assistantID string) error
}

var defaultCache = NewMemoryCache()

type memoryCache struct {
	lock    sync.RWMutex
	entries map[string]VectorStore
}

// NewMemoryCache returns process local AffinityCache
func NewMemoryCache() AffinityCache {
	return &memoryCache{
		entries: make(map[string]VectorStore),
	}
}

func (m *memoryCache) Name() string {
	return "memory"
}

func (m *memoryCache) Get(_ context.Context, assistantID string) (*VectorStore, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	vs, ok := m.entries[assistantID]
	if !ok {
		return nil, false, nil
	}
	return &vs, true, nil
}

func (m *memoryCache) PutIfAbsent(_ context.Context, assistantID string, vs *VectorStore) (*VectorStore, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if cur, ok := m.entries[assistantID]; ok {
		return &cur, nil
	}
	m.entries[assistantID] = *vs
	cp := *vs
	return &cp, nil
}

func (m *memoryCache) Put(_ context.Context, assistantID string, vs *VectorStore) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.entries[assistantID] = *vs
	return nil
}

func (m *memoryCache) Delete(_ context.Context, assistantID string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.entries, assistantID)
	return nil
}

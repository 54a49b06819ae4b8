package store

import (
	"context"
	"sync"

	"licensed/internal/license"
)

// MemoryStore is a map-backed license.Store for tests and embedded use.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot license.Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshot: license.Snapshot{}}
}

// NewMemoryStoreWith creates an in-memory store seeded with the given
// snapshot.
func NewMemoryStoreWith(seed license.Snapshot) *MemoryStore {
	return &MemoryStore{snapshot: seed.Clone()}
}

// Load implements license.Store.
func (s *MemoryStore) Load(ctx context.Context) (license.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone(), nil
}

// Save implements license.Store.
func (s *MemoryStore) Save(ctx context.Context, snapshot license.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot.Clone()
	return nil
}

// Close implements license.Store.
func (s *MemoryStore) Close() error {
	return nil
}

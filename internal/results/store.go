package results

import (
	"sync"

	"github.com/mhollis/agentbench/internal/models"
)

// Store persists the whole result set as one document. The set is small
// (one row per agent/platform pair), so whole-document writes keep the
// persisted copy trivially consistent with memory.
type Store interface {
	// Save persists the full set, replacing any prior copy.
	Save(rs models.ResultSet) error

	// Load returns the persisted set, or an empty set when none exists.
	Load() (models.ResultSet, error)

	// Clear removes the persisted copy. Clearing an already-empty store
	// succeeds.
	Clear() error
}

// MemoryStore is an in-process Store for tests and ephemeral sessions.
type MemoryStore struct {
	mu sync.Mutex
	rs models.ResultSet
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements Store.
func (ms *MemoryStore) Save(rs models.ResultSet) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.rs = rs.Clone()
	return nil
}

// Load implements Store.
func (ms *MemoryStore) Load() (models.ResultSet, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.rs.Clone(), nil
}

// Clear implements Store.
func (ms *MemoryStore) Clear() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.rs = nil
	return nil
}

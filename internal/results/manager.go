package results

import (
	"fmt"
	"sync"

	"github.com/mhollis/agentbench/internal/models"
)

// Manager owns the in-memory result set and keeps the store in sync: the
// whole set is persisted on every mutation, and clearing empties both the
// memory and the persisted copy together.
type Manager struct {
	mu    sync.RWMutex
	set   models.ResultSet
	store Store
}

// NewManager creates a Manager over the given store, loading any result
// set persisted by a prior session.
func NewManager(store Store) (*Manager, error) {
	set, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load persisted results: %w", err)
	}
	return &Manager{set: set, store: store}, nil
}

// Upsert records a result as the sole current entry for its
// (agent, platform) pair and persists the updated set.
func (m *Manager) Upsert(r models.TestResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated := m.set.Upsert(r)
	if err := m.store.Save(updated); err != nil {
		return fmt.Errorf("persist results: %w", err)
	}
	m.set = updated
	return nil
}

// Clear empties the result set and the persisted copy. Memory is cleared
// only after the store clear succeeds, so a failed clear leaves both sides
// intact. Clearing an empty manager is a no-op that succeeds.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("clear persisted results: %w", err)
	}
	m.set = nil
	return nil
}

// Snapshot returns a read-only copy of the current result set.
func (m *Manager) Snapshot() models.ResultSet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.set.Clone()
}

// Len returns the number of current results.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.set)
}

// Summary returns the aggregate view of the current set.
func (m *Manager) Summary() Summary {
	return Summarize(m.Snapshot())
}

package cache

import (
	"context"
	"sync"

	"WolfDesk/internal/model"
)

// MemoryStore is an in-process Store guarded by a RWMutex.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	policy  Policy
}

// NewMemoryStore creates an empty store with the given expiry policy.
func NewMemoryStore(policy Policy) *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry), policy: policy}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return Entry{}, false, nil
	}
	if !m.policy.Fresh(e.StoredAt) {
		m.mu.Lock()
		// re-check: a concurrent Set may have refreshed the key
		if cur, ok := m.entries[key]; ok && !m.policy.Fresh(cur.StoredAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return Entry{}, false, nil
	}
	return Entry{Bars: cloneBars(e.Bars), StoredAt: e.StoredAt}, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, bars []model.OHLCV) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = Entry{Bars: cloneBars(bars), StoredAt: m.policy.now()}
	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Clear drops every entry.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry)
}

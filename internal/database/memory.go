package database

import (
	"context"
	"sort"
	"sync"

	"github.com/nao1215/comet/internal/model"
)

// MemoryStore keeps the proxy flag and history in memory.
// The zero value is ready to use and starts with the flag unset.
type MemoryStore struct {
	mu      sync.RWMutex
	enabled *bool
	events  []model.ToggleEvent
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// ProxyEnabled returns the stored flag, false when it was never written.
func (m *MemoryStore) ProxyEnabled(_ context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.enabled == nil {
		return false, nil
	}
	return *m.enabled, nil
}

// SetProxyEnabled stores the flag.
func (m *MemoryStore) SetProxyEnabled(_ context.Context, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = &enabled
	return nil
}

// RecordEvent appends an event.
func (m *MemoryStore) RecordEvent(_ context.Context, event model.ToggleEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// ListEvents returns events newest first, at most limit when limit > 0.
func (m *MemoryStore) ListEvents(_ context.Context, limit int) ([]model.ToggleEvent, error) {
	m.mu.RLock()
	out := make([]model.ToggleEvent, len(m.events))
	copy(out, m.events)
	m.mu.RUnlock()

	// Reverse insertion order first so equal timestamps stay newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

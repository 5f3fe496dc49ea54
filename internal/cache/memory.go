package cache

import (
	"context"
	"sync"
)

// Memory is an in-process cache. Conflicting writes for the same key carry
// identical values, so last-writer-wins is safe.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry)}
}

func (m *Memory) Get(_ context.Context, text, targetLang string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[Key(text, targetLang)]
	return e, ok, nil
}

func (m *Memory) Put(_ context.Context, text, targetLang string, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[Key(text, targetLang)] = entry
	return nil
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

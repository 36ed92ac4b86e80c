package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Storage.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemory creates an empty memory storage.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

// GetItem implements Storage.
func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.items[key]

	return value, ok, nil
}

// SetItem implements Storage.
func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = value

	return nil
}

// RemoveItem implements Storage.
func (m *Memory) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)

	return nil
}

// Close implements Storage.
func (m *Memory) Close() error {
	return nil
}

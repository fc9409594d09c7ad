// Package memory provides an in-process store. It is not durable; it serves
// as the fast layer of a tiered store and as a test double.
package memory

import (
	"context"
	"sync"

	"bank-ledger/pkg/store"
)

// MemoryStore is a mutex-guarded map satisfying store.Store.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]string
	name   string
	closed bool
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore(name string) *MemoryStore {
	if name == "" {
		name = "memory"
	}
	return &MemoryStore{
		data: make(map[string]string),
		name: name,
	}
}

// Get retrieves the value for key, or store.ErrKeyNotFound when absent.
func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if err := store.ValidateKey(key); err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", store.ErrClosed
	}
	value, ok := m.data[key]
	if !ok {
		return "", store.ErrKeyNotFound
	}
	return value, nil
}

// Set stores value under key.
func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return store.ErrClosed
	}
	m.data[key] = value
	return nil
}

// Remove deletes key. Absent keys are not an error.
func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return store.ErrClosed
	}
	delete(m.data, key)
	return nil
}

// Keys returns all stored keys.
func (m *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, store.ErrClosed
	}
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Name returns the store identifier.
func (m *MemoryStore) Name() string {
	return m.name
}

// Close clears the store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Package mock provides a configurable Store implementation for tests.
package mock

import (
	"context"
	"sync/atomic"

	"bank-ledger/pkg/store"
)

// MockStore is a mock implementation of Store for testing.
// It allows injecting custom behavior for each method and tracks call counts.
type MockStore struct {
	// Function hooks - set these to customize behavior
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string) error
	RemoveFunc func(ctx context.Context, key string) error
	KeysFunc   func(ctx context.Context) ([]string, error)
	NameFunc   func() string
	CloseFunc  func() error

	// Call tracking (must use atomic operations for race-free access)
	getCalls    int64
	setCalls    int64
	removeCalls int64
	keysCalls   int64
	closeCalls  int64
}

// NewMockStore creates a mock whose Name method returns name.
func NewMockStore(name string) *MockStore {
	return &MockStore{
		NameFunc: func() string { return name },
	}
}

// Get implements Store.Get with optional custom behavior. The default
// behavior reports every key as missing.
func (m *MockStore) Get(ctx context.Context, key string) (string, error) {
	atomic.AddInt64(&m.getCalls, 1)
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", store.ErrKeyNotFound
}

// Set implements Store.Set with optional custom behavior.
func (m *MockStore) Set(ctx context.Context, key, value string) error {
	atomic.AddInt64(&m.setCalls, 1)
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	return nil
}

// Remove implements Store.Remove with optional custom behavior.
func (m *MockStore) Remove(ctx context.Context, key string) error {
	atomic.AddInt64(&m.removeCalls, 1)
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, key)
	}
	return nil
}

// Keys implements KeyLister with optional custom behavior.
func (m *MockStore) Keys(ctx context.Context) ([]string, error) {
	atomic.AddInt64(&m.keysCalls, 1)
	if m.KeysFunc != nil {
		return m.KeysFunc(ctx)
	}
	return nil, nil
}

// Name implements Store.Name with optional custom behavior.
func (m *MockStore) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock"
}

// Close implements Store.Close with optional custom behavior.
func (m *MockStore) Close() error {
	atomic.AddInt64(&m.closeCalls, 1)
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// GetCalls returns the number of Get calls (thread-safe).
func (m *MockStore) GetCalls() int {
	return int(atomic.LoadInt64(&m.getCalls))
}

// SetCalls returns the number of Set calls (thread-safe).
func (m *MockStore) SetCalls() int {
	return int(atomic.LoadInt64(&m.setCalls))
}

// RemoveCalls returns the number of Remove calls (thread-safe).
func (m *MockStore) RemoveCalls() int {
	return int(atomic.LoadInt64(&m.removeCalls))
}

// KeysCalls returns the number of Keys calls (thread-safe).
func (m *MockStore) KeysCalls() int {
	return int(atomic.LoadInt64(&m.keysCalls))
}

// CloseCalls returns the number of Close calls (thread-safe).
func (m *MockStore) CloseCalls() int {
	return int(atomic.LoadInt64(&m.closeCalls))
}

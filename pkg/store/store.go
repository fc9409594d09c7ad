// Package store defines the persistent key/value store used to remember the
// active session and per-account transaction ledgers across process
// restarts. Implementations live in subpackages (memory, file, sqlite,
// redis, postgres); tiered composes a fast and a durable store and
// resilient adds circuit-breaker protection.
package store

import (
	"context"
)

// Store is a durable key/value store with string values. Implementations
// must be safe for concurrent use, although the session manager serializes
// its own writes.
type Store interface {
	// Get retrieves the value for key, or ErrKeyNotFound when absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Name identifies the store for logging and metrics.
	Name() string

	// Close releases any resources held by the store.
	Close() error
}

// KeyLister is implemented by durable stores that can enumerate their keys.
// The tiered store uses it to prime its miss filter at startup.
type KeyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

package store

import (
	"errors"
	"fmt"
)

// Standard errors returned by store implementations.
var (
	// ErrKeyNotFound is returned when a requested key does not exist.
	ErrKeyNotFound = errors.New("store: key not found")

	// ErrInvalidKey is returned when a key is empty, too long or contains
	// control characters.
	ErrInvalidKey = errors.New("store: invalid key")

	// ErrUnavailable is returned when a store backend cannot be reached.
	ErrUnavailable = errors.New("store: unavailable")

	// ErrTimeout is returned when a store operation exceeded its deadline.
	ErrTimeout = errors.New("store: operation timeout")

	// ErrCircuitOpen is returned by guarded stores while the breaker is open.
	ErrCircuitOpen = errors.New("store: circuit breaker open")

	// ErrClosed is returned after Close has been called.
	ErrClosed = errors.New("store: closed")
)

// IsNotFound reports whether err indicates an absent key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// IsTimeout reports whether err indicates a timed-out operation.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCircuitOpen reports whether err indicates an open circuit breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

// WrapError annotates err with the store name and operation.
func WrapError(err error, store, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("store %s %s: %w", store, operation, err)
}

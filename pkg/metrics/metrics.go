package metrics

import (
	"time"
)

// Collector defines the interface for recording client instrumentation.
// Implementations can export to various backends (Prometheus, in-memory).
type Collector interface {
	// Banking actions executed by the session manager (login, deposit, ...).
	RecordOperation(op string, success bool, duration time.Duration)

	// Calls against the remote account service. statusCode is 0 when the
	// request never produced an HTTP response.
	RecordRemoteCall(op string, statusCode int, duration time.Duration)

	// Persistent store operations.
	RecordStoreGet(store string, hit bool, duration time.Duration)
	RecordStoreSet(store string, success bool, duration time.Duration)
	RecordStoreRemove(store string, success bool, duration time.Duration)

	// Circuit breaker transitions on guarded stores.
	RecordCircuitState(store string, state CircuitState)

	// Warm-up writes dropped by the tiered store under backpressure.
	RecordWarmupDropped(store string)
}

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed means requests are flowing through.
	CircuitClosed CircuitState = iota
	// CircuitOpen means requests are being rejected.
	CircuitOpen
	// CircuitHalfOpen means the breaker is probing for recovery.
	CircuitHalfOpen
)

// String returns the string representation of the circuit state.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// NoOpCollector is the default collector when metrics are not wired.
type NoOpCollector struct{}

// RecordOperation does nothing.
func (NoOpCollector) RecordOperation(op string, success bool, duration time.Duration) {}

// RecordRemoteCall does nothing.
func (NoOpCollector) RecordRemoteCall(op string, statusCode int, duration time.Duration) {}

// RecordStoreGet does nothing.
func (NoOpCollector) RecordStoreGet(store string, hit bool, duration time.Duration) {}

// RecordStoreSet does nothing.
func (NoOpCollector) RecordStoreSet(store string, success bool, duration time.Duration) {}

// RecordStoreRemove does nothing.
func (NoOpCollector) RecordStoreRemove(store string, success bool, duration time.Duration) {}

// RecordCircuitState does nothing.
func (NoOpCollector) RecordCircuitState(store string, state CircuitState) {}

// RecordWarmupDropped does nothing.
func (NoOpCollector) RecordWarmupDropped(store string) {}

// Package resilient wraps a store.Store with a circuit breaker and per-op
// timeout, so a misbehaving backend (redis down, disk full) degrades to
// fast failures instead of hanging every banking action.
package resilient

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"bank-ledger/pkg/logging"
	"bank-ledger/pkg/metrics"
	"bank-ledger/pkg/store"
)

// Store guards an inner store with gobreaker and timeout enforcement.
type Store struct {
	inner   store.Store
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	metrics metrics.Collector
	logger  *logging.Logger
}

// Config tunes the guard.
type Config struct {
	// Timeout applied to every operation. 0 disables the deadline.
	Timeout time.Duration

	// ConsecutiveFailures before the breaker trips (default 5).
	ConsecutiveFailures uint32

	// OpenTimeout is how long the breaker stays open before probing
	// (default 30s).
	OpenTimeout time.Duration

	// Metrics receives breaker state changes. Defaults to no-op.
	Metrics metrics.Collector

	// Logger defaults to the process global.
	Logger *logging.Logger
}

// DefaultConfig returns sensible guard settings for a local store.
func DefaultConfig() Config {
	return Config{
		Timeout:             1 * time.Second,
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
	}
}

// New wraps inner with circuit breaker and timeout protection.
func New(inner store.Store, config Config) *Store {
	if config.ConsecutiveFailures == 0 {
		config.ConsecutiveFailures = 5
	}
	if config.OpenTimeout == 0 {
		config.OpenTimeout = 30 * time.Second
	}
	if config.Metrics == nil {
		config.Metrics = metrics.NoOpCollector{}
	}
	if config.Logger == nil {
		config.Logger = logging.L()
	}

	rs := &Store{
		inner:   inner,
		timeout: config.Timeout,
		metrics: config.Metrics,
		logger:  config.Logger.Named("resilient").Named(inner.Name()),
	}

	rs.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    inner.Name(),
		Timeout: config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			// An absent key is a normal outcome, not a backend failure.
			return err == nil || store.IsNotFound(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			rs.logger.Warn("circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			var state metrics.CircuitState
			switch to {
			case gobreaker.StateOpen:
				state = metrics.CircuitOpen
			case gobreaker.StateHalfOpen:
				state = metrics.CircuitHalfOpen
			default:
				state = metrics.CircuitClosed
			}
			rs.metrics.RecordCircuitState(name, state)
		},
	})

	return rs
}

// execute runs op through the breaker with the configured deadline applied.
func (rs *Store) execute(ctx context.Context, operation string, op func(ctx context.Context) (string, error)) (string, error) {
	if rs.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rs.timeout)
		defer cancel()
	}

	result, err := rs.cb.Execute(func() (interface{}, error) {
		return op(ctx)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			rs.logger.Warn("request rejected by open circuit",
				zap.String("operation", operation))
			return "", store.ErrCircuitOpen
		}
		if ctx.Err() == context.DeadlineExceeded {
			rs.logger.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", rs.timeout))
			return "", store.ErrTimeout
		}
		return "", err
	}
	return result.(string), nil
}

// Get reads through the breaker.
func (rs *Store) Get(ctx context.Context, key string) (string, error) {
	return rs.execute(ctx, "get", func(ctx context.Context) (string, error) {
		return rs.inner.Get(ctx, key)
	})
}

// Set writes through the breaker.
func (rs *Store) Set(ctx context.Context, key, value string) error {
	_, err := rs.execute(ctx, "set", func(ctx context.Context) (string, error) {
		return "", rs.inner.Set(ctx, key, value)
	})
	return err
}

// Remove deletes through the breaker.
func (rs *Store) Remove(ctx context.Context, key string) error {
	_, err := rs.execute(ctx, "remove", func(ctx context.Context) (string, error) {
		return "", rs.inner.Remove(ctx, key)
	})
	return err
}

// Keys passes through to the inner store when it lists keys, so a guarded
// durable store can still prime a tiered miss filter.
func (rs *Store) Keys(ctx context.Context) ([]string, error) {
	lister, ok := rs.inner.(store.KeyLister)
	if !ok {
		return nil, nil
	}
	return lister.Keys(ctx)
}

// Name returns the inner store's identifier.
func (rs *Store) Name() string {
	return rs.inner.Name()
}

// Close closes the inner store.
func (rs *Store) Close() error {
	return rs.inner.Close()
}

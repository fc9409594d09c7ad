// Package tiered composes a fast store and a durable store into one
// store.Store. Reads hit the fast layer first and fall through to the
// durable layer with single-flight deduplication; durable hits are warmed
// into the fast layer by a background writer. Writes go through both layers
// synchronously, durable first, so a fast-layer failure can never lose
// durable data.
//
// A bloom filter over every key ever written lets Get answer definite
// misses without touching the durable layer. The filter is primed from the
// durable store's key listing at construction, which assumes this process
// is the sole writer for the lifetime of the store.
package tiered

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"bank-ledger/pkg/logging"
	"bank-ledger/pkg/metrics"
	"bank-ledger/pkg/store"
)

// Store is a two-layer store with warm-up and miss filtering.
type Store struct {
	fast    store.Store
	durable store.Store

	sf singleflight.Group

	filterMu sync.RWMutex
	filter   *bloom.BloomFilter

	queue    chan warmOp
	stopOnce sync.Once
	stopped  chan struct{}
	wg       sync.WaitGroup

	metrics metrics.Collector
	logger  *logging.Logger
}

// warmOp is a pending fast-layer warm-up write.
type warmOp struct {
	key   string
	value string
}

// Config tunes the tiered store.
type Config struct {
	// QueueSize bounds the warm-up queue (default 256).
	QueueSize int

	// ExpectedKeys sizes the bloom filter (default 10000).
	ExpectedKeys uint

	// FalsePositiveRate for the bloom filter (default 0.01).
	FalsePositiveRate float64

	// Metrics receives store instrumentation. Defaults to no-op.
	Metrics metrics.Collector

	// Logger defaults to the process global.
	Logger *logging.Logger
}

// New builds a tiered store over fast and durable. When the durable store
// implements store.KeyLister its keys prime the miss filter; otherwise miss
// filtering is disabled and every Get falls through to the durable layer.
func New(fast, durable store.Store, config Config) (*Store, error) {
	if fast == nil || durable == nil {
		return nil, errors.New("tiered: both fast and durable stores are required")
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 256
	}
	if config.ExpectedKeys == 0 {
		config.ExpectedKeys = 10000
	}
	if config.FalsePositiveRate <= 0 || config.FalsePositiveRate >= 1 {
		config.FalsePositiveRate = 0.01
	}
	if config.Metrics == nil {
		config.Metrics = metrics.NoOpCollector{}
	}
	if config.Logger == nil {
		config.Logger = logging.L()
	}

	ts := &Store{
		fast:    fast,
		durable: durable,
		queue:   make(chan warmOp, config.QueueSize),
		stopped: make(chan struct{}),
		metrics: config.Metrics,
		logger:  config.Logger.Named("tiered"),
	}

	if lister, ok := durable.(store.KeyLister); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		keys, err := lister.Keys(ctx)
		if err != nil {
			return nil, store.WrapError(err, durable.Name(), "prime filter")
		}
		ts.filter = bloom.NewWithEstimates(config.ExpectedKeys, config.FalsePositiveRate)
		for _, k := range keys {
			ts.filter.Add([]byte(k))
		}
	}

	ts.wg.Add(1)
	go ts.warmWorker()

	return ts, nil
}

// Get reads from the fast layer, falling through to the durable layer.
func (ts *Store) Get(ctx context.Context, key string) (string, error) {
	if err := store.ValidateKey(key); err != nil {
		return "", err
	}

	start := time.Now()

	// Definite miss: the key was never written by this store.
	if ts.filter != nil {
		ts.filterMu.RLock()
		mayExist := ts.filter.Test([]byte(key))
		ts.filterMu.RUnlock()
		if !mayExist {
			ts.metrics.RecordStoreGet(ts.Name(), false, time.Since(start))
			return "", store.ErrKeyNotFound
		}
	}

	if value, err := ts.fast.Get(ctx, key); err == nil {
		ts.metrics.RecordStoreGet(ts.Name(), true, time.Since(start))
		return value, nil
	}

	// Fast layer missed or failed; single-flight the durable read so
	// concurrent readers of the same key share one lookup.
	result, err, _ := ts.sf.Do(key, func() (interface{}, error) {
		value, err := ts.durable.Get(ctx, key)
		if err != nil {
			return "", err
		}
		ts.enqueueWarm(key, value)
		return value, nil
	})

	hit := err == nil
	ts.metrics.RecordStoreGet(ts.Name(), hit, time.Since(start))
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// Set writes through both layers, durable first.
func (ts *Store) Set(ctx context.Context, key, value string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	start := time.Now()

	if err := ts.durable.Set(ctx, key, value); err != nil {
		ts.metrics.RecordStoreSet(ts.Name(), false, time.Since(start))
		return err
	}
	if ts.filter != nil {
		ts.filterMu.Lock()
		ts.filter.Add([]byte(key))
		ts.filterMu.Unlock()
	}
	if err := ts.fast.Set(ctx, key, value); err != nil {
		// Durable write already landed; the fast layer will be rewarmed on
		// the next read.
		ts.logger.Warn("fast layer set failed",
			zap.String("key", key), zap.Error(err))
	}

	ts.metrics.RecordStoreSet(ts.Name(), true, time.Since(start))
	return nil
}

// Remove deletes from both layers, durable first. The bloom filter cannot
// forget a key, so later Gets for it degrade to an ordinary miss.
func (ts *Store) Remove(ctx context.Context, key string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	start := time.Now()

	if err := ts.durable.Remove(ctx, key); err != nil {
		ts.metrics.RecordStoreRemove(ts.Name(), false, time.Since(start))
		return err
	}
	if err := ts.fast.Remove(ctx, key); err != nil {
		ts.metrics.RecordStoreRemove(ts.Name(), false, time.Since(start))
		return err
	}

	ts.metrics.RecordStoreRemove(ts.Name(), true, time.Since(start))
	return nil
}

// enqueueWarm schedules a fast-layer write without blocking the read path.
func (ts *Store) enqueueWarm(key, value string) {
	select {
	case ts.queue <- warmOp{key: key, value: value}:
	default:
		ts.metrics.RecordWarmupDropped(ts.Name())
	}
}

// warmWorker drains the warm-up queue into the fast layer.
func (ts *Store) warmWorker() {
	defer ts.wg.Done()

	for {
		select {
		case op := <-ts.queue:
			if err := ts.fast.Set(context.Background(), op.key, op.value); err != nil {
				ts.logger.Warn("warm-up write failed",
					zap.String("key", op.key), zap.Error(err))
			}
		case <-ts.stopped:
			// Drain whatever is left before exiting.
			for {
				select {
				case op := <-ts.queue:
					_ = ts.fast.Set(context.Background(), op.key, op.value)
				default:
					return
				}
			}
		}
	}
}

// Name identifies the composed store.
func (ts *Store) Name() string {
	return "tiered(" + ts.fast.Name() + "," + ts.durable.Name() + ")"
}

// Close stops the warm-up worker and closes both layers.
func (ts *Store) Close() error {
	ts.stopOnce.Do(func() {
		close(ts.stopped)
	})
	ts.wg.Wait()

	var lastErr error
	if err := ts.fast.Close(); err != nil {
		lastErr = err
	}
	if err := ts.durable.Close(); err != nil {
		lastErr = err
	}
	return lastErr
}

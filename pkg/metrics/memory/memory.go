package memory

import (
	"sync"
	"time"

	"bank-ledger/pkg/metrics"
)

// MemoryCollector implements metrics.Collector in memory, for tests and
// local inspection.
type MemoryCollector struct {
	mu sync.RWMutex

	operations map[string]*OperationMetrics
	remote     map[string]*RemoteMetrics
	stores     map[string]*StoreMetrics
}

// OperationMetrics holds counters for one banking action.
type OperationMetrics struct {
	Successes int64
	Failures  int64
	Latencies []time.Duration
}

// RemoteMetrics holds counters for one remote service operation.
type RemoteMetrics struct {
	Calls         int64
	ByStatus      map[int]int64
	TotalDuration time.Duration
}

// StoreMetrics holds counters for one persistent store.
type StoreMetrics struct {
	Hits          int64
	Misses        int64
	Sets          int64
	Removes       int64
	Errors        int64
	CircuitState  metrics.CircuitState
	CircuitOpens  int64
	WarmupDropped int64
}

// NewMemoryCollector creates an empty in-memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{
		operations: make(map[string]*OperationMetrics),
		remote:     make(map[string]*RemoteMetrics),
		stores:     make(map[string]*StoreMetrics),
	}
}

func (mc *MemoryCollector) operation(op string) *OperationMetrics {
	if _, ok := mc.operations[op]; !ok {
		mc.operations[op] = &OperationMetrics{}
	}
	return mc.operations[op]
}

func (mc *MemoryCollector) remoteOp(op string) *RemoteMetrics {
	if _, ok := mc.remote[op]; !ok {
		mc.remote[op] = &RemoteMetrics{ByStatus: make(map[int]int64)}
	}
	return mc.remote[op]
}

func (mc *MemoryCollector) store(name string) *StoreMetrics {
	if _, ok := mc.stores[name]; !ok {
		mc.stores[name] = &StoreMetrics{}
	}
	return mc.stores[name]
}

// RecordOperation records one banking action outcome.
func (mc *MemoryCollector) RecordOperation(op string, success bool, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	om := mc.operation(op)
	if success {
		om.Successes++
	} else {
		om.Failures++
	}
	om.Latencies = append(om.Latencies, duration)
}

// RecordRemoteCall records one remote service call.
func (mc *MemoryCollector) RecordRemoteCall(op string, statusCode int, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	rm := mc.remoteOp(op)
	rm.Calls++
	rm.ByStatus[statusCode]++
	rm.TotalDuration += duration
}

// RecordStoreGet records a store read.
func (mc *MemoryCollector) RecordStoreGet(store string, hit bool, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	sm := mc.store(store)
	if hit {
		sm.Hits++
	} else {
		sm.Misses++
	}
}

// RecordStoreSet records a store write.
func (mc *MemoryCollector) RecordStoreSet(store string, success bool, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	sm := mc.store(store)
	sm.Sets++
	if !success {
		sm.Errors++
	}
}

// RecordStoreRemove records a store removal.
func (mc *MemoryCollector) RecordStoreRemove(store string, success bool, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	sm := mc.store(store)
	sm.Removes++
	if !success {
		sm.Errors++
	}
}

// RecordCircuitState records a breaker transition, counting opens.
func (mc *MemoryCollector) RecordCircuitState(store string, state metrics.CircuitState) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	sm := mc.store(store)
	if sm.CircuitState != metrics.CircuitOpen && state == metrics.CircuitOpen {
		sm.CircuitOpens++
	}
	sm.CircuitState = state
}

// RecordWarmupDropped records a dropped warm-up write.
func (mc *MemoryCollector) RecordWarmupDropped(store string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.store(store).WarmupDropped++
}

// Snapshot is a copy of the collector state at one instant.
type Snapshot struct {
	Operations map[string]OperationMetrics
	Remote     map[string]RemoteMetrics
	Stores     map[string]StoreMetrics
}

// Snapshot returns a copy of the current metrics state.
func (mc *MemoryCollector) Snapshot() Snapshot {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	snapshot := Snapshot{
		Operations: make(map[string]OperationMetrics, len(mc.operations)),
		Remote:     make(map[string]RemoteMetrics, len(mc.remote)),
		Stores:     make(map[string]StoreMetrics, len(mc.stores)),
	}
	for op, om := range mc.operations {
		snapshot.Operations[op] = *om
	}
	for op, rm := range mc.remote {
		cp := *rm
		cp.ByStatus = make(map[int]int64, len(rm.ByStatus))
		for code, n := range rm.ByStatus {
			cp.ByStatus[code] = n
		}
		snapshot.Remote[op] = cp
	}
	for name, sm := range mc.stores {
		snapshot.Stores[name] = *sm
	}
	return snapshot
}

// Reset clears all collected metrics.
func (mc *MemoryCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.operations = make(map[string]*OperationMetrics)
	mc.remote = make(map[string]*RemoteMetrics)
	mc.stores = make(map[string]*StoreMetrics)
}

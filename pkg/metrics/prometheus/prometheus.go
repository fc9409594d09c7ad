package prometheus

import (
	"strconv"
	"time"

	"bank-ledger/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements metrics.Collector for Prometheus.
type PrometheusCollector struct {
	namespace string

	operationTotal   *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec

	remoteCalls   *prometheus.CounterVec
	remoteLatency *prometheus.HistogramVec

	storeGets     *prometheus.CounterVec
	storeSets     *prometheus.CounterVec
	storeRemoves  *prometheus.CounterVec
	circuitState  *prometheus.GaugeVec
	warmupDropped *prometheus.CounterVec
}

// NewPrometheusCollector creates a collector with the given metric namespace.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	pc := &PrometheusCollector{
		namespace: namespace,
		operationTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Banking operations by action and outcome",
			},
			[]string{"op", "outcome"},
		),
		operationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Banking operation latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		remoteCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_calls_total",
				Help:      "Remote account service calls by operation and HTTP status",
			},
			[]string{"op", "status"},
		),
		remoteLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "remote_call_duration_seconds",
				Help:      "Remote account service call latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		storeGets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_gets_total",
				Help:      "Persistent store reads by store and result",
			},
			[]string{"store", "result"},
		),
		storeSets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_sets_total",
				Help:      "Persistent store writes by store and outcome",
			},
			[]string{"store", "outcome"},
		),
		storeRemoves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_removes_total",
				Help:      "Persistent store removals by store and outcome",
			},
			[]string{"store", "outcome"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "store_circuit_state",
				Help:      "Circuit breaker state per store (0=closed, 1=open, 2=half-open)",
			},
			[]string{"store"},
		),
		warmupDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_warmup_dropped_total",
				Help:      "Warm-up writes dropped by the tiered store",
			},
			[]string{"store"},
		),
	}
	return pc
}

// Register registers all metrics with the given registerer.
func (pc *PrometheusCollector) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		pc.operationTotal,
		pc.operationLatency,
		pc.remoteCalls,
		pc.remoteLatency,
		pc.storeGets,
		pc.storeSets,
		pc.storeRemoves,
		pc.circuitState,
		pc.warmupDropped,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordOperation records one banking action outcome.
func (pc *PrometheusCollector) RecordOperation(op string, success bool, duration time.Duration) {
	pc.operationTotal.WithLabelValues(op, outcome(success)).Inc()
	pc.operationLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordRemoteCall records one remote service call.
func (pc *PrometheusCollector) RecordRemoteCall(op string, statusCode int, duration time.Duration) {
	pc.remoteCalls.WithLabelValues(op, strconv.Itoa(statusCode)).Inc()
	pc.remoteLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordStoreGet records a store read.
func (pc *PrometheusCollector) RecordStoreGet(store string, hit bool, duration time.Duration) {
	result := "miss"
	if hit {
		result = "hit"
	}
	pc.storeGets.WithLabelValues(store, result).Inc()
}

// RecordStoreSet records a store write.
func (pc *PrometheusCollector) RecordStoreSet(store string, success bool, duration time.Duration) {
	pc.storeSets.WithLabelValues(store, outcome(success)).Inc()
}

// RecordStoreRemove records a store removal.
func (pc *PrometheusCollector) RecordStoreRemove(store string, success bool, duration time.Duration) {
	pc.storeRemoves.WithLabelValues(store, outcome(success)).Inc()
}

// RecordCircuitState records the breaker state for a store.
func (pc *PrometheusCollector) RecordCircuitState(store string, state metrics.CircuitState) {
	pc.circuitState.WithLabelValues(store).Set(float64(state))
}

// RecordWarmupDropped records a dropped warm-up write.
func (pc *PrometheusCollector) RecordWarmupDropped(store string) {
	pc.warmupDropped.WithLabelValues(store).Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics tracks processor activity across both engines.
type EngineMetrics struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	events     *prometheus.CounterVec
	height     prometheus.Gauge
	oracle     *prometheus.CounterVec
}

var (
	engineOnce     sync.Once
	engineRegistry *EngineMetrics
)

// Engine returns the lazily registered engine metrics.
func Engine() *EngineMetrics {
	engineOnce.Do(func() {
		engineRegistry = &EngineMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "stakevest",
				Name:      "operations_total",
				Help:      "Count of processed operations by name and outcome.",
			}, []string{"op", "result"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "stakevest",
				Name:      "operation_duration_seconds",
				Help:      "Latency of processed operations.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"op"}),
			events: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "stakevest",
				Name:      "events_total",
				Help:      "Count of committed events by type.",
			}, []string{"type"}),
			height: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "stakevest",
				Name:      "committed_height",
				Help:      "Block height of the last committed operation.",
			}),
			oracle: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "stakevest",
				Name:      "oracle_requests_total",
				Help:      "Allocation oracle lookups by source and outcome.",
			}, []string{"source", "result"}),
		}
		prometheus.MustRegister(
			engineRegistry.operations,
			engineRegistry.latency,
			engineRegistry.events,
			engineRegistry.height,
			engineRegistry.oracle,
		)
	})
	return engineRegistry
}

// ObserveOperation records the outcome and latency of one operation. result is
// "ok" or the error code of the failure.
func (m *EngineMetrics) ObserveOperation(op, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if result == "" {
		result = "error"
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.latency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *EngineMetrics) ObserveEvent(eventType string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType).Inc()
}

func (m *EngineMetrics) SetHeight(height uint64) {
	if m == nil {
		return
	}
	m.height.Set(float64(height))
}

func (m *EngineMetrics) ObserveOracle(source string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.oracle.WithLabelValues(source, result).Inc()
}

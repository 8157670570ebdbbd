package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the audit subsystem. The queue
// gauge and drop counter make fire-and-forget recording observable instead
// of silently swallowed.
type Metrics struct {
	Recorded       prometheus.Counter
	Dropped        prometheus.Counter
	InsertFailures prometheus.Counter
	QueueDepth     prometheus.Gauge
	QueryLatency   prometheus.Histogram
}

// New creates and registers all audit metrics.
func New() *Metrics {
	return &Metrics{
		Recorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_audit_entries_recorded_total",
			Help: "Total audit entries accepted for recording",
		}),
		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_audit_entries_dropped_total",
			Help: "Total audit entries dropped because the recorder queue was full",
		}),
		InsertFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_audit_insert_failures_total",
			Help: "Total audit entries that failed to persist",
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "meridian_audit_queue_depth",
			Help: "Current number of audit entries waiting in the recorder queue",
		}),
		QueryLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "meridian_audit_query_latency_seconds",
			Help:    "Latency of audit log queries in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// IncrementRecorded increments the recorded entries counter by 1.
func (m *Metrics) IncrementRecorded() {
	m.Recorded.Inc()
}

// IncrementDropped increments the dropped entries counter by 1.
func (m *Metrics) IncrementDropped() {
	m.Dropped.Inc()
}

// IncrementInsertFailures increments the insert failure counter by 1.
func (m *Metrics) IncrementInsertFailures() {
	m.InsertFailures.Inc()
}

// SetQueueDepth records the current recorder queue depth.
func (m *Metrics) SetQueueDepth(depth int) {
	m.QueueDepth.Set(float64(depth))
}

// ObserveQueryLatency records the latency of one audit query.
func (m *Metrics) ObserveQueryLatency(seconds float64) {
	m.QueryLatency.Observe(seconds)
}

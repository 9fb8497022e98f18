package engine

import (
	"github.com/linkchecker-go/linkcheck/urlitem"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus counters/gauges for a running crawl,
// supplementing the spec's abstract status reporter with an operator-
// facing /metrics endpoint (domain-stack wiring for
// github.com/prometheus/client_golang).
type Metrics struct {
	checked    prometheus.Counter
	invalid    prometheus.Counter
	byTag      *prometheus.CounterVec
	duration   prometheus.Histogram
	inFlight   prometheus.Gauge
	queueDepth prometheus.Gauge
}

// NewMetrics registers the engine's metrics with reg. Pass
// prometheus.NewRegistry() for an isolated registry, or
// prometheus.DefaultRegisterer to expose via the global /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		checked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linkcheck_items_checked_total",
			Help: "Total URL items that completed a check.",
		}),
		invalid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linkcheck_items_invalid_total",
			Help: "Total URL items that checked invalid.",
		}),
		byTag: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linkcheck_warnings_total",
			Help: "Warnings emitted, by tag.",
		}, []string{"tag"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "linkcheck_fetch_duration_seconds",
			Help:    "Per-item fetch duration.",
			Buckets: prometheus.DefBuckets,
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "linkcheck_in_flight_items",
			Help: "URL items currently being fetched.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "linkcheck_queue_depth",
			Help: "URL items queued but not yet picked up by a worker.",
		}),
	}
	reg.MustRegister(m.checked, m.invalid, m.byTag, m.duration, m.inFlight, m.queueDepth)
	return m
}

// SetInFlight records the current count of items actively being fetched.
func (m *Metrics) SetInFlight(n int) { m.inFlight.Set(float64(n)) }

// SetQueueDepth records the current count of items queued but not yet
// picked up by a worker.
func (m *Metrics) SetQueueDepth(n int) { m.queueDepth.Set(float64(n)) }

// ObserveItem records the outcome of one finished item.
func (m *Metrics) ObserveItem(item *urlitem.Item) {
	m.checked.Inc()
	if item.Validity == urlitem.Invalid {
		m.invalid.Inc()
	}
	for _, w := range item.Warnings {
		m.byTag.WithLabelValues(string(w.Tag)).Inc()
	}
	m.duration.Observe(item.Duration.Seconds())
}

package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "hep"
	subsystem = "planner"
)

// Metrics holds metrics of the rewrite planner. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Applications      *prometheus.CounterVec
	Failures          *prometheus.CounterVec
	Passes            prometheus.Counter
	NonConvergence    prometheus.Counter
	ExecutionDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		Applications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rule_applications_total",
			Help:      "Count of successful rule applications",
		}, []string{"rule"}),

		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rule_failures_total",
			Help:      "Count of rule applications which failed and were discarded",
		}, []string{"rule"}),

		Passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "passes_total",
			Help:      "Count of traversal passes over expression graphs",
		}),

		NonConvergence: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "non_convergence_total",
			Help:      "Count of firings and subprograms aborted for not reaching a fixpoint",
		}),

		ExecutionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "execution_duration_seconds",
			Help:      "Histogram of times spent executing programs",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 5, 8),
		}),
	}
}

func (m *Metrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Applications,
		m.Failures,
		m.Passes,
		m.NonConvergence,
		m.ExecutionDuration,
	}
}

func (m *Metrics) ObserveApplication(rule string) {
	if m == nil {
		return
	}
	m.Applications.WithLabelValues(rule).Inc()
}

func (m *Metrics) ObserveFailure(rule string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(rule).Inc()
}

func (m *Metrics) ObservePass() {
	if m == nil {
		return
	}
	m.Passes.Inc()
}

func (m *Metrics) ObserveNonConvergence() {
	if m == nil {
		return
	}
	m.NonConvergence.Inc()
}

func (m *Metrics) ObserveExecution(d time.Duration) {
	if m == nil {
		return
	}
	m.ExecutionDuration.Observe(d.Seconds())
}

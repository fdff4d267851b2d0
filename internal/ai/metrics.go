package ai

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Completion outcomes recorded by Metrics.
const (
	OutcomeSuccess = "success"
	OutcomeQuota   = "quota"
	OutcomeError   = "error"
)

// Metrics records gateway activity.
type Metrics interface {
	// CompletionObserved records one capability call.
	CompletionObserved(capability, outcome string, d time.Duration)
	// FallbackUsed records a retry on the alternate capability.
	FallbackUsed(from, to string)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

// CompletionObserved implements Metrics.
func (NoopMetrics) CompletionObserved(string, string, time.Duration) {}

// FallbackUsed implements Metrics.
func (NoopMetrics) FallbackUsed(string, string) {}

// PrometheusMetrics exports gateway metrics to Prometheus.
type PrometheusMetrics struct {
	completions *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the gateway collectors with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	f := promauto.With(reg)
	return &PrometheusMetrics{
		completions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forja",
				Subsystem: "gateway",
				Name:      "completions_total",
				Help:      "Capability calls by capability and outcome",
			},
			[]string{"capability", "outcome"},
		),
		fallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forja",
				Subsystem: "gateway",
				Name:      "fallbacks_total",
				Help:      "Retries on an alternate capability after a quota error",
			},
			[]string{"from", "to"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "forja",
				Subsystem: "gateway",
				Name:      "completion_duration_seconds",
				Help:      "Capability call latency in seconds",
				Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"capability"},
		),
	}
}

// CompletionObserved implements Metrics.
func (m *PrometheusMetrics) CompletionObserved(capability, outcome string, d time.Duration) {
	m.completions.WithLabelValues(capability, outcome).Inc()
	m.latency.WithLabelValues(capability).Observe(d.Seconds())
}

// FallbackUsed implements Metrics.
func (m *PrometheusMetrics) FallbackUsed(from, to string) {
	m.fallbacks.WithLabelValues(from, to).Inc()
}

var (
	_ Metrics = NoopMetrics{}
	_ Metrics = (*PrometheusMetrics)(nil)
)

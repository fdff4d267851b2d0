package orchestrator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/reconcile"
)

// Metrics collects orchestrator activity.
type Metrics interface {
	// InstructionHandled is called when an instruction's flow finishes.
	InstructionHandled(intent Intent, d time.Duration, success bool)

	// TaskFinished is called when a task reaches a terminal status.
	TaskFinished(taskType domain.TaskType, status domain.TaskStatus, d time.Duration)

	// FilesReconciled is called after each merge into the project.
	FilesReconciled(stats reconcile.Stats, remaps, total int)
}

// NoopMetrics is a no-op implementation of Metrics.
type NoopMetrics struct{}

// InstructionHandled implements Metrics.
func (NoopMetrics) InstructionHandled(Intent, time.Duration, bool) {}

// TaskFinished implements Metrics.
func (NoopMetrics) TaskFinished(domain.TaskType, domain.TaskStatus, time.Duration) {}

// FilesReconciled implements Metrics.
func (NoopMetrics) FilesReconciled(reconcile.Stats, int, int) {}

// PrometheusMetrics exports orchestrator metrics to Prometheus.
type PrometheusMetrics struct {
	instructions *prometheus.CounterVec
	flowLatency  *prometheus.HistogramVec
	tasks        *prometheus.CounterVec
	taskLatency  *prometheus.HistogramVec
	files        *prometheus.CounterVec
	remaps       prometheus.Counter
	projectSize  prometheus.Gauge
}

// NewPrometheusMetrics registers the orchestrator collectors with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	f := promauto.With(reg)
	return &PrometheusMetrics{
		instructions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forja",
				Subsystem: "orchestrator",
				Name:      "instructions_total",
				Help:      "Instructions handled by intent and outcome",
			},
			[]string{"intent", "outcome"},
		),
		flowLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "forja",
				Subsystem: "orchestrator",
				Name:      "instruction_duration_seconds",
				Help:      "Time to run an instruction's flow",
				Buckets:   []float64{.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"intent"},
		),
		tasks: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forja",
				Subsystem: "orchestrator",
				Name:      "tasks_total",
				Help:      "Agent tasks by type and terminal status",
			},
			[]string{"type", "status"},
		),
		taskLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "forja",
				Subsystem: "orchestrator",
				Name:      "task_duration_seconds",
				Help:      "Agent task execution time",
				Buckets:   []float64{.1, .5, 1, 5, 15, 30, 60, 120},
			},
			[]string{"type"},
		),
		files: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forja",
				Subsystem: "orchestrator",
				Name:      "files_reconciled_total",
				Help:      "Incoming files by reconciliation result",
			},
			[]string{"result"},
		),
		remaps: f.NewCounter(prometheus.CounterOpts{
			Namespace: "forja",
			Subsystem: "orchestrator",
			Name:      "id_remaps_total",
			Help:      "File ids regenerated to repair duplicates",
		}),
		projectSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "forja",
			Subsystem: "orchestrator",
			Name:      "project_files",
			Help:      "Files in the project after the last merge",
		}),
	}
}

// InstructionHandled implements Metrics.
func (m *PrometheusMetrics) InstructionHandled(intent Intent, d time.Duration, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.instructions.WithLabelValues(string(intent), outcome).Inc()
	m.flowLatency.WithLabelValues(string(intent)).Observe(d.Seconds())
}

// TaskFinished implements Metrics.
func (m *PrometheusMetrics) TaskFinished(taskType domain.TaskType, status domain.TaskStatus, d time.Duration) {
	m.tasks.WithLabelValues(string(taskType), string(status)).Inc()
	m.taskLatency.WithLabelValues(string(taskType)).Observe(d.Seconds())
}

// FilesReconciled implements Metrics.
func (m *PrometheusMetrics) FilesReconciled(stats reconcile.Stats, remaps, total int) {
	m.files.WithLabelValues("added").Add(float64(stats.Added))
	m.files.WithLabelValues("modified").Add(float64(stats.Modified))
	m.files.WithLabelValues("unchanged").Add(float64(stats.Unchanged))
	m.files.WithLabelValues("stale").Add(float64(stats.Stale))
	m.files.WithLabelValues("rejected").Add(float64(stats.Rejected))
	m.remaps.Add(float64(remaps))
	m.projectSize.Set(float64(total))
}

var (
	_ Metrics = NoopMetrics{}
	_ Metrics = (*PrometheusMetrics)(nil)
)

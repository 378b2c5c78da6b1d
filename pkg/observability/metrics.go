package observability

import (
	"context"

	"github.com/aretw0/cado/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records cell executions as Prometheus collectors.
type Metrics struct {
	runs     *prometheus.CounterVec
	clears   prometheus.Counter
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil registerer leaves them unregistered, which is useful in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cado_cell_runs_total",
				Help: "Total number of cell evaluations by final status",
			},
			[]string{"status"},
		),
		clears: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cado_cell_clears_total",
				Help: "Total number of cells expired by edits or clears",
			},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cado_cell_eval_duration_seconds",
				Help:    "Duration of evaluator calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"language"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.runs, m.clears, m.duration)
	}
	return m
}

// Hooks returns the lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCellFinish: func(_ context.Context, e *domain.CellEvent) {
			m.runs.WithLabelValues(string(e.Status)).Inc()
			m.duration.WithLabelValues(string(e.Language)).Observe(e.Duration.Seconds())
		},
		OnCellCleared: func(_ context.Context, _ *domain.CellEvent) {
			m.clears.Inc()
		},
	}
}

// Collectors exposes the underlying collectors, e.g. for testutil.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.runs, m.clears, m.duration}
}

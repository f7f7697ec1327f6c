package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSolverMetrics() {
	r.SolvesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "stratagem_solves_total",
			Help: "Total number of equilibrium solves by status",
		},
		[]string{"status"},
	)

	r.SolveDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stratagem_solve_duration_seconds",
			Help:    "Wall-clock duration of a full equilibrium solve",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
	)

	r.TargetLPsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "stratagem_target_lps_total",
			Help: "Per-target linear programs solved, by outcome",
		},
		[]string{"outcome"},
	)

	r.TargetLPDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stratagem_target_lp_duration_seconds",
			Help:    "Duration of a single per-target linear program",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"outcome"},
	)

	r.SolveNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stratagem_solve_nodes",
			Help:    "Topology size per solve",
			Buckets: []float64{2, 5, 10, 25, 50, 100, 250},
		},
	)
}

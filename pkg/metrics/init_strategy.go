package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStrategyMetrics() {
	r.BaselineAllocationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "stratagem_baseline_allocations_total",
			Help: "Baseline allocations produced, by strategy",
		},
		[]string{"strategy"},
	)

	r.DefenderUtility = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stratagem_defender_expected_utility",
			Help: "Defender expected utility of the most recent evaluation, by strategy",
		},
		[]string{"strategy"},
	)

	r.ComparisonsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "stratagem_comparisons_total",
			Help: "Strategy comparisons completed",
		},
	)
}

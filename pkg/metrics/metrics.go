package metrics

import (
	"runtime"
	"time"
)

// Solve statuses
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusInvalid = "invalid"
)

// RecordSolve records a complete equilibrium solve
func (r *Registry) RecordSolve(status string, nodes int, duration time.Duration) {
	r.SolvesTotal.WithLabelValues(status).Inc()
	r.SolveDuration.Observe(duration.Seconds())
	r.SolveNodes.Observe(float64(nodes))
}

// RecordTargetLP records one per-target linear program by outcome
// (feasible, infeasible, not_converged).
func (r *Registry) RecordTargetLP(outcome string, duration time.Duration) {
	r.TargetLPsTotal.WithLabelValues(outcome).Inc()
	r.TargetLPDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordBaseline records a baseline allocation
func (r *Registry) RecordBaseline(strategy string) {
	r.BaselineAllocationsTotal.WithLabelValues(strategy).Inc()
}

// SetDefenderUtility records the latest defender expected utility for a strategy
func (r *Registry) SetDefenderUtility(strategy string, utility float64) {
	r.DefenderUtility.WithLabelValues(strategy).Set(utility)
}

// RecordComparison counts a finished comparison and the utility of each strategy in it.
func (r *Registry) RecordComparison(utilities map[string]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ComparisonsTotal.Inc()
	for strategy, u := range utilities {
		r.SetDefenderUtility(strategy, u)
	}
}

// UpdateSystemMetrics samples runtime statistics
func (r *Registry) UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
}

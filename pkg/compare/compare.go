// Package compare evaluates the equilibrium against every baseline on the
// same inputs.
package compare

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/stratagem/pkg/baseline"
	"github.com/dd0wney/stratagem/pkg/game"
	"github.com/dd0wney/stratagem/pkg/logging"
	"github.com/dd0wney/stratagem/pkg/metrics"
	"github.com/dd0wney/stratagem/pkg/solver"
)

// EquilibriumName labels the solver's entry in a report.
const EquilibriumName = "equilibrium"

// Entry is one strategy's scored solution.
type Entry struct {
	Strategy string         `json:"strategy"`
	Solution *game.Solution `json:"solution"`
}

// Report compares strategies on one topology and budget.
type Report struct {
	ID       string             `json:"id"`
	Nodes    int                `json:"nodes"`
	Budget   float64            `json:"budget"`
	Params   game.UtilityParams `json:"params"`
	Catalog  game.Catalog       `json:"catalog"`
	Entries  []Entry            `json:"entries"`
	Duration time.Duration      `json:"duration_ns"`

	topology *game.Topology
}

// Topology returns the topology the report was computed for.
func (r *Report) Topology() *game.Topology {
	return r.topology
}

// Entry returns the entry for strategy.
func (r *Report) Entry(strategy string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Strategy == strategy {
			return e, true
		}
	}
	return Entry{}, false
}

// Equilibrium returns the solver's solution.
func (r *Report) Equilibrium() *game.Solution {
	e, _ := r.Entry(EquilibriumName)
	return e.Solution
}

// Gap returns the equilibrium's defender utility minus strategy's. It is
// non-negative up to solver tolerance.
func (r *Report) Gap(strategy string) (float64, error) {
	e, ok := r.Entry(strategy)
	if !ok {
		return 0, fmt.Errorf("unknown strategy %q", strategy)
	}
	return r.Equilibrium().DefenderUtility - e.Solution.DefenderUtility, nil
}

// Ranking returns entries by defender utility, best first. Ties keep
// report order.
func (r *Report) Ranking() []Entry {
	ranked := append([]Entry(nil), r.Entries...)
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Solution.DefenderUtility > ranked[b].Solution.DefenderUtility
	})
	return ranked
}

// Comparer runs comparisons with a shared solver.
type Comparer struct {
	solver  *solver.Solver
	logger  logging.Logger
	metrics *metrics.Registry
}

// New creates a Comparer. The solver's logger and metrics are reused.
func New(s *solver.Solver) *Comparer {
	cfg := s.Config()
	return &Comparer{
		solver:  s,
		logger:  logging.OrNop(cfg.Logger).With(logging.Component("compare")),
		metrics: cfg.Metrics,
	}
}

// Compare solves the equilibrium and evaluates every baseline, all scored
// through game.Score.
func (c *Comparer) Compare(topo *game.Topology, catalog game.Catalog, budget float64, params game.UtilityParams) (*Report, error) {
	timer := logging.StartTimer(c.logger, "comparison complete", logging.Budget(budget), logging.Nodes(topo.Len()))

	eq, err := c.solver.Solve(topo, catalog, budget, params)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:       uuid.NewString(),
		Nodes:    topo.Len(),
		Budget:   budget,
		Params:   params,
		Catalog:  append(game.Catalog(nil), catalog...),
		Entries:  []Entry{{Strategy: EquilibriumName, Solution: eq}},
		topology: topo,
	}

	for _, s := range baseline.Strategies() {
		sol, err := s.Evaluate(topo, catalog, budget, params)
		if err != nil {
			return nil, err
		}
		if c.metrics != nil {
			c.metrics.RecordBaseline(s.Name)
		}
		report.Entries = append(report.Entries, Entry{Strategy: s.Name, Solution: sol})
	}
	report.Duration = timer.Elapsed()

	if c.metrics != nil {
		utilities := make(map[string]float64, len(report.Entries))
		for _, e := range report.Entries {
			utilities[e.Strategy] = e.Solution.DefenderUtility
		}
		c.metrics.RecordComparison(utilities)
	}
	timer.End(logging.String("report", report.ID), logging.Target(eq.Target), logging.Objective(eq.DefenderUtility))
	return report, nil
}

// Sweep runs Compare once per budget, in the given order. The first error
// stops the sweep.
func (c *Comparer) Sweep(topo *game.Topology, catalog game.Catalog, budgets []float64, params game.UtilityParams) ([]*Report, error) {
	reports := make([]*Report, 0, len(budgets))
	for _, b := range budgets {
		r, err := c.Compare(topo, catalog, b, params)
		if err != nil {
			return nil, fmt.Errorf("sweep at budget %g: %w", b, err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Compare runs a one-off comparison with solver s.
func Compare(s *solver.Solver, topo *game.Topology, catalog game.Catalog, budget float64, params game.UtilityParams) (*Report, error) {
	return New(s).Compare(topo, catalog, budget, params)
}

// Sweep runs a one-off budget sweep with solver s.
func Sweep(s *solver.Solver, topo *game.Topology, catalog game.Catalog, budgets []float64, params game.UtilityParams) ([]*Report, error) {
	return New(s).Sweep(topo, catalog, budgets, params)
}

// Budgets returns count evenly spaced budgets from lo to hi inclusive.
func Budgets(lo, hi float64, count int) []float64 {
	if count <= 1 {
		return []float64{lo}
	}
	out := make([]float64, count)
	step := (hi - lo) / float64(count-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[count-1] = hi
	return out
}

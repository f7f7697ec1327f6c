package solver

import (
	"fmt"
	"runtime"
	"time"

	"github.com/dd0wney/stratagem/pkg/game"
	"github.com/dd0wney/stratagem/pkg/logging"
	"github.com/dd0wney/stratagem/pkg/metrics"
	"github.com/dd0wney/stratagem/pkg/parallel"
	"github.com/dd0wney/stratagem/pkg/validation"
)

// Config controls the equilibrium solver.
type Config struct {
	// Workers bounds the per-target fan-out. Zero means runtime.NumCPU().
	Workers int
	// Tolerance is used for post-solve bound checks, attacker indifference
	// and objective ties.
	Tolerance float64
	// Logger defaults to a NopLogger.
	Logger logging.Logger
	// Metrics is optional.
	Metrics *metrics.Registry
}

// DefaultConfig returns a config using every CPU and game.Tolerance.
func DefaultConfig() Config {
	return Config{
		Workers:   runtime.NumCPU(),
		Tolerance: game.Tolerance,
		Logger:    logging.NewNopLogger(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validation.NewChecker("solver").
		NonNegative("workers", c.Workers).
		Check("workers", c.Workers <= parallel.MaxWorkers, "exceeds maximum worker count").
		PositiveFloat("tolerance", c.Tolerance).
		Check("tolerance", c.Tolerance < 1e-2, "must be below 0.01").
		Err()
}

// Solver computes Strong Stackelberg equilibria with one linear program per
// candidate attacker target. A Solver holds no per-solve state and is safe
// for concurrent use.
type Solver struct {
	cfg    Config
	logger logging.Logger
}

// New creates a solver. Zero Workers and Tolerance take their defaults.
func New(cfg Config) (*Solver, error) {
	cfg.Workers = validation.DefaultOr(cfg.Workers, runtime.NumCPU())
	cfg.Tolerance = validation.DefaultOr(cfg.Tolerance, game.Tolerance)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Logger = logging.OrNop(cfg.Logger)
	return &Solver{
		cfg:    cfg,
		logger: cfg.Logger.With(logging.Component("solver")),
	}, nil
}

// Config returns the effective configuration.
func (s *Solver) Config() Config {
	return s.cfg
}

// Result bundles the equilibrium with every per-target outcome, in
// topology order.
type Result struct {
	Solution *game.Solution
	Targets  []TargetResult
}

// Counts tallies per-target outcomes.
func (r *Result) Counts() (feasible, infeasible, notConverged int) {
	for _, t := range r.Targets {
		switch t.Status {
		case Feasible:
			feasible++
		case Infeasible:
			infeasible++
		default:
			notConverged++
		}
	}
	return feasible, infeasible, notConverged
}

// Solve returns the equilibrium solution.
func (s *Solver) Solve(topo *game.Topology, catalog game.Catalog, budget float64, params game.UtilityParams) (*game.Solution, error) {
	res, err := s.SolveAll(topo, catalog, budget, params)
	if err != nil {
		return nil, err
	}
	return res.Solution, nil
}

// SolveAll solves every per-target program, selects the feasible target
// with the highest defender utility (ties to the earlier target) and
// scores its allocation. Infeasible and non-converged targets are skipped;
// if none remain a *FailureError is returned. Invalid input is rejected
// before any program is built.
func (s *Solver) SolveAll(topo *game.Topology, catalog game.Catalog, budget float64, params game.UtilityParams) (*Result, error) {
	start := time.Now()

	if err := game.ValidateProblem(topo, catalog, budget, params); err != nil {
		s.record(metrics.StatusInvalid, topo.Len(), time.Since(start))
		return nil, err
	}

	n := topo.Len()
	results := make([]TargetResult, n)
	for t := range results {
		// Overwritten by the task; stays if the task never completes.
		results[t] = TargetResult{Target: topo.Node(t).ID, Index: t, Status: NotConverged, Err: ErrNotConverged}
	}
	err := parallel.ForEach(n, s.cfg.Workers, func(t int) {
		results[t] = SolveTarget(topo, catalog, budget, params, t, s.cfg.Tolerance)
	}, parallel.WithLogger(s.logger))
	if err != nil {
		s.record(metrics.StatusFailure, n, time.Since(start))
		return nil, fmt.Errorf("solver fan-out: %w", err)
	}

	best := -1
	for t := range results {
		r := &results[t]
		s.observeTarget(r)
		if r.Status != Feasible {
			continue
		}
		if best < 0 || r.Objective > results[best].Objective+game.ScaledTolerance(s.cfg.Tolerance, results[best].Objective) {
			best = t
		}
	}

	res := &Result{Targets: results}
	if best < 0 {
		_, infeasible, notConverged := res.Counts()
		ferr := &FailureError{Targets: n, Infeasible: infeasible, NotConverged: notConverged}
		s.logger.Error("equilibrium solve failed",
			logging.Nodes(n), logging.Budget(budget), logging.Error(ferr))
		s.record(metrics.StatusFailure, n, time.Since(start))
		return nil, ferr
	}

	sol, err := game.Score(topo, catalog, results[best].Allocation, params)
	if err != nil {
		s.record(metrics.StatusFailure, n, time.Since(start))
		return nil, fmt.Errorf("%w: scoring winning allocation: %v", ErrSolverFailure, err)
	}
	res.Solution = sol

	feasible, infeasible, notConverged := res.Counts()
	s.logger.Info("equilibrium solved",
		logging.Target(sol.Target),
		logging.Objective(sol.DefenderUtility),
		logging.Budget(budget),
		logging.Nodes(n),
		logging.Int("feasible", feasible),
		logging.Int("infeasible", infeasible),
		logging.Int("not_converged", notConverged),
		logging.Latency(time.Since(start)),
	)
	s.record(metrics.StatusSuccess, n, time.Since(start))
	return res, nil
}

func (s *Solver) observeTarget(r *TargetResult) {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordTargetLP(r.Status.String(), r.Duration)
	}
	switch r.Status {
	case Feasible:
		s.logger.Debug("target lp solved",
			logging.Target(r.Target), logging.Outcome(r.Status.String()),
			logging.Objective(r.Objective), logging.Latency(r.Duration))
	case Infeasible:
		s.logger.Debug("target lp infeasible",
			logging.Target(r.Target), logging.Outcome(r.Status.String()))
	default:
		s.logger.Warn("target lp did not converge",
			logging.Target(r.Target), logging.Outcome(r.Status.String()), logging.Error(r.Err))
	}
}

func (s *Solver) record(status string, nodes int, d time.Duration) {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordSolve(status, nodes, d)
	}
}

// Solve runs a solver with DefaultConfig.
func Solve(topo *game.Topology, catalog game.Catalog, budget float64, params game.UtilityParams) (*game.Solution, error) {
	s, err := New(DefaultConfig())
	if err != nil {
		return nil, err
	}
	return s.Solve(topo, catalog, budget, params)
}

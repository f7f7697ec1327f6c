package solver

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/dd0wney/stratagem/pkg/game"
)

// simplexTol is the optimality tolerance handed to the simplex routine.
const simplexTol = 1e-10

// Status is the outcome of one per-target program.
type Status int

const (
	Feasible Status = iota
	Infeasible
	NotConverged
)

func (s Status) String() string {
	switch s {
	case Feasible:
		return "feasible"
	case Infeasible:
		return "infeasible"
	case NotConverged:
		return "not_converged"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// TargetResult is the outcome of solving the program for one target.
// Allocation and Objective are set only when Status is Feasible.
type TargetResult struct {
	Target     string
	Index      int
	Status     Status
	Objective  float64 // defender expected utility at Target
	Allocation *game.Allocation
	Duration   time.Duration
	Err        error
}

// SolveTarget builds and solves the program for target index t and checks
// the result: the allocation is normalized, must satisfy every allocation
// invariant within tol, and t must be an attacker best response under it.
// A result failing those checks, or a panic inside the LP routine, is
// reported as NotConverged.
func SolveTarget(topo *game.Topology, catalog game.Catalog, budget float64, params game.UtilityParams, t int, tol float64) (res TargetResult) {
	start := time.Now()
	res = TargetResult{Target: topo.Node(t).ID, Index: t}
	defer func() {
		if r := recover(); r != nil {
			res.Status = NotConverged
			res.Allocation = nil
			res.Err = fmt.Errorf("%w: panic: %v", ErrNotConverged, r)
		}
		res.Duration = time.Since(start)
	}()

	prog := BuildProgram(topo, catalog, budget, params, t)
	_, x, err := lp.Simplex(prog.C, prog.A, prog.B, simplexTol, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			res.Status = Infeasible
			res.Err = err
			return res
		}
		res.Status = NotConverged
		res.Err = fmt.Errorf("%w: %v", ErrNotConverged, err)
		return res
	}

	alloc := prog.Allocation(topo, x)
	if err := checkTarget(topo, catalog, budget, params, alloc, t, tol); err != nil {
		res.Status = NotConverged
		res.Err = fmt.Errorf("%w: %v", ErrNotConverged, err)
		return res
	}

	// Recomputed from the normalized allocation so the objective and the
	// scored solution agree exactly.
	p := alloc.Detection(t, catalog)
	res.Status = Feasible
	res.Objective = params.Payoffs(topo.Node(t).Value).Defender(p)
	res.Allocation = alloc
	return res
}

// checkTarget normalizes alloc in place and verifies bounds, budget and
// the attacker-incentive condition for target t.
func checkTarget(topo *game.Topology, catalog game.Catalog, budget float64, params game.UtilityParams, alloc *game.Allocation, t int, tol float64) error {
	if err := alloc.Normalize(tol); err != nil {
		return err
	}
	if err := alloc.CheckFeasible(catalog, budget, tol); err != nil {
		return err
	}

	best := math.Inf(-1)
	var atTarget float64
	for i := 0; i < topo.Len(); i++ {
		eu := params.Payoffs(topo.Node(i).Value).Attacker(alloc.Detection(i, catalog))
		if eu > best {
			best = eu
		}
		if i == t {
			atTarget = eu
		}
	}
	if atTarget < best-game.ScaledTolerance(tol, best) {
		return fmt.Errorf("target %s is not a best response: attacker utility %g, best %g",
			topo.Node(t).ID, atTarget, best)
	}
	return nil
}

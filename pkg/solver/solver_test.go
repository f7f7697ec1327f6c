package solver

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/stratagem/pkg/game"
	"github.com/dd0wney/stratagem/pkg/logging"
	"github.com/dd0wney/stratagem/pkg/metrics"
	"github.com/dd0wney/stratagem/pkg/validation"
)

func twoNode() (*game.Topology, game.Catalog) {
	topo := game.NewTopology(
		game.Node{ID: "A", Value: 10, EntryPoint: true},
		game.Node{ID: "B", Value: 1},
	)
	return topo, game.Catalog{{Kind: game.Honeypot, Detection: 0.8, Cost: 1}}
}

func enterprise() *game.Topology {
	return game.NewTopology(
		game.Node{ID: "web", Value: 2, EntryPoint: true},
		game.Node{ID: "mail", Value: 3, EntryPoint: true},
		game.Node{ID: "app", Value: 5},
		game.Node{ID: "ad", Value: 9},
		game.Node{ID: "db", Value: 8},
	)
}

func counterValue(t *testing.T, vec *prometheus.CounterVec, label string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, vec.WithLabelValues(label).Write(&m))
	return m.Counter.GetValue()
}

func newTestSolver(t *testing.T, cfg Config) *Solver {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func TestBuildProgram_Shape(t *testing.T) {
	topo := game.NewTopology(
		game.Node{ID: "a", Value: 4},
		game.Node{ID: "b", Value: 6},
		game.Node{ID: "c", Value: 1},
	)
	cat := game.DefaultCatalog()
	p := BuildProgram(topo, cat, 2.5, game.DefaultUtilityParams(), 1)

	rows, cols := p.Dims()
	assert.Equal(t, 6, rows) // 3 coverage + budget + 2 best-response
	assert.Equal(t, 15, cols)
	assert.Equal(t, 9, p.Structural())
	assert.Equal(t, []float64{1, 1, 1, 2.5, 6 - 4, 6 - 1}, p.B)

	// Slack identity after the structural columns.
	for r := 0; r < rows; r++ {
		for c := 9; c < cols; c++ {
			want := 0.0
			if c-9 == r {
				want = 1
			}
			assert.Equal(t, want, p.A.At(r, c), "A[%d,%d]", r, c)
		}
	}

	// Budget row carries costs.
	assert.Equal(t, 3.0, p.A.At(3, 0))
	assert.Equal(t, 1.5, p.A.At(3, 4))
	assert.Equal(t, 1.0, p.A.At(3, 8))

	// First best-response row compares node a against target b:
	// d·Δa(a) on a's columns, −d·Δa(b) on b's columns.
	assert.InDelta(t, 0.85*-8, p.A.At(4, 0), 1e-12)
	assert.InDelta(t, -0.85*-12, p.A.At(4, 3), 1e-12)
	assert.Equal(t, 0.0, p.A.At(4, 6))

	// Objective only touches the target's columns.
	assert.Equal(t, []float64{0, 0, 0}, p.C[0:3])
	assert.InDelta(t, -0.85*12, p.C[3], 1e-12)
	assert.InDelta(t, -0.70*12, p.C[4], 1e-12)
	assert.InDelta(t, -0.50*12, p.C[5], 1e-12)
	assert.InDelta(t, -6.0, p.DefenderUtility(0), 1e-12)
}

func TestSolve_TwoNodeScenario(t *testing.T) {
	topo, cat := twoNode()
	sol, err := Solve(topo, cat, 1, game.DefaultUtilityParams())
	require.NoError(t, err)

	// Making A the target pushes coverage on A until the attacker is
	// indifferent: 17.6·x_A = 10.6 with x_A + x_B = 1.
	xA := sol.Allocation.Get(0, game.Honeypot)
	xB := sol.Allocation.Get(1, game.Honeypot)
	assert.InDelta(t, 53.0/88.0, xA, 1e-6)
	assert.InDelta(t, 35.0/88.0, xB, 1e-6)
	assert.InDelta(t, -4.0/11.0, sol.DefenderUtility, 1e-6)
	assert.InDelta(t, 1.0, sol.Spend, 1e-6)

	a, _ := sol.Node("A")
	b, _ := sol.Node("B")
	assert.InDelta(t, a.AttackerExpected, b.AttackerExpected, 1e-6, "attacker should be indifferent")
	assert.ElementsMatch(t, []string{"A", "B"}, game.BestResponseSet(sol.Breakdown, 1e-6))

	// Both nodes give the defender the same utility, so the smaller ID wins.
	assert.Equal(t, "A", sol.Target)
	assert.InDelta(t, a.DefenderExpected, b.DefenderExpected, 1e-6)
}

func TestSolve_LargeValuesKeepTarget(t *testing.T) {
	// The two-node scenario scaled by 10^5: same coverage, utilities scale.
	topo := game.NewTopology(
		game.Node{ID: "A", Value: 1e6, EntryPoint: true},
		game.Node{ID: "B", Value: 1e5},
	)
	_, cat := twoNode()
	s := newTestSolver(t, Config{Workers: 2})

	res, err := s.SolveAll(topo, cat, 1, game.DefaultUtilityParams())
	require.NoError(t, err)
	sol := res.Solution

	assert.InDelta(t, 53.0/88.0, sol.Allocation.Get(0, game.Honeypot), 1e-6)
	assert.InDelta(t, -4e5/11.0, sol.DefenderUtility, 1e-2)

	// The target the LP selected must survive rescoring.
	assert.Equal(t, "A", sol.Target)
	assert.Equal(t, Feasible, res.Targets[0].Status)
	assert.Contains(t, game.BestResponseSet(sol.Breakdown, game.Tolerance), res.Targets[0].Target)
	assert.Equal(t, sol.TargetIndex, game.BestResponse(sol.Breakdown, game.Tolerance))
}

func TestSolve_ZeroBudget(t *testing.T) {
	topo := game.NewTopology(
		game.Node{ID: "n1", Value: 5},
		game.Node{ID: "n2", Value: 8},
		game.Node{ID: "n3", Value: 2},
	)
	s := newTestSolver(t, Config{Workers: 2})
	res, err := s.SolveAll(topo, game.DefaultCatalog(), 0, game.DefaultUtilityParams())
	require.NoError(t, err)

	sol := res.Solution
	assert.Equal(t, "n2", sol.Target)
	assert.InDelta(t, -8.0, sol.DefenderUtility, 1e-9)
	assert.InDelta(t, 0.0, sol.Spend, 1e-9)
	for i := 0; i < topo.Len(); i++ {
		assert.InDelta(t, 0.0, sol.Allocation.NodeCoverage(i).Sum(), 1e-9, "node %d covered", i)
	}

	feasible, infeasible, notConverged := res.Counts()
	assert.Equal(t, 1, feasible)
	assert.Equal(t, 2, infeasible)
	assert.Equal(t, 0, notConverged)
	assert.Equal(t, Infeasible, res.Targets[0].Status)
	assert.Equal(t, Feasible, res.Targets[1].Status)
}

func TestSolve_SingleNode(t *testing.T) {
	topo := game.NewTopology(game.Node{ID: "db", Value: 10})
	sol, err := Solve(topo, game.DefaultCatalog(), 3, game.DefaultUtilityParams())
	require.NoError(t, err)

	assert.Equal(t, "db", sol.Target)
	assert.InDelta(t, 1.0, sol.Allocation.Get(0, game.Honeypot), 1e-6)
	assert.InDelta(t, 0.85, sol.Breakdown[0].Detection, 1e-6)
	assert.InDelta(t, 7.0, sol.DefenderUtility, 1e-6)
}

func TestSolve_InvariantsHold(t *testing.T) {
	topo := enterprise()
	cat := game.DefaultCatalog()
	for _, budget := range []float64{0.5, 2, 4.5, 9, 30} {
		sol, err := Solve(topo, cat, budget, game.DefaultUtilityParams())
		require.NoError(t, err, "budget %v", budget)

		assert.NoError(t, sol.Allocation.CheckFeasible(cat, budget, 1e-6), "budget %v", budget)
		target, ok := sol.Node(sol.Target)
		require.True(t, ok)
		for _, b := range sol.Breakdown {
			assert.GreaterOrEqual(t, target.AttackerExpected, b.AttackerExpected-1e-6,
				"budget %v: %s preferred over target %s", budget, b.NodeID, sol.Target)
		}
	}
}

func TestSolve_InvalidInput(t *testing.T) {
	topo, cat := twoNode()
	reg := metrics.NewRegistry()
	s := newTestSolver(t, Config{Metrics: reg})

	tests := []struct {
		name      string
		topo      *game.Topology
		catalog   game.Catalog
		budget    float64
		wantField string
	}{
		{"negative budget", topo, cat, -1, "budget"},
		{"empty topology", game.NewTopology(), cat, 1, "nodes"},
		{"empty catalog", topo, game.Catalog{}, 1, "catalog"},
		{"negative value", game.NewTopology(game.Node{ID: "x", Value: -1}), cat, 1, "nodes[0].value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Solve(tt.topo, tt.catalog, tt.budget, game.DefaultUtilityParams())
			require.Error(t, err)
			assert.ErrorIs(t, err, game.ErrInvalidInput)
			assert.NotErrorIs(t, err, ErrSolverFailure)
			field, _ := validation.FieldOf(err)
			assert.Equal(t, tt.wantField, field)
		})
	}

	assert.Equal(t, float64(len(tests)), counterValue(t, reg.SolvesTotal, metrics.StatusInvalid))
}

func TestSolveTarget(t *testing.T) {
	topo, cat := twoNode()
	params := game.DefaultUtilityParams()

	ok := SolveTarget(topo, cat, 0, params, 0, game.Tolerance)
	assert.Equal(t, Feasible, ok.Status)
	assert.Equal(t, "A", ok.Target)
	assert.InDelta(t, -10.0, ok.Objective, 1e-9)
	assert.NoError(t, ok.Err)

	// With no budget nothing can make B more attractive than A.
	bad := SolveTarget(topo, cat, 0, params, 1, game.Tolerance)
	assert.Equal(t, Infeasible, bad.Status)
	assert.Nil(t, bad.Allocation)
	assert.Error(t, bad.Err)
}

func TestSolveTarget_PanicIsContained(t *testing.T) {
	topo, _ := twoNode()
	// A catalog entry with an invalid kind makes Allocation.Set index out of range.
	broken := game.Catalog{{Kind: game.ResourceKind(42), Detection: 0.5, Cost: 1}}

	res := SolveTarget(topo, broken, 1, game.DefaultUtilityParams(), 0, game.Tolerance)
	assert.Equal(t, NotConverged, res.Status)
	assert.ErrorIs(t, res.Err, ErrNotConverged)
	assert.Nil(t, res.Allocation)
}

func TestSolveAll_LogsAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	reg := metrics.NewRegistry()
	s := newTestSolver(t, Config{
		Workers: 4,
		Logger:  logging.NewJSONLogger(&buf, logging.DebugLevel),
		Metrics: reg,
	})

	topo := enterprise()
	res, err := s.SolveAll(topo, game.DefaultCatalog(), 4, game.DefaultUtilityParams())
	require.NoError(t, err)
	require.Len(t, res.Targets, topo.Len())

	for i, tr := range res.Targets {
		assert.Equal(t, i, tr.Index)
		assert.Equal(t, topo.Node(i).ID, tr.Target)
	}

	feasible, infeasible, notConverged := res.Counts()
	assert.Equal(t, topo.Len(), feasible+infeasible+notConverged)
	assert.Equal(t, float64(feasible), counterValue(t, reg.TargetLPsTotal, "feasible"))
	assert.Equal(t, float64(infeasible), counterValue(t, reg.TargetLPsTotal, "infeasible"))
	assert.Equal(t, 1.0, counterValue(t, reg.SolvesTotal, metrics.StatusSuccess))

	var infoLines, targetLines int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		switch {
		case strings.Contains(line, `"msg":"equilibrium solved"`):
			infoLines++
			assert.Contains(t, line, `"component":"solver"`)
			assert.Contains(t, line, `"target":"`+res.Solution.Target+`"`)
		case strings.Contains(line, `"msg":"target lp`):
			targetLines++
			assert.Contains(t, line, `"level":"DEBUG"`)
		}
	}
	assert.Equal(t, 1, infoLines)
	assert.Equal(t, topo.Len(), targetLines)
}

func TestSolve_DeterministicAcrossWorkers(t *testing.T) {
	topo := enterprise()
	cat := game.DefaultCatalog()
	params := game.UtilityParams{Alpha: 1.5, Beta: 0.5}

	var first *game.Solution
	for _, workers := range []int{1, 3, 16} {
		s := newTestSolver(t, Config{Workers: workers})
		sol, err := s.Solve(topo, cat, 3.7, params)
		require.NoError(t, err)
		if first == nil {
			first = sol
			continue
		}
		assert.Equal(t, first.Target, sol.Target, "workers=%d", workers)
		assert.Equal(t, first.DefenderUtility, sol.DefenderUtility, "workers=%d", workers)
		for i := 0; i < topo.Len(); i++ {
			assert.Equal(t, first.Allocation.NodeCoverage(i), sol.Allocation.NodeCoverage(i))
		}
	}
}

func TestConfig(t *testing.T) {
	def := DefaultConfig()
	assert.NoError(t, def.Validate())
	assert.Equal(t, game.Tolerance, def.Tolerance)
	assert.Greater(t, def.Workers, 0)

	s := newTestSolver(t, Config{})
	assert.Equal(t, game.Tolerance, s.Config().Tolerance)
	assert.Greater(t, s.Config().Workers, 0)
	assert.NotNil(t, s.Config().Logger)

	_, err := New(Config{Workers: -1})
	assert.ErrorIs(t, err, validation.ErrInvalid)
	field, _ := validation.FieldOf(err)
	assert.Equal(t, "solver.workers", field)

	_, err = New(Config{Tolerance: 0.5})
	field, _ = validation.FieldOf(err)
	assert.Equal(t, "solver.tolerance", field)
}

func TestFailureError(t *testing.T) {
	err := error(&FailureError{Targets: 3, Infeasible: 2, NotConverged: 1})
	assert.True(t, errors.Is(err, ErrSolverFailure))
	assert.False(t, errors.Is(err, game.ErrInvalidInput))
	assert.Equal(t, "solver failure: all 3 targets failed (2 infeasible, 1 not converged)", err.Error())

	var fe *FailureError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 1, fe.NotConverged)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "feasible", Feasible.String())
	assert.Equal(t, "infeasible", Infeasible.String())
	assert.Equal(t, "not_converged", NotConverged.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}

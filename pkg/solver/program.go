package solver

import (
	"gonum.org/v1/gonum/mat"

	"github.com/dd0wney/stratagem/pkg/game"
)

// Program is the standard-form linear program for one candidate target t:
//
//	minimize c·x  subject to  A x = b,  x ≥ 0
//
// Columns [0, N·K) are coverage variables, column i·K+k being node i under
// the k-th catalog entry. Each inequality row owns one trailing slack column.
// Rows are ordered: N coverage rows (Σ_k x(i,k) ≤ 1), the budget row, then
// N-1 best-response rows requiring EU_a(t) ≥ EU_a(i) for every i ≠ t.
type Program struct {
	Target int
	C      []float64
	A      *mat.Dense
	B      []float64

	nodes   int
	catalog game.Catalog
	// constant is U_d^u(t); the LP optimum omits it.
	constant float64
}

// BuildProgram constructs the program for target index t. Inputs must
// already be validated.
func BuildProgram(topo *game.Topology, catalog game.Catalog, budget float64, params game.UtilityParams, t int) *Program {
	n := topo.Len()
	k := len(catalog)
	structural := n * k
	rows := n + 1 + (n - 1)
	cols := structural + rows

	idx := func(node, kind int) int { return node*k + kind }

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)

	payoffs := make([]game.Payoffs, n)
	for i := 0; i < n; i++ {
		payoffs[i] = params.Payoffs(topo.Node(i).Value)
	}

	// Coverage rows: Σ_k x(i,k) + s_i = 1.
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			a.Set(i, idx(i, j), 1)
		}
		b[i] = 1
	}

	// Budget row: Σ cost_k·x(i,k) + s = budget.
	budgetRow := n
	for i := 0; i < n; i++ {
		for j, r := range catalog {
			a.Set(budgetRow, idx(i, j), r.Cost)
		}
	}
	b[budgetRow] = budget

	// Best-response rows:
	//   Σ_k d_k·Δa(i)·x(i,k) − Σ_k d_k·Δa(t)·x(t,k) + s = U_a^u(t) − U_a^u(i)
	row := n + 1
	for i := 0; i < n; i++ {
		if i == t {
			continue
		}
		for j, r := range catalog {
			a.Set(row, idx(i, j), r.Detection*payoffs[i].AttackerLoss())
			a.Set(row, idx(t, j), -r.Detection*payoffs[t].AttackerLoss())
		}
		b[row] = payoffs[t].AttackerUncovered - payoffs[i].AttackerUncovered
		row++
	}

	for r := 0; r < rows; r++ {
		a.Set(r, structural+r, 1)
	}

	// Maximizing p(t)·Δd(t) is minimizing its negation.
	for j, r := range catalog {
		c[idx(t, j)] = -r.Detection * payoffs[t].DefenderGain()
	}

	return &Program{
		Target:   t,
		C:        c,
		A:        a,
		B:        b,
		nodes:    n,
		catalog:  catalog,
		constant: payoffs[t].DefenderUncovered,
	}
}

// Dims returns the number of rows and columns of A.
func (p *Program) Dims() (rows, cols int) {
	return p.A.Dims()
}

// Structural returns the number of coverage variables.
func (p *Program) Structural() int {
	return p.nodes * len(p.catalog)
}

// DefenderUtility converts an LP optimum back to the defender's expected
// utility at the target.
func (p *Program) DefenderUtility(optF float64) float64 {
	return -optF + p.constant
}

// Allocation maps an LP solution vector onto topo's nodes. Slack columns
// are ignored.
func (p *Program) Allocation(topo *game.Topology, x []float64) *game.Allocation {
	alloc := game.NewAllocation(topo)
	k := len(p.catalog)
	for i := 0; i < p.nodes; i++ {
		for j, r := range p.catalog {
			alloc.Set(i, r.Kind, x[i*k+j])
		}
	}
	return alloc
}

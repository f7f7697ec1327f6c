package game

import (
	"encoding/json"
	"fmt"
	"math"
)

// Coverage holds one marginal deployment probability per resource kind.
type Coverage [NumKinds]float64

// Sum returns Σ_kind x, which must not exceed 1.
func (c Coverage) Sum() float64 {
	var s float64
	for _, x := range c {
		s += x
	}
	return s
}

// IsZero reports whether no kind has positive coverage.
func (c Coverage) IsZero() bool {
	for _, x := range c {
		if x != 0 {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the non-zero entries as {"kind": probability}.
func (c Coverage) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, NumKinds)
	for k, x := range c {
		if x != 0 {
			m[kindNames[k]] = x
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes the object form written by MarshalJSON.
func (c *Coverage) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*c = Coverage{}
	for name, x := range m {
		k, err := ParseResourceKind(name)
		if err != nil {
			return err
		}
		c[k] = x
	}
	return nil
}

// Allocation is a defender mixed strategy expressed as marginal coverage:
// one Coverage per node, in topology order.
type Allocation struct {
	ids []string
	cov []Coverage
}

// NewAllocation returns the all-zero allocation over topo's nodes.
func NewAllocation(topo *Topology) *Allocation {
	return &Allocation{
		ids: topo.IDs(),
		cov: make([]Coverage, topo.Len()),
	}
}

// Len returns the number of nodes.
func (a *Allocation) Len() int {
	return len(a.ids)
}

// NodeID returns the ID of the i-th node.
func (a *Allocation) NodeID(i int) string {
	return a.ids[i]
}

// Matches reports whether the allocation was built for topo.
func (a *Allocation) Matches(topo *Topology) bool {
	if a.Len() != topo.Len() {
		return false
	}
	for i, id := range a.ids {
		if topo.Node(i).ID != id {
			return false
		}
	}
	return true
}

// Set assigns x(i, kind).
func (a *Allocation) Set(i int, kind ResourceKind, x float64) {
	a.cov[i][kind] = x
}

// Add increases x(i, kind) by dx.
func (a *Allocation) Add(i int, kind ResourceKind, dx float64) {
	a.cov[i][kind] += dx
}

// Get returns x(i, kind).
func (a *Allocation) Get(i int, kind ResourceKind) float64 {
	return a.cov[i][kind]
}

// NodeCoverage returns the coverage vector of the i-th node.
func (a *Allocation) NodeCoverage(i int) Coverage {
	return a.cov[i]
}

// Detection returns p(i) = Σ_kind d(kind)·x(i, kind), clamped to [0, 1].
// Kinds absent from the catalog contribute nothing.
func (a *Allocation) Detection(i int, catalog Catalog) float64 {
	var p float64
	for _, r := range catalog {
		p += r.Detection * a.cov[i][r.Kind]
	}
	return clamp01(p)
}

// Spend returns Σ x(node, kind)·cost(kind).
func (a *Allocation) Spend(catalog Catalog) float64 {
	var s float64
	for _, c := range a.cov {
		for _, r := range catalog {
			s += r.Cost * c[r.Kind]
		}
	}
	return s
}

// Clone returns a deep copy.
func (a *Allocation) Clone() *Allocation {
	return &Allocation{
		ids: append([]string(nil), a.ids...),
		cov: append([]Coverage(nil), a.cov...),
	}
}

// CheckFeasible verifies every invariant of a defender strategy within tol:
// each x in [0, 1], each node's coverage sum at most 1, no coverage on
// kinds outside the catalog, and total spend within budget.
func (a *Allocation) CheckFeasible(catalog Catalog, budget, tol float64) error {
	for i, c := range a.cov {
		for k, x := range c {
			kind := ResourceKind(k)
			if x != 0 && !catalog.Contains(kind) {
				return NewError("check").Node(a.ids[i]).Kind(kind).Value(x).Cause(ErrUnknownKind).Err()
			}
			if math.IsNaN(x) || x < -tol || x > 1+tol {
				return NewError("check").Node(a.ids[i]).Kind(kind).Value(x).Cause(ErrOutOfBounds).Err()
			}
		}
		if s := c.Sum(); s > 1+tol {
			return NewError("check").Node(a.ids[i]).Value(s).Cause(ErrOutOfBounds).Err()
		}
	}
	if s := a.Spend(catalog); s > budget+tol {
		return NewError("check").Value(s).Cause(ErrOverBudget).Err()
	}
	return nil
}

// Normalize removes solver slack: values within tol outside [0, 1] are
// clamped and a node whose sum exceeds 1 by at most tol is rescaled to
// sum to exactly 1. Violations larger than tol are returned unchanged as
// ErrOutOfBounds.
func (a *Allocation) Normalize(tol float64) error {
	for i := range a.cov {
		c := &a.cov[i]
		for k, x := range c {
			if math.IsNaN(x) || x < -tol || x > 1+tol {
				return NewError("normalize").Node(a.ids[i]).Kind(ResourceKind(k)).Value(x).Cause(ErrOutOfBounds).Err()
			}
			c[k] = clamp01(x)
		}
		s := c.Sum()
		if s > 1+tol {
			return NewError("normalize").Node(a.ids[i]).Value(s).Cause(ErrOutOfBounds).Err()
		}
		if s > 1 {
			for k := range c {
				c[k] /= s
			}
		}
	}
	return nil
}

type allocationEntry struct {
	Node     string   `json:"node"`
	Coverage Coverage `json:"coverage"`
}

// MarshalJSON encodes the allocation as an ordered list of node entries.
func (a *Allocation) MarshalJSON() ([]byte, error) {
	entries := make([]allocationEntry, len(a.ids))
	for i, id := range a.ids {
		entries[i] = allocationEntry{Node: id, Coverage: a.cov[i]}
	}
	return json.Marshal(entries)
}

// String renders non-zero coverage for debugging.
func (a *Allocation) String() string {
	s := "Allocation{"
	first := true
	for i, c := range a.cov {
		if c.IsZero() {
			continue
		}
		if !first {
			s += " "
		}
		first = false
		s += fmt.Sprintf("%s:%v", a.ids[i], [NumKinds]float64(c))
	}
	return s + "}"
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

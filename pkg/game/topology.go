package game

import (
	"fmt"

	"github.com/dd0wney/stratagem/pkg/validation"
)

// Node is a network host the attacker may target.
type Node struct {
	ID         string  `json:"id" yaml:"id" validate:"required"`
	Value      float64 `json:"value" yaml:"value" validate:"gte=0"`
	EntryPoint bool    `json:"entry_point" yaml:"entry_point"`
	// Centrality is a precomputed structural score, used only by the
	// centrality-first baseline.
	Centrality float64 `json:"centrality" yaml:"centrality" validate:"gte=0"`
}

// Topology is an ordered, immutable collection of nodes. Order matters:
// allocations index nodes by position and solver ties go to earlier nodes.
type Topology struct {
	nodes []Node
	index map[string]int
}

// NewTopology copies nodes into a Topology. Duplicate IDs are kept and
// reported by Validate.
func NewTopology(nodes ...Node) *Topology {
	t := &Topology{
		nodes: append([]Node(nil), nodes...),
		index: make(map[string]int, len(nodes)),
	}
	for i, n := range t.nodes {
		if _, dup := t.index[n.ID]; !dup {
			t.index[n.ID] = i
		}
	}
	return t
}

// Len returns the number of nodes.
func (t *Topology) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Node returns the i-th node.
func (t *Topology) Node(i int) Node {
	return t.nodes[i]
}

// Nodes returns a copy of the nodes in order.
func (t *Topology) Nodes() []Node {
	return append([]Node(nil), t.nodes...)
}

// Index returns the position of the node with the given ID.
func (t *Topology) Index(id string) (int, bool) {
	i, ok := t.index[id]
	return i, ok
}

// IDs returns node IDs in topology order.
func (t *Topology) IDs() []string {
	ids := make([]string, len(t.nodes))
	for i, n := range t.nodes {
		ids[i] = n.ID
	}
	return ids
}

// Validate checks the topology is non-empty, node fields are in range and
// IDs are unique.
func (t *Topology) Validate() error {
	check := validation.NewChecker("")
	check.NotEmpty("nodes", t.Len())
	if t == nil {
		return check.Err()
	}

	for i, n := range t.nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		check.Custom(field, func() error { return validation.Struct(field, n) })
		check.Finite(field+".value", n.Value)
		check.Check(field+".id", t.index[n.ID] == i, fmt.Sprintf("duplicate node id %q", n.ID))
	}
	return check.Err()
}

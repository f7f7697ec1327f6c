// Package scenario loads defender scenarios (topology, resource catalog,
// budget and utility multipliers) from YAML and turns them into solver
// inputs.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/stratagem/pkg/game"
	"github.com/dd0wney/stratagem/pkg/validation"
)

// ErrParse is returned when a scenario document is not well-formed YAML or
// does not match the scenario schema.
var ErrParse = errors.New("scenario parse error")

// Scenario is the on-disk description of one defender problem. Alpha and
// Beta default to 1 when absent.
type Scenario struct {
	Name      string         `yaml:"name"`
	Budget    float64        `yaml:"budget" validate:"gte=0"`
	Alpha     *float64       `yaml:"alpha,omitempty" validate:"omitempty,gt=0"`
	Beta      *float64       `yaml:"beta,omitempty" validate:"omitempty,gt=0"`
	Resources []ResourceSpec `yaml:"catalog,omitempty" validate:"dive"`
	Nodes     []NodeSpec     `yaml:"nodes" validate:"min=1,dive"`
	Edges     []EdgeSpec     `yaml:"edges,omitempty" validate:"dive"`
}

// ResourceSpec is one catalog entry. Kind is a pointer so a missing key is
// an error rather than the zero kind.
type ResourceSpec struct {
	Kind      *game.ResourceKind `yaml:"kind" validate:"required"`
	Detection float64            `yaml:"detection" validate:"gt=0,lte=1"`
	Cost      float64            `yaml:"cost" validate:"gt=0"`
}

// NodeSpec describes one host.
type NodeSpec struct {
	ID         string  `yaml:"id" validate:"required"`
	Type       string  `yaml:"type,omitempty"`
	Value      float64 `yaml:"value" validate:"gte=0"`
	EntryPoint bool    `yaml:"entry_point,omitempty"`
	// Centrality overrides the degree centrality computed from edges.
	Centrality *float64 `yaml:"centrality,omitempty" validate:"omitempty,gte=0"`
}

// EdgeSpec is an undirected link between two hosts.
type EdgeSpec struct {
	Src     string `yaml:"src" validate:"required"`
	Dst     string `yaml:"dst" validate:"required"`
	Segment string `yaml:"segment,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scenario document. Unknown keys are
// rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrParse)
		}
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks struct tags, then cross-field rules: unique node IDs,
// known edge endpoints, a well-formed catalog and finite numbers.
func (s *Scenario) Validate() error {
	if err := validation.Struct("", s); err != nil {
		return err
	}

	check := validation.NewChecker("")
	check.Finite("budget", s.Budget)
	check.When(s.Alpha != nil, func(c *validation.Checker) { c.PositiveFloat("alpha", *s.Alpha) })
	check.When(s.Beta != nil, func(c *validation.Checker) { c.PositiveFloat("beta", *s.Beta) })

	seen := make(map[string]int, len(s.Nodes))
	for i, n := range s.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		check.Finite(field+".value", n.Value)
		if n.Centrality != nil {
			check.Finite(field+".centrality", *n.Centrality)
		}
		if first, dup := seen[n.ID]; dup {
			check.Check(field+".id", false, fmt.Sprintf("duplicate node id %q (first at nodes[%d])", n.ID, first))
			continue
		}
		seen[n.ID] = i
	}

	for i, e := range s.Edges {
		field := fmt.Sprintf("edges[%d]", i)
		_, ok := seen[e.Src]
		check.Check(field+".src", ok, fmt.Sprintf("unknown node %q", e.Src))
		_, ok = seen[e.Dst]
		check.Check(field+".dst", ok, fmt.Sprintf("unknown node %q", e.Dst))
	}

	check.When(len(s.Resources) > 0, func(c *validation.Checker) { c.Add(s.catalog().Validate()) })
	return check.Err()
}

// Topology builds the solver topology. Nodes keep file order; centrality
// is the explicit value when given, otherwise degree centrality.
func (s *Scenario) Topology() *game.Topology {
	degree := DegreeCentrality(s.Nodes, s.Edges)
	nodes := make([]game.Node, len(s.Nodes))
	for i, n := range s.Nodes {
		centrality := degree[n.ID]
		if n.Centrality != nil {
			centrality = *n.Centrality
		}
		nodes[i] = game.Node{
			ID:         n.ID,
			Value:      n.Value,
			EntryPoint: n.EntryPoint,
			Centrality: centrality,
		}
	}
	return game.NewTopology(nodes...)
}

// Catalog returns the scenario catalog, or the default catalog when the
// file names none.
func (s *Scenario) Catalog() game.Catalog {
	if len(s.Resources) == 0 {
		return game.DefaultCatalog()
	}
	return s.catalog()
}

func (s *Scenario) catalog() game.Catalog {
	c := make(game.Catalog, len(s.Resources))
	for i, r := range s.Resources {
		c[i] = game.Resource{Detection: r.Detection, Cost: r.Cost}
		if r.Kind != nil {
			c[i].Kind = *r.Kind
		}
	}
	return c
}

// Params returns the utility multipliers with absent values defaulted.
func (s *Scenario) Params() game.UtilityParams {
	p := game.DefaultUtilityParams()
	if s.Alpha != nil {
		p.Alpha = *s.Alpha
	}
	if s.Beta != nil {
		p.Beta = *s.Beta
	}
	return p
}

// EntryPoints returns the IDs of entry-point nodes in file order.
func (s *Scenario) EntryPoints() []string {
	var ids []string
	for _, n := range s.Nodes {
		if n.EntryPoint {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Neighbors returns the nodes linked to id, in edge order.
func (s *Scenario) Neighbors(id string) []string {
	var out []string
	for _, e := range s.Edges {
		switch id {
		case e.Src:
			if e.Dst != id {
				out = append(out, e.Dst)
			}
		case e.Dst:
			out = append(out, e.Src)
		}
	}
	return out
}

// Marshal encodes the scenario back to YAML.
func (s *Scenario) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

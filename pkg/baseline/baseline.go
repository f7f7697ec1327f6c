// Package baseline provides non-strategic allocation heuristics that are
// scored the same way as the equilibrium for comparison.
package baseline

import (
	"fmt"

	"github.com/dd0wney/stratagem/pkg/game"
)

// Strategy names
const (
	NameUniform         = "uniform"
	NameValueFirst      = "value_first"
	NameCentralityFirst = "centrality_first"
)

// Allocator produces a budget-feasible allocation without considering the
// attacker's response.
type Allocator func(topo *game.Topology, catalog game.Catalog, budget float64) (*game.Allocation, error)

// Strategy is a named allocator.
type Strategy struct {
	Name     string
	Allocate Allocator
}

// Evaluate allocates and scores the result, reporting whichever node the
// attacker would actually prefer.
func (s Strategy) Evaluate(topo *game.Topology, catalog game.Catalog, budget float64, params game.UtilityParams) (*game.Solution, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	alloc, err := s.Allocate(topo, catalog, budget)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	return game.Score(topo, catalog, alloc, params)
}

// Strategies returns the baselines in reporting order.
func Strategies() []Strategy {
	return []Strategy{
		{Name: NameUniform, Allocate: Uniform},
		{Name: NameValueFirst, Allocate: ValueFirst},
		{Name: NameCentralityFirst, Allocate: CentralityFirst},
	}
}

// Lookup returns the baseline with the given name.
func Lookup(name string) (Strategy, bool) {
	for _, s := range Strategies() {
		if s.Name == name {
			return s, true
		}
	}
	return Strategy{}, false
}

func validate(topo *game.Topology, catalog game.Catalog, budget float64) error {
	return game.ValidateProblem(topo, catalog, budget, game.DefaultUtilityParams())
}

package baseline

import (
	"sort"

	"github.com/dd0wney/stratagem/pkg/game"
)

// Uniform spreads the budget evenly over nodes in ID order and, within a
// node, evenly in money over the catalog kinds. A node is capped at the
// spend that brings its coverage sum to 1; anything a node cannot absorb
// carries to the nodes after it.
func Uniform(topo *game.Topology, catalog game.Catalog, budget float64) (*game.Allocation, error) {
	if err := validate(topo, catalog, budget); err != nil {
		return nil, err
	}

	order := make([]int, topo.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return topo.Node(order[a]).ID < topo.Node(order[b]).ID
	})

	k := float64(len(catalog))
	var invCost float64
	for _, r := range catalog {
		invCost += 1 / r.Cost
	}
	nodeCap := k / invCost

	alloc := game.NewAllocation(topo)
	remaining := budget
	for pos, i := range order {
		share := remaining / float64(len(order)-pos)
		if share > nodeCap {
			share = nodeCap
		}
		if share <= 0 {
			break
		}
		for _, r := range catalog {
			alloc.Set(i, r.Kind, share/(k*r.Cost))
		}
		remaining -= share
	}
	return alloc, nil
}

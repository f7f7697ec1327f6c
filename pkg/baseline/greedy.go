package baseline

import (
	"sort"

	"github.com/dd0wney/stratagem/pkg/game"
)

// spendEpsilon absorbs rounding when comparing costs against the
// remaining budget.
const spendEpsilon = 1e-12

// ValueFirst covers nodes in descending value order.
func ValueFirst(topo *game.Topology, catalog game.Catalog, budget float64) (*game.Allocation, error) {
	return greedy(topo, catalog, budget, func(n game.Node) float64 { return n.Value })
}

// CentralityFirst covers nodes in descending centrality order.
func CentralityFirst(topo *game.Topology, catalog game.Catalog, budget float64) (*game.Allocation, error) {
	return greedy(topo, catalog, budget, func(n game.Node) float64 { return n.Centrality })
}

// greedy ranks nodes by key (descending, ties by ID) and gives each the
// strongest kind whose full unit is affordable. When no full unit fits, the
// rest of the budget buys fractional coverage of the kind with the best
// detection per unit cost and allocation stops.
func greedy(topo *game.Topology, catalog game.Catalog, budget float64, key func(game.Node) float64) (*game.Allocation, error) {
	if err := validate(topo, catalog, budget); err != nil {
		return nil, err
	}

	order := make([]int, topo.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		na, nb := topo.Node(order[a]), topo.Node(order[b])
		if ka, kb := key(na), key(nb); ka != kb {
			return ka > kb
		}
		return na.ID < nb.ID
	})

	strongest := rankByDetection(catalog)
	efficient := bestDetectionPerCost(catalog)

	alloc := game.NewAllocation(topo)
	remaining := budget
	for _, i := range order {
		if remaining <= spendEpsilon {
			break
		}
		placed := false
		for _, r := range strongest {
			if r.Cost <= remaining+spendEpsilon {
				alloc.Set(i, r.Kind, 1)
				remaining -= r.Cost
				placed = true
				break
			}
		}
		if !placed {
			alloc.Set(i, efficient.Kind, remaining/efficient.Cost)
			remaining = 0
		}
	}
	return alloc, nil
}

// rankByDetection orders kinds by detection strength, then cost, then
// enumeration order.
func rankByDetection(catalog game.Catalog) game.Catalog {
	ranked := append(game.Catalog(nil), catalog...)
	sort.SliceStable(ranked, func(a, b int) bool {
		ra, rb := ranked[a], ranked[b]
		if ra.Detection != rb.Detection {
			return ra.Detection > rb.Detection
		}
		if ra.Cost != rb.Cost {
			return ra.Cost < rb.Cost
		}
		return ra.Kind < rb.Kind
	})
	return ranked
}

func bestDetectionPerCost(catalog game.Catalog) game.Resource {
	best := catalog[0]
	for _, r := range catalog[1:] {
		re, be := r.Detection/r.Cost, best.Detection/best.Cost
		switch {
		case re > be:
			best = r
		case re == be && (r.Detection > best.Detection || (r.Detection == best.Detection && r.Kind < best.Kind)):
			best = r
		}
	}
	return best
}

package game

import "fmt"

// Score evaluates alloc against topo: detection probability, the four
// conditional utilities and both expectations per node, and the attacker's
// best response. It is pure; the returned Solution holds a copy of alloc.
func Score(topo *Topology, catalog Catalog, alloc *Allocation, params UtilityParams) (*Solution, error) {
	if topo.Len() == 0 {
		return nil, fmt.Errorf("score: %w", ErrShapeMismatch)
	}
	if alloc == nil {
		return nil, fmt.Errorf("score: %w: nil allocation", ErrShapeMismatch)
	}
	if !alloc.Matches(topo) {
		return nil, fmt.Errorf("score: %w: %d allocation nodes for %d topology nodes",
			ErrShapeMismatch, alloc.Len(), topo.Len())
	}

	breakdown := make([]NodeBreakdown, topo.Len())
	for i := range breakdown {
		n := topo.Node(i)
		p := alloc.Detection(i, catalog)
		pay := params.Payoffs(n.Value)
		breakdown[i] = NodeBreakdown{
			NodeID:            n.ID,
			Value:             n.Value,
			EntryPoint:        n.EntryPoint,
			Coverage:          alloc.NodeCoverage(i),
			Detection:         p,
			DefenderCovered:   pay.DefenderCovered,
			DefenderUncovered: pay.DefenderUncovered,
			AttackerCovered:   pay.AttackerCovered,
			AttackerUncovered: pay.AttackerUncovered,
			DefenderExpected:  pay.Defender(p),
			AttackerExpected:  pay.Attacker(p),
		}
	}

	t := BestResponse(breakdown, Tolerance)
	return &Solution{
		Allocation:      alloc.Clone(),
		Target:          breakdown[t].NodeID,
		TargetIndex:     t,
		DefenderUtility: breakdown[t].DefenderExpected,
		AttackerUtility: breakdown[t].AttackerExpected,
		Spend:           alloc.Spend(catalog),
		Breakdown:       breakdown,
	}, nil
}

// BestResponse returns the index of the attacker's chosen node. Every node
// within ScaledTolerance(tol, max) of the maximum attacker utility is a best
// response; among those the defender's preferred node wins, then the
// smallest node ID.
// Returns -1 for an empty breakdown.
func BestResponse(breakdown []NodeBreakdown, tol float64) int {
	if len(breakdown) == 0 {
		return -1
	}

	best := breakdown[0].AttackerExpected
	for _, b := range breakdown[1:] {
		if b.AttackerExpected > best {
			best = b.AttackerExpected
		}
	}

	slack := ScaledTolerance(tol, best)
	target := -1
	for i, b := range breakdown {
		if b.AttackerExpected < best-slack {
			continue
		}
		if target < 0 {
			target = i
			continue
		}
		cur := breakdown[target]
		dslack := ScaledTolerance(tol, cur.DefenderExpected)
		switch {
		case b.DefenderExpected > cur.DefenderExpected+dslack:
			target = i
		case b.DefenderExpected >= cur.DefenderExpected-dslack && b.NodeID < cur.NodeID:
			target = i
		}
	}
	return target
}

// BestResponseSet returns every node whose attacker utility is within
// ScaledTolerance(tol, max) of the maximum, in topology order.
func BestResponseSet(breakdown []NodeBreakdown, tol float64) []string {
	if len(breakdown) == 0 {
		return nil
	}
	best := breakdown[0].AttackerExpected
	for _, b := range breakdown[1:] {
		if b.AttackerExpected > best {
			best = b.AttackerExpected
		}
	}
	slack := ScaledTolerance(tol, best)
	var set []string
	for _, b := range breakdown {
		if b.AttackerExpected >= best-slack {
			set = append(set, b.NodeID)
		}
	}
	return set
}

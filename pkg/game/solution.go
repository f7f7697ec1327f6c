package game

import (
	"fmt"
	"strings"
)

// NodeBreakdown is the full per-node evaluation of an allocation.
type NodeBreakdown struct {
	NodeID     string   `json:"node_id"`
	Value      float64  `json:"value"`
	EntryPoint bool     `json:"entry_point"`
	Coverage   Coverage `json:"coverage"`
	Detection  float64  `json:"detection_probability"`

	DefenderCovered   float64 `json:"defender_covered_utility"`
	DefenderUncovered float64 `json:"defender_uncovered_utility"`
	AttackerCovered   float64 `json:"attacker_covered_utility"`
	AttackerUncovered float64 `json:"attacker_uncovered_utility"`

	DefenderExpected float64 `json:"defender_expected_utility"`
	AttackerExpected float64 `json:"attacker_expected_utility"`
}

// Solution is the scored result of an allocation: the attacker's best
// response and both players' expected utilities there. It is shared by the
// equilibrium solver, every baseline and the comparison layer.
type Solution struct {
	Allocation *Allocation `json:"allocation"`

	Target          string  `json:"attacker_target"`
	TargetIndex     int     `json:"-"`
	DefenderUtility float64 `json:"defender_expected_utility"`
	AttackerUtility float64 `json:"attacker_expected_utility"`
	Spend           float64 `json:"total_spend"`

	Breakdown []NodeBreakdown `json:"node_breakdowns"`
}

// Node returns the breakdown row for id.
func (s *Solution) Node(id string) (NodeBreakdown, bool) {
	for _, b := range s.Breakdown {
		if b.NodeID == id {
			return b, true
		}
	}
	return NodeBreakdown{}, false
}

// DetectionProbabilities maps node ID to p(node).
func (s *Solution) DetectionProbabilities() map[string]float64 {
	m := make(map[string]float64, len(s.Breakdown))
	for _, b := range s.Breakdown {
		m[b.NodeID] = b.Detection
	}
	return m
}

// Summary renders the target, utilities and non-zero coverage.
func (s *Solution) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Attacker target: %s\n", s.Target)
	fmt.Fprintf(&sb, "Defender EU: %+.4f\n", s.DefenderUtility)
	fmt.Fprintf(&sb, "Attacker EU: %+.4f\n", s.AttackerUtility)
	fmt.Fprintf(&sb, "Spend: %.3f\n", s.Spend)
	sb.WriteString("\nCoverage (non-zero):")
	for _, b := range s.Breakdown {
		if b.Coverage.IsZero() {
			continue
		}
		var parts []string
		for k, x := range b.Coverage {
			if x > 0 {
				parts = append(parts, fmt.Sprintf("%s=%.3f", ResourceKind(k), x))
			}
		}
		fmt.Fprintf(&sb, "\n  %s: %s  (p_detect=%.3f)", b.NodeID, strings.Join(parts, ", "), b.Detection)
	}
	return sb.String()
}

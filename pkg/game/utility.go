package game

import (
	"math"

	"github.com/dd0wney/stratagem/pkg/validation"
)

// Tolerance is the shared comparison tolerance for attacker indifference
// and post-solve bound checks.
const Tolerance = 1e-7

// ScaledTolerance widens tol for utilities of magnitude ref, so a utility
// comparison means the same thing at node values of 1 and 10^6. Scoring
// and the solver's incentive check both use it.
func ScaledTolerance(tol, ref float64) float64 {
	return tol * math.Max(1, math.Abs(ref))
}

// UtilityParams scales the general-sum payoffs. Alpha is the defender's
// reward multiplier on detection, Beta the attacker's penalty multiplier.
type UtilityParams struct {
	Alpha float64 `json:"alpha" yaml:"alpha"`
	Beta  float64 `json:"beta" yaml:"beta"`
}

// DefaultUtilityParams returns α = β = 1.
func DefaultUtilityParams() UtilityParams {
	return UtilityParams{Alpha: 1, Beta: 1}
}

// Validate requires both multipliers to be positive and finite.
func (p UtilityParams) Validate() error {
	return validation.NewChecker("").
		PositiveFloat("alpha", p.Alpha).
		PositiveFloat("beta", p.Beta).
		Err()
}

// Payoffs are the four conditional utilities at a node.
type Payoffs struct {
	DefenderCovered   float64
	DefenderUncovered float64
	AttackerCovered   float64
	AttackerUncovered float64
}

// Payoffs returns the conditional utilities for a node of value v.
func (p UtilityParams) Payoffs(v float64) Payoffs {
	return Payoffs{
		DefenderCovered:   p.Alpha * v,
		DefenderUncovered: -v,
		AttackerCovered:   -p.Beta * v,
		AttackerUncovered: v,
	}
}

// Defender returns the defender's expected utility at detection probability prob.
func (p Payoffs) Defender(prob float64) float64 {
	return prob*p.DefenderCovered + (1-prob)*p.DefenderUncovered
}

// Attacker returns the attacker's expected utility at detection probability prob.
func (p Payoffs) Attacker(prob float64) float64 {
	return prob*p.AttackerCovered + (1-prob)*p.AttackerUncovered
}

// DefenderGain is U_d^c − U_d^u = (α+1)·v, the slope of the defender's
// expected utility in prob.
func (p Payoffs) DefenderGain() float64 {
	return p.DefenderCovered - p.DefenderUncovered
}

// AttackerLoss is U_a^c − U_a^u = −(β+1)·v, the slope of the attacker's
// expected utility in prob.
func (p Payoffs) AttackerLoss() float64 {
	return p.AttackerCovered - p.AttackerUncovered
}

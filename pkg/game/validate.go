package game

import "github.com/dd0wney/stratagem/pkg/validation"

// ValidateProblem rejects inputs the solver and baselines cannot accept:
// an empty or malformed topology, an empty or malformed catalog, a
// negative or non-finite budget, or non-positive utility multipliers.
// The returned error unwraps to ErrInvalidInput and names the field.
func ValidateProblem(topo *Topology, catalog Catalog, budget float64, params UtilityParams) error {
	return validation.NewChecker("").
		NonNegativeFloat("budget", budget).
		Add(topo.Validate()).
		Add(catalog.Validate()).
		Add(params.Validate()).
		Err()
}

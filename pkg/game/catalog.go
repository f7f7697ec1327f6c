package game

import (
	"fmt"
	"strings"

	"github.com/dd0wney/stratagem/pkg/validation"
)

// Resource is one catalog entry: a kind with its detection strength and unit cost.
type Resource struct {
	Kind      ResourceKind `json:"kind" yaml:"kind"`
	Detection float64      `json:"detection" yaml:"detection" validate:"gt=0,lte=1"`
	Cost      float64      `json:"cost" yaml:"cost" validate:"gt=0"`
}

// Catalog is the fixed set of resource kinds available to the defender.
// Each kind appears at most once.
type Catalog []Resource

// DefaultCatalog returns the reference catalog as a fresh value.
func DefaultCatalog() Catalog {
	return Catalog{
		{Kind: Honeypot, Detection: 0.85, Cost: 3.0},
		{Kind: DecoyCredential, Detection: 0.70, Cost: 1.5},
		{Kind: Honeytoken, Detection: 0.50, Cost: 1.0},
	}
}

// Lookup returns the entry for kind.
func (c Catalog) Lookup(kind ResourceKind) (Resource, bool) {
	for _, r := range c {
		if r.Kind == kind {
			return r, true
		}
	}
	return Resource{}, false
}

// Contains reports whether kind is in the catalog.
func (c Catalog) Contains(kind ResourceKind) bool {
	_, ok := c.Lookup(kind)
	return ok
}

// Validate checks that the catalog is non-empty, every entry is within
// bounds and no kind repeats.
func (c Catalog) Validate() error {
	check := validation.NewChecker("")
	check.NotEmpty("catalog", len(c))

	var seen [NumKinds]bool
	for i, r := range c {
		field := fmt.Sprintf("catalog[%d]", i)
		if !r.Kind.Valid() {
			check.Check(field+".kind", false, fmt.Sprintf("unknown resource kind %d", int(r.Kind)))
			continue
		}
		check.Custom(field, func() error { return validation.Struct(field, r) })
		check.Finite(field+".cost", r.Cost)
		check.Check(field+".kind", !seen[r.Kind], fmt.Sprintf("duplicate resource kind %s", r.Kind))
		seen[r.Kind] = true
	}
	return check.Err()
}

// String renders the catalog as "kind(d=0.85,c=3)" entries.
func (c Catalog) String() string {
	parts := make([]string, len(c))
	for i, r := range c {
		parts[i] = fmt.Sprintf("%s(d=%g,c=%g)", r.Kind, r.Detection, r.Cost)
	}
	return strings.Join(parts, " ")
}

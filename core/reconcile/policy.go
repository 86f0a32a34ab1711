package reconcile

import "fmt"

// DiffPolicy decides whether a matched pair is reported as a break.
type DiffPolicy struct {
	// Name is the configuration name of the policy.
	Name string
	// Flag returns true when the pair belongs in the diff relation.
	Flag func(d DiffRow) bool
}

var (
	// PolicyAllDiffer reports a pair only when quantity, price and currency all disagree.
	// It is the historical behavior and the default.
	PolicyAllDiffer = DiffPolicy{
		Name: "all",
		Flag: func(d DiffRow) bool {
			return d.QuantityDiff != 0 && d.PriceDiff != 0 && !d.SameCCY
		},
	}

	// PolicyAnyDiffer reports a pair when any of quantity, price or currency disagrees.
	PolicyAnyDiffer = DiffPolicy{
		Name: "any",
		Flag: func(d DiffRow) bool {
			return d.QuantityDiff != 0 || d.PriceDiff != 0 || !d.SameCCY
		},
	}
)

// PolicyByName resolves a configured policy name. An empty name selects PolicyAllDiffer.
func PolicyByName(name string) (DiffPolicy, error) {
	switch name {
	case "", PolicyAllDiffer.Name:
		return PolicyAllDiffer, nil
	case PolicyAnyDiffer.Name:
		return PolicyAnyDiffer, nil
	default:
		return DiffPolicy{}, fmt.Errorf("%w: unknown diff policy %q", ErrConfiguration, name)
	}
}

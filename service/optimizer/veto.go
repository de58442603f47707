package optimizer

import "regexp"

// Veto selects provenance identifiers whose subtrees are exempt from
// pruning.
type Veto interface {
	Has(provenance string) bool
}

// VetoSet vetoes an explicit set of provenance identifiers.
type VetoSet map[string]bool

func (s VetoSet) Has(provenance string) bool { return s[provenance] }

// NewVetoSet builds a VetoSet from identifiers.
func NewVetoSet(provenance ...string) VetoSet {
	ret := make(VetoSet, len(provenance))
	for _, p := range provenance {
		ret[p] = true
	}
	return ret
}

// VetoPattern vetoes every provenance identifier matching a regular
// expression.
type VetoPattern struct {
	*regexp.Regexp
}

func (p *VetoPattern) Has(provenance string) bool {
	return p != nil && p.Regexp != nil && p.MatchString(provenance)
}

// NewVetoPattern compiles expr; an empty expression yields a nil Veto.
func NewVetoPattern(expr string) (Veto, error) {
	if expr == "" {
		return nil, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &VetoPattern{Regexp: re}, nil
}

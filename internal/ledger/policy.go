package ledger

// Policy holds the regulatory and presentation thresholds. Deviations are
// fractions of the baseline rate, so 0.20 means 20 % over.
type Policy struct {
	LegalLimit              float64 `yaml:"legal_limit" json:"legal_limit"`
	LimitEpsilon            float64 `yaml:"limit_epsilon" json:"limit_epsilon"`
	TargetMargin            float64 `yaml:"target_margin" json:"target_margin"`
	SuggestionMinMultiplier float64 `yaml:"suggestion_min_multiplier" json:"suggestion_min_multiplier"`
	SuggestionMaxMultiplier float64 `yaml:"suggestion_max_multiplier" json:"suggestion_max_multiplier"`
	RouteTolerance          float64 `yaml:"route_tolerance" json:"route_tolerance"`
}

// DefaultPolicy is the 20 % legal limit with an 18 % working target.
func DefaultPolicy() Policy {
	return Policy{
		LegalLimit:              0.20,
		LimitEpsilon:            0.001,
		TargetMargin:            0.18,
		SuggestionMinMultiplier: 1.05,
		SuggestionMaxMultiplier: 1.20,
		RouteTolerance:          0.10,
	}
}

// exceeds reports whether a deviation breaks the legal limit.
func (p Policy) exceeds(deviation float64) bool {
	return deviation > p.LegalLimit+p.LimitEpsilon
}

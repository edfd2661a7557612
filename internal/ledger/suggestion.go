package ledger

import (
	"fmt"
	"math"

	"github.com/ukydev/trip-ledger/internal/models"
)

// Suggestion is a fill-up amount that would close the open fuel period at
// a plausible rate above baseline.
type Suggestion struct {
	DistanceKm float64 `json:"distance_km"`
	Liters     float64 `json:"liters"`
	Rate       float64 `json:"rate"`
	Multiplier float64 `json:"multiplier"`
}

// String renders the suggestion the way the dashboard sensor shows it.
func (s Suggestion) String() string {
	return fmt.Sprintf("%.2f L → %.2f l/100km", s.Liters, s.Rate)
}

// Multiplier maps a uniform sample in [0,1) onto the configured range.
// Callers supply the randomness so the engine itself stays deterministic.
func (p Policy) Multiplier(sample float64) float64 {
	return p.SuggestionMinMultiplier + sample*(p.SuggestionMaxMultiplier-p.SuggestionMinMultiplier)
}

// SuggestFillup proposes liters for the open fuel period plus extraKm not
// yet logged. It returns false when there is no distance to cover.
func (p Policy) SuggestFillup(fuel *ResourceFlow, extraKm, multiplier float64) (*Suggestion, bool) {
	if fuel == nil || fuel.Resource != ResourceFuel || fuel.Baseline <= 0 {
		return nil, false
	}
	km := math.Max(extraKm, 0)
	if open, ok := OpenPeriod(fuel.Periods); ok {
		km += open.Distance
	}
	if km <= 0 {
		return nil, false
	}
	multiplier = math.Min(math.Max(multiplier, p.SuggestionMinMultiplier), p.SuggestionMaxMultiplier)
	liters := round2(km * fuel.Baseline * multiplier / 100)
	return &Suggestion{
		DistanceKm: km,
		Liters:     liters,
		Rate:       round2(liters * 100 / km),
		Multiplier: multiplier,
	}, true
}

// SuggestForYear runs the year and suggests a fill-up for its open fuel
// period. It returns nil when the vehicle burns no fuel or nothing is open.
func (p Policy) SuggestForYear(v models.Vehicle, trips []models.Trip, year int, multiplier float64) (*Suggestion, error) {
	flow, err := computeYear(v, trips, year)
	if err != nil {
		return nil, err
	}
	if flow.Fuel == nil {
		return nil, nil
	}
	s, ok := p.SuggestFillup(flow.Fuel, 0, multiplier)
	if !ok {
		return nil, nil
	}
	return s, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package ledger

import "github.com/ukydev/trip-ledger/internal/models"

// ResourceSummary aggregates one resource over a year.
type ResourceSummary struct {
	Resource      Resource          `json:"resource"`
	Capacity      float64           `json:"capacity"`
	Baseline      float64           `json:"baseline"`
	StartLevel    float64           `json:"start_level"`
	EndLevel      float64           `json:"end_level"`
	EndPercent    float64           `json:"end_percent"`
	DistanceKm    float64           `json:"distance_km"`
	Amount        float64           `json:"amount"`
	CostEUR       float64           `json:"cost_eur"`
	ClosedPeriods int               `json:"closed_periods"`
	HasOpen       bool              `json:"has_open_period"`
	AverageRate   *float64          `json:"average_rate,omitempty"`
	Deviation     *float64          `json:"deviation,omitempty"`
	Margin        MarginVerdict     `json:"margin"`
	WorstMargin   *float64          `json:"worst_margin,omitempty"`
	OverLimit     bool              `json:"over_limit"`
	BufferKm      float64           `json:"buffer_km"`
	Compensation  *CompensationTrip `json:"compensation,omitempty"`
}

// YearSummary is the per-year aggregate handed to display, cache and
// sensor layers.
type YearSummary struct {
	VehicleID        string             `json:"vehicle_id"`
	Year             int                `json:"year"`
	Type             models.VehicleType `json:"type"`
	TripCount        int                `json:"trip_count"`
	DistanceKm       float64            `json:"distance_km"`
	OtherCostsEUR    float64            `json:"other_costs_eur"`
	StartOdometer    float64            `json:"start_odometer"`
	EndOdometer      float64            `json:"end_odometer"`
	OrderingFallback bool               `json:"ordering_fallback"`
	Fuel             *ResourceSummary   `json:"fuel,omitempty"`
	Energy           *ResourceSummary   `json:"energy,omitempty"`
}

// Summarize computes the year summary from the vehicle's full trip history.
// Earlier years are only used to resolve the carried-over levels.
func Summarize(v models.Vehicle, trips []models.Trip, year int, policy Policy) (*YearSummary, error) {
	flow, err := computeYear(v, trips, year)
	if err != nil {
		return nil, err
	}

	s := &YearSummary{
		VehicleID:        v.ID,
		Year:             year,
		Type:             v.Type,
		TripCount:        len(flow.Trips),
		OrderingFallback: flow.OrderingFallback,
		StartOdometer:    YearStartOdometer(v, trips, year),
	}
	s.EndOdometer = s.StartOdometer
	for _, t := range flow.Trips {
		s.DistanceKm += t.DistanceKm
		if t.HasOtherCosts() {
			s.OtherCostsEUR += *t.OtherCostsEUR
		}
		if t.Odometer > 0 {
			s.EndOdometer = t.Odometer
		}
	}

	if flow.Fuel != nil {
		s.Fuel = summarizeResource(flow, flow.Fuel, policy)
	}
	if flow.Energy != nil {
		s.Energy = summarizeResource(flow, flow.Energy, policy)
	}
	return s, nil
}

// computeYear runs the engine over year's trips seeded with the carry-over.
func computeYear(v models.Vehicle, trips []models.Trip, year int) (*Flow, error) {
	start, err := YearStartLevels(v, trips, year)
	if err != nil {
		return nil, err
	}
	return Compute(v, TripsInYear(trips, year), start)
}

func summarizeResource(flow *Flow, rf *ResourceFlow, policy Policy) *ResourceSummary {
	rs := &ResourceSummary{
		Resource:   rf.Resource,
		Capacity:   rf.Capacity,
		Baseline:   rf.Baseline,
		StartLevel: rf.StartLevel,
		EndLevel:   rf.EndLevel(),
	}
	if rf.Capacity > 0 {
		rs.EndPercent = rs.EndLevel / rf.Capacity * 100
	}
	for i, t := range flow.Trips {
		rs.DistanceKm += rf.Distances[i]
		rs.Amount += rf.Resource.amount(t)
		rs.CostEUR += rf.Resource.cost(t)
	}
	for _, p := range rf.Periods {
		if p.Closed {
			rs.ClosedPeriods++
		} else {
			rs.HasOpen = true
		}
	}
	if rate, ok := AggregateRate(rf.Periods); ok {
		rs.AverageRate = &rate
	}

	rs.Deviation = Deviation(rf.Periods, rf.Baseline)
	rs.Margin = policy.Evaluate(rf.Resource, rs.Deviation)
	if rf.Resource != ResourceFuel {
		return rs
	}

	rs.WorstMargin = WorstMargin(rf.Periods, rf.Baseline)
	rs.OverLimit = rs.WorstMargin != nil && policy.exceeds(*rs.WorstMargin)
	if rs.OverLimit {
		amount, distance := closedTotals(rf.Periods)
		rs.BufferKm = BufferKm(amount, distance, rf.Baseline, policy.TargetMargin)
		var location, purpose string
		if n := len(flow.Trips); n > 0 {
			location = flow.Trips[n-1].Destination
			purpose = flow.Trips[n-1].Purpose
		}
		rs.Compensation = policy.Compensation(rs.BufferKm, KnownRoutes(flow.Trips), location, purpose)
	}
	return rs
}

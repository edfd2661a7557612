package ledger

import "github.com/ukydev/trip-ledger/internal/models"

// Cell is one resource's accounting for one trip.
type Cell struct {
	DistanceKm float64 `json:"distance_km"`
	Rate       float64 `json:"rate"`
	Estimated  bool    `json:"estimated"`
	Consumed   float64 `json:"consumed"`
	Remaining  float64 `json:"remaining"`
	Percent    float64 `json:"percent"`
	PeriodOpen bool    `json:"period_open"`
}

// GridRow is a trip with its derived values and warnings.
type GridRow struct {
	Trip               models.Trip `json:"trip"`
	Fuel               *Cell       `json:"fuel,omitempty"`
	Energy             *Cell       `json:"energy,omitempty"`
	SocOverride        bool        `json:"soc_override"`
	DateWarning        bool        `json:"date_warning"`
	OdometerWarning    bool        `json:"odometer_warning"`
	ConsumptionWarning bool        `json:"consumption_warning"`
	MissingReceipt     bool        `json:"missing_receipt"`
}

// Grid is the logbook view of a year.
type Grid struct {
	VehicleID        string    `json:"vehicle_id"`
	Year             int       `json:"year"`
	StartLevels      Levels    `json:"start_levels"`
	OrderingFallback bool      `json:"ordering_fallback"`
	Rows             []GridRow `json:"rows"`
}

// BuildGrid computes the per-trip view of year. receiptTrips holds the IDs
// of trips that have a receipt assigned; fuel trips outside it are flagged.
func BuildGrid(v models.Vehicle, trips []models.Trip, year int, receiptTrips map[string]bool, policy Policy) (*Grid, error) {
	start, err := YearStartLevels(v, trips, year)
	if err != nil {
		return nil, err
	}
	flow, err := Compute(v, TripsInYear(trips, year), start)
	if err != nil {
		return nil, err
	}

	g := &Grid{
		VehicleID:        v.ID,
		Year:             year,
		StartLevels:      start,
		OrderingFallback: flow.OrderingFallback,
		Rows:             make([]GridRow, len(flow.Trips)),
	}
	for i, t := range flow.Trips {
		row := GridRow{
			Trip:           t,
			SocOverride:    t.SocOverridePercent != nil,
			MissingReceipt: t.HasFuel() && !receiptTrips[t.ID],
		}
		if flow.Fuel != nil {
			row.Fuel = cellAt(flow.Fuel, i)
			if !row.Fuel.Estimated && row.Fuel.DistanceKm > 0 && flow.Fuel.Baseline > 0 {
				row.ConsumptionWarning = policy.exceeds((row.Fuel.Rate - flow.Fuel.Baseline) / flow.Fuel.Baseline)
			}
		}
		if flow.Energy != nil {
			row.Energy = cellAt(flow.Energy, i)
		}
		if t.EndTime != nil && t.EndTime.Before(t.StartTime) {
			row.DateWarning = true
		}
		if i > 0 {
			prev := flow.Trips[i-1]
			if t.StartTime.Before(prev.EndDate()) {
				row.DateWarning = true
			}
			if t.Odometer > 0 && prev.Odometer > 0 && t.Odometer < prev.Odometer {
				row.OdometerWarning = true
			}
		}
		g.Rows[i] = row
	}
	return g, nil
}

func cellAt(rf *ResourceFlow, i int) *Cell {
	c := &Cell{
		DistanceKm: rf.Distances[i],
		Rate:       rf.Rates[i],
		Estimated:  rf.Estimated[i],
		Consumed:   rf.Consumed[i],
		Remaining:  rf.Remaining[i],
	}
	if rf.Capacity > 0 {
		c.Percent = c.Remaining / rf.Capacity * 100
	}
	for _, p := range rf.Periods {
		for _, e := range p.Entries {
			if e.Index == i {
				c.PeriodOpen = !p.Closed
			}
		}
	}
	return c
}

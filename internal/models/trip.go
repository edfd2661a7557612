package models

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTrip = errors.New("invalid trip")

// Trip is one logbook entry. Fuel and energy fields are set only when the
// driver refuelled or charged during the trip.
type Trip struct {
	ID          string     `json:"id" bson:"_id"`
	VehicleID   string     `json:"vehicle_id" bson:"vehicle_id"`
	StartTime   time.Time  `json:"start_time" bson:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty" bson:"end_time,omitempty"`
	Origin      string     `json:"origin" bson:"origin"`
	Destination string     `json:"destination" bson:"destination"`
	Purpose     string     `json:"purpose" bson:"purpose"`
	DistanceKm  float64    `json:"distance_km" bson:"distance_km"`
	Odometer    float64    `json:"odometer" bson:"odometer"`

	FuelLiters  *float64 `json:"fuel_liters,omitempty" bson:"fuel_liters,omitempty"`
	FuelCostEUR *float64 `json:"fuel_cost_eur,omitempty" bson:"fuel_cost_eur,omitempty"`
	FullTank    bool     `json:"full_tank" bson:"full_tank"`

	EnergyKwh          *float64 `json:"energy_kwh,omitempty" bson:"energy_kwh,omitempty"`
	EnergyCostEUR      *float64 `json:"energy_cost_eur,omitempty" bson:"energy_cost_eur,omitempty"`
	FullCharge         bool     `json:"full_charge" bson:"full_charge"`
	SocOverridePercent *float64 `json:"soc_override_percent,omitempty" bson:"soc_override_percent,omitempty"`

	OtherCostsEUR  *float64 `json:"other_costs_eur,omitempty" bson:"other_costs_eur,omitempty"`
	OtherCostsNote string   `json:"other_costs_note,omitempty" bson:"other_costs_note,omitempty"`

	// SortIndex breaks ties between trips sharing a start instant.
	SortIndex int `json:"sort_index" bson:"sort_index"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Year is the calendar year the trip belongs to.
func (t *Trip) Year() int {
	return t.StartTime.Year()
}

// EndDate returns the end time, or the start time when the trip has none.
func (t *Trip) EndDate() time.Time {
	if t.EndTime != nil {
		return *t.EndTime
	}
	return t.StartTime
}

// HasFuel reports whether a positive fuel amount was logged.
func (t *Trip) HasFuel() bool {
	return t.FuelLiters != nil && *t.FuelLiters > 0
}

// HasEnergy reports whether a positive charge was logged.
func (t *Trip) HasEnergy() bool {
	return t.EnergyKwh != nil && *t.EnergyKwh > 0
}

// HasOtherCosts reports whether a non-fuel cost was logged.
func (t *Trip) HasOtherCosts() bool {
	return t.OtherCostsEUR != nil && *t.OtherCostsEUR > 0
}

// Validate checks the fields a logbook entry must satisfy before it is
// stored.
func (t *Trip) Validate() error {
	switch {
	case t.StartTime.IsZero():
		return fmt.Errorf("%w: start_time is required", ErrInvalidTrip)
	case t.EndTime != nil && t.EndTime.Before(t.StartTime):
		return fmt.Errorf("%w: end_time is before start_time", ErrInvalidTrip)
	case t.DistanceKm < 0:
		return fmt.Errorf("%w: distance_km must not be negative", ErrInvalidTrip)
	case t.SocOverridePercent != nil && (*t.SocOverridePercent < 0 || *t.SocOverridePercent > 100):
		return fmt.Errorf("%w: soc_override_percent must be between 0 and 100", ErrInvalidTrip)
	}

	amounts := []struct {
		field string
		value *float64
	}{
		{"fuel_liters", t.FuelLiters},
		{"fuel_cost_eur", t.FuelCostEUR},
		{"energy_kwh", t.EnergyKwh},
		{"energy_cost_eur", t.EnergyCostEUR},
		{"other_costs_eur", t.OtherCostsEUR},
	}
	for _, a := range amounts {
		if a.value != nil && *a.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidTrip, a.field)
		}
	}
	return nil
}

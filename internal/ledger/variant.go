package ledger

import (
	"math"

	"github.com/ukydev/trip-ledger/internal/models"
)

// Levels holds a starting level per resource. Only the resources the
// vehicle uses are meaningful.
type Levels struct {
	Fuel   float64 `json:"fuel"`
	Energy float64 `json:"energy"`
}

func (l Levels) get(r Resource) float64 {
	if r == ResourceFuel {
		return l.Fuel
	}
	return l.Energy
}

// ResourceFlow is the accounting of one resource over a trip sequence. All
// per-trip slices are indexed like Flow.Trips.
type ResourceFlow struct {
	Resource   Resource  `json:"resource"`
	Capacity   float64   `json:"capacity"`
	Baseline   float64   `json:"baseline"`
	StartLevel float64   `json:"start_level"`
	Distances  []float64 `json:"distances_km"`
	Periods    []Period  `json:"periods"`
	Rates      []float64 `json:"rates"`
	Estimated  []bool    `json:"estimated"`
	Consumed   []float64 `json:"consumed"`
	Remaining  []float64 `json:"remaining"`
}

// EndLevel is the level after the last trip, or the start level when there
// were no trips.
func (f *ResourceFlow) EndLevel() float64 {
	if len(f.Remaining) == 0 {
		return f.StartLevel
	}
	return f.Remaining[len(f.Remaining)-1]
}

// Flow is the result of running a vehicle's trips through the engine.
type Flow struct {
	Type             models.VehicleType `json:"type"`
	Trips            []models.Trip      `json:"trips"`
	OrderingFallback bool               `json:"ordering_fallback"`
	Fuel             *ResourceFlow      `json:"fuel,omitempty"`
	Energy           *ResourceFlow      `json:"energy,omitempty"`
}

// Resource returns the flow for r, or a VariantError when the vehicle does
// not consume it.
func (f *Flow) Resource(r Resource) (*ResourceFlow, error) {
	rf := f.Fuel
	if r == ResourceEnergy {
		rf = f.Energy
	}
	if rf == nil {
		return nil, &VariantError{Type: f.Type, Resource: r}
	}
	return rf, nil
}

// EndLevels is the carry-over state after the last trip.
func (f *Flow) EndLevels() Levels {
	var l Levels
	if f.Fuel != nil {
		l.Fuel = f.Fuel.EndLevel()
	}
	if f.Energy != nil {
		l.Energy = f.Energy.EndLevel()
	}
	return l
}

// Compute runs trips through the accounting for the vehicle's variant,
// starting from the given levels.
func Compute(v models.Vehicle, trips []models.Trip, start Levels) (*Flow, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	sorted, fallback := SortChronological(trips)
	s := &splitter{
		vehicle: v,
		start:   start,
		flow:    &Flow{Type: v.Type, Trips: sorted, OrderingFallback: fallback},
	}
	if err := v.Type.Visit(s); err != nil {
		return nil, err
	}
	return s.flow, nil
}

// splitter assigns trip distance to resources per variant.
type splitter struct {
	vehicle models.Vehicle
	start   Levels
	flow    *Flow
}

func (s *splitter) Combustion() error {
	s.flow.Fuel = s.resourceFlow(ResourceFuel, tripDistances(s.flow.Trips))
	return nil
}

func (s *splitter) BatteryElectric() error {
	s.flow.Energy = s.resourceFlow(ResourceEnergy, tripDistances(s.flow.Trips))
	return nil
}

func (s *splitter) PluginHybrid() error {
	split := splitHybrid(
		s.flow.Trips,
		ResourceEnergy.capacity(s.vehicle),
		s.start.Energy,
		ResourceEnergy.baseline(s.vehicle),
	)
	s.flow.Fuel = s.resourceFlow(ResourceFuel, split.fuel)
	// The battery is drained by the same sequence the split was made from,
	// so the reported charge never funds more electric km than it holds.
	energy := s.resourceFlow(ResourceEnergy, split.electric)
	energy.Consumed = split.consumed
	energy.Remaining = split.remaining
	s.flow.Energy = energy
	return nil
}

func (s *splitter) resourceFlow(r Resource, distances []float64) *ResourceFlow {
	baseline := r.baseline(s.vehicle)
	capacity := r.capacity(s.vehicle)
	start := s.start.get(r)
	periods := partition(s.flow.Trips, distances, r)
	rates, estimated := applicableRates(periods, len(s.flow.Trips), baseline)
	remaining, consumed := track(s.flow.Trips, distances, rates, r, capacity, start)
	return &ResourceFlow{
		Resource:   r,
		Capacity:   capacity,
		Baseline:   baseline,
		StartLevel: clamp(start, capacity),
		Distances:  distances,
		Periods:    periods,
		Rates:      rates,
		Estimated:  estimated,
		Consumed:   consumed,
		Remaining:  remaining,
	}
}

type hybridSplit struct {
	electric  []float64
	fuel      []float64
	consumed  []float64
	remaining []float64
}

// splitHybrid drives each trip on battery first, using the charge available
// before the trip at the baseline energy rate, and puts the rest on fuel.
// The battery level it walks is the one reported for the energy side.
func splitHybrid(trips []models.Trip, capacity, start, baseline float64) hybridSplit {
	n := len(trips)
	out := hybridSplit{
		electric:  make([]float64, n),
		fuel:      make([]float64, n),
		consumed:  make([]float64, n),
		remaining: make([]float64, n),
	}
	level := clamp(start, capacity)
	for i, trip := range trips {
		distance := math.Max(trip.DistanceKm, 0)
		if trip.SocOverridePercent != nil {
			level = clamp(capacity**trip.SocOverridePercent/100, capacity)
		}
		if baseline > 0 {
			used := math.Min(distance*baseline/100, level)
			out.electric[i] = math.Min(used*100/baseline, distance)
			out.consumed[i] = used
			level -= used
		}
		out.fuel[i] = distance - out.electric[i]
		if added := ResourceEnergy.amount(trip); added > 0 {
			if ResourceEnergy.closes(trip) {
				level = capacity
			} else {
				level += added
			}
		}
		level = clamp(level, capacity)
		out.remaining[i] = level
	}
	return out
}

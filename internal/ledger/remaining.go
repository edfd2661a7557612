package ledger

import "github.com/ukydev/trip-ledger/internal/models"

// RemainingResource returns the level of r left after each trip, in
// chronological order. Each trip consumes at its period's rate, or at
// baselineRate while the period is open.
func RemainingResource(trips []models.Trip, r Resource, capacity, startLevel, baselineRate float64) []float64 {
	sorted, _ := SortChronological(trips)
	distances := tripDistances(sorted)
	periods := partition(sorted, distances, r)
	rates, _ := applicableRates(periods, len(sorted), baselineRate)
	remaining, _ := track(sorted, distances, rates, r, capacity, startLevel)
	return remaining
}

// track walks trips in order. A state-of-charge override pins the battery
// before the trip is driven; a closing fill forces the level to capacity.
func track(trips []models.Trip, distances, rates []float64, r Resource, capacity, start float64) (remaining, consumed []float64) {
	remaining = make([]float64, len(trips))
	consumed = make([]float64, len(trips))
	level := clamp(start, capacity)
	for i, trip := range trips {
		if r == ResourceEnergy && trip.SocOverridePercent != nil {
			level = clamp(capacity**trip.SocOverridePercent/100, capacity)
		}
		consumed[i] = distances[i] * rates[i] / 100
		level -= consumed[i]
		if added := r.amount(trip); added > 0 {
			if r.closes(trip) {
				level = capacity
			} else {
				level += added
			}
		}
		level = clamp(level, capacity)
		remaining[i] = level
	}
	return remaining, consumed
}

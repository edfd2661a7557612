package ledger

import "github.com/ukydev/trip-ledger/internal/models"

// YearStartLevels resolves the carried-over levels on January 1st of year.
// With no trips before year the vehicle starts at its initial percentage of
// capacity (full by default). Otherwise every year from the first trip year
// up to year-1 is replayed in turn; years without trips carry the level
// through unchanged.
func YearStartLevels(v models.Vehicle, trips []models.Trip, year int) (Levels, error) {
	if err := v.Validate(); err != nil {
		return Levels{}, err
	}
	levels := Levels{
		Fuel:   ResourceFuel.initialLevel(v),
		Energy: ResourceEnergy.initialLevel(v),
	}

	first, ok := firstTripYear(trips)
	if !ok || first >= year {
		return levels, nil
	}

	for y := first; y < year; y++ {
		yearTrips := TripsInYear(trips, y)
		if len(yearTrips) == 0 {
			continue
		}
		flow, err := Compute(v, yearTrips, levels)
		if err != nil {
			return Levels{}, err
		}
		levels = flow.EndLevels()
	}
	return levels, nil
}

// YearStartLevel is YearStartLevels for a single resource.
func YearStartLevel(v models.Vehicle, trips []models.Trip, year int, r Resource) (float64, error) {
	if err := checkResource(v, r); err != nil {
		return 0, err
	}
	levels, err := YearStartLevels(v, trips, year)
	if err != nil {
		return 0, err
	}
	return levels.get(r), nil
}

// YearStartOdometer is the last odometer reading before year, or the
// vehicle's initial odometer.
func YearStartOdometer(v models.Vehicle, trips []models.Trip, year int) float64 {
	sorted, _ := SortChronological(trips)
	odometer := v.InitialOdometer
	for _, t := range sorted {
		if t.Year() >= year {
			break
		}
		if t.Odometer > 0 {
			odometer = t.Odometer
		}
	}
	return odometer
}

func firstTripYear(trips []models.Trip) (int, bool) {
	if len(trips) == 0 {
		return 0, false
	}
	first := trips[0].Year()
	for _, t := range trips[1:] {
		if y := t.Year(); y < first {
			first = y
		}
	}
	return first, true
}

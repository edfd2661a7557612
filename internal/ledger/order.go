package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ukydev/trip-ledger/internal/models"
)

var ErrTripNotFound = errors.New("trip not found")

// SortChronological returns a copy of trips ordered by start time, then by
// sort index. The second result is true when two trips share both the start
// instant and the sort index; those keep their insertion order.
func SortChronological(trips []models.Trip) ([]models.Trip, bool) {
	sorted := make([]models.Trip, len(trips))
	copy(sorted, trips)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.SortIndex < b.SortIndex
	})

	fallback := false
	for i := 1; i < len(sorted); i++ {
		if sorted[i].StartTime.Equal(sorted[i-1].StartTime) && sorted[i].SortIndex == sorted[i-1].SortIndex {
			fallback = true
			break
		}
	}
	return sorted, fallback
}

// NextSortIndex returns the sort index that places a trip starting at start
// after every other trip at that instant. skipID excludes the trip being
// moved.
func NextSortIndex(trips []models.Trip, start time.Time, skipID string) int {
	next := 0
	for _, t := range trips {
		if t.ID != skipID && t.StartTime.Equal(start) && t.SortIndex >= next {
			next = t.SortIndex + 1
		}
	}
	return next
}

// MoveTrip moves trip id to position among the trips sharing its start
// instant and renumbers that group from zero. Trips at other instants keep
// their place. It returns the reordered history and the trips whose sort
// index changed.
func MoveTrip(trips []models.Trip, id string, position int) ([]models.Trip, []models.Trip, error) {
	sorted, _ := SortChronological(trips)
	idx := -1
	for i, t := range sorted {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrTripNotFound, id)
	}

	instant := sorted[idx].StartTime
	first, last := idx, idx+1
	for first > 0 && sorted[first-1].StartTime.Equal(instant) {
		first--
	}
	for last < len(sorted) && sorted[last].StartTime.Equal(instant) {
		last++
	}

	group := make([]models.Trip, 0, last-first)
	for i := first; i < last; i++ {
		if i != idx {
			group = append(group, sorted[i])
		}
	}
	position = max(0, min(position, len(group)))
	group = append(group[:position], append([]models.Trip{sorted[idx]}, group[position:]...)...)

	var changed []models.Trip
	for i := range group {
		if group[i].SortIndex != i {
			group[i].SortIndex = i
			changed = append(changed, group[i])
		}
		sorted[first+i] = group[i]
	}
	return sorted, changed, nil
}

// TripsInYear filters trips whose start time falls in year.
func TripsInYear(trips []models.Trip, year int) []models.Trip {
	var out []models.Trip
	for _, t := range trips {
		if t.Year() == year {
			out = append(out, t)
		}
	}
	return out
}

func tripDistances(trips []models.Trip) []float64 {
	d := make([]float64, len(trips))
	for i, t := range trips {
		if t.DistanceKm > 0 {
			d[i] = t.DistanceKm
		}
	}
	return d
}

package ledger

import "github.com/ukydev/trip-ledger/internal/models"

// Entry is a trip inside a period with the distance attributed to the
// period's resource. For hybrids that is only part of the trip distance.
type Entry struct {
	Index    int         `json:"index"`
	Trip     models.Trip `json:"trip"`
	Distance float64     `json:"distance_km"`
}

// Period is a run of trips ending with a full-resource event, or the open
// tail after the last one.
type Period struct {
	Resource Resource `json:"resource"`
	Entries  []Entry  `json:"entries"`
	Closed   bool     `json:"closed"`
	Distance float64  `json:"distance_km"`
	Amount   float64  `json:"amount"`
}

// PartitionPeriods splits trips into fill-up periods for r. Trips are
// ordered chronologically first, so callers may pass them in any order.
func PartitionPeriods(trips []models.Trip, r Resource) []Period {
	sorted, _ := SortChronological(trips)
	return partition(sorted, tripDistances(sorted), r)
}

// partition expects trips already sorted and one distance per trip.
func partition(trips []models.Trip, distances []float64, r Resource) []Period {
	var periods []Period
	current := Period{Resource: r}
	for i, trip := range trips {
		current.Entries = append(current.Entries, Entry{Index: i, Trip: trip, Distance: distances[i]})
		current.Distance += distances[i]
		current.Amount += r.amount(trip)
		if r.closes(trip) {
			current.Closed = true
			periods = append(periods, current)
			current = Period{Resource: r}
		}
	}
	if len(current.Entries) > 0 {
		periods = append(periods, current)
	}
	return periods
}

// OpenPeriod returns the trailing open period, if any.
func OpenPeriod(periods []Period) (Period, bool) {
	if len(periods) == 0 || periods[len(periods)-1].Closed {
		return Period{}, false
	}
	return periods[len(periods)-1], true
}

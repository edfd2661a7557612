package receipts

import (
	"github.com/ukydev/trip-ledger/internal/ledger"
	"github.com/ukydev/trip-ledger/internal/models"
)

// VerificationResult summarizes a year of receipts for one vehicle.
type VerificationResult struct {
	Total     int            `json:"total"`
	Matched   int            `json:"matched"`
	Unmatched int            `json:"unmatched"`
	Receipts  []Verification `json:"receipts"`
	// MissingTrips are fuel trips of the year with no receipt attached.
	MissingTrips []string `json:"missing_trips"`
}

// Verify matches every receipt of year against the vehicle's trips in that
// year. An assigned receipt is checked only against its own trip.
func (m *Matcher) Verify(receipts []models.Receipt, trips []models.Trip, year int) VerificationResult {
	yearTrips := ledger.TripsInYear(trips, year)
	byID := make(map[string]models.Trip, len(yearTrips))
	for _, t := range yearTrips {
		byID[t.ID] = t
	}

	res := VerificationResult{Receipts: []Verification{}}
	for _, r := range receipts {
		if !r.InYear(year) {
			continue
		}
		candidates := yearTrips
		if r.IsAssigned() {
			candidates = nil
			if t, ok := byID[r.TripID]; ok {
				candidates = []models.Trip{t}
			}
		}
		v := m.Match(r, candidates)
		res.Receipts = append(res.Receipts, v)
		res.Total++
		if v.Matched {
			res.Matched++
		}
	}
	res.Unmatched = res.Total - res.Matched
	res.MissingTrips = MissingReceipts(yearTrips, receipts)
	return res
}

// AssignedTripIDs is the set of trips that have at least one receipt.
func AssignedTripIDs(receipts []models.Receipt) map[string]bool {
	ids := make(map[string]bool)
	for _, r := range receipts {
		if r.IsAssigned() {
			ids[r.TripID] = true
		}
	}
	return ids
}

// MissingReceipts returns the IDs of fuel trips nobody attached a receipt to.
func MissingReceipts(trips []models.Trip, receipts []models.Receipt) []string {
	assigned := AssignedTripIDs(receipts)
	missing := []string{}
	for _, t := range trips {
		if t.HasFuel() && !assigned[t.ID] {
			missing = append(missing, t.ID)
		}
	}
	return missing
}

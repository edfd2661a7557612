package ledger

import (
	"math"

	"github.com/ukydev/trip-ledger/internal/models"
)

// Route is an origin/destination pair seen in the logbook.
type Route struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	DistanceKm  float64 `json:"distance_km"`
}

// CompensationTrip is a proposed extra trip that brings the fuel margin
// back under the target.
type CompensationTrip struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	DistanceKm  float64 `json:"distance_km"`
	Purpose     string  `json:"purpose"`
	FromRoute   bool    `json:"from_route"`
}

// KnownRoutes lists distinct routes from trips. The most recent distance
// wins when a route was driven more than once.
func KnownRoutes(trips []models.Trip) []Route {
	sorted, _ := SortChronological(trips)
	index := make(map[[2]string]int)
	var routes []Route
	for _, t := range sorted {
		if t.Origin == "" || t.Destination == "" || t.DistanceKm <= 0 {
			continue
		}
		key := [2]string{t.Origin, t.Destination}
		if i, ok := index[key]; ok {
			routes[i].DistanceKm = t.DistanceKm
			continue
		}
		index[key] = len(routes)
		routes = append(routes, Route{Origin: t.Origin, Destination: t.Destination, DistanceKm: t.DistanceKm})
	}
	return routes
}

// FindMatchingRoute returns the route closest to targetKm within the
// relative tolerance.
func FindMatchingRoute(routes []Route, targetKm, tolerance float64) (Route, bool) {
	lo, hi := targetKm*(1-tolerance), targetKm*(1+tolerance)
	best, found := Route{}, false
	for _, r := range routes {
		if r.DistanceKm < lo || r.DistanceKm > hi {
			continue
		}
		if !found || math.Abs(r.DistanceKm-targetKm) < math.Abs(best.DistanceKm-targetKm) {
			best, found = r, true
		}
	}
	return best, found
}

// Compensation proposes a trip covering bufferKm. A known route of similar
// length is preferred; otherwise a round trip at the current location.
func (p Policy) Compensation(bufferKm float64, routes []Route, location, purpose string) *CompensationTrip {
	if bufferKm <= 0 {
		return nil
	}
	if r, ok := FindMatchingRoute(routes, bufferKm, p.RouteTolerance); ok {
		return &CompensationTrip{
			Origin:      r.Origin,
			Destination: r.Destination,
			DistanceKm:  r.DistanceKm,
			Purpose:     purpose,
			FromRoute:   true,
		}
	}
	return &CompensationTrip{
		Origin:      location,
		Destination: location,
		DistanceKm:  math.Ceil(bufferKm),
		Purpose:     purpose,
	}
}

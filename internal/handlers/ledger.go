package handlers

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/trip-ledger/internal/cache"
	"github.com/ukydev/trip-ledger/internal/db"
	"github.com/ukydev/trip-ledger/internal/ledger"
	"github.com/ukydev/trip-ledger/internal/models"
	"github.com/ukydev/trip-ledger/internal/receipts"
	"github.com/ukydev/trip-ledger/internal/sensor"
)

// LedgerHandler serves the computed views of a vehicle's trip ledger.
type LedgerHandler struct {
	vehicles db.VehicleCollection
	trips    db.TripCollection
	receipts db.ReceiptCollection
	cache    cache.SummaryStore
	pusher   *sensor.Pusher
	policy   ledger.Policy
	matcher  *receipts.Matcher

	// sample feeds the fill-up suggestion multiplier.
	sample func() float64
}

// LedgerDeps groups the collaborators of a LedgerHandler.
type LedgerDeps struct {
	Vehicles db.VehicleCollection
	Trips    db.TripCollection
	Receipts db.ReceiptCollection
	Cache    cache.SummaryStore
	Pusher   *sensor.Pusher
	Policy   ledger.Policy
	Matcher  *receipts.Matcher
}

// NewLedgerHandler creates a LedgerHandler.
func NewLedgerHandler(d LedgerDeps) *LedgerHandler {
	if d.Pusher == nil {
		d.Pusher = sensor.NewPusher(nil)
	}
	if d.Matcher == nil {
		d.Matcher = receipts.NewMatcher(0)
	}
	return &LedgerHandler{
		vehicles: d.Vehicles,
		trips:    d.Trips,
		receipts: d.Receipts,
		cache:    d.Cache,
		pusher:   d.Pusher,
		policy:   d.Policy,
		matcher:  d.Matcher,
		sample:   rand.Float64,
	}
}

func (h *LedgerHandler) load(ctx context.Context, vehicleID string) (*models.Vehicle, []models.Trip, error) {
	vehicle, err := h.vehicles.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return nil, nil, err
	}
	trips, err := h.trips.FindTripsByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, nil, err
	}
	return vehicle, trips, nil
}

// Summary returns the year summary of a vehicle and refreshes the fill-up
// sensor when it had to be recomputed.
func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.PathValue("id")
	year, err := parseYear(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fields := log.Fields{"vehicle_id": id, "year": year}

	cached, err := h.cache.Get(r.Context(), id, year)
	if err != nil {
		log.WithFields(fields).WithError(err).Warn("Summary cache unavailable")
	}
	if cached != nil {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	vehicle, trips, err := h.load(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	summary, err := ledger.Summarize(*vehicle, trips, year, h.policy)
	if err != nil {
		fail(w, r, err)
		return
	}
	if summary.OrderingFallback {
		log.WithFields(fields).Warn("Trips share a start time, falling back to stored order")
	}
	if err := h.cache.Set(r.Context(), summary); err != nil {
		log.WithFields(fields).WithError(err).Warn("Failed to cache summary")
	}

	if vehicle.Type.UsesFuel() {
		suggestion, err := h.policy.SuggestForYear(*vehicle, trips, year, h.policy.Multiplier(h.sample()))
		if err != nil {
			log.WithFields(fields).WithError(err).Warn("Fill-up suggestion failed")
		} else {
			h.pusher.PushSuggestion(id, suggestion)
		}
	}

	writeJSON(w, http.StatusOK, summary)
}

// Grid returns the per-trip rows of a year.
func (h *LedgerHandler) Grid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.PathValue("id")
	year, err := parseYear(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	vehicle, trips, err := h.load(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	rcpts, err := h.receipts.FindReceiptsByVehicle(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}

	grid, err := ledger.BuildGrid(*vehicle, trips, year, receipts.AssignedTripIDs(rcpts), h.policy)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// Preview recomputes the year as if the posted trip were saved.
func (h *LedgerHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.PathValue("id")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var draft models.Trip
	if err := json.Unmarshal(body, &draft); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if draft.StartTime.IsZero() || draft.DistanceKm < 0 {
		http.Error(w, "start_time is required and distance_km must not be negative", http.StatusBadRequest)
		return
	}

	year := draft.Year()
	if r.URL.Query().Get("year") != "" {
		if year, err = parseYear(r); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	vehicle, trips, err := h.load(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	result, err := ledger.Preview(*vehicle, trips, year, draft, h.policy)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// VerifyReceipts matches the year's receipts against the vehicle's trips.
func (h *LedgerHandler) VerifyReceipts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.PathValue("id")
	year, err := parseYear(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, trips, err := h.load(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	rcpts, err := h.receipts.FindReceiptsByVehicle(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}

	result := h.matcher.Verify(rcpts, trips, year)
	log.WithFields(log.Fields{
		"vehicle_id": id,
		"year":       year,
		"matched":    result.Matched,
		"unmatched":  result.Unmatched,
	}).Debug("Receipts verified")
	writeJSON(w, http.StatusOK, result)
}

package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/trip-ledger/internal/cache"
	"github.com/ukydev/trip-ledger/internal/db"
	"github.com/ukydev/trip-ledger/internal/ledger"
	"github.com/ukydev/trip-ledger/internal/models"
)

// TripHandler edits a vehicle's logbook. Every change drops the vehicle's
// cached summaries.
type TripHandler struct {
	vehicles db.VehicleCollection
	trips    db.TripCollection
	receipts db.ReceiptCollection
	cache    cache.SummaryStore
	now      func() time.Time
}

// NewTripHandler creates a TripHandler.
func NewTripHandler(vehicles db.VehicleCollection, trips db.TripCollection, rc db.ReceiptCollection, summaries cache.SummaryStore) *TripHandler {
	return &TripHandler{
		vehicles: vehicles,
		trips:    trips,
		receipts: rc,
		cache:    summaries,
		now:      time.Now,
	}
}

type reorderRequest struct {
	Position int `json:"position"`
}

// List returns the vehicle's trips of ?year= in ledger order.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	year, err := parseYear(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	trips, err := h.trips.FindTripsByVehicle(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	sorted, _ := ledger.SortChronological(ledger.TripsInYear(trips, year))
	writeJSON(w, http.StatusOK, sorted)
}

// Create adds a trip. It is placed after any trip starting at the same
// instant.
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	vehicleID := r.PathValue("id")

	trip, ok := decodeTrip(w, r)
	if !ok {
		return
	}
	if err := trip.Validate(); err != nil {
		fail(w, r, err)
		return
	}
	if _, err := h.vehicles.FindVehicleByID(r.Context(), vehicleID); err != nil {
		fail(w, r, err)
		return
	}
	existing, err := h.trips.FindTripsByVehicle(r.Context(), vehicleID)
	if err != nil {
		fail(w, r, err)
		return
	}

	now := h.now().UTC()
	trip.ID = uuid.NewString()
	trip.VehicleID = vehicleID
	trip.SortIndex = ledger.NextSortIndex(existing, trip.StartTime, "")
	trip.CreatedAt = now
	trip.UpdatedAt = now
	if err := h.trips.InsertTrip(r.Context(), trip); err != nil {
		fail(w, r, err)
		return
	}
	h.invalidate(r, vehicleID)

	log.WithFields(log.Fields{"vehicle_id": vehicleID, "trip_id": trip.ID}).Info("Trip created")
	writeJSON(w, http.StatusCreated, trip)
}

// Update replaces a trip. A trip moved to another start instant goes after
// the trips already there; otherwise it keeps its sort index.
func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	vehicleID, tripID := r.PathValue("id"), r.PathValue("tripId")

	updated, ok := decodeTrip(w, r)
	if !ok {
		return
	}
	if err := updated.Validate(); err != nil {
		fail(w, r, err)
		return
	}
	current, err := h.findTrip(r, vehicleID, tripID)
	if err != nil {
		fail(w, r, err)
		return
	}

	updated.SortIndex = current.SortIndex
	if !updated.StartTime.Equal(current.StartTime) {
		existing, err := h.trips.FindTripsByVehicle(r.Context(), vehicleID)
		if err != nil {
			fail(w, r, err)
			return
		}
		updated.SortIndex = ledger.NextSortIndex(existing, updated.StartTime, tripID)
	}
	updated.ID = tripID
	updated.VehicleID = vehicleID
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = h.now().UTC()

	if err := h.trips.UpdateTrip(r.Context(), tripID, updated); err != nil {
		fail(w, r, err)
		return
	}
	h.invalidate(r, vehicleID)
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a trip. Receipts attached to it are released first so they
// can be assigned again.
func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	vehicleID, tripID := r.PathValue("id"), r.PathValue("tripId")

	if _, err := h.findTrip(r, vehicleID, tripID); err != nil {
		fail(w, r, err)
		return
	}
	attached, err := h.receipts.FindReceiptsByVehicle(r.Context(), vehicleID)
	if err != nil {
		fail(w, r, err)
		return
	}
	for _, rc := range attached {
		if rc.TripID != tripID {
			continue
		}
		rc.TripID = ""
		rc.AssignmentType = models.AssignmentNone
		rc.Status = models.ReceiptParsed
		rc.UpdatedAt = h.now().UTC()
		if err := h.receipts.UpdateReceipt(r.Context(), rc.ID, rc); err != nil {
			fail(w, r, err)
			return
		}
	}
	if err := h.trips.DeleteTrip(r.Context(), tripID); err != nil {
		fail(w, r, err)
		return
	}
	h.invalidate(r, vehicleID)
	w.WriteHeader(http.StatusNoContent)
}

// Reorder moves a trip among the trips sharing its start instant and
// returns the vehicle's reordered history.
func (h *TripHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	vehicleID, tripID := r.PathValue("id"), r.PathValue("tripId")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var req reorderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	existing, err := h.trips.FindTripsByVehicle(r.Context(), vehicleID)
	if err != nil {
		fail(w, r, err)
		return
	}
	sorted, changed, err := ledger.MoveTrip(existing, tripID, req.Position)
	if err != nil {
		fail(w, r, err)
		return
	}
	for _, t := range changed {
		t.UpdatedAt = h.now().UTC()
		if err := h.trips.UpdateTrip(r.Context(), t.ID, t); err != nil {
			fail(w, r, err)
			return
		}
	}
	if len(changed) > 0 {
		h.invalidate(r, vehicleID)
	}
	writeJSON(w, http.StatusOK, sorted)
}

// findTrip loads a trip and hides trips of other vehicles behind a not-found.
func (h *TripHandler) findTrip(r *http.Request, vehicleID, tripID string) (*models.Trip, error) {
	trip, err := h.trips.FindTripByID(r.Context(), tripID)
	if err != nil {
		return nil, err
	}
	if trip.VehicleID != vehicleID {
		return nil, fmt.Errorf("trip %s: %w", tripID, db.ErrNotFound)
	}
	return trip, nil
}

func (h *TripHandler) invalidate(r *http.Request, vehicleID string) {
	if err := h.cache.InvalidateVehicle(r.Context(), vehicleID); err != nil {
		log.WithField("vehicle_id", vehicleID).WithError(err).Warn("Failed to invalidate summary cache")
	}
}

func decodeTrip(w http.ResponseWriter, r *http.Request) (models.Trip, bool) {
	var trip models.Trip
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return trip, false
	}
	if err := json.Unmarshal(body, &trip); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return trip, false
	}
	return trip, true
}

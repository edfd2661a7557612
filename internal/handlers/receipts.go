package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/trip-ledger/internal/cache"
	"github.com/ukydev/trip-ledger/internal/db"
	"github.com/ukydev/trip-ledger/internal/ledger"
	"github.com/ukydev/trip-ledger/internal/receipts"
)

// ReceiptHandler attaches receipts to trips.
type ReceiptHandler struct {
	receipts db.ReceiptCollection
	trips    db.TripCollection
	cache    cache.SummaryStore
	matcher  *receipts.Matcher
}

// NewReceiptHandler creates a ReceiptHandler.
func NewReceiptHandler(rc db.ReceiptCollection, trips db.TripCollection, summaries cache.SummaryStore, matcher *receipts.Matcher) *ReceiptHandler {
	if matcher == nil {
		matcher = receipts.NewMatcher(0)
	}
	return &ReceiptHandler{receipts: rc, trips: trips, cache: summaries, matcher: matcher}
}

// Candidates lists the trips of a year a receipt could be attached to.
func (h *ReceiptHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	receipt, err := h.receipts.FindReceiptByID(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}

	vehicleID := r.URL.Query().Get("vehicle_id")
	if vehicleID == "" {
		vehicleID = receipt.VehicleID
	}
	if vehicleID == "" {
		http.Error(w, "vehicle_id is required", http.StatusBadRequest)
		return
	}
	year, err := parseYear(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("year") == "" && receipt.ReceiptDate != nil {
		year = receipt.ReceiptDate.Year()
	}

	trips, err := h.trips.FindTripsByVehicle(r.Context(), vehicleID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.matcher.Candidates(*receipt, ledger.TripsInYear(trips, year)))
}

type assignRequest struct {
	TripID string `json:"trip_id"`
}

// Assign attaches a receipt to a trip and stores both.
func (h *ReceiptHandler) Assign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var req assignRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.TripID == "" {
		http.Error(w, "trip_id is required", http.StatusBadRequest)
		return
	}

	receipt, err := h.receipts.FindReceiptByID(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	trip, err := h.trips.FindTripByID(r.Context(), req.TripID)
	if err != nil {
		fail(w, r, err)
		return
	}

	assignment, err := h.matcher.Assign(*receipt, *trip)
	if err != nil {
		fail(w, r, err)
		return
	}
	if assignment.TripChanged {
		if err := h.trips.UpdateTrip(r.Context(), trip.ID, assignment.Trip); err != nil {
			fail(w, r, err)
			return
		}
	}
	if err := h.receipts.UpdateReceipt(r.Context(), receipt.ID, assignment.Receipt); err != nil {
		fail(w, r, err)
		return
	}

	fields := log.Fields{
		"receipt_id": receipt.ID,
		"trip_id":    trip.ID,
		"type":       assignment.Receipt.AssignmentType,
	}
	if err := h.cache.InvalidateVehicle(r.Context(), trip.VehicleID); err != nil {
		log.WithFields(fields).WithError(err).Warn("Failed to invalidate summary cache")
	}
	log.WithFields(fields).Info("Receipt assigned")
	writeJSON(w, http.StatusOK, assignment)
}

type overrideRequest struct {
	Override bool `json:"override"`
}

// SetOverride marks a receipt mismatch as reviewed. The match result itself
// is unchanged; only the warning is hidden.
func (h *ReceiptHandler) SetOverride(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var req overrideRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	receipt, err := h.receipts.FindReceiptByID(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	receipt.MismatchOverride = req.Override
	if err := h.receipts.UpdateReceipt(r.Context(), receipt.ID, *receipt); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

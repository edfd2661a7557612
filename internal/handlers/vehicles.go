package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/trip-ledger/internal/cache"
	"github.com/ukydev/trip-ledger/internal/db"
	"github.com/ukydev/trip-ledger/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// VehicleHandler serves vehicle configuration.
type VehicleHandler struct {
	vehicles db.VehicleCollection
	trips    db.TripCollection
	cache    cache.SummaryStore
}

// NewVehicleHandler creates a VehicleHandler.
func NewVehicleHandler(vehicles db.VehicleCollection, trips db.TripCollection, summaries cache.SummaryStore) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, trips: trips, cache: summaries}
}

// List returns the active vehicles.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cursor, err := h.vehicles.FindVehicles(r.Context(), bson.M{"is_active": true})
	if err != nil {
		fail(w, r, err)
		return
	}
	defer cursor.Close(r.Context())

	vehicles := []models.Vehicle{}
	if err := cursor.All(r.Context(), &vehicles); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// Get returns one vehicle.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// Update replaces a vehicle's configuration. The vehicle type is locked once
// any trip exists.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.PathValue("id")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var updated models.Vehicle
	if err := json.Unmarshal(body, &updated); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	current, err := h.vehicles.FindVehicleByID(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	count, err := h.trips.CountTrips(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := models.CheckVariantChange(*current, updated, count > 0); err != nil {
		fail(w, r, err)
		return
	}
	if err := updated.Validate(); err != nil {
		fail(w, r, err)
		return
	}

	updated.ID = id
	updated.CreatedAt = current.CreatedAt
	if err := h.vehicles.UpdateVehicle(r.Context(), id, updated); err != nil {
		fail(w, r, err)
		return
	}
	if err := h.cache.InvalidateVehicle(r.Context(), id); err != nil {
		log.WithField("vehicle_id", id).WithError(err).Warn("Failed to invalidate summary cache")
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a vehicle that has no trips.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.PathValue("id")

	count, err := h.trips.CountTrips(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	if count > 0 {
		fail(w, r, fmt.Errorf("%w: %d trips", models.ErrVehicleInUse, count))
		return
	}
	if err := h.vehicles.DeleteVehicle(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	if err := h.cache.InvalidateVehicle(r.Context(), id); err != nil {
		log.WithField("vehicle_id", id).WithError(err).Warn("Failed to invalidate summary cache")
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/trip-ledger/internal/db"
	"github.com/ukydev/trip-ledger/internal/ledger"
	"github.com/ukydev/trip-ledger/internal/models"
	"github.com/ukydev/trip-ledger/internal/receipts"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// parseYear reads ?year=, defaulting to the current year.
func parseYear(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return time.Now().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 9999 {
		return 0, errors.New("invalid year")
	}
	return year, nil
}

// statusFor maps domain and storage errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, db.ErrNotFound),
		errors.Is(err, ledger.ErrTripNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrVariantLocked),
		errors.Is(err, models.ErrVehicleInUse),
		errors.Is(err, receipts.ErrAlreadyAssigned),
		errors.Is(err, receipts.ErrOtherCostsExist):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidVehicle),
		errors.Is(err, models.ErrInvalidTrip),
		errors.Is(err, models.ErrInconsistentAssignment),
		errors.Is(err, ledger.ErrVariantMismatch),
		errors.Is(err, receipts.ErrIncompleteAmount),
		errors.Is(err, receipts.ErrVehicleMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Server errors are logged and their
// detail is not exposed.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("Request failed")
		http.Error(w, "Internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

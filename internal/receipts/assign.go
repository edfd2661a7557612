package receipts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ukydev/trip-ledger/internal/models"
)

var (
	ErrAlreadyAssigned  = errors.New("receipt is already assigned to another trip")
	ErrOtherCostsExist  = errors.New("trip already has other costs")
	ErrIncompleteAmount = errors.New("receipt has no EUR amount")
	ErrVehicleMismatch  = errors.New("receipt belongs to another vehicle")
)

// CompatibilityStatus describes whether a receipt fits a trip's fuel entry.
type CompatibilityStatus string

const (
	StatusEmpty   CompatibilityStatus = "empty"
	StatusMatches CompatibilityStatus = "matches"
	StatusDiffers CompatibilityStatus = "differs"
)

// Compatibility is the assignment check of one receipt against one trip.
type Compatibility struct {
	CanAttach bool                `json:"can_attach"`
	Status    CompatibilityStatus `json:"status"`
	// Mismatch names the differing fields joined by "_and_", or "all".
	Mismatch string `json:"mismatch,omitempty"`
}

// Candidate is a trip offered for assignment.
type Candidate struct {
	Trip          models.Trip   `json:"trip"`
	Compatibility Compatibility `json:"compatibility"`
}

// Check compares a receipt with a trip's fuel entry. Trips without fuel
// accept anything; receipts without liters attach as other costs.
func (m *Matcher) Check(r models.Receipt, t models.Trip) Compatibility {
	if !t.HasFuel() || r.Liters == nil || r.PriceEUR() == nil {
		return Compatibility{CanAttach: true, Status: StatusEmpty}
	}

	date := r.ReceiptDate != nil && onTripDate(*r.ReceiptDate, t)
	liters := withinPtr(r.Liters, t.FuelLiters, m.Tolerance)
	price := withinPtr(r.PriceEUR(), t.FuelCostEUR, m.Tolerance)
	if date && liters && price {
		return Compatibility{CanAttach: true, Status: StatusMatches}
	}

	var differs []string
	if !date {
		differs = append(differs, "date")
	}
	if !liters {
		differs = append(differs, "liters")
	}
	if !price {
		differs = append(differs, "price")
	}
	mismatch := strings.Join(differs, "_and_")
	if len(differs) == 3 {
		mismatch = "all"
	}
	return Compatibility{Status: StatusDiffers, Mismatch: mismatch}
}

// Candidates annotates trips with their compatibility for r.
func (m *Matcher) Candidates(r models.Receipt, trips []models.Trip) []Candidate {
	out := make([]Candidate, 0, len(trips))
	for _, t := range trips {
		out = append(out, Candidate{Trip: t, Compatibility: m.Check(r, t)})
	}
	return out
}

// Assignment is the outcome of attaching a receipt. Trip is the updated
// trip; TripChanged tells the caller whether it must be saved.
type Assignment struct {
	Receipt     models.Receipt `json:"receipt"`
	Trip        models.Trip    `json:"trip"`
	TripChanged bool           `json:"trip_changed"`
}

// Assign attaches r to t. A receipt with liters becomes the trip's fuel
// entry when the trip has none or the entry matches; anything else is
// booked as the trip's other costs.
func (m *Matcher) Assign(r models.Receipt, t models.Trip) (*Assignment, error) {
	if r.IsAssigned() && r.TripID != t.ID {
		return nil, ErrAlreadyAssigned
	}
	if r.VehicleID != "" && r.VehicleID != t.VehicleID {
		return nil, ErrVehicleMismatch
	}
	price := r.PriceEUR()
	if price == nil {
		return nil, ErrIncompleteAmount
	}

	a := &Assignment{Trip: t}
	compat := m.Check(r, t)
	switch {
	case r.Liters != nil && compat.Status == StatusMatches:
		r.AssignmentType = models.AssignmentFuel
	case r.Liters != nil && !t.HasFuel():
		liters, cost := *r.Liters, *price
		a.Trip.FuelLiters = &liters
		a.Trip.FuelCostEUR = &cost
		a.Trip.FullTank = true
		a.TripChanged = true
		r.AssignmentType = models.AssignmentFuel
	default:
		if t.HasOtherCosts() {
			return nil, fmt.Errorf("%w: %.2f EUR", ErrOtherCostsExist, *t.OtherCostsEUR)
		}
		cost, _ := decimal.NewFromFloat(*price).Round(2).Float64()
		a.Trip.OtherCostsEUR = &cost
		a.Trip.OtherCostsNote = otherCostsNote(r)
		a.TripChanged = true
		r.AssignmentType = models.AssignmentOther
	}

	r.TripID = t.ID
	r.VehicleID = t.VehicleID
	r.Status = models.ReceiptAssigned
	if err := r.ValidateAssignment(); err != nil {
		return nil, err
	}
	a.Receipt = r
	return a, nil
}

func otherCostsNote(r models.Receipt) string {
	switch {
	case r.VendorName != "" && r.CostDescription != "":
		return r.VendorName + ": " + r.CostDescription
	case r.VendorName != "":
		return r.VendorName
	case r.CostDescription != "":
		return r.CostDescription
	default:
		return "Other costs"
	}
}

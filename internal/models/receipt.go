package models

import (
	"errors"
	"time"
)

// ReceiptKind is the classification of a scanned receipt.
type ReceiptKind string

const (
	ReceiptFuel  ReceiptKind = "fuel"
	ReceiptOther ReceiptKind = "other"
)

// AssignmentType records how a receipt was attached to a trip.
type AssignmentType string

const (
	AssignmentNone  AssignmentType = ""
	AssignmentFuel  AssignmentType = "fuel"
	AssignmentOther AssignmentType = "other"
)

// ReceiptStatus tracks the extraction state of a receipt.
type ReceiptStatus string

const (
	ReceiptPending     ReceiptStatus = "pending"
	ReceiptParsed      ReceiptStatus = "parsed"
	ReceiptNeedsReview ReceiptStatus = "needs_review"
	ReceiptAssigned    ReceiptStatus = "assigned"
)

var ErrInconsistentAssignment = errors.New("receipt trip and assignment type must be set together")

// Receipt is a scanned purchase document. Extraction is out of scope; only
// the resulting fields are kept.
type Receipt struct {
	ID               string         `json:"id" bson:"_id"`
	VehicleID        string         `json:"vehicle_id,omitempty" bson:"vehicle_id,omitempty"`
	TripID           string         `json:"trip_id,omitempty" bson:"trip_id,omitempty"`
	FileName         string         `json:"file_name" bson:"file_name"`
	OriginalAmount   *float64       `json:"original_amount,omitempty" bson:"original_amount,omitempty"`
	OriginalCurrency string         `json:"original_currency,omitempty" bson:"original_currency,omitempty"`
	AmountEUR        *float64       `json:"amount_eur,omitempty" bson:"amount_eur,omitempty"`
	ReceiptDate      *time.Time     `json:"receipt_date,omitempty" bson:"receipt_date,omitempty"`
	Liters           *float64       `json:"liters,omitempty" bson:"liters,omitempty"`
	Kind             ReceiptKind    `json:"kind" bson:"kind"`
	SourceYear       *int           `json:"source_year,omitempty" bson:"source_year,omitempty"`
	AssignmentType   AssignmentType `json:"assignment_type,omitempty" bson:"assignment_type,omitempty"`
	MismatchOverride bool           `json:"mismatch_override" bson:"mismatch_override"`
	StationName      string         `json:"station_name,omitempty" bson:"station_name,omitempty"`
	VendorName       string         `json:"vendor_name,omitempty" bson:"vendor_name,omitempty"`
	CostDescription  string         `json:"cost_description,omitempty" bson:"cost_description,omitempty"`
	Status           ReceiptStatus  `json:"status" bson:"status"`
	CreatedAt        time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" bson:"updated_at"`
}

// PriceEUR returns the EUR amount, falling back to the original amount when
// the receipt was already in EUR.
func (r *Receipt) PriceEUR() *float64 {
	if r.AmountEUR != nil {
		return r.AmountEUR
	}
	if r.OriginalAmount != nil && (r.OriginalCurrency == "" || r.OriginalCurrency == "EUR") {
		return r.OriginalAmount
	}
	return nil
}

// Classification returns the receipt kind. A receipt with liters is fuel
// even when the kind was never recorded.
func (r *Receipt) Classification() ReceiptKind {
	if r.Kind != "" {
		return r.Kind
	}
	if r.Liters != nil {
		return ReceiptFuel
	}
	return ReceiptOther
}

// IsAssigned reports whether the receipt is attached to a trip.
func (r *Receipt) IsAssigned() bool {
	return r.TripID != ""
}

// ValidateAssignment enforces that TripID and AssignmentType are set together.
func (r *Receipt) ValidateAssignment() error {
	if (r.TripID == "") != (r.AssignmentType == AssignmentNone) {
		return ErrInconsistentAssignment
	}
	return nil
}

// InYear reports whether the receipt belongs to the given year, by source
// year first and receipt date otherwise.
func (r *Receipt) InYear(year int) bool {
	if r.SourceYear != nil {
		return *r.SourceYear == year
	}
	if r.ReceiptDate != nil {
		return r.ReceiptDate.Year() == year
	}
	return false
}

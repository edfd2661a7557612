package receipts

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ReasonKind names a MismatchReason variant on the wire.
type ReasonKind string

const (
	KindNone               ReasonKind = "none"
	KindMissingReceiptData ReasonKind = "missing_receipt_data"
	KindNoFuelTripFound    ReasonKind = "no_fuel_trip_found"
	KindNoOtherCostMatch   ReasonKind = "no_other_cost_match"
	KindDateMismatch       ReasonKind = "date_mismatch"
	KindLitersMismatch     ReasonKind = "liters_mismatch"
	KindPriceMismatch      ReasonKind = "price_mismatch"
)

// MismatchReason explains the outcome of matching one receipt. The set of
// variants is closed: only types in this package implement it, and every
// consumer goes through ReasonVisitor.
type MismatchReason interface {
	Kind() ReasonKind
	Accept(v ReasonVisitor)
	sealed()
}

// ReasonVisitor has one method per variant.
type ReasonVisitor interface {
	VisitNoMismatch(NoMismatch)
	VisitMissingReceiptData(MissingReceiptData)
	VisitNoFuelTripFound(NoFuelTripFound)
	VisitNoOtherCostMatch(NoOtherCostMatch)
	VisitDateMismatch(DateMismatch)
	VisitLitersMismatch(LitersMismatch)
	VisitPriceMismatch(PriceMismatch)
}

// NoMismatch means the receipt was verified against a trip.
type NoMismatch struct{}

// MissingReceiptData lists the receipt fields needed for matching that are empty.
type MissingReceiptData struct {
	Fields []string `json:"fields"`
}

type NoFuelTripFound struct{}

type NoOtherCostMatch struct{}

// DateMismatch: liters and price agree but the trip is on another day.
type DateMismatch struct {
	ReceiptDate     string `json:"receipt_date"`
	ClosestTripDate string `json:"closest_trip_date"`
}

// LitersMismatch: date and price agree but the quantity differs.
type LitersMismatch struct {
	ReceiptLiters float64 `json:"receipt_liters"`
	TripLiters    float64 `json:"trip_liters"`
}

// PriceMismatch: date and liters agree but the price differs.
type PriceMismatch struct {
	ReceiptPrice float64 `json:"receipt_price"`
	TripPrice    float64 `json:"trip_price"`
}

func (NoMismatch) Kind() ReasonKind         { return KindNone }
func (MissingReceiptData) Kind() ReasonKind { return KindMissingReceiptData }
func (NoFuelTripFound) Kind() ReasonKind    { return KindNoFuelTripFound }
func (NoOtherCostMatch) Kind() ReasonKind   { return KindNoOtherCostMatch }
func (DateMismatch) Kind() ReasonKind       { return KindDateMismatch }
func (LitersMismatch) Kind() ReasonKind     { return KindLitersMismatch }
func (PriceMismatch) Kind() ReasonKind      { return KindPriceMismatch }

func (r NoMismatch) Accept(v ReasonVisitor)         { v.VisitNoMismatch(r) }
func (r MissingReceiptData) Accept(v ReasonVisitor) { v.VisitMissingReceiptData(r) }
func (r NoFuelTripFound) Accept(v ReasonVisitor)    { v.VisitNoFuelTripFound(r) }
func (r NoOtherCostMatch) Accept(v ReasonVisitor)   { v.VisitNoOtherCostMatch(r) }
func (r DateMismatch) Accept(v ReasonVisitor)       { v.VisitDateMismatch(r) }
func (r LitersMismatch) Accept(v ReasonVisitor)     { v.VisitLitersMismatch(r) }
func (r PriceMismatch) Accept(v ReasonVisitor)      { v.VisitPriceMismatch(r) }

func (NoMismatch) sealed()         {}
func (MissingReceiptData) sealed() {}
func (NoFuelTripFound) sealed()    {}
func (NoOtherCostMatch) sealed()   {}
func (DateMismatch) sealed()       {}
func (LitersMismatch) sealed()     {}
func (PriceMismatch) sealed()      {}

// describer renders a reason for people.
type describer struct{ out string }

func (d *describer) VisitNoMismatch(NoMismatch) { d.out = "verified" }
func (d *describer) VisitMissingReceiptData(r MissingReceiptData) {
	d.out = "receipt is missing " + strings.Join(r.Fields, ", ")
}
func (d *describer) VisitNoFuelTripFound(NoFuelTripFound) { d.out = "no trip with a matching fuel entry" }
func (d *describer) VisitNoOtherCostMatch(NoOtherCostMatch) {
	d.out = "no trip with matching other costs"
}
func (d *describer) VisitDateMismatch(r DateMismatch) {
	d.out = fmt.Sprintf("receipt dated %s, closest trip on %s", r.ReceiptDate, r.ClosestTripDate)
}
func (d *describer) VisitLitersMismatch(r LitersMismatch) {
	d.out = fmt.Sprintf("receipt has %.2f L, trip has %.2f L", r.ReceiptLiters, r.TripLiters)
}
func (d *describer) VisitPriceMismatch(r PriceMismatch) {
	d.out = fmt.Sprintf("receipt total %.2f EUR, trip cost %.2f EUR", r.ReceiptPrice, r.TripPrice)
}

// Describe returns a human readable explanation of r.
func Describe(r MismatchReason) string {
	d := &describer{}
	r.Accept(d)
	return d.out
}

// encodedReason is the JSON shape of a reason: its kind plus the variant's
// own fields, if any.
type encodedReason struct {
	Kind   ReasonKind      `json:"kind"`
	Detail json.RawMessage `json:"detail,omitempty"`
}

func encodeReason(r MismatchReason) ([]byte, error) {
	enc := encodedReason{Kind: r.Kind()}
	switch r.(type) {
	case MissingReceiptData, DateMismatch, LitersMismatch, PriceMismatch:
		detail, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		enc.Detail = detail
	}
	return json.Marshal(enc)
}

func decodeReason(data []byte) (MismatchReason, error) {
	var enc encodedReason
	if err := json.Unmarshal(data, &enc); err != nil {
		return nil, err
	}
	var err error
	switch enc.Kind {
	case KindNone:
		return NoMismatch{}, nil
	case KindNoFuelTripFound:
		return NoFuelTripFound{}, nil
	case KindNoOtherCostMatch:
		return NoOtherCostMatch{}, nil
	case KindMissingReceiptData:
		var r MissingReceiptData
		err = json.Unmarshal(enc.Detail, &r)
		return r, err
	case KindDateMismatch:
		var r DateMismatch
		err = json.Unmarshal(enc.Detail, &r)
		return r, err
	case KindLitersMismatch:
		var r LitersMismatch
		err = json.Unmarshal(enc.Detail, &r)
		return r, err
	case KindPriceMismatch:
		var r PriceMismatch
		err = json.Unmarshal(enc.Detail, &r)
		return r, err
	default:
		return nil, fmt.Errorf("unknown mismatch reason %q", enc.Kind)
	}
}

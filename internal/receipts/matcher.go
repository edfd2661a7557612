package receipts

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ukydev/trip-ledger/internal/ledger"
	"github.com/ukydev/trip-ledger/internal/models"
)

const dateLayout = "2006-01-02"

// Verification is the result of matching one receipt.
type Verification struct {
	ReceiptID  string
	Matched    bool
	TripID     string
	TripDate   string
	TripRoute  string
	Reason     MismatchReason
	Overridden bool
}

// ShowWarning reports whether the mismatch should be displayed. The
// override only hides the warning; Reason is kept as computed.
func (v Verification) ShowWarning() bool {
	return !v.Matched && !v.Overridden
}

type verificationJSON struct {
	ReceiptID   string          `json:"receipt_id"`
	Matched     bool            `json:"matched"`
	TripID      string          `json:"trip_id,omitempty"`
	TripDate    string          `json:"trip_date,omitempty"`
	TripRoute   string          `json:"trip_route,omitempty"`
	Reason      json.RawMessage `json:"reason"`
	Message     string          `json:"message"`
	Overridden  bool            `json:"overridden"`
	ShowWarning bool            `json:"show_warning"`
}

func (v Verification) MarshalJSON() ([]byte, error) {
	reason := v.Reason
	if reason == nil {
		reason = NoMismatch{}
	}
	raw, err := encodeReason(reason)
	if err != nil {
		return nil, err
	}
	return json.Marshal(verificationJSON{
		ReceiptID:   v.ReceiptID,
		Matched:     v.Matched,
		TripID:      v.TripID,
		TripDate:    v.TripDate,
		TripRoute:   v.TripRoute,
		Reason:      raw,
		Message:     Describe(reason),
		Overridden:  v.Overridden,
		ShowWarning: v.ShowWarning(),
	})
}

func (v *Verification) UnmarshalJSON(data []byte) error {
	var raw verificationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	reason, err := decodeReason(raw.Reason)
	if err != nil {
		return err
	}
	*v = Verification{
		ReceiptID:  raw.ReceiptID,
		Matched:    raw.Matched,
		TripID:     raw.TripID,
		TripDate:   raw.TripDate,
		TripRoute:  raw.TripRoute,
		Reason:     reason,
		Overridden: raw.Overridden,
	}
	return nil
}

// Matcher pairs receipts with trips.
type Matcher struct {
	Tolerance decimal.Decimal
}

// NewMatcher returns a matcher comparing amounts within tolerance. A
// non-positive tolerance falls back to DefaultTolerance.
func NewMatcher(tolerance float64) *Matcher {
	if tolerance <= 0 {
		return &Matcher{Tolerance: DefaultTolerance}
	}
	return &Matcher{Tolerance: decimal.NewFromFloat(tolerance)}
}

// MatchReceipt matches with the default tolerance.
func MatchReceipt(r models.Receipt, candidates []models.Trip) Verification {
	return NewMatcher(0).Match(r, candidates)
}

// fieldMatch records which of the three compared fields agree for a trip.
type fieldMatch struct {
	trip                       models.Trip
	date, liters, price, found bool
}

// Match attaches r to one of candidates or explains why it cannot. Priority:
// missing receipt data, no candidate trips, a full match, then the first
// two-field match by date, liters and finally price. An assigned receipt is
// checked as the purchase type it was booked as.
func (m *Matcher) Match(r models.Receipt, candidates []models.Trip) Verification {
	v := Verification{ReceiptID: r.ID, Overridden: r.MismatchOverride}
	kind := r.Classification()
	switch r.AssignmentType {
	case models.AssignmentFuel:
		kind = models.ReceiptFuel
	case models.AssignmentOther:
		kind = models.ReceiptOther
	}

	if missing := missingFields(r, kind); len(missing) > 0 {
		v.Reason = MissingReceiptData{Fields: missing}
		return v
	}

	sorted, _ := ledger.SortChronological(candidates)
	if kind == models.ReceiptFuel {
		return m.matchFuel(v, r, sorted)
	}
	return m.matchOther(v, r, sorted)
}

func (m *Matcher) matchFuel(v Verification, r models.Receipt, trips []models.Trip) Verification {
	var fuelTrips []models.Trip
	for _, t := range trips {
		if t.HasFuel() {
			fuelTrips = append(fuelTrips, t)
		}
	}
	if len(fuelTrips) == 0 {
		v.Reason = NoFuelTripFound{}
		return v
	}

	price := r.PriceEUR()
	matches := make([]fieldMatch, len(fuelTrips))
	for i, t := range fuelTrips {
		matches[i] = fieldMatch{
			trip:   t,
			date:   onTripDate(*r.ReceiptDate, t),
			liters: withinPtr(r.Liters, t.FuelLiters, m.Tolerance),
			price:  withinPtr(price, t.FuelCostEUR, m.Tolerance),
		}
		if matches[i].date && matches[i].liters && matches[i].price {
			return matched(v, t)
		}
	}

	if fm := first(matches, func(f fieldMatch) bool { return !f.date && f.liters && f.price }); fm.found {
		v.Reason = DateMismatch{
			ReceiptDate:     r.ReceiptDate.Format(dateLayout),
			ClosestTripDate: fm.trip.StartTime.Format(dateLayout),
		}
		return v
	}
	if fm := first(matches, func(f fieldMatch) bool { return f.date && !f.liters && f.price }); fm.found {
		v.Reason = LitersMismatch{ReceiptLiters: *r.Liters, TripLiters: *fm.trip.FuelLiters}
		return v
	}
	if fm := first(matches, func(f fieldMatch) bool { return f.date && f.liters && !f.price }); fm.found {
		v.Reason = PriceMismatch{ReceiptPrice: *price, TripPrice: valueOr(fm.trip.FuelCostEUR)}
		return v
	}

	v.Reason = NoFuelTripFound{}
	return v
}

// matchOther looks for a trip whose other costs equal the receipt total.
// The date is not compared.
func (m *Matcher) matchOther(v Verification, r models.Receipt, trips []models.Trip) Verification {
	price := r.PriceEUR()
	for _, t := range trips {
		if t.HasOtherCosts() && withinPtr(price, t.OtherCostsEUR, m.Tolerance) {
			return matched(v, t)
		}
	}
	v.Reason = NoOtherCostMatch{}
	return v
}

func matched(v Verification, t models.Trip) Verification {
	v.Matched = true
	v.TripID = t.ID
	v.TripDate = t.StartTime.Format(dateLayout)
	v.TripRoute = t.Origin + " - " + t.Destination
	v.Reason = NoMismatch{}
	return v
}

func first(matches []fieldMatch, pred func(fieldMatch) bool) fieldMatch {
	for _, f := range matches {
		if pred(f) {
			f.found = true
			return f
		}
	}
	return fieldMatch{}
}

func missingFields(r models.Receipt, kind models.ReceiptKind) []string {
	var missing []string
	if kind == models.ReceiptFuel && r.ReceiptDate == nil {
		missing = append(missing, "date")
	}
	if r.PriceEUR() == nil {
		missing = append(missing, "amount")
	}
	if kind == models.ReceiptFuel && r.Liters == nil {
		missing = append(missing, "liters")
	}
	return missing
}

// onTripDate reports whether date falls on a calendar day spanned by the
// trip, start and end day inclusive. Days are compared in UTC.
func onTripDate(date time.Time, t models.Trip) bool {
	d := date.UTC().Format(dateLayout)
	return d >= t.StartTime.UTC().Format(dateLayout) && d <= t.EndDate().UTC().Format(dateLayout)
}

func valueOr(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

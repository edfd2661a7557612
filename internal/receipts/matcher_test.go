package receipts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/trip-ledger/internal/models"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func fuelTrip(id string, start *time.Time, liters, cost float64) models.Trip {
	return models.Trip{
		ID:          id,
		VehicleID:   "v1",
		StartTime:   start.Add(7 * time.Hour),
		DistanceKm:  600,
		FuelLiters:  models.Float(liters),
		FuelCostEUR: models.Float(cost),
		FullTank:    true,
		Origin:      "Bratislava",
		Destination: "Kosice",
	}
}

func fuelReceipt(d *time.Time, liters, price float64) models.Receipt {
	return models.Receipt{
		ID:               "r1",
		ReceiptDate:      d,
		Liters:           models.Float(liters),
		OriginalAmount:   models.Float(price),
		OriginalCurrency: "EUR",
		Kind:             models.ReceiptFuel,
	}
}

func TestMatchReceipt_DateMismatch(t *testing.T) {
	r := fuelReceipt(date(2024, time.May, 1), 50, 70)
	trip := fuelTrip("t1", date(2024, time.May, 2), 50, 70)

	v := MatchReceipt(r, []models.Trip{trip})
	assert.False(t, v.Matched)
	assert.Empty(t, v.TripID)
	assert.Equal(t, DateMismatch{ReceiptDate: "2024-05-01", ClosestTripDate: "2024-05-02"}, v.Reason)
	assert.True(t, v.ShowWarning())
}

func TestMatchReceipt_FullMatch(t *testing.T) {
	r := fuelReceipt(date(2024, time.May, 1), 50, 70)
	trips := []models.Trip{
		fuelTrip("other", date(2024, time.April, 1), 50, 70),
		fuelTrip("t1", date(2024, time.May, 1), 50.004, 69.995),
	}

	v := MatchReceipt(r, trips)
	assert.True(t, v.Matched)
	assert.Equal(t, "t1", v.TripID)
	assert.Equal(t, NoMismatch{}, v.Reason)
	assert.Equal(t, "2024-05-01", v.TripDate)
	assert.Equal(t, "Bratislava - Kosice", v.TripRoute)
	assert.False(t, v.ShowWarning())
}

func TestMatchReceipt_MultiDayTrip(t *testing.T) {
	r := fuelReceipt(date(2024, time.May, 3), 50, 70)
	trip := fuelTrip("t1", date(2024, time.May, 1), 50, 70)
	end := date(2024, time.May, 4).Add(18 * time.Hour)
	trip.EndTime = &end

	assert.True(t, MatchReceipt(r, []models.Trip{trip}).Matched)
}

func TestMatchReceipt_Priorities(t *testing.T) {
	may1 := date(2024, time.May, 1)
	r := fuelReceipt(may1, 50, 70)

	tests := []struct {
		name   string
		trips  []models.Trip
		reason MismatchReason
	}{
		{
			name:   "liters differ",
			trips:  []models.Trip{fuelTrip("t1", may1, 45, 70)},
			reason: LitersMismatch{ReceiptLiters: 50, TripLiters: 45},
		},
		{
			name:   "price differs",
			trips:  []models.Trip{fuelTrip("t1", may1, 50, 72)},
			reason: PriceMismatch{ReceiptPrice: 70, TripPrice: 72},
		},
		{
			name: "date wins over liters",
			trips: []models.Trip{
				fuelTrip("liters", may1, 45, 70),
				fuelTrip("date", date(2024, time.May, 9), 50, 70),
			},
			reason: DateMismatch{ReceiptDate: "2024-05-01", ClosestTripDate: "2024-05-09"},
		},
		{
			name: "liters wins over price",
			trips: []models.Trip{
				fuelTrip("price", may1, 50, 80),
				fuelTrip("liters", may1, 40, 70),
			},
			reason: LitersMismatch{ReceiptLiters: 50, TripLiters: 40},
		},
		{
			name: "ties reported chronologically",
			trips: []models.Trip{
				fuelTrip("late", date(2024, time.May, 20), 50, 70),
				fuelTrip("early", date(2024, time.April, 20), 50, 70),
			},
			reason: DateMismatch{ReceiptDate: "2024-05-01", ClosestTripDate: "2024-04-20"},
		},
		{
			name:   "one field only",
			trips:  []models.Trip{fuelTrip("t1", may1, 10, 20)},
			reason: NoFuelTripFound{},
		},
		{
			name:   "no fuel trips",
			trips:  []models.Trip{{ID: "t1", StartTime: *may1, DistanceKm: 10}},
			reason: NoFuelTripFound{},
		},
		{
			name:   "no trips at all",
			reason: NoFuelTripFound{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := MatchReceipt(r, tt.trips)
			assert.False(t, v.Matched)
			assert.Equal(t, tt.reason, v.Reason)
		})
	}
}

func TestMatchReceipt_MissingData(t *testing.T) {
	r := models.Receipt{ID: "r1", Kind: models.ReceiptFuel}
	v := MatchReceipt(r, []models.Trip{fuelTrip("t1", date(2024, time.May, 1), 50, 70)})
	assert.Equal(t, MissingReceiptData{Fields: []string{"date", "amount", "liters"}}, v.Reason)

	foreign := fuelReceipt(date(2024, time.May, 1), 50, 1900)
	foreign.OriginalCurrency = "CZK"
	v = MatchReceipt(foreign, nil)
	assert.Equal(t, MissingReceiptData{Fields: []string{"amount"}}, v.Reason)
}

func TestMatchReceipt_OtherCosts(t *testing.T) {
	may1 := date(2024, time.May, 1)
	wash := models.Receipt{ID: "r2", ReceiptDate: may1, AmountEUR: models.Float(12.9), Kind: models.ReceiptOther}

	withCost := func(id string, d *time.Time, eur float64) models.Trip {
		return models.Trip{ID: id, StartTime: *d, OtherCostsEUR: models.Float(eur)}
	}

	v := MatchReceipt(wash, []models.Trip{withCost("t1", may1, 12.9)})
	assert.True(t, v.Matched)

	// Other costs match on the amount alone.
	v = MatchReceipt(wash, []models.Trip{withCost("t1", date(2024, time.May, 3), 12.9)})
	assert.True(t, v.Matched)
	assert.Equal(t, "t1", v.TripID)

	undated := wash
	undated.ReceiptDate = nil
	v = MatchReceipt(undated, []models.Trip{withCost("t1", may1, 12.9)})
	assert.True(t, v.Matched)

	v = MatchReceipt(wash, []models.Trip{withCost("t1", may1, 15)})
	assert.Equal(t, NoOtherCostMatch{}, v.Reason)

	v = MatchReceipt(wash, []models.Trip{fuelTrip("t1", may1, 50, 70)})
	assert.Equal(t, NoOtherCostMatch{}, v.Reason)
}

func TestMatchReceipt_DateComparedInUTC(t *testing.T) {
	// 23:30 on April 30 in UTC-2 is May 1 in UTC.
	local := time.Date(2024, time.April, 30, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))
	r := fuelReceipt(&local, 50, 70)
	trip := fuelTrip("t1", date(2024, time.May, 1), 50, 70)

	v := MatchReceipt(r, []models.Trip{trip})
	assert.True(t, v.Matched)
}

func TestVerification_OverrideKeepsReason(t *testing.T) {
	r := fuelReceipt(date(2024, time.May, 1), 50, 70)
	r.MismatchOverride = true
	v := MatchReceipt(r, []models.Trip{fuelTrip("t1", date(2024, time.May, 2), 50, 70)})

	assert.True(t, v.Overridden)
	assert.False(t, v.ShowWarning())
	assert.Equal(t, KindDateMismatch, v.Reason.Kind())
}

func TestVerification_JSON(t *testing.T) {
	v := Verification{
		ReceiptID: "r1",
		Reason:    LitersMismatch{ReceiptLiters: 50, TripLiters: 45},
	}
	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"liters_mismatch"`)
	assert.Contains(t, string(data), `"show_warning":true`)

	var back Verification
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, v, back)

	data, err = json.Marshal(Verification{ReceiptID: "r2", Matched: true})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"reason":{"kind":"none"}`)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "verified", Describe(NoMismatch{}))
	assert.Equal(t, "receipt is missing date, liters", Describe(MissingReceiptData{Fields: []string{"date", "liters"}}))
	assert.Equal(t, "receipt dated 2024-05-01, closest trip on 2024-05-02",
		Describe(DateMismatch{ReceiptDate: "2024-05-01", ClosestTripDate: "2024-05-02"}))
	assert.Equal(t, "receipt total 70.00 EUR, trip cost 72.00 EUR", Describe(PriceMismatch{ReceiptPrice: 70, TripPrice: 72}))
}

func TestWithinTolerance(t *testing.T) {
	tol := DefaultTolerance
	assert.True(t, within(70.00, 70.009, tol))
	assert.False(t, within(70.00, 70.01, tol))
	assert.True(t, within(0.1+0.2, 0.3, tol))
}

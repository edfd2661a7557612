package ledger

// PeriodRate is the consumption per 100 km of a closed period. Partial fills
// inside the period count toward the amount. Open periods and periods with
// no distance have no rate.
func PeriodRate(p Period) (float64, bool) {
	if !p.Closed || p.Distance <= 0 {
		return 0, false
	}
	return p.Amount * 100 / p.Distance, true
}

// AggregateRate is the distance-weighted rate over closed periods with a
// defined rate.
func AggregateRate(periods []Period) (float64, bool) {
	amount, distance := closedTotals(periods)
	if distance <= 0 {
		return 0, false
	}
	return amount * 100 / distance, true
}

func closedTotals(periods []Period) (amount, distance float64) {
	for _, p := range periods {
		if _, ok := PeriodRate(p); ok {
			amount += p.Amount
			distance += p.Distance
		}
	}
	return amount, distance
}

// applicableRates maps every trip to the rate of its period, falling back to
// baseline where the period has no rate. estimated marks the fallbacks.
func applicableRates(periods []Period, n int, baseline float64) (rates []float64, estimated []bool) {
	rates = make([]float64, n)
	estimated = make([]bool, n)
	for _, p := range periods {
		rate, ok := PeriodRate(p)
		if !ok {
			rate = baseline
		}
		for _, e := range p.Entries {
			rates[e.Index] = rate
			estimated[e.Index] = !ok
		}
	}
	return rates, estimated
}

package ledger

import "math"

// MarginStatus is the verdict of a margin check.
type MarginStatus string

const (
	// MarginNotApplicable is used for electric consumption, which has no
	// legal baseline.
	MarginNotApplicable MarginStatus = "not_applicable"
	// MarginUnavailable means there was no closed period to measure.
	MarginUnavailable MarginStatus = "unavailable"
	MarginWithin      MarginStatus = "within"
	MarginExceeded    MarginStatus = "exceeded"
)

// MarginVerdict pairs a status with the deviation it was based on.
type MarginVerdict struct {
	Status    MarginStatus `json:"status"`
	Deviation *float64     `json:"deviation,omitempty"`
}

// MarginForPeriod returns (rate - baseline) / baseline for a closed fuel
// period with a defined rate, and nil otherwise.
func MarginForPeriod(p Period, baseline float64) *float64 {
	if p.Resource != ResourceFuel || baseline <= 0 {
		return nil
	}
	rate, ok := PeriodRate(p)
	if !ok {
		return nil
	}
	d := (rate - baseline) / baseline
	return &d
}

// Deviation is the aggregate deviation over the closed periods of a window.
// It is nil for energy and when no closed period has a rate.
func Deviation(periods []Period, baseline float64) *float64 {
	if baseline <= 0 || len(periods) == 0 || periods[0].Resource != ResourceFuel {
		return nil
	}
	rate, ok := AggregateRate(periods)
	if !ok {
		return nil
	}
	d := (rate - baseline) / baseline
	return &d
}

// WorstMargin returns the largest per-period deviation. Every closed window
// is audited on its own, so one bad window is enough to break the limit.
func WorstMargin(periods []Period, baseline float64) *float64 {
	var worst *float64
	for _, p := range periods {
		m := MarginForPeriod(p, baseline)
		if m == nil {
			continue
		}
		if worst == nil || *m > *worst {
			worst = m
		}
	}
	return worst
}

// Evaluate turns a deviation for r into a verdict.
func (p Policy) Evaluate(r Resource, deviation *float64) MarginVerdict {
	switch {
	case r == ResourceEnergy:
		return MarginVerdict{Status: MarginNotApplicable}
	case deviation == nil:
		return MarginVerdict{Status: MarginUnavailable}
	case p.exceeds(*deviation):
		return MarginVerdict{Status: MarginExceeded, Deviation: deviation}
	default:
		return MarginVerdict{Status: MarginWithin, Deviation: deviation}
	}
}

// BufferKm is the extra distance needed for amount over distance to come
// down to baseline*(1+target). It is zero when already at or below target.
func BufferKm(amount, distance, baseline, target float64) float64 {
	if amount <= 0 || baseline <= 0 {
		return 0
	}
	targetRate := baseline * (1 + target)
	required := amount * 100 / targetRate
	return math.Max(required-distance, 0)
}

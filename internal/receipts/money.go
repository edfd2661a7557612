package receipts

import "github.com/shopspring/decimal"

// DefaultTolerance is the largest difference treated as equal for liters
// and EUR amounts.
var DefaultTolerance = decimal.NewFromFloat(0.01)

// within compares a and b in decimal so cent amounts do not pick up float
// noise. The tolerance itself is exclusive.
func within(a, b float64, tolerance decimal.Decimal) bool {
	diff := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs()
	return diff.LessThan(tolerance)
}

func withinPtr(a, b *float64, tolerance decimal.Decimal) bool {
	if a == nil || b == nil {
		return false
	}
	return within(*a, *b, tolerance)
}

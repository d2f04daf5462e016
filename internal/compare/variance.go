package compare

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)

	// Severity tier boundaries on the absolute percentage change.
	minorPercentCeiling    = decimal.NewFromInt(10)
	moderatePercentCeiling = decimal.NewFromInt(25)
)

// PairVariance computes the signed deltas between a matched original and
// supplement item. PercentChange is nil when the original total is zero.
func PairVariance(original, supplement LineItem) Variance {
	v := Variance{
		QuantityDelta: supplement.Quantity.Sub(original.Quantity),
		PriceDelta:    supplement.Price.Sub(original.Price),
		TotalDelta:    supplement.Total.Sub(original.Total),
	}
	if !original.Total.IsZero() {
		pct := v.TotalDelta.Div(original.Total).Mul(hundred)
		v.PercentChange = &pct
	}
	v.Severity = severityFor(v.TotalDelta, v.PercentChange)
	return v
}

// NewItemVariance is the variance record for a supplement item with no
// original counterpart: the whole total is new and there is no baseline.
func NewItemVariance(item LineItem) Variance {
	v := Variance{TotalDelta: item.Total}
	v.Severity = severityFor(v.TotalDelta, nil)
	return v
}

// RemovedItemVariance is the variance record for an original item absent
// from the supplement: by convention the change is -100%.
func RemovedItemVariance(item LineItem) Variance {
	pct := hundred.Neg()
	v := Variance{TotalDelta: item.Total.Neg(), PercentChange: &pct}
	v.Severity = severityFor(v.TotalDelta, v.PercentChange)
	return v
}

// severityFor tiers a variance by absolute percentage change, falling back
// to the dollar delta when there is no baseline percentage.
func severityFor(delta decimal.Decimal, percent *decimal.Decimal) Severity {
	if delta.IsZero() {
		return SeverityNone
	}
	if percent == nil {
		if delta.Abs().GreaterThanOrEqual(highVarianceDollarFloor) {
			return SeverityMajor
		}
		return SeverityMinor
	}
	abs := percent.Abs()
	switch {
	case abs.LessThan(minorPercentCeiling):
		return SeverityMinor
	case abs.LessThan(moderatePercentCeiling):
		return SeverityModerate
	default:
		return SeverityMajor
	}
}

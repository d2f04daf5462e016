package compare

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// Thresholds for flagging an item as high-variance. An item qualifies when
// its absolute percentage change exceeds the percent threshold or its
// absolute dollar variance exceeds the dollar floor.
var (
	highVariancePercentThreshold = decimal.NewFromInt(25)
	highVarianceDollarFloor      = decimal.NewFromInt(100)
)

// Aggregate rolls all per-item variances up into distribution and
// descriptive statistics. classifications maps item IDs to their
// classification; matched items are keyed by the supplement side.
func Aggregate(rec ReconciliationResult, classifications map[string]ClassificationResult) VarianceStatistics {
	stats := VarianceStatistics{
		ByChargeType: make(map[ChargeType]decimal.Decimal),
		Distribution: make(map[ChargeType]ChargeTypeStats),
	}

	type observation struct {
		itemID   string
		variance Variance
		charge   ChargeType
	}

	var observations []observation
	originalSum := decimal.Zero

	for _, pair := range rec.Pairs {
		originalSum = originalSum.Add(pair.Original.Total)
		observations = append(observations, observation{
			itemID:   pair.Supplement.ID,
			variance: pair.Variance,
			charge:   chargeTypeOf(pair.Supplement.ID, classifications),
		})
	}
	for _, item := range rec.Added {
		observations = append(observations, observation{
			itemID:   item.ID,
			variance: NewItemVariance(item),
			charge:   chargeTypeOf(item.ID, classifications),
		})
	}
	for _, item := range rec.Removed {
		originalSum = originalSum.Add(item.Total)
		observations = append(observations, observation{
			itemID:   item.ID,
			variance: RemovedItemVariance(item),
			charge:   chargeTypeOf(item.ID, classifications),
		})
	}

	if len(observations) == 0 {
		return stats
	}

	values := make([]float64, 0, len(observations))
	for i, obs := range observations {
		delta := obs.variance.TotalDelta
		stats.TotalVariance = stats.TotalVariance.Add(delta)
		stats.ByChargeType[obs.charge] = stats.ByChargeType[obs.charge].Add(delta)
		values = append(values, delta.InexactFloat64())

		if i == 0 {
			stats.Min = delta
			stats.Max = delta
		} else {
			if delta.LessThan(stats.Min) {
				stats.Min = delta
			}
			if delta.GreaterThan(stats.Max) {
				stats.Max = delta
			}
		}

		if isHighVariance(obs.variance) {
			stats.HighVarianceItems = append(stats.HighVarianceItems, obs.itemID)
		}
	}

	if !originalSum.IsZero() {
		pct := stats.TotalVariance.Div(originalSum).Mul(hundred)
		stats.TotalVariancePercent = &pct
	}

	stats.Mean = mean(values)
	stats.Median = median(values)
	stats.StdDev = populationStdDev(values, stats.Mean)

	// Distribution reflects the composition of the supplement estimate:
	// matched items on their supplement side plus newly added items.
	current := make([]LineItem, 0, len(rec.Pairs)+len(rec.Added))
	for _, pair := range rec.Pairs {
		current = append(current, pair.Supplement)
	}
	current = append(current, rec.Added...)
	for _, item := range current {
		charge := chargeTypeOf(item.ID, classifications)
		bucket := stats.Distribution[charge]
		bucket.Count++
		bucket.TotalAmount = bucket.TotalAmount.Add(item.Total)
		bucket.AverageAmount = bucket.TotalAmount.Div(decimal.NewFromInt(int64(bucket.Count)))
		stats.Distribution[charge] = bucket
	}

	return stats
}

func chargeTypeOf(itemID string, classifications map[string]ClassificationResult) ChargeType {
	if c, ok := classifications[itemID]; ok {
		return c.ChargeType
	}
	return ChargeUnknown
}

func isHighVariance(v Variance) bool {
	if v.PercentChange != nil && v.PercentChange.Abs().GreaterThan(highVariancePercentThreshold) {
		return true
	}
	return v.TotalDelta.Abs().GreaterThan(highVarianceDollarFloor)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func populationStdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

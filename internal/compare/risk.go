package compare

import "github.com/shopspring/decimal"

// Indicator weights. Each indicator's contribution is clipped to its own
// sub-range before summing, so the overall score stays in [0,100].
const (
	weightVariancePercent = 0.6
	weightNewItemShare    = 0.3
	weightUnknownItems    = 0.1
)

// Trigger thresholds above which an indicator becomes a named RiskFactor.
const (
	triggerVariancePercent = 15.0
	triggerNewItemShare    = 0.25
	triggerUnknownItems    = 1
)

// Risk tier boundaries on the overall score.
const (
	tierLowCeiling    = 33.0
	tierMediumCeiling = 66.0
)

// Indicator names used on RiskFactor records.
const (
	IndicatorVariancePercent = "total_variance_percent"
	IndicatorNewItemShare    = "new_item_dollar_share"
	IndicatorUnknownItems    = "unknown_classifications"
)

var mitigations = map[string]string{
	IndicatorVariancePercent: "Review the largest line-item increases against repair photos before approving.",
	IndicatorNewItemShare:    "Verify that newly added operations were authorized and relate to the original loss.",
	IndicatorUnknownItems:    "Request operation codes or part numbers for unclassified line items.",
}

// Assess maps aggregate statistics to a bounded 0-100 risk score with a
// tier, contributing factors and fixed mitigation suggestions.
func Assess(stats VarianceStatistics, rec ReconciliationResult, supplementTotal decimal.Decimal, classifications map[string]ClassificationResult) RiskAssessment {
	variancePct := 0.0
	if stats.TotalVariancePercent != nil {
		variancePct = stats.TotalVariancePercent.Abs().InexactFloat64()
	}

	newShare := 0.0
	if !supplementTotal.IsZero() {
		newDollars := decimal.Zero
		for _, item := range rec.Added {
			newDollars = newDollars.Add(item.Total)
		}
		newShare = newDollars.Div(supplementTotal).InexactFloat64()
	}

	unknownCount := 0
	for _, c := range classifications {
		if c.ChargeType == ChargeUnknown {
			unknownCount++
		}
	}

	score := clip01(variancePct/100)*weightVariancePercent*100 +
		clip01(newShare)*weightNewItemShare*100 +
		clip01(float64(unknownCount)/10)*weightUnknownItems*100

	assessment := RiskAssessment{
		Score: score,
		Tier:  tierFor(score),
	}

	if variancePct > triggerVariancePercent {
		assessment.Factors = append(assessment.Factors, RiskFactor{
			Indicator:  IndicatorVariancePercent,
			Impact:     weightVariancePercent,
			Likelihood: 0.7,
			Mitigation: mitigations[IndicatorVariancePercent],
		})
	}
	if newShare > triggerNewItemShare {
		assessment.Factors = append(assessment.Factors, RiskFactor{
			Indicator:  IndicatorNewItemShare,
			Impact:     weightNewItemShare,
			Likelihood: 0.6,
			Mitigation: mitigations[IndicatorNewItemShare],
		})
	}
	if unknownCount >= triggerUnknownItems {
		assessment.Factors = append(assessment.Factors, RiskFactor{
			Indicator:  IndicatorUnknownItems,
			Impact:     weightUnknownItems,
			Likelihood: 0.5,
			Mitigation: mitigations[IndicatorUnknownItems],
		})
	}

	switch assessment.Tier {
	case RiskHigh:
		assessment.Recommendations = append(assessment.Recommendations,
			"Route this supplement for manual adjuster review before payment.")
	case RiskMedium:
		assessment.Recommendations = append(assessment.Recommendations,
			"Spot-check the flagged high-variance line items.")
	default:
		assessment.Recommendations = append(assessment.Recommendations,
			"Supplement is within normal variance; standard processing applies.")
	}
	for _, factor := range assessment.Factors {
		assessment.Recommendations = append(assessment.Recommendations, factor.Mitigation)
	}

	return assessment
}

func tierFor(score float64) RiskTier {
	switch {
	case score < tierLowCeiling:
		return RiskLow
	case score <= tierMediumCeiling:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

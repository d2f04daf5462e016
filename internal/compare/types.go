package compare

import "github.com/shopspring/decimal"

// ChargeType classifies the economic nature of a line item.
type ChargeType string

const (
	ChargePartWithLabor ChargeType = "part_with_labor"
	ChargeLaborOnly     ChargeType = "labor_only"
	ChargeMaterial      ChargeType = "material"
	ChargeSublet        ChargeType = "sublet"
	ChargeMiscellaneous ChargeType = "miscellaneous"
	ChargeUnknown       ChargeType = "unknown"
)

// LineItem is one billable entry on a repair estimate. Items are produced by
// the extraction layer and are never mutated by the engine.
type LineItem struct {
	ID           string           `json:"id"`
	Description  string           `json:"description"`
	Quantity     decimal.Decimal  `json:"quantity"`
	Price        decimal.Decimal  `json:"price"`
	Total        decimal.Decimal  `json:"total"`
	Operation    string           `json:"operation,omitempty"`
	PartNumber   string           `json:"partNumber,omitempty"`
	LaborHours   *decimal.Decimal `json:"laborHours,omitempty"`
	LaborRate    *decimal.Decimal `json:"laborRate,omitempty"`
	PartCategory string           `json:"partCategory,omitempty"`
}

// Evidence flags attached to a ClassificationResult.
const (
	EvidenceOperationCode = "operation_code_match"
	EvidenceCategoryHint  = "category_match"
	EvidencePartNumber    = "part_number_present"
	EvidenceLaborHours    = "labor_hours_present"
	EvidenceKeyword       = "description_keyword_match"
)

// ClassificationResult is the outcome of classifying a single line item.
type ClassificationResult struct {
	ItemID     string     `json:"item_id"`
	ChargeType ChargeType `json:"charge_type"`
	Confidence float64    `json:"confidence"`
	Evidence   []string   `json:"evidence,omitempty"`
	Warnings   []string   `json:"warnings,omitempty"`
}

// Separation methods recorded on a CostBreakdown, in priority order.
const (
	MethodStatedRate    = "stated_rate"
	MethodInferredRate  = "inferred_rate"
	MethodStandardHours = "standard_hours"
	MethodFallbackRatio = "fallback_ratio"
)

// CostBreakdown splits a part_with_labor charge into part and labor cost.
type CostBreakdown struct {
	ItemID      string          `json:"item_id"`
	PartCost    decimal.Decimal `json:"part_cost"`
	LaborCost   decimal.Decimal `json:"labor_cost"`
	IsValidated bool            `json:"is_validated"`
	// Variance is the signed difference partCost + laborCost - total. It is
	// only meaningful when IsValidated is false.
	Variance decimal.Decimal `json:"variance"`
	Method   string          `json:"method"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Severity tiers for a variance record.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
)

// Variance holds the signed deltas between an original and supplement item.
// PercentChange is nil when the original total is zero (no baseline).
type Variance struct {
	QuantityDelta decimal.Decimal  `json:"quantity_delta"`
	PriceDelta    decimal.Decimal  `json:"price_delta"`
	TotalDelta    decimal.Decimal  `json:"total_delta"`
	PercentChange *decimal.Decimal `json:"percent_change,omitempty"`
	Severity      Severity         `json:"severity"`
}

// MatchedPair pairs one original item with one supplement item.
type MatchedPair struct {
	Original   LineItem `json:"original"`
	Supplement LineItem `json:"supplement"`
	Score      float64  `json:"score"`
	// IsPotentialDuplicate flags pairs whose total moved so far that the
	// match may be a coincidentally-named different item.
	IsPotentialDuplicate bool     `json:"is_potential_duplicate"`
	Variance             Variance `json:"variance"`
}

// ReconciliationResult partitions the items of both estimates into matched
// pairs, removed originals and newly added supplement items.
type ReconciliationResult struct {
	Pairs    []MatchedPair `json:"pairs"`
	Removed  []LineItem    `json:"removed"`
	Added    []LineItem    `json:"added"`
	Accuracy float64       `json:"accuracy"`
	Warnings []string      `json:"warnings,omitempty"`
}

// ChargeTypeStats is the distribution bucket for one charge type.
type ChargeTypeStats struct {
	Count         int             `json:"count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AverageAmount decimal.Decimal `json:"average_amount"`
}

// VarianceStatistics aggregates all per-item variances.
type VarianceStatistics struct {
	TotalVariance        decimal.Decimal                `json:"total_variance"`
	TotalVariancePercent *decimal.Decimal               `json:"total_variance_percent,omitempty"`
	ByChargeType         map[ChargeType]decimal.Decimal `json:"by_charge_type"`
	Distribution         map[ChargeType]ChargeTypeStats `json:"distribution"`
	Mean                 float64                        `json:"mean"`
	Median               float64                        `json:"median"`
	StdDev               float64                        `json:"std_dev"`
	Min                  decimal.Decimal                `json:"min"`
	Max                  decimal.Decimal                `json:"max"`
	HighVarianceItems    []string                       `json:"high_variance_items,omitempty"`
}

// RiskTier buckets an overall risk score.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// RiskFactor is one indicator that pushed the score up.
type RiskFactor struct {
	Indicator  string  `json:"indicator"`
	Impact     float64 `json:"impact"`
	Likelihood float64 `json:"likelihood"`
	Mitigation string  `json:"mitigation"`
}

// RiskAssessment is the bounded risk summary for a comparison.
type RiskAssessment struct {
	Score           float64      `json:"score"`
	Tier            RiskTier     `json:"tier"`
	Factors         []RiskFactor `json:"factors,omitempty"`
	Recommendations []string     `json:"recommendations,omitempty"`
}

// ItemStatus describes how an item fared in reconciliation.
type ItemStatus string

const (
	StatusMatched ItemStatus = "matched"
	StatusNew     ItemStatus = "new"
	StatusRemoved ItemStatus = "removed"
)

// ItemAnalysis bundles the classification and, for part_with_labor items,
// the cost breakdown for one distinct line item. Matched items carry the
// supplement version.
type ItemAnalysis struct {
	Item           LineItem             `json:"item"`
	Status         ItemStatus           `json:"status"`
	Classification ClassificationResult `json:"classification"`
	Breakdown      *CostBreakdown       `json:"breakdown,omitempty"`
}

// Report is the full comparison output for one original/supplement pair.
type Report struct {
	Reconciliation  ReconciliationResult `json:"reconciliation"`
	Items           []ItemAnalysis       `json:"items"`
	Statistics      VarianceStatistics   `json:"statistics"`
	Risk            RiskAssessment       `json:"risk"`
	OriginalTotal   decimal.Decimal      `json:"original_total"`
	SupplementTotal decimal.Decimal      `json:"supplement_total"`
	Warnings        []string             `json:"warnings,omitempty"`
}

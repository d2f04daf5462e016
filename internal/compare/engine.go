// Package compare implements the estimate comparison engine: line-item
// reconciliation between an original estimate and its supplement, rule-based
// charge-type classification, part/labor cost separation, and variance,
// statistics and risk aggregation. The engine is a synchronous, single-pass,
// side-effect-free computation; no condition in it is fatal.
package compare

import "github.com/shopspring/decimal"

// Engine wires the comparison stages together.
type Engine struct {
	matcher    *Matcher
	classifier *Classifier
	separator  *Separator
}

// NewEngine creates an Engine with default components.
func NewEngine() *Engine {
	return &Engine{
		matcher:    NewMatcher(),
		classifier: NewClassifier(),
		separator:  NewSeparator(),
	}
}

// NewEngineWithDeps creates an Engine with custom components.
func NewEngineWithDeps(matcher *Matcher, classifier *Classifier, separator *Separator) *Engine {
	return &Engine{matcher: matcher, classifier: classifier, separator: separator}
}

// Compare runs the full pipeline over two estimates' line items.
func (e *Engine) Compare(original, supplement []LineItem) *Report {
	return e.CompareWithCache(original, supplement, nil)
}

// CompareWithCache is Compare with a caller-owned classification cache. The
// cache may be shared across invocations; classification is stable for a
// given input so it never needs invalidation.
func (e *Engine) CompareWithCache(original, supplement []LineItem, cache *Cache) *Report {
	rec := e.matcher.Match(original, supplement)

	classifications := make(map[string]ClassificationResult)
	var analyses []ItemAnalysis

	analyze := func(item LineItem, status ItemStatus, siblings []LineItem) {
		classification := e.classifier.ClassifyWithCache(item, cache)

		var breakdown *CostBreakdown
		if classification.ChargeType == ChargePartWithLabor {
			b := e.separator.Separate(item, siblings)
			breakdown = &b
			// A ratio-split breakdown means the classification itself had
			// little to go on; cap its confidence accordingly.
			if b.Method == MethodFallbackRatio && classification.Confidence > 0.70 {
				classification.Confidence = 0.70
			}
		}

		classifications[item.ID] = classification
		analyses = append(analyses, ItemAnalysis{
			Item:           item,
			Status:         status,
			Classification: classification,
			Breakdown:      breakdown,
		})
	}

	for _, pair := range rec.Pairs {
		analyze(pair.Supplement, StatusMatched, supplement)
	}
	for _, item := range rec.Added {
		analyze(item, StatusNew, supplement)
	}
	for _, item := range rec.Removed {
		analyze(item, StatusRemoved, original)
	}

	stats := Aggregate(rec, classifications)

	originalTotal := sumTotals(original)
	supplementTotal := sumTotals(supplement)

	report := &Report{
		Reconciliation:  rec,
		Items:           analyses,
		Statistics:      stats,
		Risk:            Assess(stats, rec, supplementTotal, classifications),
		OriginalTotal:   originalTotal,
		SupplementTotal: supplementTotal,
	}
	report.Warnings = append(report.Warnings, rec.Warnings...)
	return report
}

func sumTotals(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Total)
	}
	return sum
}

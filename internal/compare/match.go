package compare

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
)

const (
	// defaultFuzzyThreshold is the minimum description similarity for the
	// fuzzy pass to accept a candidate.
	defaultFuzzyThreshold = 0.85
	// duplicateTotalChangePercent marks a matched pair as a potential
	// duplicate when its total moved by more than this percentage.
	duplicateTotalChangePercent = 500
)

// Matcher pairs supplement line items against original line items.
type Matcher struct {
	fuzzyThreshold float64
}

// NewMatcher creates a Matcher with the default fuzzy threshold.
func NewMatcher() *Matcher {
	return &Matcher{fuzzyThreshold: defaultFuzzyThreshold}
}

// NewMatcherWithThreshold creates a Matcher with a custom fuzzy threshold.
func NewMatcherWithThreshold(threshold float64) *Matcher {
	return &Matcher{fuzzyThreshold: threshold}
}

// normalizeDescription lower-cases a description and collapses whitespace.
func normalizeDescription(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// similarity is a normalized edit-distance score in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// Match reconciles the supplement items against the original items.
//
// An exact pass consumes originals by normalized description equality,
// first-found in original-list order. A fuzzy pass then pairs leftovers by
// edit-distance similarity above the threshold, breaking ties by smallest
// absolute total difference. Supplement items left over are new; original
// items never consumed are removed. Empty inputs produce an empty result
// with a warning, never an error.
func (m *Matcher) Match(original, supplement []LineItem) ReconciliationResult {
	var result ReconciliationResult
	result.Pairs = []MatchedPair{}
	result.Removed = []LineItem{}
	result.Added = []LineItem{}

	if len(original) == 0 {
		result.Warnings = append(result.Warnings, "original estimate has no line items")
	}
	if len(supplement) == 0 {
		result.Warnings = append(result.Warnings, "supplement estimate has no line items")
	}
	if len(original) == 0 && len(supplement) == 0 {
		return result
	}

	consumed := make(map[int]bool, len(original))
	matchedSupplement := make(map[int]bool, len(supplement))

	normalized := make([]string, len(original))
	for i, item := range original {
		normalized[i] = normalizeDescription(item.Description)
	}

	// Exact pass.
	for si, sup := range supplement {
		want := normalizeDescription(sup.Description)
		for oi := range original {
			if consumed[oi] || normalized[oi] != want {
				continue
			}
			consumed[oi] = true
			matchedSupplement[si] = true
			result.Pairs = append(result.Pairs, m.buildPair(original[oi], sup, 1))
			break
		}
	}

	// Fuzzy pass over the leftovers.
	for si, sup := range supplement {
		if matchedSupplement[si] {
			continue
		}
		want := normalizeDescription(sup.Description)
		best := -1
		bestScore := 0.0
		for oi := range original {
			if consumed[oi] {
				continue
			}
			score := similarity(want, normalized[oi])
			if score < m.fuzzyThreshold {
				continue
			}
			if best == -1 || score > bestScore || (score == bestScore && closerTotal(sup, original[oi], original[best])) {
				best = oi
				bestScore = score
			}
		}
		if best >= 0 {
			consumed[best] = true
			matchedSupplement[si] = true
			result.Pairs = append(result.Pairs, m.buildPair(original[best], sup, bestScore))
		}
	}

	for si, sup := range supplement {
		if !matchedSupplement[si] {
			result.Added = append(result.Added, sup)
		}
	}
	for oi, item := range original {
		if !consumed[oi] {
			result.Removed = append(result.Removed, item)
		}
	}

	distinct := len(result.Pairs) + len(result.Added) + len(result.Removed)
	if distinct > 0 {
		result.Accuracy = float64(len(result.Pairs)) / float64(distinct)
	}
	return result
}

// closerTotal reports whether candidate's total is closer to the supplement
// item's total than the incumbent's.
func closerTotal(sup, candidate, incumbent LineItem) bool {
	cd := candidate.Total.Sub(sup.Total).Abs()
	id := incumbent.Total.Sub(sup.Total).Abs()
	return cd.LessThan(id)
}

func (m *Matcher) buildPair(original, supplement LineItem, score float64) MatchedPair {
	pair := MatchedPair{
		Original:   original,
		Supplement: supplement,
		Score:      score,
		Variance:   PairVariance(original, supplement),
	}
	// Match by identity regardless of price, but flag wild total swings so
	// a reviewer can spot a removed item paired with a same-named new one.
	if pc := pair.Variance.PercentChange; pc != nil && pc.Abs().GreaterThan(decimal.NewFromInt(duplicateTotalChangePercent)) {
		pair.IsPotentialDuplicate = true
	}
	return pair
}

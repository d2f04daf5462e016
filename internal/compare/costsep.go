package compare

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationTolerance is the fixed absolute tolerance for the breakdown
// check |partCost + laborCost - total|. It is deliberately not configurable
// so results stay reproducible.
var ValidationTolerance = decimal.RequireFromString("0.01")

// defaultRegionalRate is the hourly labor rate used when deriving labor cost
// from the standard-hours table.
var defaultRegionalRate = decimal.NewFromInt(120)

// Fallback part-to-labor split for replacement-type operations when nothing
// better is available.
var (
	fallbackPartRatio  = decimal.RequireFromString("0.60")
	fallbackLaborRatio = decimal.RequireFromString("0.40")
)

// standardHours maps component keywords to typical replacement labor times.
// Lookup succeeds only for replacement-family operations.
var standardHours = map[string]decimal.Decimal{
	"bumper cover":  decimal.RequireFromString("2.5"),
	"fender":        decimal.RequireFromString("2.0"),
	"hood":          decimal.RequireFromString("1.0"),
	"grille":        decimal.RequireFromString("0.4"),
	"headlamp":      decimal.RequireFromString("0.5"),
	"tail lamp":     decimal.RequireFromString("0.5"),
	"mirror":        decimal.RequireFromString("0.5"),
	"windshield":    decimal.RequireFromString("2.5"),
	"door shell":    decimal.RequireFromString("4.5"),
	"quarter panel": decimal.RequireFromString("8.0"),
	"radiator":      decimal.RequireFromString("2.8"),
	"condenser":     decimal.RequireFromString("2.2"),
}

// Separator splits part_with_labor line totals into part and labor cost.
// Items of any other charge type never receive a breakdown; their whole
// total is attributed to their category downstream.
type Separator struct {
	regionalRate decimal.Decimal
}

// NewSeparator creates a Separator with the default regional labor rate.
func NewSeparator() *Separator {
	return &Separator{regionalRate: defaultRegionalRate}
}

// NewSeparatorWithRate creates a Separator with a custom regional labor rate
// for the standard-hours method.
func NewSeparatorWithRate(rate decimal.Decimal) *Separator {
	return &Separator{regionalRate: rate}
}

// Separate produces a CostBreakdown for a part_with_labor item. Methods are
// tried in priority order:
//
//  1. stated labor hours x stated rate
//  2. stated hours x a rate inferred from sibling items
//  3. standard-hours lookup x the regional rate (unvalidated)
//  4. fixed 60/40 part-to-labor ratio (unvalidated)
//
// siblings is the full item list of the invoice the item belongs to; it is
// only consulted for rate inference. Separate never fails.
func (s *Separator) Separate(item LineItem, siblings []LineItem) CostBreakdown {
	if item.LaborHours != nil {
		if item.LaborRate != nil {
			return s.fromRate(item, *item.LaborRate, MethodStatedRate, nil)
		}
		if rate, ok := inferLaborRate(siblings); ok {
			return s.fromRate(item, rate, MethodInferredRate,
				[]string{"labor rate inferred from sibling line items"})
		}
	}

	if hours, ok := lookupStandardHours(item); ok {
		labor := hours.Mul(s.regionalRate)
		return CostBreakdown{
			ItemID:      item.ID,
			PartCost:    item.Total.Sub(labor),
			LaborCost:   labor,
			IsValidated: false,
			Variance:    decimal.Zero,
			Method:      MethodStandardHours,
			Warnings:    []string{"labor cost derived from industry-standard time, not stated hours"},
		}
	}

	part := item.Total.Mul(fallbackPartRatio)
	labor := item.Total.Mul(fallbackLaborRatio)
	return CostBreakdown{
		ItemID:      item.ID,
		PartCost:    part,
		LaborCost:   labor,
		IsValidated: false,
		Variance:    part.Add(labor).Sub(item.Total),
		Method:      MethodFallbackRatio,
		Warnings:    []string{"part and labor split estimated with a typical 60/40 ratio"},
	}
}

// fromRate builds a breakdown from known hours and a labor rate and applies
// the tolerance check.
func (s *Separator) fromRate(item LineItem, rate decimal.Decimal, method string, warnings []string) CostBreakdown {
	labor := item.LaborHours.Mul(rate)
	part := item.Total.Sub(labor)
	variance := part.Add(labor).Sub(item.Total)

	b := CostBreakdown{
		ItemID:      item.ID,
		PartCost:    part,
		LaborCost:   labor,
		IsValidated: variance.Abs().LessThanOrEqual(ValidationTolerance),
		Variance:    variance,
		Method:      method,
		Warnings:    warnings,
	}
	if part.IsNegative() {
		b.Warnings = append(b.Warnings, "computed labor cost exceeds the stated line total")
	}
	return b
}

// inferLaborRate picks the most frequent labor rate among sibling items that
// state both hours and rate. Ties resolve to the highest rate, which
// attributes more of the total to labor.
func inferLaborRate(siblings []LineItem) (decimal.Decimal, bool) {
	counts := make(map[string]int)
	rates := make(map[string]decimal.Decimal)
	for _, sib := range siblings {
		if sib.LaborHours == nil || sib.LaborRate == nil {
			continue
		}
		key := sib.LaborRate.String()
		counts[key]++
		rates[key] = *sib.LaborRate
	}
	if len(counts) == 0 {
		return decimal.Zero, false
	}

	var bestKey string
	for key := range counts {
		if bestKey == "" {
			bestKey = key
			continue
		}
		if counts[key] > counts[bestKey] ||
			(counts[key] == counts[bestKey] && rates[key].GreaterThan(rates[bestKey])) {
			bestKey = key
		}
	}
	return rates[bestKey], true
}

// lookupStandardHours finds a typical labor time for a replacement-type
// operation by component keyword. The lookup only succeeds when exactly one
// component matches: a combined line covering several components has no
// single standard time and must fall through to the ratio split.
func lookupStandardHours(item LineItem) (decimal.Decimal, bool) {
	code := strings.ToLower(strings.TrimSpace(item.Operation))
	if !replaceCodes[code] {
		return decimal.Zero, false
	}
	desc := normalizeDescription(item.Description)
	matches := 0
	var found decimal.Decimal
	for component, hours := range standardHours {
		if strings.Contains(desc, component) {
			matches++
			found = hours
		}
	}
	if matches != 1 {
		return decimal.Zero, false
	}
	return found, true
}

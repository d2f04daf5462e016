package compare

import "strings"

// Operation-code pattern sets. Codes are compared after lower-casing and
// trimming; a repair code alone is inconclusive and falls through.
var (
	subletCodes   = map[string]bool{"subl": true, "sublet": true}
	replaceCodes  = map[string]bool{"repl": true, "r&r": true, "replace": true}
	installCodes  = map[string]bool{"r&i": true}
	refinishCodes = map[string]bool{"refn": true, "refinish": true, "blnd": true, "blend": true}
)

// outcome is the decision of a single classification rule. A nil outcome
// means the rule did not fire and evaluation continues down the list.
type outcome struct {
	chargeType ChargeType
	confidence float64
	evidence   []string
	warnings   []string
}

type classifyRule func(LineItem) *outcome

// Classifier assigns a charge type to a line item by evaluating an ordered
// list of rules and short-circuiting on the first decision. Classification is
// a pure function: identical input always yields identical output.
type Classifier struct {
	vocab Vocabulary
	rules []classifyRule
}

// NewClassifier creates a Classifier with the default vocabulary.
func NewClassifier() *Classifier {
	return NewClassifierWithVocabulary(DefaultVocabulary())
}

// NewClassifierWithVocabulary creates a Classifier with custom keyword sets.
func NewClassifierWithVocabulary(vocab Vocabulary) *Classifier {
	c := &Classifier{vocab: vocab}
	c.rules = []classifyRule{
		c.operationCodeRule,
		c.categoryHintRule,
		c.partNumberRule,
		c.keywordRule,
		c.laborHoursFallbackRule,
	}
	return c
}

// Classify returns the classification for a single line item. It never fails:
// when no rule fires the item is unknown with zero confidence and a warning.
func (c *Classifier) Classify(item LineItem) ClassificationResult {
	for _, rule := range c.rules {
		if o := rule(item); o != nil {
			return ClassificationResult{
				ItemID:     item.ID,
				ChargeType: o.chargeType,
				Confidence: clampConfidence(o.confidence),
				Evidence:   o.evidence,
				Warnings:   o.warnings,
			}
		}
	}
	return ClassificationResult{
		ItemID:     item.ID,
		ChargeType: ChargeUnknown,
		Confidence: 0,
		Warnings:   []string{"could not determine charge type for " + strings.TrimSpace(item.Description)},
	}
}

// ClassifyWithCache consults the caller-owned memoization cache before
// classifying. The cache key ignores the item ID, so identical items across
// estimates share one entry.
func (c *Classifier) ClassifyWithCache(item LineItem, cache *Cache) ClassificationResult {
	if cache != nil {
		if cached, ok := cache.get(item); ok {
			cached.ItemID = item.ID
			return cached
		}
	}
	result := c.Classify(item)
	if cache != nil {
		cache.put(item, result)
	}
	return result
}

func (c *Classifier) operationCodeRule(item LineItem) *outcome {
	code := strings.ToLower(strings.TrimSpace(item.Operation))
	if code == "" {
		return nil
	}

	switch {
	case subletCodes[code]:
		return &outcome{
			chargeType: ChargeSublet,
			confidence: 0.95,
			evidence:   []string{EvidenceOperationCode},
		}
	case replaceCodes[code]:
		o := &outcome{chargeType: ChargePartWithLabor, evidence: []string{EvidenceOperationCode}}
		switch {
		case item.PartNumber != "":
			o.confidence = 0.95
			o.evidence = append(o.evidence, EvidencePartNumber)
		case item.LaborHours != nil:
			o.confidence = 0.75
			o.evidence = append(o.evidence, EvidenceLaborHours)
		default:
			o.confidence = 0.60
			o.warnings = []string{"replacement operation with neither part number nor labor hours"}
		}
		return o
	case installCodes[code]:
		return &outcome{
			chargeType: ChargeLaborOnly,
			confidence: 0.90,
			evidence:   []string{EvidenceOperationCode},
		}
	case refinishCodes[code]:
		o := &outcome{confidence: 0.85, evidence: []string{EvidenceOperationCode}}
		if matchesAny(normalizeDescription(item.Description), c.vocab.MaterialKeywords) {
			o.chargeType = ChargeMaterial
		} else {
			o.chargeType = ChargeLaborOnly
		}
		return o
	}
	// Repair and unrecognized codes are inconclusive.
	return nil
}

func (c *Classifier) categoryHintRule(item LineItem) *outcome {
	hint := strings.ToLower(strings.TrimSpace(item.PartCategory))
	if hint == "" {
		return nil
	}

	o := &outcome{confidence: 0.85, evidence: []string{EvidenceCategoryHint}}
	switch {
	case strings.Contains(hint, "oem"), strings.Contains(hint, "aftermarket"),
		strings.Contains(hint, "recycled"), strings.Contains(hint, "reconditioned"):
		o.chargeType = ChargePartWithLabor
	case strings.Contains(hint, "labor"):
		o.chargeType = ChargeLaborOnly
	case strings.Contains(hint, "paint"), strings.Contains(hint, "material"),
		strings.Contains(hint, "consumable"):
		o.chargeType = ChargeMaterial
	case strings.Contains(hint, "rental"), strings.Contains(hint, "storage"),
		strings.Contains(hint, "towing"), strings.Contains(hint, "fee"):
		o.chargeType = ChargeMiscellaneous
	default:
		return nil
	}
	return o
}

func (c *Classifier) partNumberRule(item LineItem) *outcome {
	if strings.TrimSpace(item.PartNumber) == "" {
		return nil
	}
	o := &outcome{
		chargeType: ChargePartWithLabor,
		confidence: 0.80,
		evidence:   []string{EvidencePartNumber},
	}
	if item.LaborHours != nil {
		o.confidence = 0.90
		o.evidence = append(o.evidence, EvidenceLaborHours)
	}
	return o
}

func (c *Classifier) keywordRule(item LineItem) *outcome {
	desc := normalizeDescription(item.Description)
	if desc == "" {
		return nil
	}

	switch {
	case matchesAny(desc, c.vocab.PartKeywords):
		return &outcome{
			chargeType: ChargePartWithLabor,
			confidence: 0.80,
			evidence:   []string{EvidenceKeyword},
		}
	case matchesAny(desc, c.vocab.LaborKeywords):
		o := &outcome{
			chargeType: ChargeLaborOnly,
			confidence: 0.75,
			evidence:   []string{EvidenceKeyword},
		}
		if item.LaborHours != nil {
			o.confidence += 0.15
			o.evidence = append(o.evidence, EvidenceLaborHours)
		}
		return o
	case matchesAny(desc, c.vocab.MaterialKeywords):
		return &outcome{
			chargeType: ChargeMaterial,
			confidence: 0.85,
			evidence:   []string{EvidenceKeyword},
		}
	case matchesAny(desc, c.vocab.SubletKeywords):
		return &outcome{
			chargeType: ChargeSublet,
			confidence: 0.90,
			evidence:   []string{EvidenceKeyword},
		}
	}
	return nil
}

func (c *Classifier) laborHoursFallbackRule(item LineItem) *outcome {
	if item.LaborHours == nil {
		return nil
	}
	return &outcome{
		chargeType: ChargeLaborOnly,
		confidence: 0.50,
		evidence:   []string{EvidenceLaborHours},
		warnings:   []string{"classification rests solely on labor-hours presence"},
	}
}

func matchesAny(desc string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

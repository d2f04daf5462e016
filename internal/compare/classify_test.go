package compare

import (
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Classifier", func() {
	var (
		classifier *Classifier
		input      LineItem
		result     ClassificationResult
	)

	ginkgo.BeforeEach(func() {
		classifier = NewClassifier()
	})

	ginkgo.JustBeforeEach(func() {
		result = classifier.Classify(input)
	})

	ginkgo.When("the operation code is a sublet pattern", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Sublet Windshield Replacement", Operation: "Subl", Total: d("450")}
		})

		ginkgo.It("classifies as sublet with 0.95 confidence", func() {
			Expect(result.ChargeType).To(Equal(ChargeSublet))
			Expect(result.Confidence).To(Equal(0.95))
		})

		ginkgo.It("records the operation code as evidence", func() {
			Expect(result.Evidence).To(ContainElement(EvidenceOperationCode))
		})
	})

	ginkgo.When("a replacement code comes with a part number", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{
				ID:          "i1",
				Description: "Repl Rear Bumper Cover",
				Operation:   "Repl",
				PartNumber:  "3CN807421BGRU",
				LaborHours:  dp("2.5"),
				LaborRate:   dp("120"),
				Total:       d("750"),
			}
		})

		ginkgo.It("classifies as part_with_labor with 0.95 confidence", func() {
			Expect(result.ChargeType).To(Equal(ChargePartWithLabor))
			Expect(result.Confidence).To(Equal(0.95))
		})

		ginkgo.It("records both operation code and part number as evidence", func() {
			Expect(result.Evidence).To(ConsistOf(EvidenceOperationCode, EvidencePartNumber))
		})
	})

	ginkgo.When("a replacement code comes with labor hours only", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Repl Fender", Operation: "R&R", LaborHours: dp("2.0"), Total: d("400")}
		})

		ginkgo.It("classifies as part_with_labor with 0.75 confidence", func() {
			Expect(result.ChargeType).To(Equal(ChargePartWithLabor))
			Expect(result.Confidence).To(Equal(0.75))
		})
	})

	ginkgo.When("a replacement code comes with neither part number nor hours", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Front Bumper Cover, Grille, and Fog Lamps", Operation: "Repl", Total: d("1250")}
		})

		ginkgo.It("classifies as part_with_labor with 0.60 confidence", func() {
			Expect(result.ChargeType).To(Equal(ChargePartWithLabor))
			Expect(result.Confidence).To(Equal(0.60))
		})

		ginkgo.It("warns about the thin evidence", func() {
			Expect(result.Warnings).NotTo(BeEmpty())
		})
	})

	ginkgo.When("the operation code is remove-and-install", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "R&I Front Bumper Cover", Operation: "R&I", LaborHours: dp("1.2"), Total: d("144")}
		})

		ginkgo.It("classifies as labor_only with 0.90 confidence", func() {
			Expect(result.ChargeType).To(Equal(ChargeLaborOnly))
			Expect(result.Confidence).To(Equal(0.90))
		})
	})

	ginkgo.When("a refinish code describes paint materials", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Refinish - Paint Supplies", Operation: "Refn", Total: d("210")}
		})

		ginkgo.It("classifies as material with 0.85 confidence", func() {
			Expect(result.ChargeType).To(Equal(ChargeMaterial))
			Expect(result.Confidence).To(Equal(0.85))
		})
	})

	ginkgo.When("a refinish code describes panel work", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Refinish Quarter Panel", Operation: "Blnd", Total: d("260")}
		})

		ginkgo.It("classifies as labor_only with 0.85 confidence", func() {
			Expect(result.ChargeType).To(Equal(ChargeLaborOnly))
			Expect(result.Confidence).To(Equal(0.85))
		})
	})

	ginkgo.When("a repair code stands alone", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Dent on rocker panel", Operation: "Rpr", Total: d("180")}
		})

		ginkgo.It("falls through to later rules", func() {
			// "rocker panel" is a part keyword, so the keyword rule decides.
			Expect(result.ChargeType).To(Equal(ChargePartWithLabor))
			Expect(result.Evidence).To(ContainElement(EvidenceKeyword))
		})
	})

	ginkgo.When("an explicit category hint is present", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Misc charge", PartCategory: "OEM", Total: d("90")}
		})

		ginkgo.It("classifies by the hint with 0.85 confidence", func() {
			Expect(result.ChargeType).To(Equal(ChargePartWithLabor))
			Expect(result.Confidence).To(Equal(0.85))
			Expect(result.Evidence).To(ContainElement(EvidenceCategoryHint))
		})
	})

	ginkgo.When("a rental category hint is present", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Courtesy car", PartCategory: "Rental", Total: d("200")}
		})

		ginkgo.It("classifies as miscellaneous", func() {
			Expect(result.ChargeType).To(Equal(ChargeMiscellaneous))
		})
	})

	ginkgo.When("only a part number is present", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Unlabeled component", PartNumber: "8W0-853-651", Total: d("340")}
		})

		ginkgo.It("classifies as part_with_labor with 0.80 confidence", func() {
			Expect(result.ChargeType).To(Equal(ChargePartWithLabor))
			Expect(result.Confidence).To(Equal(0.80))
		})
	})

	ginkgo.When("a part number and labor hours are present", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Unlabeled component", PartNumber: "8W0-853-651", LaborHours: dp("1.5"), Total: d("340")}
		})

		ginkgo.It("raises the confidence to 0.90", func() {
			Expect(result.Confidence).To(Equal(0.90))
		})
	})

	ginkgo.When("a labor keyword matches with labor hours present", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Wheel Alignment", LaborHours: dp("1.0"), LaborRate: dp("120"), Total: d("120")}
		})

		ginkgo.It("classifies as labor_only with 0.90 confidence", func() {
			Expect(result.ChargeType).To(Equal(ChargeLaborOnly))
			Expect(result.Confidence).To(BeNumerically("~", 0.90, 1e-9))
		})
	})

	ginkgo.When("a material keyword matches", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Paint Supplies", LaborHours: dp("10.5"), LaborRate: dp("42"), Total: d("441")}
		})

		ginkgo.It("classifies as material with 0.85 confidence", func() {
			Expect(result.ChargeType).To(Equal(ChargeMaterial))
			Expect(result.Confidence).To(Equal(0.85))
		})
	})

	ginkgo.When("only labor hours are present", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Additional operation", LaborHours: dp("0.5"), Total: d("60")}
		})

		ginkgo.It("falls back to labor_only with 0.50 confidence", func() {
			Expect(result.ChargeType).To(Equal(ChargeLaborOnly))
			Expect(result.Confidence).To(Equal(0.50))
		})

		ginkgo.It("warns that the classification rests on labor hours alone", func() {
			Expect(result.Warnings).To(ContainElement(ContainSubstring("labor-hours")))
		})
	})

	ginkgo.When("nothing matches", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Zzz", Total: d("10")}
		})

		ginkgo.It("classifies as unknown with zero confidence and a warning", func() {
			Expect(result.ChargeType).To(Equal(ChargeUnknown))
			Expect(result.Confidence).To(BeZero())
			Expect(result.Warnings).NotTo(BeEmpty())
		})
	})

	ginkgo.Describe("determinism", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Repl Fender", Operation: "Repl", PartNumber: "X1", Total: d("400")}
		})

		ginkgo.It("yields an identical result on repeated classification", func() {
			Expect(classifier.Classify(input)).To(Equal(result))
		})
	})

	ginkgo.Describe("confidence bounds", func() {
		ginkgo.It("stays within [0,1] for a spread of inputs", func() {
			inputs := []LineItem{
				{ID: "a", Description: "Wheel Alignment", LaborHours: dp("9")},
				{ID: "b", Description: "Repl Hood", Operation: "Repl", PartNumber: "P"},
				{ID: "c", Description: ""},
				{ID: "d", Description: "Paint Supplies"},
			}
			for _, in := range inputs {
				r := classifier.Classify(in)
				Expect(r.Confidence).To(BeNumerically(">=", 0))
				Expect(r.Confidence).To(BeNumerically("<=", 1))
			}
		})
	})
})

var _ = ginkgo.Describe("Cache", func() {
	var (
		classifier *Classifier
		cache      *Cache
	)

	ginkgo.BeforeEach(func() {
		classifier = NewClassifier()
		cache = NewCache()
	})

	ginkgo.It("memoizes identical items under one entry", func() {
		a := LineItem{ID: "a", Description: "Repl Fender", Operation: "Repl", PartNumber: "X1", Total: d("400")}
		b := LineItem{ID: "b", Description: "Repl Fender", Operation: "Repl", PartNumber: "X1", Total: d("400")}

		first := classifier.ClassifyWithCache(a, cache)
		second := classifier.ClassifyWithCache(b, cache)

		Expect(cache.Len()).To(Equal(1))
		Expect(second.ChargeType).To(Equal(first.ChargeType))
		Expect(second.Confidence).To(Equal(first.Confidence))
	})

	ginkgo.It("keeps the item ID of the caller, not the cached entry", func() {
		a := LineItem{ID: "a", Description: "Wheel Alignment", LaborHours: dp("1")}
		b := LineItem{ID: "b", Description: "Wheel Alignment", LaborHours: dp("1")}

		classifier.ClassifyWithCache(a, cache)
		second := classifier.ClassifyWithCache(b, cache)

		Expect(second.ItemID).To(Equal("b"))
	})

	ginkgo.It("distinguishes items that differ only in labor hours", func() {
		a := LineItem{ID: "a", Description: "Extra op", LaborHours: dp("1")}
		b := LineItem{ID: "b", Description: "Extra op", LaborHours: dp("2")}

		classifier.ClassifyWithCache(a, cache)
		classifier.ClassifyWithCache(b, cache)

		Expect(cache.Len()).To(Equal(2))
	})
})

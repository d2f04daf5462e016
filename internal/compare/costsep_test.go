package compare

import (
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = ginkgo.Describe("Separator", func() {
	var (
		separator *Separator
		input     LineItem
		siblings  []LineItem
		breakdown CostBreakdown
	)

	ginkgo.BeforeEach(func() {
		separator = NewSeparator()
		siblings = nil
	})

	ginkgo.JustBeforeEach(func() {
		breakdown = separator.Separate(input, siblings)
	})

	ginkgo.When("both labor hours and rate are stated", func() {
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

		ginkgo.It("splits labor as hours times rate", func() {
			Expect(breakdown.LaborCost).To(beDecimal("300"))
		})

		ginkgo.It("attributes the remainder to the part", func() {
			Expect(breakdown.PartCost).To(beDecimal("450"))
		})

		ginkgo.It("validates within the tolerance", func() {
			Expect(breakdown.IsValidated).To(BeTrue())
			Expect(breakdown.Variance.Abs().LessThanOrEqual(ValidationTolerance)).To(BeTrue())
		})

		ginkgo.It("records the stated-rate method", func() {
			Expect(breakdown.Method).To(Equal(MethodStatedRate))
		})
	})

	ginkgo.When("labor cost exceeds the stated total", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Repl Grille", LaborHours: dp("5"), LaborRate: dp("120"), Total: d("400")}
		})

		ginkgo.It("keeps the arithmetic but warns", func() {
			Expect(breakdown.PartCost.IsNegative()).To(BeTrue())
			Expect(breakdown.Warnings).To(ContainElement(ContainSubstring("exceeds")))
		})
	})

	ginkgo.When("only hours are stated and siblings carry rates", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Repl Fender", Operation: "Repl", LaborHours: dp("2"), Total: d("500")}
			siblings = []LineItem{
				{ID: "s1", LaborHours: dp("1"), LaborRate: dp("120")},
				{ID: "s2", LaborHours: dp("3"), LaborRate: dp("120")},
				{ID: "s3", LaborHours: dp("2"), LaborRate: dp("95")},
			}
		})

		ginkgo.It("infers the most common sibling rate", func() {
			Expect(breakdown.LaborCost).To(beDecimal("240"))
			Expect(breakdown.PartCost).To(beDecimal("260"))
		})

		ginkgo.It("records the inferred-rate method and warns", func() {
			Expect(breakdown.Method).To(Equal(MethodInferredRate))
			Expect(breakdown.Warnings).To(ContainElement(ContainSubstring("inferred")))
		})
	})

	ginkgo.When("sibling rates tie on frequency", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Repl Fender", LaborHours: dp("1"), Total: d("300")}
			siblings = []LineItem{
				{ID: "s1", LaborHours: dp("1"), LaborRate: dp("95")},
				{ID: "s2", LaborHours: dp("1"), LaborRate: dp("120")},
			}
		})

		ginkgo.It("resolves to the highest rate", func() {
			Expect(breakdown.LaborCost).To(beDecimal("120"))
		})
	})

	ginkgo.When("no rate is resolvable but a standard time exists", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Repl Front Bumper Cover", Operation: "Repl", Total: d("800")}
		})

		ginkgo.It("derives labor from standard hours and the regional rate", func() {
			// 2.5h x $120
			Expect(breakdown.LaborCost).To(beDecimal("300"))
			Expect(breakdown.PartCost).To(beDecimal("500"))
		})

		ginkgo.It("marks the breakdown unvalidated", func() {
			Expect(breakdown.IsValidated).To(BeFalse())
			Expect(breakdown.Method).To(Equal(MethodStandardHours))
		})
	})

	ginkgo.When("a combined line names several components", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Front Bumper Cover, Grille, and Fog Lamps", Operation: "Repl", Total: d("1250")}
		})

		ginkgo.It("falls back to the 60/40 ratio", func() {
			Expect(breakdown.Method).To(Equal(MethodFallbackRatio))
			Expect(breakdown.PartCost).To(beDecimal("750"))
			Expect(breakdown.LaborCost).To(beDecimal("500"))
		})

		ginkgo.It("marks the breakdown unvalidated with a warning", func() {
			Expect(breakdown.IsValidated).To(BeFalse())
			Expect(breakdown.Warnings).NotTo(BeEmpty())
		})
	})

	ginkgo.When("nothing at all is resolvable", func() {
		ginkgo.BeforeEach(func() {
			input = LineItem{ID: "i1", Description: "Unlabeled component", PartNumber: "P1", Total: d("200")}
		})

		ginkgo.It("still produces a ratio-split breakdown", func() {
			Expect(breakdown.Method).To(Equal(MethodFallbackRatio))
			Expect(breakdown.PartCost).To(beDecimal("120"))
			Expect(breakdown.LaborCost).To(beDecimal("80"))
		})
	})

	ginkgo.Describe("custom regional rate", func() {
		ginkgo.BeforeEach(func() {
			separator = NewSeparatorWithRate(decimal.NewFromInt(100))
			input = LineItem{ID: "i1", Description: "Repl Hood", Operation: "Repl", Total: d("600")}
		})

		ginkgo.It("uses the configured rate for standard-hours labor", func() {
			// 1.0h x $100
			Expect(breakdown.LaborCost).To(beDecimal("100"))
		})
	})
})

package compare

import (
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Matcher", func() {
	var (
		matcher    *Matcher
		original   []LineItem
		supplement []LineItem
		result     ReconciliationResult
	)

	ginkgo.BeforeEach(func() {
		matcher = NewMatcher()
	})

	ginkgo.JustBeforeEach(func() {
		result = matcher.Match(original, supplement)
	})

	ginkgo.When("descriptions match exactly after normalization", func() {
		ginkgo.BeforeEach(func() {
			original = []LineItem{item("o1", "Repl  Front Bumper Cover", "500")}
			supplement = []LineItem{item("s1", "repl front bumper cover", "520")}
		})

		ginkgo.It("pairs the items", func() {
			Expect(result.Pairs).To(HaveLen(1))
			Expect(result.Pairs[0].Original.ID).To(Equal("o1"))
			Expect(result.Pairs[0].Supplement.ID).To(Equal("s1"))
		})

		ginkgo.It("scores the pair 1.0", func() {
			Expect(result.Pairs[0].Score).To(Equal(1.0))
		})

		ginkgo.It("reports full accuracy", func() {
			Expect(result.Accuracy).To(Equal(1.0))
		})

		ginkgo.It("leaves no removed or added items", func() {
			Expect(result.Removed).To(BeEmpty())
			Expect(result.Added).To(BeEmpty())
		})
	})

	ginkgo.When("the supplement adds and drops items", func() {
		ginkgo.BeforeEach(func() {
			original = []LineItem{
				item("o1", "Front Bumper Cover", "500"),
				item("o2", "Headlamp Assembly", "300"),
			}
			supplement = []LineItem{
				item("s1", "Front Bumper Cover", "500"),
				item("s2", "Radiator Support", "250"),
			}
		})

		ginkgo.It("partitions every distinct item exactly once", func() {
			Expect(len(result.Pairs) + len(result.Added) + len(result.Removed)).To(Equal(3))
		})

		ginkgo.It("marks the dropped original as removed", func() {
			Expect(result.Removed).To(HaveLen(1))
			Expect(result.Removed[0].ID).To(Equal("o2"))
		})

		ginkgo.It("marks the unmatched supplement item as added", func() {
			Expect(result.Added).To(HaveLen(1))
			Expect(result.Added[0].ID).To(Equal("s2"))
		})

		ginkgo.It("computes accuracy as matched over distinct", func() {
			Expect(result.Accuracy).To(BeNumerically("~", 1.0/3.0, 1e-9))
		})
	})

	ginkgo.When("the original contains duplicate descriptions", func() {
		ginkgo.BeforeEach(func() {
			original = []LineItem{
				item("o1", "Clip", "5"),
				item("o2", "Clip", "5"),
			}
			supplement = []LineItem{item("s1", "Clip", "5")}
		})

		ginkgo.It("consumes only the first available original", func() {
			Expect(result.Pairs).To(HaveLen(1))
			Expect(result.Pairs[0].Original.ID).To(Equal("o1"))
		})

		ginkgo.It("leaves the second duplicate as removed", func() {
			Expect(result.Removed).To(HaveLen(1))
			Expect(result.Removed[0].ID).To(Equal("o2"))
		})
	})

	ginkgo.When("a matched item's total changed grossly", func() {
		ginkgo.BeforeEach(func() {
			original = []LineItem{item("o1", "Quarter Panel", "100")}
			supplement = []LineItem{item("s1", "Quarter Panel", "800")}
		})

		ginkgo.It("still treats the items as matched", func() {
			Expect(result.Pairs).To(HaveLen(1))
			Expect(result.Added).To(BeEmpty())
			Expect(result.Removed).To(BeEmpty())
		})

		ginkgo.It("flags the pair as a potential duplicate", func() {
			Expect(result.Pairs[0].IsPotentialDuplicate).To(BeTrue())
		})
	})

	ginkgo.When("a total change is large but below the duplicate threshold", func() {
		ginkgo.BeforeEach(func() {
			original = []LineItem{item("o1", "Quarter Panel", "100")}
			supplement = []LineItem{item("s1", "Quarter Panel", "400")}
		})

		ginkgo.It("does not flag the pair", func() {
			Expect(result.Pairs[0].IsPotentialDuplicate).To(BeFalse())
		})
	})

	ginkgo.When("descriptions differ by a small typo", func() {
		ginkgo.BeforeEach(func() {
			original = []LineItem{item("o1", "Front Bumper Cover Assembly", "500")}
			supplement = []LineItem{item("s1", "Front Bumper Cover Assmbly", "510")}
		})

		ginkgo.It("pairs them through the fuzzy pass", func() {
			Expect(result.Pairs).To(HaveLen(1))
			Expect(result.Pairs[0].Score).To(BeNumerically("<", 1.0))
			Expect(result.Pairs[0].Score).To(BeNumerically(">=", 0.85))
		})
	})

	ginkgo.When("fuzzy candidates tie on similarity", func() {
		ginkgo.BeforeEach(func() {
			original = []LineItem{
				item("o1", "Molding Left", "100"),
				item("o2", "Molding Lent", "220"),
			}
			supplement = []LineItem{item("s1", "Molding Leet", "210")}
		})

		ginkgo.It("breaks the tie by smallest total difference", func() {
			Expect(result.Pairs).To(HaveLen(1))
			Expect(result.Pairs[0].Original.ID).To(Equal("o2"))
		})
	})

	ginkgo.When("descriptions are entirely different", func() {
		ginkgo.BeforeEach(func() {
			original = []LineItem{item("o1", "Front Bumper Cover", "500")}
			supplement = []LineItem{item("s1", "Wheel Alignment", "120")}
		})

		ginkgo.It("does not force a pair", func() {
			Expect(result.Pairs).To(BeEmpty())
			Expect(result.Removed).To(HaveLen(1))
			Expect(result.Added).To(HaveLen(1))
		})
	})

	ginkgo.When("both inputs are empty", func() {
		ginkgo.BeforeEach(func() {
			original = nil
			supplement = nil
		})

		ginkgo.It("returns an empty result with zero accuracy", func() {
			Expect(result.Pairs).To(BeEmpty())
			Expect(result.Accuracy).To(BeZero())
		})

		ginkgo.It("surfaces warnings for both sides", func() {
			Expect(result.Warnings).To(HaveLen(2))
		})
	})

	ginkgo.When("only the original is empty", func() {
		ginkgo.BeforeEach(func() {
			original = nil
			supplement = []LineItem{item("s1", "Front Bumper Cover", "500")}
		})

		ginkgo.It("treats every supplement item as added", func() {
			Expect(result.Added).To(HaveLen(1))
			Expect(result.Accuracy).To(BeZero())
		})

		ginkgo.It("warns about the empty original", func() {
			Expect(result.Warnings).To(ContainElement(ContainSubstring("original")))
		})
	})
})

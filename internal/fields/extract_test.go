package fields

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wakaflorien/procureToPay/internal/entity"
)

func TestFields(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Fields Suite")
}

var _ = Describe("Extract", func() {
	var (
		text string
		data entity.DocumentData
	)

	JustBeforeEach(func() {
		data = Extract(text)
	})

	When("the text is empty", func() {
		BeforeEach(func() {
			text = ""
		})

		It("should report the no-text error", func() {
			Expect(data.Error).To(Equal(NoTextError))
		})

		It("should fall back to the unknown vendor", func() {
			Expect(data.Vendor).To(Equal(UnknownVendor))
		})

		It("should leave the amount unset", func() {
			Expect(data.Amount).To(BeNil())
		})

		It("should return an empty item list, not nil", func() {
			Expect(data.Items).NotTo(BeNil())
			Expect(data.Items).To(BeEmpty())
		})
	})

	When("the text is whitespace only", func() {
		BeforeEach(func() {
			text = "   \n\t  \n"
		})

		It("should report the no-text error", func() {
			Expect(data.Error).To(Equal(NoTextError))
		})
	})

	When("parsing a labeled proforma invoice", func() {
		BeforeEach(func() {
			text = "PROFORMA INVOICE\n" +
				"Vendor: Acme Supplies Ltd\n" +
				"Date: 2026-01-15\n" +
				"\n" +
				"Widget A 3 10.00 30.00\n" +
				"Gadget B 2 25.50 51.00\n" +
				"\n" +
				"Payment Terms: Net 30 days from invoice date\n" +
				"Grand Total: $81.00\n"
		})

		It("should extract the labeled vendor", func() {
			Expect(data.Vendor).To(Equal("Acme Supplies Ltd"))
		})

		It("should extract the grand total", func() {
			Expect(data.Amount).NotTo(BeNil())
			Expect(*data.Amount).To(Equal(81.00))
		})

		It("should parse the item rows with unit prices", func() {
			Expect(data.Items).To(HaveLen(2))
			Expect(data.Items[0]).To(Equal(entity.LineItem{Name: "Widget A", Quantity: 3, Price: 10.00}))
			Expect(data.Items[1]).To(Equal(entity.LineItem{Name: "Gadget B", Quantity: 2, Price: 25.50}))
		})

		It("should extract the payment terms", func() {
			Expect(data.Terms).To(ContainSubstring("Net 30"))
		})

		It("should keep the raw text for reference", func() {
			Expect(data.ExtractedText).To(ContainSubstring("PROFORMA INVOICE"))
		})
	})

	When("several totals appear in the totals region", func() {
		BeforeEach(func() {
			text = "From: Example Corp\n" +
				"Subtotal: $100.00\n" +
				"Tax: $18.00\n" +
				"Total: $118.00\n"
		})

		It("should pick the largest candidate as the grand total", func() {
			Expect(data.Amount).NotTo(BeNil())
			Expect(*data.Amount).To(Equal(118.00))
		})
	})

	When("amounts use thousands separators", func() {
		BeforeEach(func() {
			text = "Supplier: Big Iron Inc\nTotal Amount: $12,345.67\n"
		})

		It("should strip the separators", func() {
			Expect(data.Amount).NotTo(BeNil())
			Expect(*data.Amount).To(Equal(12345.67))
		})
	})

	When("no vendor label matches", func() {
		BeforeEach(func() {
			text = "invoice copy\nkigali office furnishers\n4 Desk 120.00 480.00\ntotal: 480.00\n"
		})

		It("should take the first clean digit-free line near the top", func() {
			Expect(data.Vendor).To(Equal("kigali office furnishers"))
		})

		It("should still parse the item row and total", func() {
			Expect(data.Items).To(HaveLen(1))
			Expect(data.Items[0]).To(Equal(entity.LineItem{Name: "Desk", Quantity: 4, Price: 120.00}))
			Expect(data.Amount).NotTo(BeNil())
			Expect(*data.Amount).To(Equal(480.00))
		})
	})

	When("the vendor label holds a placeholder phrase", func() {
		BeforeEach(func() {
			text = "From: Bill To Acme Traders\nTotal: 50.00\n"
		})

		It("should strip the placeholder and keep the name", func() {
			Expect(data.Vendor).To(Equal("Acme Traders"))
		})
	})

	When("the terms line carries interior whitespace runs", func() {
		BeforeEach(func() {
			text = "Vendor: Acme Supplies Ltd\n" +
				"Payment Terms:   Net 30  days,  balance  due on delivery  \n" +
				"Total: 50.00\n"
		})

		It("should trim the edges only", func() {
			Expect(data.Terms).To(Equal("Net 30  days,  balance  due on delivery"))
		})
	})

	When("item rows only exist as an aligned table", func() {
		BeforeEach(func() {
			text = "Orbit Stationers\n" +
				"\n" +
				"Qty  Description      Unit Price\n" +
				"2    Ring Binder      4.50\n" +
				"10   Ballpoint Pen    0.80\n" +
				"\n" +
				"Total: 17.00\n"
		})

		It("should infer columns from the header row", func() {
			Expect(data.Items).To(HaveLen(2))
			Expect(data.Items[0]).To(Equal(entity.LineItem{Quantity: 2, Name: "Ring Binder", Price: 4.50}))
			Expect(data.Items[1]).To(Equal(entity.LineItem{Quantity: 10, Name: "Ballpoint Pen", Price: 0.80}))
		})
	})

	When("a row total is present but no unit price parses", func() {
		BeforeEach(func() {
			text = "Seller: Parts Direct\nBracket 4 x $8.00 32.00\nTotal: 32.00\n"
		})

		It("should keep the unit price from the x-notation", func() {
			Expect(data.Items).To(HaveLen(1))
			Expect(data.Items[0].Price).To(Equal(8.00))
		})
	})

	It("is deterministic for the same input", func() {
		input := "Vendor: Acme\nWidget A 3 10.00 30.00\nTotal: 30.00\n"
		first := Extract(input)
		second := Extract(input)
		Expect(second).To(Equal(first))
	})
})

var _ = Describe("extractItemsFromTable", func() {
	It("infers columns from header words regardless of position", func() {
		lines := []string{
			"Description      Qty   Amount",
			"Ring Binder      2     4.50",
			"Ballpoint Pen    10    0.80",
		}
		items := extractItemsFromTable(lines)
		Expect(items).To(HaveLen(2))
		Expect(items[0]).To(Equal(entity.LineItem{Name: "Ring Binder", Quantity: 2, Price: 4.50}))
		Expect(items[1]).To(Equal(entity.LineItem{Name: "Ballpoint Pen", Quantity: 10, Price: 0.80}))
	})

	It("defaults to first, second and last columns without header words", func() {
		lines := []string{
			"Col1    Col2        Col3",
			"3       Staple Box  $2.10",
		}
		items := extractItemsFromTable(lines)
		Expect(items).To(HaveLen(1))
		Expect(items[0]).To(Equal(entity.LineItem{Quantity: 3, Name: "Staple Box", Price: 2.10}))
	})

	It("skips rows that do not parse", func() {
		lines := []string{
			"Qty   Item        Price",
			"two   Ring Binder 4.50",
			"1     Ruler       n/a",
		}
		Expect(extractItemsFromTable(lines)).To(BeEmpty())
	})
})

var _ = Describe("parseLineItem", func() {
	DescribeTable("line shapes",
		func(line string, wantOK bool, want entity.LineItem) {
			item, ok := parseLineItem(line)
			Expect(ok).To(Equal(wantOK))
			if wantOK {
				Expect(item).To(Equal(want))
			}
		},
		Entry("name qty unit total", "Widget A 3 10.00 30.00", true,
			entity.LineItem{Name: "Widget A", Quantity: 3, Price: 10.00}),
		Entry("qty name unit total", "3 Widget A 10.00 30.00", true,
			entity.LineItem{Name: "Widget A", Quantity: 3, Price: 10.00}),
		Entry("name qty unit", "Cable Tie 50 0.05", true,
			entity.LineItem{Name: "Cable Tie", Quantity: 50, Price: 0.05}),
		Entry("x separated unit price", "Bolt 12 x 0.30", true,
			entity.LineItem{Name: "Bolt", Quantity: 12, Price: 0.30}),
		Entry("no digits at all", "Thanks for your business", false, entity.LineItem{}),
		Entry("totals line rejected", "Total 3 10.00 30.00", false, entity.LineItem{}),
		Entry("keyword line rejected", "Quantity 3 10.00", false, entity.LineItem{}),
		Entry("empty line", "", false, entity.LineItem{}),
		Entry("zero quantity rejected", "Widget 0 10.00", false, entity.LineItem{}),
	)
})

var _ = Describe("parseNumeric", func() {
	DescribeTable("loose numeric strings",
		func(in string, want float64, wantOK bool) {
			got, ok := parseNumeric(in)
			Expect(ok).To(Equal(wantOK))
			if wantOK {
				Expect(got).To(Equal(want))
			}
		},
		Entry("plain integer", "42", 42.0, true),
		Entry("currency prefix", "$1,250.00", 1250.0, true),
		Entry("euro symbol", "€ 99.95", 99.95, true),
		Entry("per-unit suffix", "4.50/ea", 4.5, true),
		Entry("empty", "", 0.0, false),
		Entry("dash only", "-", 0.0, false),
		Entry("dot only", ".", 0.0, false),
		Entry("letters only", "abc", 0.0, false),
	)
})

package fields

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wakaflorien/procureToPay/internal/entity"
)

var _ = Describe("ExtractReceipt", func() {
	var (
		text string
		data entity.DocumentData
	)

	JustBeforeEach(func() {
		data = ExtractReceipt(text)
	})

	When("the receipt carries labeled fields", func() {
		BeforeEach(func() {
			text = "RECEIPT\n" +
				"Vendor: Acme Supplies Ltd\n" +
				"3 Widget A $30.00\n" +
				"2 Gadget B $51.00\n" +
				"Total: $81.00\n"
		})

		It("should extract the vendor", func() {
			Expect(data.Vendor).To(Equal("Acme Supplies Ltd"))
		})

		It("should extract the total", func() {
			Expect(data.Amount).NotTo(BeNil())
			Expect(*data.Amount).To(Equal(81.00))
		})

		It("should extract the qty-name-price rows", func() {
			Expect(data.Items).To(HaveLen(2))
			Expect(data.Items[0]).To(Equal(entity.LineItem{Quantity: 3, Name: "Widget A", Price: 30.00}))
			Expect(data.Items[1]).To(Equal(entity.LineItem{Quantity: 2, Name: "Gadget B", Price: 51.00}))
		})
	})

	When("the receipt has no vendor label", func() {
		BeforeEach(func() {
			text = "Corner Shop\nTotal: 12.50\n"
		})

		It("should fall back to the unknown sentinel", func() {
			Expect(data.Vendor).To(Equal(UnknownReceiptVendor))
		})

		It("should still extract the amount", func() {
			Expect(data.Amount).NotTo(BeNil())
			Expect(*data.Amount).To(Equal(12.50))
		})
	})

	When("nothing matches", func() {
		BeforeEach(func() {
			text = "illegible smudge"
		})

		It("should return empty defaults", func() {
			Expect(data.Vendor).To(Equal(UnknownReceiptVendor))
			Expect(data.Amount).To(BeNil())
			Expect(data.Items).To(BeEmpty())
		})
	})
})

package recon

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wakaflorien/procureToPay/internal/entity"
)

func TestRecon(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Recon Suite")
}

func amount(v float64) *float64 { return &v }

func matchingRequest() *entity.PurchaseRequest {
	return &entity.PurchaseRequest{
		Amount: 100.00,
		Items: []entity.RequestItem{
			{Name: "Widget A", Quantity: 3, UnitPrice: 10.00},
			{Name: "Gadget B", Quantity: 2, UnitPrice: 35.00},
		},
		ProformaData: &entity.DocumentData{
			Vendor: "Acme Supplies Ltd",
			Amount: amount(100.00),
			Items: []entity.LineItem{
				{Name: "Widget A", Quantity: 3, Price: 10.00},
				{Name: "Gadget B", Quantity: 2, Price: 35.00},
			},
		},
	}
}

var _ = Describe("HasDiscrepancies", func() {
	var req *entity.PurchaseRequest

	BeforeEach(func() {
		req = matchingRequest()
	})

	When("everything lines up", func() {
		It("should report no discrepancies", func() {
			Expect(HasDiscrepancies(req, DefaultAmountTolerance)).To(BeFalse())
		})
	})

	When("no proforma has been submitted", func() {
		It("should fail closed", func() {
			req.ProformaData = nil
			Expect(HasDiscrepancies(req, DefaultAmountTolerance)).To(BeTrue())
		})
	})

	When("the proforma amount could not be extracted", func() {
		It("should fail closed", func() {
			req.ProformaData.Amount = nil
			Expect(HasDiscrepancies(req, DefaultAmountTolerance)).To(BeTrue())
		})
	})

	When("the amounts differ within tolerance", func() {
		It("should pass at exactly the tolerance boundary", func() {
			req.ProformaData.Amount = amount(101.00)
			Expect(HasDiscrepancies(req, DefaultAmountTolerance)).To(BeFalse())
		})
	})

	When("the amounts differ beyond tolerance", func() {
		It("should report a discrepancy", func() {
			req.ProformaData.Amount = amount(102.00)
			Expect(HasDiscrepancies(req, DefaultAmountTolerance)).To(BeTrue())
		})
	})

	When("the tolerance widens", func() {
		It("should never turn a pass into a failure", func() {
			req.ProformaData.Amount = amount(101.50)
			Expect(HasDiscrepancies(req, 1.00)).To(BeTrue())
			Expect(HasDiscrepancies(req, 2.00)).To(BeFalse())
			Expect(HasDiscrepancies(req, 5.00)).To(BeFalse())
		})
	})

	When("either side has no items", func() {
		It("should fail closed on an empty request", func() {
			req.Items = nil
			Expect(HasDiscrepancies(req, DefaultAmountTolerance)).To(BeTrue())
		})

		It("should fail closed on an empty proforma", func() {
			req.ProformaData.Items = nil
			Expect(HasDiscrepancies(req, DefaultAmountTolerance)).To(BeTrue())
		})
	})

	When("item names differ only in case and spacing", func() {
		It("should still match", func() {
			req.ProformaData.Items[0].Name = "  WIDGET a "
			Expect(HasDiscrepancies(req, DefaultAmountTolerance)).To(BeFalse())
		})
	})

	When("a requested item is missing from the proforma", func() {
		It("should report a discrepancy", func() {
			req.ProformaData.Items = req.ProformaData.Items[:1]
			Expect(HasDiscrepancies(req, DefaultAmountTolerance)).To(BeTrue())
		})
	})

	When("the proforma lists an extra item", func() {
		It("should report a discrepancy", func() {
			req.ProformaData.Items = append(req.ProformaData.Items,
				entity.LineItem{Name: "Surprise Fee", Quantity: 1, Price: 5.00})
			Expect(HasDiscrepancies(req, DefaultAmountTolerance)).To(BeTrue())
		})
	})

	When("quantities differ", func() {
		It("should report a discrepancy", func() {
			req.ProformaData.Items[0].Quantity = 4
			Expect(HasDiscrepancies(req, DefaultAmountTolerance)).To(BeTrue())
		})
	})

	When("unit prices differ beyond a cent", func() {
		It("should report a discrepancy", func() {
			req.ProformaData.Items[0].Price = 10.02
			Expect(HasDiscrepancies(req, DefaultAmountTolerance)).To(BeTrue())
		})

		It("should tolerate sub-cent differences", func() {
			req.ProformaData.Items[0].Price = 10.005
			Expect(HasDiscrepancies(req, DefaultAmountTolerance)).To(BeFalse())
		})
	})
})

var _ = Describe("ValidateReceipt", func() {
	var (
		receipt entity.DocumentData
		po      *entity.PurchaseOrderData
		result  entity.ValidationResult
	)

	BeforeEach(func() {
		receipt = entity.DocumentData{
			Vendor: "Acme",
			Amount: amount(500.00),
			Items: []entity.LineItem{
				{Name: "Widget A", Quantity: 3, Price: 30.00},
			},
		}
		po = &entity.PurchaseOrderData{
			Vendor: "Acme Corp Ltd",
			Amount: 500.00,
			Items: []entity.POItem{
				{Name: "Widget A", Quantity: 3, UnitPrice: 10.00, Total: 30.00},
			},
		}
	})

	JustBeforeEach(func() {
		result = ValidateReceipt(receipt, po)
	})

	When("the receipt matches the purchase order", func() {
		It("should be valid with all checks passing", func() {
			Expect(result.IsValid).To(BeTrue())
			Expect(result.VendorMatch).To(BeTrue())
			Expect(result.AmountMatch).To(BeTrue())
			Expect(result.ItemsMatch).To(BeTrue())
			Expect(result.Errors).To(BeEmpty())
			Expect(result.Warnings).To(BeEmpty())
		})

		It("should carry the extracted receipt data", func() {
			Expect(result.ReceiptData).To(Equal(receipt))
		})
	})

	When("vendors match as substrings in either direction", func() {
		It("should match receipt contained in PO vendor", func() {
			Expect(result.VendorMatch).To(BeTrue())
		})

		It("should match PO vendor contained in receipt", func() {
			receipt.Vendor = "The Acme Corp Ltd Kigali Branch"
			Expect(ValidateReceipt(receipt, po).VendorMatch).To(BeTrue())
		})

		It("should ignore case", func() {
			receipt.Vendor = "ACME CORP LTD"
			Expect(ValidateReceipt(receipt, po).VendorMatch).To(BeTrue())
		})
	})

	When("the vendor differs", func() {
		BeforeEach(func() {
			receipt.Vendor = "Totally Different Traders"
		})

		It("should invalidate the receipt", func() {
			Expect(result.IsValid).To(BeFalse())
			Expect(result.VendorMatch).To(BeFalse())
			Expect(result.Errors).To(HaveLen(1))
			Expect(result.Errors[0]).To(ContainSubstring("Vendor mismatch"))
		})
	})

	When("the amounts differ by less than a cent", func() {
		BeforeEach(func() {
			receipt.Amount = amount(500.005)
		})

		It("should count as a match", func() {
			Expect(result.AmountMatch).To(BeTrue())
			Expect(result.IsValid).To(BeTrue())
		})
	})

	When("the amounts differ by more than a cent", func() {
		BeforeEach(func() {
			receipt.Amount = amount(512.00)
		})

		It("should invalidate the receipt", func() {
			Expect(result.IsValid).To(BeFalse())
			Expect(result.AmountMatch).To(BeFalse())
			Expect(result.Errors).To(HaveLen(1))
			Expect(result.Errors[0]).To(ContainSubstring("Amount mismatch"))
		})
	})

	When("the receipt amount could not be extracted", func() {
		BeforeEach(func() {
			receipt.Amount = nil
		})

		It("should not match but also not error", func() {
			Expect(result.AmountMatch).To(BeFalse())
			Expect(result.IsValid).To(BeTrue())
			Expect(result.Errors).To(BeEmpty())
		})
	})

	When("the item counts differ", func() {
		BeforeEach(func() {
			receipt.Items = nil
		})

		It("should warn without invalidating", func() {
			Expect(result.ItemsMatch).To(BeFalse())
			Expect(result.IsValid).To(BeTrue())
			Expect(result.Warnings).To(HaveLen(1))
			Expect(result.Warnings[0]).To(ContainSubstring("Item count mismatch"))
		})
	})
})

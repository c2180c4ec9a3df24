package po

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wakaflorien/procureToPay/constants"
	"github.com/wakaflorien/procureToPay/internal/entity"
)

func TestPO(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "PO Suite")
}

var _ = Describe("Generate", func() {
	var (
		req      *entity.PurchaseRequest
		proforma *entity.DocumentData
		data     entity.PurchaseOrderData
	)

	BeforeEach(func() {
		created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
		req = &entity.PurchaseRequest{
			ID:        uuid.MustParse("a1b2c3d4-e5f6-4a88-9b00-112233445566"),
			Title:     "Office restock",
			Amount:    81.00,
			CreatedAt: created,
			Items: []entity.RequestItem{
				{Name: "Widget A", Description: "blue", Quantity: 3, UnitPrice: 10.00},
				{Name: "Gadget B", Quantity: 2, UnitPrice: 25.50},
			},
			Approvals: []entity.Approval{
				{Approver: "fin.lead", Level: constants.LevelTwo, Action: constants.ActionApproved, CreatedAt: created.Add(2 * time.Hour)},
				{Approver: "dept.head", Level: constants.LevelOne, Action: constants.ActionApproved, CreatedAt: created.Add(time.Hour)},
				{Approver: "dept.head", Level: constants.LevelOne, Action: constants.ActionRejected, CreatedAt: created},
			},
		}
		proforma = &entity.DocumentData{
			Vendor: "Acme Supplies Ltd",
			Terms:  "Net 30",
		}
	})

	JustBeforeEach(func() {
		data = Generate(req, proforma)
	})

	It("should derive the PO number from the request id and creation date", func() {
		Expect(data.PONumber).To(Equal("PO-A1B2C3D4-20260314"))
	})

	It("should be stable across regeneration", func() {
		Expect(Generate(req, proforma).PONumber).To(Equal(data.PONumber))
	})

	It("should take vendor and terms from the proforma", func() {
		Expect(data.Vendor).To(Equal("Acme Supplies Ltd"))
		Expect(data.Terms).To(Equal("Net 30"))
	})

	It("should take the amount from the request, not the proforma", func() {
		Expect(data.Amount).To(Equal(81.00))
	})

	It("should copy request items with computed totals", func() {
		Expect(data.Items).To(HaveLen(2))
		Expect(data.Items[0]).To(Equal(entity.POItem{
			Name: "Widget A", Description: "blue", Quantity: 3, UnitPrice: 10.00, Total: 30.00,
		}))
		Expect(data.Items[1].Total).To(Equal(51.00))
	})

	It("should list level 1 approvals before level 2 and skip rejections", func() {
		Expect(data.ApprovedBy).To(HaveLen(2))
		Expect(data.ApprovedBy[0].Level).To(Equal("level_1"))
		Expect(data.ApprovedBy[0].Approver).To(Equal("dept.head"))
		Expect(data.ApprovedBy[1].Level).To(Equal("level_2"))
		Expect(data.ApprovedBy[1].Approver).To(Equal("fin.lead"))
	})

	When("no proforma is available", func() {
		BeforeEach(func() {
			proforma = nil
		})

		It("should fall back to the unknown vendor", func() {
			Expect(data.Vendor).To(Equal("Unknown Vendor"))
			Expect(data.Terms).To(BeEmpty())
		})
	})

	It("should produce a document that validates against the schema", func() {
		raw, err := json.Marshal(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(Validate(raw)).To(Succeed())
	})
})

var _ = Describe("Validate", func() {
	It("rejects a malformed PO number", func() {
		raw := []byte(`{
			"po_number": "PO-xyz-2026",
			"request_id": "a1b2c3d4-e5f6-4a88-9b00-112233445566",
			"vendor": "Acme",
			"amount": 10,
			"items": [],
			"terms": "",
			"created_at": "2026-03-14T09:30:00Z",
			"approved_by": []
		}`)
		err := Validate(raw)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("does not match schema"))
	})

	It("rejects a zero amount", func() {
		data := Generate(&entity.PurchaseRequest{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		}, nil)
		raw, err := json.Marshal(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(Validate(raw)).NotTo(Succeed())
	})
})

var _ = Describe("Number", func() {
	It("uppercases the hex prefix", func() {
		req := &entity.PurchaseRequest{
			ID:        uuid.MustParse("deadbeef-0000-4000-8000-000000000000"),
			CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		}
		n := Number(req)
		Expect(n).To(Equal("PO-DEADBEEF-20260102"))
		Expect(strings.HasPrefix(n, "PO-")).To(BeTrue())
	})
})

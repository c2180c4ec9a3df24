package workflow

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wakaflorien/procureToPay/constants"
	"github.com/wakaflorien/procureToPay/internal/common"
	"github.com/wakaflorien/procureToPay/internal/entity"
	"github.com/wakaflorien/procureToPay/internal/textract"
)

func TestWorkflow(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Workflow Suite")
}

// fakeExtractor returns canned text instead of running OCR.
type fakeExtractor struct {
	text string
}

func (f *fakeExtractor) ExtractText(_ context.Context, _ *textract.Buffer, _ textract.Hints) textract.Result {
	if f.text == "" {
		return textract.Result{}
	}
	return textract.Result{Text: f.text, Kind: "PDF", Method: "pdf-text", Pages: 1}
}

// matchingProforma extracts to vendor Acme, amount 81.00 and the two request
// items below, so the discrepancy gate passes.
const matchingProforma = "Vendor: Acme Supplies\n" +
	"Widget A 3 10.00 30.00\n" +
	"Gadget B 2 25.50 51.00\n" +
	"Grand Total: $81.00\n"

const mismatchedProforma = "Vendor: Acme Supplies\n" +
	"Widget A 3 10.00 30.00\n" +
	"Grand Total: $9000.00\n"

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		store     *MemoryStore
		extractor *fakeExtractor
		svc       *Service
		req       *entity.PurchaseRequest
		err       error
	)

	newRequest := func() *entity.PurchaseRequest {
		r, cerr := svc.CreateRequest(ctx, CreateRequestInput{
			Title:     "Office restock",
			Amount:    81.00,
			CreatedBy: "staff.user",
			Items: []entity.RequestItem{
				{Name: "Widget A", Quantity: 3, UnitPrice: 10.00},
				{Name: "Gadget B", Quantity: 2, UnitPrice: 25.50},
			},
		})
		Expect(cerr).NotTo(HaveOccurred())
		return r
	}

	submitProforma := func(id uuid.UUID) {
		_, perr := svc.SubmitProforma(ctx, id, strings.NewReader("ignored"), textract.Hints{})
		Expect(perr).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = NewMemoryStore()
		extractor = &fakeExtractor{text: matchingProforma}
		svc = NewService(store, extractor, Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
		req = newRequest()
	})

	Describe("CreateRequest", func() {
		It("starts pending and requires both levels", func() {
			Expect(req.Status).To(Equal(constants.StatusPending))
			Expect(req.RequiresLevel1).To(BeTrue())
			Expect(req.RequiresLevel2).To(BeTrue())
			Expect(req.Level1Approved).To(BeFalse())
			Expect(req.Level2Approved).To(BeFalse())
		})

		It("rejects a missing title", func() {
			_, err = svc.CreateRequest(ctx, CreateRequestInput{Amount: 10})
			Expect(common.IsInvalidArgument(err)).To(BeTrue())
		})

		It("rejects a non-positive amount", func() {
			_, err = svc.CreateRequest(ctx, CreateRequestInput{Title: "x", Amount: 0})
			Expect(common.IsInvalidArgument(err)).To(BeTrue())
		})
	})

	Describe("SubmitProforma", func() {
		It("attaches the extracted data to the request", func() {
			data, perr := svc.SubmitProforma(ctx, req.ID, strings.NewReader("ignored"), textract.Hints{})
			Expect(perr).NotTo(HaveOccurred())
			Expect(data.Vendor).To(Equal("Acme Supplies"))
			Expect(*data.Amount).To(Equal(81.00))
			Expect(data.Items).To(HaveLen(2))

			stored, gerr := svc.GetRequest(ctx, req.ID)
			Expect(gerr).NotTo(HaveOccurred())
			Expect(stored.ProformaData).NotTo(BeNil())
		})

		It("keeps the error marker when nothing extracts", func() {
			extractor.text = ""
			data, perr := svc.SubmitProforma(ctx, req.ID, strings.NewReader("ignored"), textract.Hints{})
			Expect(perr).NotTo(HaveOccurred())
			Expect(data.Error).NotTo(BeEmpty())
			Expect(data.Vendor).To(Equal("Unknown Vendor"))
		})

		It("fails for an unknown request", func() {
			_, perr := svc.SubmitProforma(ctx, uuid.New(), strings.NewReader("ignored"), textract.Hints{})
			Expect(perr).To(HaveOccurred())
		})
	})

	Describe("Approve", func() {
		BeforeEach(func() {
			submitProforma(req.ID)
		})

		It("walks level 1 then level 2 to approval and generates the PO", func() {
			r1, aerr := svc.Approve(ctx, req.ID, "dept.head", constants.LevelOne, "")
			Expect(aerr).NotTo(HaveOccurred())
			Expect(r1.Level1Approved).To(BeTrue())
			Expect(r1.Status).To(Equal(constants.StatusPending))
			Expect(r1.PurchaseOrderData).To(BeNil())

			r2, aerr := svc.Approve(ctx, req.ID, "fin.lead", constants.LevelTwo, "ok")
			Expect(aerr).NotTo(HaveOccurred())
			Expect(r2.Level2Approved).To(BeTrue())
			Expect(r2.Status).To(Equal(constants.StatusApproved))
			Expect(r2.PurchaseOrderData).NotTo(BeNil())
			Expect(r2.PurchaseOrderData.PONumber).To(HavePrefix("PO-"))
			Expect(r2.PurchaseOrderData.Vendor).To(Equal("Acme Supplies"))
			Expect(r2.PurchaseOrderData.ApprovedBy).To(HaveLen(2))
			Expect(r2.PurchaseOrderData.ApprovedBy[0].Approver).To(Equal("dept.head"))
			Expect(r2.PurchaseOrderData.ApprovedBy[1].Approver).To(Equal("fin.lead"))
		})

		It("refuses level 2 before level 1", func() {
			_, aerr := svc.Approve(ctx, req.ID, "fin.lead", constants.LevelTwo, "")
			Expect(common.IsInvalidArgument(aerr)).To(BeTrue())
		})

		It("refuses a second action by the same approver", func() {
			_, aerr := svc.Approve(ctx, req.ID, "dept.head", constants.LevelOne, "")
			Expect(aerr).NotTo(HaveOccurred())
			_, aerr = svc.Approve(ctx, req.ID, "dept.head", constants.LevelTwo, "")
			Expect(common.IsInvalidArgument(aerr)).To(BeTrue())
		})

		It("refuses unknown levels", func() {
			_, aerr := svc.Approve(ctx, req.ID, "x", constants.LevelFinanceOverride, "")
			Expect(common.IsInvalidArgument(aerr)).To(BeTrue())
		})

		When("the proforma disagrees with the request", func() {
			BeforeEach(func() {
				extractor.text = mismatchedProforma
				submitProforma(req.ID)
			})

			It("allows the non-completing level 1 approval", func() {
				_, aerr := svc.Approve(ctx, req.ID, "dept.head", constants.LevelOne, "")
				Expect(aerr).NotTo(HaveOccurred())
			})

			It("blocks the completing approval", func() {
				_, aerr := svc.Approve(ctx, req.ID, "dept.head", constants.LevelOne, "")
				Expect(aerr).NotTo(HaveOccurred())
				_, aerr = svc.Approve(ctx, req.ID, "fin.lead", constants.LevelTwo, "")
				Expect(common.IsInvalidArgument(aerr)).To(BeTrue())
				Expect(aerr.Error()).To(ContainSubstring("does not match"))
			})

			It("lets the admin override through regardless", func() {
				r, aerr := svc.Approve(ctx, req.ID, "root", constants.LevelAdminOverride, "override")
				Expect(aerr).NotTo(HaveOccurred())
				Expect(r.Status).To(Equal(constants.StatusApproved))
				Expect(r.Level1Approved).To(BeTrue())
				Expect(r.Level2Approved).To(BeTrue())
			})
		})

		When("no proforma was submitted", func() {
			It("blocks the completing approval via the fail-closed gate", func() {
				fresh := newRequest()
				_, aerr := svc.Approve(ctx, fresh.ID, "dept.head", constants.LevelOne, "")
				Expect(aerr).NotTo(HaveOccurred())
				_, aerr = svc.Approve(ctx, fresh.ID, "fin.lead", constants.LevelTwo, "")
				Expect(common.IsInvalidArgument(aerr)).To(BeTrue())
			})
		})
	})

	Describe("Reject", func() {
		It("moves a pending request to rejected", func() {
			r, rerr := svc.Reject(ctx, req.ID, "dept.head", constants.LevelOne, "too pricey")
			Expect(rerr).NotTo(HaveOccurred())
			Expect(r.Status).To(Equal(constants.StatusRejected))
			Expect(r.Approvals).To(HaveLen(1))
			Expect(r.Approvals[0].Action).To(Equal(constants.ActionRejected))
		})

		It("refuses to reject a non-pending request without override", func() {
			_, rerr := svc.Reject(ctx, req.ID, "dept.head", constants.LevelOne, "")
			Expect(rerr).NotTo(HaveOccurred())
			_, rerr = svc.Reject(ctx, req.ID, "fin.lead", constants.LevelTwo, "")
			Expect(common.IsInvalidArgument(rerr)).To(BeTrue())
		})

		It("lets the admin override reject a non-pending request", func() {
			_, rerr := svc.Reject(ctx, req.ID, "dept.head", constants.LevelOne, "")
			Expect(rerr).NotTo(HaveOccurred())
			r, rerr := svc.Reject(ctx, req.ID, "root", constants.LevelAdminOverride, "")
			Expect(rerr).NotTo(HaveOccurred())
			Expect(r.Status).To(Equal(constants.StatusRejected))
		})
	})

	Describe("Cancel", func() {
		It("cancels any non-cancelled request with a finance override record", func() {
			r, cerr := svc.Cancel(ctx, req.ID, "fin.lead", "budget freeze")
			Expect(cerr).NotTo(HaveOccurred())
			Expect(r.Status).To(Equal(constants.StatusCancelled))
			Expect(r.Approvals[0].Level).To(Equal(constants.LevelFinanceOverride))
			Expect(r.Approvals[0].Action).To(Equal(constants.ActionCancelled))
		})

		It("refuses to cancel twice", func() {
			_, cerr := svc.Cancel(ctx, req.ID, "fin.lead", "")
			Expect(cerr).NotTo(HaveOccurred())
			_, cerr = svc.Cancel(ctx, req.ID, "fin.lead", "")
			Expect(common.IsInvalidArgument(cerr)).To(BeTrue())
		})
	})

	Describe("SubmitReceipt", func() {
		approveFully := func() {
			submitProforma(req.ID)
			_, aerr := svc.Approve(ctx, req.ID, "dept.head", constants.LevelOne, "")
			Expect(aerr).NotTo(HaveOccurred())
			_, aerr = svc.Approve(ctx, req.ID, "fin.lead", constants.LevelTwo, "")
			Expect(aerr).NotTo(HaveOccurred())
		}

		It("refuses receipts for pending requests", func() {
			_, serr := svc.SubmitReceipt(ctx, req.ID, strings.NewReader("x"), textract.Hints{})
			Expect(common.IsInvalidArgument(serr)).To(BeTrue())
		})

		It("validates a matching receipt", func() {
			approveFully()
			extractor.text = "Vendor: Acme Supplies\n3 Widget A $30.00\n2 Gadget B $51.00\nTotal: $81.00\n"

			result, serr := svc.SubmitReceipt(ctx, req.ID, strings.NewReader("x"), textract.Hints{})
			Expect(serr).NotTo(HaveOccurred())
			Expect(result.IsValid).To(BeTrue())
			Expect(result.VendorMatch).To(BeTrue())
			Expect(result.AmountMatch).To(BeTrue())

			stored, gerr := svc.GetRequest(ctx, req.ID)
			Expect(gerr).NotTo(HaveOccurred())
			Expect(stored.ReceiptData).NotTo(BeNil())
			Expect(stored.ReceiptValidation).NotTo(BeNil())
		})

		It("flags a mismatched receipt", func() {
			approveFully()
			extractor.text = "Vendor: Some Other Shop\nTotal: $999.00\n"

			result, serr := svc.SubmitReceipt(ctx, req.ID, strings.NewReader("x"), textract.Hints{})
			Expect(serr).NotTo(HaveOccurred())
			Expect(result.IsValid).To(BeFalse())
			Expect(result.Errors).NotTo(BeEmpty())
		})
	})

	Describe("UpdateRequest and DeleteRequest", func() {
		It("edits a pending request", func() {
			r, uerr := svc.UpdateRequest(ctx, req.ID, UpdateRequestInput{
				Title: "Bigger restock", Amount: 120.00,
			})
			Expect(uerr).NotTo(HaveOccurred())
			Expect(r.Title).To(Equal("Bigger restock"))
			Expect(r.Amount).To(Equal(120.00))
		})

		It("refuses edits after an approval landed", func() {
			submitProforma(req.ID)
			_, aerr := svc.Approve(ctx, req.ID, "dept.head", constants.LevelOne, "")
			Expect(aerr).NotTo(HaveOccurred())
			_, uerr := svc.UpdateRequest(ctx, req.ID, UpdateRequestInput{Title: "x", Amount: 1})
			Expect(common.IsInvalidArgument(uerr)).To(BeTrue())
		})

		It("deletes only pending unapproved requests", func() {
			Expect(svc.DeleteRequest(ctx, req.ID)).To(Succeed())
			_, gerr := svc.GetRequest(ctx, req.ID)
			Expect(gerr).To(HaveOccurred())
		})

		It("refuses to delete after approval", func() {
			submitProforma(req.ID)
			_, aerr := svc.Approve(ctx, req.ID, "dept.head", constants.LevelOne, "")
			Expect(aerr).NotTo(HaveOccurred())
			derr := svc.DeleteRequest(ctx, req.ID)
			Expect(common.IsInvalidArgument(derr)).To(BeTrue())
		})
	})
})

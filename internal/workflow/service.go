// Package workflow implements the purchase request lifecycle: creation and
// editing while pending, the two-level approval chain with override levels,
// proforma submission with extraction, purchase order generation on final
// approval, and receipt submission with validation.
//
// Who is allowed to call each operation is decided by the surrounding
// system. The service receives the acting user's name and approval level as
// arguments and enforces workflow rules only: level ordering, duplicate
// actions, status transitions and the discrepancy gate.
package workflow

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wakaflorien/procureToPay/constants"
	"github.com/wakaflorien/procureToPay/internal/common"
	"github.com/wakaflorien/procureToPay/internal/entity"
	"github.com/wakaflorien/procureToPay/internal/fields"
	"github.com/wakaflorien/procureToPay/internal/po"
	"github.com/wakaflorien/procureToPay/internal/recon"
	"github.com/wakaflorien/procureToPay/internal/textract"
)

// TextExtractor is the document text acquisition dependency, satisfied by
// *textract.Extractor and stubbed in tests.
type TextExtractor interface {
	ExtractText(ctx context.Context, buf *textract.Buffer, hints textract.Hints) textract.Result
}

// Service orchestrates the purchase request workflow over a RequestStore.
type Service struct {
	store     RequestStore
	extractor TextExtractor
	logger    *slog.Logger

	amountTolerance float64
	now             func() time.Time
}

// Config carries the service's tuning knobs.
type Config struct {
	// AmountTolerance is the allowed request-versus-proforma amount gap.
	AmountTolerance float64
}

func NewService(store RequestStore, extractor TextExtractor, cfg Config, logger *slog.Logger) *Service {
	if cfg.AmountTolerance <= 0 {
		cfg.AmountTolerance = recon.DefaultAmountTolerance
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:           store,
		extractor:       extractor,
		logger:          logger,
		amountTolerance: cfg.AmountTolerance,
		now:             time.Now,
	}
}

// CreateRequestInput is the payload for CreateRequest.
type CreateRequestInput struct {
	Title       string
	Description string
	Amount      float64
	CreatedBy   string
	Items       []entity.RequestItem
}

// CreateRequest registers a new pending request. Both approval levels are
// required unless the caller's system decides otherwise later.
func (s *Service) CreateRequest(ctx context.Context, in CreateRequestInput) (*entity.PurchaseRequest, error) {
	if in.Title == "" {
		return nil, common.InvalidArgumentError("title is required")
	}
	if in.Amount <= 0 {
		return nil, common.InvalidArgumentError("amount must be positive")
	}

	now := s.now()
	req := &entity.PurchaseRequest{
		ID:             uuid.New(),
		Title:          in.Title,
		Description:    in.Description,
		Amount:         in.Amount,
		Status:         constants.StatusPending,
		CreatedBy:      in.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
		Items:          append([]entity.RequestItem(nil), in.Items...),
		RequiresLevel1: true,
		RequiresLevel2: true,
	}
	if err := s.store.Save(ctx, req); err != nil {
		return nil, err
	}
	s.logger.Info("request created", "request_id", req.ID, "amount", req.Amount, "created_by", req.CreatedBy)
	return req, nil
}

// GetRequest returns the request by id.
func (s *Service) GetRequest(ctx context.Context, id uuid.UUID) (*entity.PurchaseRequest, error) {
	return s.store.Get(ctx, id)
}

// ListRequests returns all requests, newest first.
func (s *Service) ListRequests(ctx context.Context) ([]*entity.PurchaseRequest, error) {
	return s.store.List(ctx)
}

// UpdateRequestInput carries the editable fields of a pending request.
type UpdateRequestInput struct {
	Title       string
	Description string
	Amount      float64
	Items       []entity.RequestItem
}

// UpdateRequest edits a request that is still pending and unapproved.
func (s *Service) UpdateRequest(ctx context.Context, id uuid.UUID, in UpdateRequestInput) (*entity.PurchaseRequest, error) {
	return s.store.WithLock(ctx, id, func(req *entity.PurchaseRequest) error {
		if !req.CanBeEdited() {
			return common.InvalidArgumentError("request can no longer be edited")
		}
		if in.Amount <= 0 {
			return common.InvalidArgumentError("amount must be positive")
		}
		req.Title = in.Title
		req.Description = in.Description
		req.Amount = in.Amount
		req.Items = append([]entity.RequestItem(nil), in.Items...)
		req.UpdatedAt = s.now()
		return nil
	})
}

// DeleteRequest removes a request that is still pending and has collected no
// approvals.
func (s *Service) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	req, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if req.Status != constants.StatusPending {
		return common.InvalidArgumentError("can only delete pending requests")
	}
	if req.Level1Approved || req.Level2Approved {
		return common.InvalidArgumentError("cannot delete request that has been approved")
	}
	return s.store.Delete(ctx, id)
}

// SubmitProforma extracts structured data from a proforma document and
// attaches it to the request. Extraction never fails the submission; an
// unreadable document produces data with the error marker set, which the
// discrepancy gate later treats as a mismatch.
func (s *Service) SubmitProforma(ctx context.Context, id uuid.UUID, doc io.Reader, hints textract.Hints) (*entity.DocumentData, error) {
	buf, err := textract.NewBuffer(doc)
	if err != nil {
		return nil, common.InvalidArgumentError("unreadable proforma document")
	}

	res := s.extractor.ExtractText(ctx, buf, hints)
	data := fields.Extract(res.Text)

	updated, err := s.store.WithLock(ctx, id, func(req *entity.PurchaseRequest) error {
		req.ProformaData = &data
		req.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("proforma processed",
		"request_id", id,
		"vendor", data.Vendor,
		"items", len(data.Items),
		"method", res.Method,
		"extract_error", data.Error,
	)
	return updated.ProformaData, nil
}

// Approve records an approval at the given level and advances the request.
// The admin override level completes the flow unconditionally and skips the
// discrepancy gate; regular levels must arrive in order, each approver may
// act only once, and the approval that would complete the flow is blocked
// while the proforma disagrees with the request.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, approver string, level constants.ApprovalLevel, comments string) (*entity.PurchaseRequest, error) {
	if level != constants.LevelOne && level != constants.LevelTwo && level != constants.LevelAdminOverride {
		return nil, common.InvalidArgumentErrorf("cannot approve at level %q", level)
	}
	isOverride := level == constants.LevelAdminOverride

	return s.store.WithLock(ctx, id, func(req *entity.PurchaseRequest) error {
		if !isOverride {
			if err := canApprove(req, approver, level); err != nil {
				return err
			}
		}

		willComplete := isOverride ||
			(!req.RequiresLevel2 && level == constants.LevelOne) ||
			(req.RequiresLevel2 && level == constants.LevelTwo)

		if willComplete && !isOverride && recon.HasDiscrepancies(req, s.amountTolerance) {
			return common.InvalidArgumentError(
				"proforma data does not match the original request; escalate to finance for review")
		}

		req.Approvals = append(req.Approvals, entity.Approval{
			Approver:  approver,
			Level:     level,
			Action:    constants.ActionApproved,
			Comments:  comments,
			CreatedAt: s.now(),
		})

		switch {
		case isOverride:
			req.Level1Approved = true
			req.Level2Approved = true
			req.Status = constants.StatusApproved
		case level == constants.LevelOne:
			req.Level1Approved = true
			if !req.RequiresLevel2 {
				req.Status = constants.StatusApproved
			}
		case level == constants.LevelTwo:
			req.Level2Approved = true
			req.Status = constants.StatusApproved
		}
		req.UpdatedAt = s.now()

		// The final approval generates the purchase order.
		if req.Status == constants.StatusApproved && req.ProformaData != nil {
			poData := po.Generate(req, req.ProformaData)
			if raw, merr := json.Marshal(poData); merr != nil {
				s.logger.Error("purchase order marshal failed", "request_id", req.ID, "error", merr)
			} else if verr := po.Validate(raw); verr != nil {
				s.logger.Error("generated purchase order failed schema validation",
					"request_id", req.ID, "po_number", poData.PONumber, "error", verr)
			}
			req.PurchaseOrderData = &poData
			s.logger.Info("purchase order generated", "request_id", req.ID, "po_number", poData.PONumber)
		}
		return nil
	})
}

func canApprove(req *entity.PurchaseRequest, approver string, level constants.ApprovalLevel) error {
	if req.Status != constants.StatusPending {
		return common.InvalidArgumentError("can only approve pending requests")
	}
	if req.HasActionBy(approver) {
		return common.InvalidArgumentError("you have already performed an action on this request")
	}
	switch level {
	case constants.LevelOne:
		if req.Level1Approved {
			return common.InvalidArgumentError("level 1 already approved")
		}
	case constants.LevelTwo:
		if !req.Level1Approved {
			return common.InvalidArgumentError("level 2 approval requires level 1 first")
		}
		if req.Level2Approved {
			return common.InvalidArgumentError("level 2 already approved")
		}
	}
	return nil
}

// Reject records a rejection and moves the request to rejected. The admin
// override level may reject regardless of current status or prior actions.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, approver string, level constants.ApprovalLevel, comments string) (*entity.PurchaseRequest, error) {
	if level != constants.LevelOne && level != constants.LevelTwo && level != constants.LevelAdminOverride {
		return nil, common.InvalidArgumentErrorf("cannot reject at level %q", level)
	}
	isOverride := level == constants.LevelAdminOverride

	return s.store.WithLock(ctx, id, func(req *entity.PurchaseRequest) error {
		if !isOverride {
			if req.Status != constants.StatusPending {
				return common.InvalidArgumentError("can only reject pending requests")
			}
			if req.HasActionBy(approver) {
				return common.InvalidArgumentError("you have already performed an action on this request")
			}
		}
		req.Approvals = append(req.Approvals, entity.Approval{
			Approver:  approver,
			Level:     level,
			Action:    constants.ActionRejected,
			Comments:  comments,
			CreatedAt: s.now(),
		})
		req.Status = constants.StatusRejected
		req.UpdatedAt = s.now()
		return nil
	})
}

// Cancel is the finance override: it cancels a request in any state except
// already-cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, approver, comments string) (*entity.PurchaseRequest, error) {
	return s.store.WithLock(ctx, id, func(req *entity.PurchaseRequest) error {
		if req.Status == constants.StatusCancelled {
			return common.InvalidArgumentError("request is already cancelled")
		}
		req.Approvals = append(req.Approvals, entity.Approval{
			Approver:  approver,
			Level:     constants.LevelFinanceOverride,
			Action:    constants.ActionCancelled,
			Comments:  comments,
			CreatedAt: s.now(),
		})
		req.Status = constants.StatusCancelled
		req.UpdatedAt = s.now()
		return nil
	})
}

// SubmitReceipt extracts receipt data and validates it against the purchase
// order. Only approved requests with a generated PO accept receipts.
func (s *Service) SubmitReceipt(ctx context.Context, id uuid.UUID, doc io.Reader, hints textract.Hints) (*entity.ValidationResult, error) {
	buf, err := textract.NewBuffer(doc)
	if err != nil {
		return nil, common.InvalidArgumentError("unreadable receipt document")
	}

	updated, err := s.store.WithLock(ctx, id, func(req *entity.PurchaseRequest) error {
		if req.Status != constants.StatusApproved {
			return common.InvalidArgumentError("can only submit receipt for approved requests")
		}
		if req.PurchaseOrderData == nil {
			return common.FailedPreconditionError("purchase order not yet generated")
		}

		res := s.extractor.ExtractText(ctx, buf, hints)
		receiptData := fields.ExtractReceipt(res.Text)
		validation := recon.ValidateReceipt(receiptData, req.PurchaseOrderData)

		req.ReceiptData = &receiptData
		req.ReceiptValidation = &validation
		req.UpdatedAt = s.now()

		s.logger.Info("receipt validated",
			"request_id", req.ID,
			"valid", validation.IsValid,
			"vendor_match", validation.VendorMatch,
			"amount_match", validation.AmountMatch,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated.ReceiptValidation, nil
}

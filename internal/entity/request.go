package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wakaflorien/procureToPay/constants"
)

// RequestItem is an item line on a purchase request.
type RequestItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// TotalPrice is quantity times unit price.
func (i RequestItem) TotalPrice() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// Approval is one entry in a request's approval history.
type Approval struct {
	Approver  string                   `json:"approver"`
	Level     constants.ApprovalLevel  `json:"level"`
	Action    constants.ApprovalAction `json:"action"`
	Comments  string                   `json:"comments"`
	CreatedAt time.Time                `json:"created_at"`
}

// PurchaseRequest is the authoritative record the workflow engine operates on.
// Who may act on it is decided by the surrounding system; this record only
// tracks what happened.
type PurchaseRequest struct {
	ID          uuid.UUID               `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Amount      float64                 `json:"amount"`
	Status      constants.RequestStatus `json:"status"`
	CreatedBy   string                  `json:"created_by"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`

	Items []RequestItem `json:"items"`

	// Extracted data from submitted documents.
	ProformaData      *DocumentData      `json:"proforma_data,omitempty"`
	PurchaseOrderData *PurchaseOrderData `json:"purchase_order_data,omitempty"`
	ReceiptData       *DocumentData      `json:"receipt_data,omitempty"`
	ReceiptValidation *ValidationResult  `json:"receipt_validation_result,omitempty"`

	// Approval tracking.
	RequiresLevel1 bool       `json:"requires_level_1_approval"`
	RequiresLevel2 bool       `json:"requires_level_2_approval"`
	Level1Approved bool       `json:"level_1_approved"`
	Level2Approved bool       `json:"level_2_approved"`
	Approvals      []Approval `json:"approvals"`
}

// CanBeEdited reports whether the request may still be changed by its creator.
func (r *PurchaseRequest) CanBeEdited() bool {
	return r.Status == constants.StatusPending && !r.Level1Approved && !r.Level2Approved
}

// IsFullyApproved reports whether every required approval level has signed off.
func (r *PurchaseRequest) IsFullyApproved() bool {
	if r.RequiresLevel1 && !r.Level1Approved {
		return false
	}
	if r.RequiresLevel2 && !r.Level2Approved {
		return false
	}
	return true
}

// HasActionBy reports whether the named approver already acted on the request.
func (r *PurchaseRequest) HasActionBy(approver string) bool {
	for _, a := range r.Approvals {
		if strings.EqualFold(a.Approver, approver) {
			return true
		}
	}
	return false
}

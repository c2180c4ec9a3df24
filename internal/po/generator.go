// Package po generates purchase order documents from fully approved requests
// and validates them against the purchase order JSON schema.
package po

import (
	"fmt"
	"strings"
	"time"

	"github.com/wakaflorien/procureToPay/constants"
	"github.com/wakaflorien/procureToPay/internal/entity"
)

// Generate builds the purchase order for an approved request. The vendor and
// terms come from the extracted proforma; the amount and items come from the
// request itself, which is the authorized source of truth for what is being
// bought.
func Generate(req *entity.PurchaseRequest, proforma *entity.DocumentData) entity.PurchaseOrderData {
	vendor := "Unknown Vendor"
	terms := ""
	if proforma != nil {
		if proforma.Vendor != "" {
			vendor = proforma.Vendor
		}
		terms = proforma.Terms
	}

	items := make([]entity.POItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, entity.POItem{
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.TotalPrice(),
		})
	}

	return entity.PurchaseOrderData{
		PONumber:   Number(req),
		RequestID:  req.ID.String(),
		Vendor:     vendor,
		Amount:     req.Amount,
		Items:      items,
		Terms:      terms,
		CreatedAt:  req.CreatedAt.Format(time.RFC3339),
		ApprovedBy: approvalsOf(req),
	}
}

// Number derives the PO number from the request identity and creation date:
// PO-<first 8 hex of the id, uppercased>-<YYYYMMDD>. Stable for a given
// request, so regenerating the PO never changes its number.
func Number(req *entity.PurchaseRequest) string {
	hexID := strings.ReplaceAll(req.ID.String(), "-", "")
	return fmt.Sprintf("PO-%s-%s", strings.ToUpper(hexID[:8]), req.CreatedAt.Format("20060102"))
}

// approvalsOf lists the granted approvals, level 1 entries before level 2,
// preserving submission order within a level.
func approvalsOf(req *entity.PurchaseRequest) []entity.POApproval {
	approved := make([]entity.POApproval, 0, len(req.Approvals))
	for _, level := range []constants.ApprovalLevel{constants.LevelOne, constants.LevelTwo} {
		for _, a := range req.Approvals {
			if a.Action != constants.ActionApproved || a.Level != level {
				continue
			}
			approved = append(approved, entity.POApproval{
				Level:    string(a.Level),
				Approver: a.Approver,
				Date:     a.CreatedAt.Format(time.RFC3339),
			})
		}
	}
	return approved
}

// Package recon compares documents against requests and purchase orders:
// proforma-versus-request discrepancy checks that gate final approval, and
// receipt-versus-purchase-order validation. All comparisons are tolerance
// based and fail closed: missing or unparseable data counts as a mismatch.
package recon

import (
	"math"
	"strings"

	"github.com/wakaflorien/procureToPay/internal/entity"
)

// DefaultAmountTolerance is the allowed gap between the requested amount and
// the proforma total. A wider band than the price tolerance because document
// totals routinely include rounding and small fees.
const DefaultAmountTolerance = 1.00

// priceTolerance is the allowed per-item unit price difference.
const priceTolerance = 0.01

// HasDiscrepancies reports whether the extracted proforma data diverges from
// the request. Any missing piece of data is a discrepancy: the gate exists
// to block approval of requests whose paperwork cannot be verified.
func HasDiscrepancies(req *entity.PurchaseRequest, amountTolerance float64) bool {
	if req.ProformaData == nil {
		return true
	}
	proforma := req.ProformaData

	if proforma.Amount == nil {
		return true
	}
	if math.Abs(req.Amount-*proforma.Amount) > amountTolerance {
		return true
	}

	if len(req.Items) == 0 || len(proforma.Items) == 0 {
		return true
	}

	proformaByName := make(map[string]entity.LineItem, len(proforma.Items))
	for _, item := range proforma.Items {
		proformaByName[itemKey(item.Name)] = item
	}

	requestNames := make(map[string]struct{}, len(req.Items))
	for _, reqItem := range req.Items {
		key := itemKey(reqItem.Name)
		requestNames[key] = struct{}{}

		proformaItem, ok := proformaByName[key]
		if !ok {
			return true
		}
		if proformaItem.Quantity != reqItem.Quantity {
			return true
		}
		if math.Abs(proformaItem.Price-reqItem.UnitPrice) > priceTolerance {
			return true
		}
	}

	// Proforma items the request never asked for are a discrepancy too.
	for name := range proformaByName {
		if name == "" {
			continue
		}
		if _, ok := requestNames[name]; !ok {
			return true
		}
	}

	return false
}

func itemKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

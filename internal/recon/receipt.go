package recon

import (
	"fmt"
	"math"
	"strings"

	"github.com/wakaflorien/procureToPay/internal/entity"
)

// amountMatchTolerance is the allowed gap between the receipt total and the
// purchase order amount. Much tighter than the proforma tolerance: by the
// time a receipt arrives the exact amount has been authorized.
const amountMatchTolerance = 0.01

// ValidateReceipt checks extracted receipt data against the purchase order
// that authorized the spend. Vendor and amount mismatches invalidate the
// receipt; an item count mismatch is only a warning, since receipts often
// merge or split lines relative to the order.
func ValidateReceipt(receipt entity.DocumentData, po *entity.PurchaseOrderData) entity.ValidationResult {
	result := entity.ValidationResult{
		IsValid:     true,
		Errors:      []string{},
		Warnings:    []string{},
		ReceiptData: receipt,
	}

	result.VendorMatch = vendorsMatch(receipt.Vendor, po.Vendor)
	if !result.VendorMatch {
		result.IsValid = false
		result.Errors = append(result.Errors, fmt.Sprintf(
			"Vendor mismatch: PO vendor %q vs Receipt vendor %q", po.Vendor, receipt.Vendor))
	}

	if receipt.Amount != nil && po.Amount != 0 {
		diff := math.Abs(*receipt.Amount - po.Amount)
		result.AmountMatch = diff < amountMatchTolerance
		if diff > amountMatchTolerance {
			result.IsValid = false
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Amount mismatch: PO amount %v vs Receipt amount %v", po.Amount, *receipt.Amount))
		}
	}

	result.ItemsMatch = len(receipt.Items) == len(po.Items)
	if !result.ItemsMatch {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Item count mismatch: PO has %d items, Receipt has %d items", len(po.Items), len(receipt.Items)))
	}

	return result
}

// vendorsMatch is a case-insensitive substring check in both directions, so
// "Acme" matches "Acme Corp Ltd" and vice versa.
func vendorsMatch(receiptVendor, poVendor string) bool {
	r := strings.ToLower(receiptVendor)
	p := strings.ToLower(poVendor)
	return strings.Contains(p, r) || strings.Contains(r, p)
}

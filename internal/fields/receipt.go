package fields

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wakaflorien/procureToPay/internal/entity"
)

// Receipts are simpler documents than proformas, so their extraction uses a
// deliberately lighter rule set: one vendor label pattern, two amount
// patterns and a single qty-name-price row shape.
var (
	reReceiptVendor = regexp.MustCompile(`(?i)(?:vendor|supplier|company|from|seller):\s*([^\n]+)`)

	receiptAmountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total[:\s]+[$€£]?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)amount[:\s]+[$€£]?\s*([\d,]+\.?\d*)`),
	}

	reReceiptItem = regexp.MustCompile(`(\d+)\s+([^\d]+?)\s+[$€£]?\s*(\d+\.?\d*)`)
)

// UnknownReceiptVendor is the sentinel for receipts with no vendor label.
const UnknownReceiptVendor = "Unknown"

// ExtractReceipt parses receipt text into the fields needed for validation
// against a purchase order.
func ExtractReceipt(text string) entity.DocumentData {
	data := entity.DocumentData{
		Vendor: UnknownReceiptVendor,
		Items:  []entity.LineItem{},
	}

	if m := reReceiptVendor.FindStringSubmatch(text); m != nil {
		data.Vendor = strings.TrimSpace(m[1])
	}

	for _, re := range receiptAmountPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		data.Amount = &v
		break
	}

	for _, line := range strings.Split(text, "\n") {
		m := reReceiptItem.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		qty, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			continue
		}
		data.Items = append(data.Items, entity.LineItem{
			Quantity: qty,
			Name:     strings.TrimSpace(m[2]),
			Price:    price,
		})
	}

	return data
}

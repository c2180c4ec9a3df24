// Package fields turns extracted document text into structured proforma and
// receipt data using layered heuristics: labeled-field patterns first,
// positional patterns second, layout-table inference last. Extraction is
// best-effort and pure; the same text always yields the same result, and
// missing fields degrade to defaults instead of errors.
package fields

import (
	"strings"

	"github.com/wakaflorien/procureToPay/internal/entity"
)

// NoTextError marks a DocumentData produced from an empty extraction.
const NoTextError = "No text could be extracted from the document"

// extractedTextLimit caps how much raw text is kept on the result for
// reference and audit.
const extractedTextLimit = 1000

// Extract parses proforma invoice text into structured fields. Empty input
// yields the documented defaults with Error set; Extract itself never fails.
func Extract(text string) entity.DocumentData {
	if strings.TrimSpace(text) == "" {
		return entity.DocumentData{
			Vendor: UnknownVendor,
			Amount: nil,
			Items:  []entity.LineItem{},
			Terms:  "",
			Error:  NoTextError,
		}
	}

	lines := strings.Split(text, "\n")

	items := extractItems(lines)
	if len(items) == 0 {
		items = extractItemsFromTable(lines)
	}
	if items == nil {
		items = []entity.LineItem{}
	}

	return entity.DocumentData{
		Vendor:        extractVendor(text, lines),
		Amount:        extractAmount(text),
		Items:         items,
		Terms:         extractTerms(text, lines),
		ExtractedText: truncateRunes(text, extractedTextLimit),
	}
}

package fields

import (
	"regexp"
	"strconv"
	"strings"
)

// amountPatterns cover labeled totals, currency-prefixed values and
// currency-code values. Order does not decide the winner; the maximum
// candidate does.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:grand\s*total|total\s*amount|amount\s*due|balance\s*due|total\s*payable)[:\s]*[$€£]?\s*([\d,]+\.?\d{0,2})`),
	regexp.MustCompile(`(?i)(?:total|amount)[:\s]*[$€£]?\s*([\d,]+\.?\d{0,2})`),
	regexp.MustCompile(`(?i)[$€£]\s*([\d,]+\.?\d{0,2})\s*(?:total|amount|due)`),
	regexp.MustCompile(`(?i)[$€£]\s*([\d,]+\.?\d{0,2})(?:\s|$|USD|EUR|GBP)`),
	regexp.MustCompile(`(?i)(?:USD|EUR|GBP|RWF)\s*([\d,]+\.?\d{0,2})`),
}

const totalsRegionSize = 800

// totalsRegion narrows the search to the tail of the document, anchored at
// the last occurrence of a totals keyword. Totals sit at the bottom; the
// largest number in the body is often a quantity times a thousand separator
// misread, so scanning the whole text produces false grand totals.
func totalsRegion(text string) string {
	lower := strings.ToLower(text)
	start := len(text) - totalsRegionSize
	for _, kw := range []string{"total", "amount", "balance", "due"} {
		if idx := strings.LastIndex(lower, kw); idx > start {
			start = idx
		}
	}
	if start < 0 {
		start = 0
	}
	return text[start:]
}

// extractAmount collects every plausible monetary value in the totals region
// and returns the largest, which is the grand total in practice (subtotals
// and tax lines are always smaller). Returns nil when nothing parses.
func extractAmount(text string) *float64 {
	region := totalsRegion(text)

	var candidates []float64
	for _, re := range amountPatterns {
		for _, m := range re.FindAllStringSubmatch(region, -1) {
			raw := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(m[1], ",", ""), " ", ""))
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v <= 0 {
				continue
			}
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	maxAmount := candidates[0]
	for _, v := range candidates[1:] {
		if v > maxAmount {
			maxAmount = v
		}
	}
	return &maxAmount
}

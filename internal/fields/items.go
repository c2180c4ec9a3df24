package fields

import (
	"math"
	"regexp"

	"github.com/wakaflorien/procureToPay/internal/entity"
)

// itemPatterns match the common positional layouts of invoice item rows:
// name/qty/unit/total, qty/name/unit/total, and the two three-column
// variants without an explicit row total.
var itemPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?P<name>[A-Za-z][\w\s&\-/,.]+?)\s+(?P<qty>\d+(?:[.,]\d+)?)\s+(?:x\s*)?(?P<unit>[$€£]?\s*[\d.,]+(?:\s*/[A-Za-z]+)?)\s+(?P<total>[$€£]?\s*[\d.,]+)$`),
	regexp.MustCompile(`(?i)^(?P<qty>\d+(?:[.,]\d+)?)\s+(?P<name>[A-Za-z][\w\s&\-/,.]+?)\s+(?:x\s*)?(?P<unit>[$€£]?\s*[\d.,]+(?:\s*/[A-Za-z]+)?)\s+(?P<total>[$€£]?\s*[\d.,]+)$`),
	regexp.MustCompile(`(?i)^(?P<name>[A-Za-z][\w\s&\-/,.]+?)\s+(?P<qty>\d+(?:[.,]\d+)?)\s+(?:x\s*)?(?P<unit>[$€£]?\s*[\d.,/]+)$`),
	regexp.MustCompile(`(?i)^(?P<qty>\d+(?:[.,]\d+)?)\s+(?P<name>[A-Za-z][\w\s&\-/,.]+?)\s+(?:x\s*)?(?P<unit>[$€£]?\s*[\d.,/]+)$`),
}

var (
	reSectionHeading = regexp.MustCompile(`(?i)(?:item|description|product|qty|quantity|price|amount)`)
	reDocumentHeader = regexp.MustCompile(`(?i)(?:invoice|proforma|date|number|total|subtotal)`)
)

// parseLineItem tries to read one invoice line as an item row. Returns false
// when the line does not resemble one.
func parseLineItem(line string) (entity.LineItem, bool) {
	candidate := normalizeWhitespace(line)
	if candidate == "" || !hasDigit(candidate) || reItemKeyword.MatchString(candidate) {
		return entity.LineItem{}, false
	}

	for _, re := range itemPatterns {
		m := re.FindStringSubmatch(candidate)
		if m == nil {
			continue
		}
		groups := map[string]string{}
		for i, name := range re.SubexpNames() {
			if name != "" && i < len(m) {
				groups[name] = m[i]
			}
		}

		qty, qtyOK := parseNumeric(groups["qty"])
		name := normalizeWhitespace(groups["name"])
		if !qtyOK || qty <= 0 || name == "" {
			continue
		}

		price, priceOK := parseNumeric(groups["unit"])
		if !priceOK {
			if total, totalOK := parseNumeric(groups["total"]); totalOK {
				price, priceOK = total/qty, true
			}
		}
		if !priceOK {
			continue
		}

		return entity.LineItem{
			Name:     name,
			Quantity: int(math.Round(qty)),
			Price:    round2(price),
		}, true
	}
	return entity.LineItem{}, false
}

// extractItems scans every line for item rows, skipping column headings and
// the document header block.
func extractItems(lines []string) []entity.LineItem {
	var items []entity.LineItem
	for i, line := range lines {
		stripped := normalizeWhitespace(line)
		if stripped == "" {
			continue
		}
		if reSectionHeading.MatchString(stripped) {
			continue
		}
		if i < 10 && reDocumentHeader.MatchString(stripped) {
			continue
		}
		if item, ok := parseLineItem(stripped); ok {
			items = append(items, item)
		}
	}
	return items
}

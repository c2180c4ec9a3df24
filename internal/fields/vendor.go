package fields

import (
	"regexp"
	"strings"
)

// UnknownVendor is the sentinel used when no vendor name could be recovered.
const UnknownVendor = "Unknown Vendor"

// disallowedVendorTokens reject candidates that are really form labels or
// totals lines, not company names.
var disallowedVendorTokens = []string{
	"invoice", "proforma", "date", "number", "total", "amount",
	"due", "client", "customer", "ship", "shipping", "bill",
	"billed", "estimate", "quote", "issued", "payment",
}

// vendorPatterns are tried in order; within a pattern every match is tried
// until one survives cleaning and the token filter.
var vendorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)(?:vendor|supplier|company|from|seller|bill\s*from|issued\s*by)[:\s]+([^\n\r]{3,80})`),
	regexp.MustCompile(`(?im)(?:to|bill\s*to|sold\s*to)[:\s]+([^\n\r]{3,80})`),
	regexp.MustCompile(`(?im)^([A-Z][A-Za-z0-9\s&.,\-]{3,60}(?:Inc|LLC|Ltd|Corp|Company|Co\.?|GmbH|S\.A\.?)?)`),
	regexp.MustCompile(`(?im)(?:^|\n)([A-Z][A-Za-z0-9\s&.,\-]{3,60}(?:Inc|LLC|Ltd|Corp|Company|Co\.?|GmbH|S\.A\.?)?)\s*(?:\n|$)`),
}

func hasDisallowedToken(candidate string) bool {
	lowered := strings.ToLower(candidate)
	for _, token := range disallowedVendorTokens {
		if strings.Contains(lowered, token) {
			return true
		}
	}
	return false
}

// extractVendor locates the vendor name via labeled fields first, then
// company-name shapes, then falls back to the first clean digit-free line
// near the top of the document.
func extractVendor(text string, lines []string) string {
	for _, re := range vendorPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := cleanEntityName(m[1])
			if len(candidate) <= 2 || hasDisallowedToken(candidate) {
				continue
			}
			return candidate
		}
	}

	// Headers usually sit in the first 20 lines.
	limit := len(lines)
	if limit > 20 {
		limit = 20
	}
	for _, line := range lines[:limit] {
		candidate := cleanEntityName(line)
		if len(candidate) < 3 || hasDisallowedToken(candidate) || hasDigit(candidate) {
			continue
		}
		return candidate
	}
	return UnknownVendor
}

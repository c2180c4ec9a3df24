package fields

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reWhitespace  = regexp.MustCompile(`\s+`)
	reNonNumeric  = regexp.MustCompile(`[^\d\-,.]`)
	reHasDigit    = regexp.MustCompile(`\d`)
	reItemKeyword = regexp.MustCompile(`(?i)(?:invoice|total|subtotal|amount\s+due|description|qty|quantity|payment)`)
)

// entityNoise strips generic form placeholders that OCR picks up next to the
// actual vendor name.
var entityNoise = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:your\s*company|your\s*information)\b`),
	regexp.MustCompile(`(?i)\b(?:client\s*information|customer\s*name)\b`),
	regexp.MustCompile(`(?i)\b(?:bill\s*to|billed\s*to|bill\s*from|ship\s*to|sold\s*to|supplier|vendor)\b`),
}

// normalizeWhitespace collapses all whitespace runs to single spaces and trims.
func normalizeWhitespace(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

// cleanEntityName normalizes a candidate entity name and removes placeholder
// phrases, then trims leftover punctuation.
func cleanEntityName(s string) string {
	cleaned := normalizeWhitespace(s)
	if cleaned == "" {
		return ""
	}
	for _, re := range entityNoise {
		cleaned = normalizeWhitespace(re.ReplaceAllString(cleaned, ""))
	}
	return strings.Trim(cleaned, " -:|,")
}

// parseNumeric converts a loosely formatted numeric string (currency symbols,
// thousands separators) into a float. Returns false when nothing numeric
// remains.
func parseNumeric(s string) (float64, bool) {
	cleaned := reNonNumeric.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0, false
	}
	normalized := strings.ReplaceAll(cleaned, ",", "")
	switch normalized {
	case "", "-", ".", "-.":
		return 0, false
	}
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func hasDigit(s string) bool {
	return reHasDigit.MatchString(s)
}

// truncateRunes keeps at most n runes of s without splitting a multi-byte
// character.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package fields

import (
	"regexp"
	"strings"
)

// termsPatterns recognize labeled terms fields and the usual free-text
// phrasings (net-N, due-in-N-days, payment-is-due).
var termsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:payment\s*terms?|terms?\s*of\s*payment|conditions?)[:\s]+([^\n\r]{5,200})`),
	regexp.MustCompile(`(?i)(?:net\s*\d+\s*(?:days?)?|due\s*(?:in)?\s*\d+\s*(?:days?))[^\n\r]{0,80}`),
	regexp.MustCompile(`(?i)(?:due\s*(?:within|in)\s*\d+\s*(?:business\s*)?days[^\n\r]{0,100})`),
	regexp.MustCompile(`(?i)(?:payment\s+(?:is\s+)?due[^\n\r]{0,120})`),
	regexp.MustCompile(`(?i)(?:please\s+make\s+the\s+payment[^\n\r]{0,120})`),
}

var reTermsKeyword = regexp.MustCompile(`(?i)(payment|due|terms)`)

// extractTerms finds payment terms via the labeled patterns first, then
// falls back to the first sufficiently long line mentioning payment, due
// or terms. Short lines are skipped because "Due: 03/01" is a date field,
// not terms.
func extractTerms(text string, lines []string) string {
	for _, re := range termsPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 1 && m[1] != "" {
			return strings.TrimSpace(m[1])
		}
		return strings.TrimSpace(m[0])
	}

	for _, line := range lines {
		candidate := strings.TrimSpace(line)
		if len(candidate) < 25 {
			continue
		}
		if reTermsKeyword.MatchString(candidate) {
			return candidate
		}
	}
	return ""
}

package expander

import (
	"regexp"
	"strings"
)

// asinPatterns are tried in priority order: known path markers first, then a
// generic bare 10-character segment. Each requires the code to be followed by
// a path separator, a query marker, or end of string. The generic fallback
// can match unrelated 10-character tokens on unusual URL shapes; that
// imprecision is accepted in exchange for catching marker-less product links.
var asinPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/dp/([A-Z0-9]{10})(?:[/?]|$)`),
	regexp.MustCompile(`(?i)/gp/product/([A-Z0-9]{10})(?:[/?]|$)`),
	regexp.MustCompile(`(?i)/gp/aw/d/([A-Z0-9]{10})(?:[/?]|$)`),
	regexp.MustCompile(`(?i)/product/([A-Z0-9]{10})(?:[/?]|$)`),
	regexp.MustCompile(`(?i)/([A-Z0-9]{10})(?:[/?]|$)`),
}

// ExtractASIN applies the ordered pattern list to u and returns the first
// matching code, upper-cased.
func ExtractASIN(u string) (string, bool) {
	for _, pattern := range asinPatterns {
		if m := pattern.FindStringSubmatch(u); m != nil {
			return strings.ToUpper(m[1]), true
		}
	}
	return "", false
}

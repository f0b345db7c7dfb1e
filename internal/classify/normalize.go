package classify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalize lowercases s and strips diacritics so that keyword matching is
// stable across accented place names ("Café Garage" matches "garage").
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// containsAny returns the first needle found as a substring of the normalized
// haystack, or "" when none match.
func containsAny(haystack string, needles []string) string {
	h := normalize(haystack)
	if h == "" {
		return ""
	}
	for _, n := range needles {
		if strings.Contains(h, normalize(n)) {
			return n
		}
	}
	return ""
}

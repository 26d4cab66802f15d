package scoring

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases s, strips diacritics and collapses runs of whitespace
// into single spaces. Queries and indexed fields both pass through it so that
// "Café" matches "cafe".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// Transformers carry state, so each call builds its own chain.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// Words splits normalized text into words.
func Words(s string) []string {
	return strings.Fields(s)
}

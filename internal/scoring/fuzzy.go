package scoring

import (
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FuzzyTolerance is the share of the shorter string's length that may differ
// by edit distance for two strings to still match.
const FuzzyTolerance = 0.3

// FuzzyMatch reports whether query and target match tolerantly. Both are
// expected to be normalized.
//
// They match when one contains the other. Queries of one or two characters
// stop there. Longer queries also match when their Levenshtein distance is
// within FuzzyTolerance of the shorter length (at least one edit), or when
// both agree on all but the last character of the shorter string.
func FuzzyMatch(query, target string) bool {
	if query == "" || target == "" {
		return false
	}
	if strings.Contains(target, query) || strings.Contains(query, target) {
		return true
	}

	qLen := utf8.RuneCountInString(query)
	if qLen <= 2 {
		return false
	}

	minLen := min(qLen, utf8.RuneCountInString(target))
	maxDistance := max(1, int(float64(minLen)*FuzzyTolerance))
	if fuzzy.LevenshteinDistance(query, target) <= maxDistance {
		return true
	}

	// A one-character target would otherwise match on an empty prefix.
	if minLen < 3 {
		return false
	}
	q, t := []rune(query), []rune(target)
	return string(q[:minLen-1]) == string(t[:minLen-1])
}

// fuzzyAnyWord reports whether term fuzzily matches any of words.
func fuzzyAnyWord(term string, words []string) bool {
	for _, w := range words {
		if FuzzyMatch(term, w) {
			return true
		}
	}
	return false
}

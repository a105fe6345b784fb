// Package suggest provides fuzzy matching for habit search and input
// suggestions using Levenshtein distance.
package suggest

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxDistance is how many edits a term of length n may be away from a
// candidate and still count as close.
func maxDistance(n int) int {
	switch {
	case n <= 2:
		return 0
	case n <= 5:
		return 1
	default:
		return 2
	}
}

// Near reports whether term is within a few edits of word, ignoring case.
func Near(term, word string) bool {
	term = strings.ToLower(term)
	word = strings.ToLower(word)
	if term == word {
		return true
	}
	return levenshtein.ComputeDistance(term, word) <= maxDistance(len(term))
}

// Rank returns up to limit candidates similar to term, best first.
func Rank(term string, candidates []string, limit int) []string {
	term = strings.ToLower(strings.TrimSpace(term))

	type scored struct {
		value string
		score int
	}
	var matches []scored
	for _, c := range candidates {
		lc := strings.ToLower(c)
		dist := levenshtein.ComputeDistance(term, lc)
		// Only suggest if reasonably close (within 3 edits or 50% of length)
		if dist <= max(3, len(term)/2) || strings.HasPrefix(lc, term) {
			matches = append(matches, scored{c, dist})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score < matches[j].score })

	var out []string
	for i := 0; i < len(matches) && (limit <= 0 || i < limit); i++ {
		out = append(out, matches[i].value)
	}
	return out
}

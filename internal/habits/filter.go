package habits

import (
	"strings"

	"github.com/marcus/habitchain/internal/suggest"
)

// Filter returns the habits whose name matches query, in their original
// order. A habit matches when its name contains the query, ignoring case,
// or when every query word is close to some word of the name. An empty
// query matches everything.
func Filter(habits []Habit, query string) []Habit {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return habits
	}
	terms := strings.Fields(query)

	var out []Habit
	for _, h := range habits {
		name := strings.ToLower(h.Name)
		if strings.Contains(name, query) || fuzzyMatch(terms, strings.Fields(name)) {
			out = append(out, h)
		}
	}
	return out
}

func fuzzyMatch(terms, words []string) bool {
	for _, t := range terms {
		found := false
		for _, w := range words {
			if strings.HasPrefix(w, t) || suggest.Near(t, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

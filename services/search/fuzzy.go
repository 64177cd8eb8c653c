package search

import (
	"strings"

	"github.com/meghashyamc/apotek/db"
	"github.com/sahilm/fuzzy"
)

const (
	scoreCodePrefix   = 5
	scoreCodeContains = 4
	scoreNamePrefix   = 3
	scoreNameContains = 2
	scoreNameFuzzy    = 1
	scoreNoMatch      = 0
)

// FuzzyMatch reports whether the characters of query appear in candidate in
// order, not necessarily next to each other. Case is ignored.
func FuzzyMatch(candidate string, query string) bool {
	if query == "" {
		return true
	}
	if candidate == "" {
		return false
	}

	matches := fuzzy.Find(strings.ToLower(query), []string{strings.ToLower(candidate)})
	return len(matches) > 0
}

// Score ranks how well a record answers query. Code matches beat name
// matches, prefixes beat substrings, and substrings beat subsequences.
// Callers are expected to skip scoring for an empty query.
func Score(record db.Record, query string) int {
	query = strings.ToLower(query)

	if code, ok := record.Code(); ok {
		code = strings.ToLower(code)
		if strings.HasPrefix(code, query) {
			return scoreCodePrefix
		}
		if strings.Contains(code, query) {
			return scoreCodeContains
		}
	}

	name, ok := record.Name()
	if !ok {
		return scoreNoMatch
	}

	lowerName := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lowerName, query):
		return scoreNamePrefix
	case strings.Contains(lowerName, query):
		return scoreNameContains
	case FuzzyMatch(name, query):
		return scoreNameFuzzy
	}

	return scoreNoMatch
}

package search

import "github.com/meghashyamc/apotek/db"

// FilterRecords keeps the records with at least one searchable field that
// fuzzy-matches query. An empty query returns records as given.
func FilterRecords(records []db.Record, query string, kind db.Kind) []db.Record {
	if query == "" {
		return records
	}

	filtered := make([]db.Record, 0, len(records))
	for _, record := range records {
		if matchesAnyField(record, query, kind) {
			filtered = append(filtered, record)
		}
	}

	return filtered
}

func matchesAnyField(record db.Record, query string, kind db.Kind) bool {
	for _, value := range searchableFields(record, kind) {
		if FuzzyMatch(value, query) {
			return true
		}
	}

	return false
}

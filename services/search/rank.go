package search

import (
	"slices"

	"github.com/meghashyamc/apotek/db"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Ranker orders filtered records by Score. Ties are broken with the
// collation rules of its language.
type Ranker struct {
	tag language.Tag
}

func NewRanker(lang string) *Ranker {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Und
	}

	return &Ranker{tag: tag}
}

var defaultRanker = NewRanker("und")

// RankRecords ranks with the root collation.
func RankRecords(records []db.Record, query string) []db.Record {
	return defaultRanker.RankRecords(records, query)
}

type scoredRecord struct {
	record db.Record
	score  int
	code   string
	name   string
}

// RankRecords returns a new slice sorted by descending score. Equal scores
// are ordered by code when both records have one and by name otherwise.
// The sort is stable, so fully tied records keep their input order.
func (r *Ranker) RankRecords(records []db.Record, query string) []db.Record {
	scored := make([]scoredRecord, len(records))
	for i, record := range records {
		code, _ := record.Code()
		name, _ := record.Name()
		scored[i] = scoredRecord{
			record: record,
			score:  Score(record, query),
			code:   code,
			name:   name,
		}
	}

	// A collator keeps internal buffers, so each call gets its own.
	collator := collate.New(r.tag)
	slices.SortStableFunc(scored, func(a, b scoredRecord) int {
		if a.score != b.score {
			return b.score - a.score
		}
		if a.code != "" && b.code != "" {
			return collator.CompareString(a.code, b.code)
		}
		return collator.CompareString(a.name, b.name)
	})

	ranked := make([]db.Record, len(scored))
	for i, s := range scored {
		ranked[i] = s.record
	}

	return ranked
}

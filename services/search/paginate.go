package search

import "github.com/meghashyamc/apotek/db"

// Unlimited as a page size returns the whole record set on one page.
const Unlimited = -1

type Page struct {
	Records    []db.Record
	TotalItems int
	TotalPages int
}

// Paginate slices out page (1-based) of records. A page past the end is
// empty rather than an error, and so is a page number below 1.
func Paginate(records []db.Record, page int, pageSize int) Page {
	total := len(records)

	if pageSize <= 0 {
		return Page{
			Records:    records,
			TotalItems: total,
			TotalPages: 1,
		}
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	// Compared in pages first so that huge page numbers cannot overflow start.
	if page < 1 || page > totalPages || (page-1)*pageSize >= total {
		return Page{
			Records:    []db.Record{},
			TotalItems: total,
			TotalPages: totalPages,
		}
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	pageRecords := make([]db.Record, end-start)
	copy(pageRecords, records[start:end])

	return Page{
		Records:    pageRecords,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

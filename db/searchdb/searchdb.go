package searchdb

import "github.com/meghashyamc/apotek/db"

type DB interface {
	IndexDocuments(documents []Document) error
	DeleteDocuments(documentIDs []string) error
	Search(queryString string, kind db.Kind, limit int, offset int) (*Response, error)
	GetDocCount() (uint64, error)
	Close() error
}

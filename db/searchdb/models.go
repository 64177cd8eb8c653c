package searchdb

import "github.com/meghashyamc/apotek/db"

type Document struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func NewDocument(kind db.Kind, record db.Record) Document {
	code, _ := record.Code()
	name, _ := record.Name()
	description, _ := record.String(db.FieldDescription)

	return Document{
		ID:          record.ID(),
		Kind:        string(kind),
		Code:        code,
		Name:        name,
		Description: description,
	}
}

type Result struct {
	ID    string  `json:"id"`
	Kind  string  `json:"kind"`
	Code  string  `json:"code,omitempty"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type Response struct {
	Results    []Result `json:"results"`
	Total      uint64   `json:"total"`
	MaxScore   float64  `json:"max_score"`
	SearchTime string   `json:"search_time"`
}

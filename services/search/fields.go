package search

import (
	"github.com/meghashyamc/apotek/db"
	"github.com/spf13/cast"
)

// FieldExtractor returns the extra searchable values of a record beyond the
// fields every kind shares.
type FieldExtractor func(record db.Record) []string

var extraFieldExtractors = map[db.Kind]FieldExtractor{
	db.KindSuppliers: stringFields("phone", "email", "contact_person"),
	db.KindPatients:  stringFields("gender", "phone", "email", "birth_date"),
	db.KindDoctors:   stringFields("specialization", "license_number", "phone", "email", "experience_years"),
	db.KindItems:     itemFields,
}

var itemRelations = []string{"category", "type", "unit"}

// commonFields are searched for every kind.
func commonFields(record db.Record) []string {
	values := make([]string, 0, 4)
	if code, ok := record.Code(); ok {
		values = append(values, code)
	}

	return append(values, stringFields(db.FieldName, db.FieldDescription, db.FieldAddress)(record)...)
}

func searchableFields(record db.Record, kind db.Kind) []string {
	values := commonFields(record)
	if extract, ok := extraFieldExtractors[kind]; ok {
		values = append(values, extract(record)...)
	}

	return values
}

// stringFields reads the named fields and renders numbers, booleans and
// dates as strings. Missing or unrenderable values are skipped.
func stringFields(fields ...string) FieldExtractor {
	return func(record db.Record) []string {
		values := make([]string, 0, len(fields))
		for _, field := range fields {
			if value, ok := asString(record[field]); ok {
				values = append(values, value)
			}
		}

		return values
	}
}

func itemFields(record db.Record) []string {
	values := stringFields("base_price", "sell_price", "stock")(record)

	for _, relation := range itemRelations {
		if name, ok := relationName(record[relation]); ok {
			values = append(values, name)
		}
	}

	for _, conversion := range asMaps(record["package_conversions"]) {
		if unitName, ok := asString(conversion["unit_name"]); ok {
			values = append(values, unitName)
			continue
		}
		if unitName, ok := relationName(conversion["unit"]); ok {
			values = append(values, unitName)
		}
	}

	return values
}

func relationName(value any) (string, bool) {
	relation, ok := asMap(value)
	if !ok {
		return "", false
	}

	return asString(relation[db.FieldName])
}

func asString(value any) (string, bool) {
	if value == nil {
		return "", false
	}
	switch value.(type) {
	case map[string]any, db.Record, []any:
		return "", false
	}

	s, err := cast.ToStringE(value)
	if err != nil || s == "" {
		return "", false
	}

	return s, true
}

func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case db.Record:
		return v, true
	}

	return nil, false
}

func asMaps(value any) []map[string]any {
	switch v := value.(type) {
	case []map[string]any:
		return v
	case []db.Record:
		maps := make([]map[string]any, 0, len(v))
		for _, record := range v {
			maps = append(maps, record)
		}
		return maps
	case []any:
		maps := make([]map[string]any, 0, len(v))
		for _, element := range v {
			if m, ok := asMap(element); ok {
				maps = append(maps, m)
			}
		}
		return maps
	}

	return nil
}

package db

const (
	FieldID          = "id"
	FieldName        = "name"
	FieldCode        = "code"
	FieldKode        = "kode"
	FieldDescription = "description"
	FieldAddress     = "address"
	FieldCreatedAt   = "created_at"
	FieldUpdatedAt   = "updated_at"
)

// Record is one master-data entity as decoded from JSON. Apart from id and
// name, the fields depend on the kind.
type Record map[string]any

func (r Record) ID() string {
	id, _ := r.String(FieldID)
	return id
}

func (r Record) Name() (string, bool) {
	return r.String(FieldName)
}

// String returns the field only when it holds a non-empty string.
func (r Record) String(field string) (string, bool) {
	value, ok := r[field].(string)
	if !ok || value == "" {
		return "", false
	}

	return value, true
}

// Code returns the code-like field, preferring "code" over "kode".
func (r Record) Code() (string, bool) {
	if code, ok := r.String(FieldCode); ok {
		return code, true
	}

	return r.String(FieldKode)
}

// Clone copies the top level of the record. Nested values are shared.
func (r Record) Clone() Record {
	clone := make(Record, len(r))
	for key, value := range r {
		clone[key] = value
	}

	return clone
}

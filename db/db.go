package db

import (
	"fmt"
	"strings"
)

// Kind is the master-data table a record belongs to.
type Kind string

const (
	KindItems      Kind = "items"
	KindCategories Kind = "categories"
	KindTypes      Kind = "types"
	KindUnits      Kind = "units"
	KindSuppliers  Kind = "suppliers"
	KindPatients   Kind = "patients"
	KindDoctors    Kind = "doctors"
)

var Kinds = []Kind{
	KindItems,
	KindCategories,
	KindTypes,
	KindUnits,
	KindSuppliers,
	KindPatients,
	KindDoctors,
}

func ParseKind(value string) (Kind, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, kind := range Kinds {
		if string(kind) == value {
			return kind, nil
		}
	}

	return "", fmt.Errorf("unknown entity kind %q", value)
}

func (k Kind) IsValid() bool {
	_, err := ParseKind(string(k))
	return err == nil
}

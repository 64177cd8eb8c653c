package records

import (
	"errors"
	"fmt"
)

var ErrInvalidRecord = errors.New("invalid record")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field '%s': %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRecord
}

package validator

import (
	"fmt"
)

// ErrInvalidName reports an entity name rejected by the entity_name rule.
type ErrInvalidName struct {
	error
	Name string
}

func NewErrInvalidName(name string) *ErrInvalidName {
	return &ErrInvalidName{
		error: fmt.Errorf("name '%s' must be 3 to 40 characters long and contain only letters, digits, spaces, '-' and '_'", name),
		Name:  name,
	}
}

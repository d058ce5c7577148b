package core

import (
	"errors"
)

var (
	// ErrFieldNotFound is returned when reading an attribute a record does not hold.
	ErrFieldNotFound = errors.New("field not found")
	// ErrInvalidQuery is returned when find options cannot form a statement.
	ErrInvalidQuery = errors.New("invalid query")
)

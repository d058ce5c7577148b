package model

import "errors"

var (
	// ErrNoPrimaryKey is returned when an entity declares no primary-key field.
	ErrNoPrimaryKey = errors.New("primary key not found")
	// ErrDuplicatePrimaryKey is returned when an entity declares more than one primary-key field.
	ErrDuplicatePrimaryKey = errors.New("duplicate primary key")
	// ErrDuplicateAttr is returned when two declarations share an attribute or column name.
	ErrDuplicateAttr = errors.New("duplicate attribute")
	// ErrUnknownAttr is returned when an option names an attribute the entity does not declare.
	ErrUnknownAttr = errors.New("unknown attribute")
	// ErrEmptyEntity is returned when the entity name or a declaration is empty.
	ErrEmptyEntity = errors.New("empty entity declaration")
	// ErrAlreadyRegistered is returned when an entity name is registered a second time.
	ErrAlreadyRegistered = errors.New("entity already registered")
	// ErrInvalidStruct is returned when RegisterStruct is given something other than a struct.
	ErrInvalidStruct = errors.New("invalid struct declaration")
	// ErrConvert is returned when a value cannot be normalized to a field's kind.
	ErrConvert = errors.New("cannot convert value")
)

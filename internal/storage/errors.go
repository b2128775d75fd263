package storage

import "errors"

var (
	// ErrNotFound is returned when no stored school has the requested id.
	ErrNotFound = errors.New("school not found")
	// ErrInvalidTable is returned for table names that are not plain SQL identifiers.
	ErrInvalidTable = errors.New("invalid table name")
)

package database

import "errors"

var (
	// ErrDatabaseNotFound is returned by Open when the database does not exist
	// and CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrCorruptValue is returned when a stored value cannot be decoded.
	ErrCorruptValue = errors.New("corrupt stored value")
)

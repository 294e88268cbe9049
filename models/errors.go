package models

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict means the record changed underneath the writer or a unique
	// field is already taken.
	ErrConflict = errors.New("conflict")
)

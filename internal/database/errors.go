package database

import "errors"

var (
	// ErrNotFound is returned when a project or photo id is unknown.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateName is returned when a project name is already taken.
	ErrDuplicateName = errors.New("project name already exists")
)

package part

import "errors"

var (
	// ErrMissingProjectID is returned when a command names no project.
	ErrMissingProjectID = errors.New("project id is required")
	// ErrMissingPartID is returned when a command names no part.
	ErrMissingPartID = errors.New("part id is required")
)

package repository

import "errors"

var (
	// ErrConcurrency is returned when an append's expected version no
	// longer matches the project log. The only correct response is to
	// reload and recompute; never re-append blindly.
	ErrConcurrency = errors.New("concurrency conflict: project log was appended by another writer")

	// ErrNotFound is returned when a requested entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrMalformedRecord is returned when stored data cannot be decoded.
	// Loads fail loudly instead of skipping corrupt entries.
	ErrMalformedRecord = errors.New("malformed stored record")

	// ErrSnapshotMismatch is returned when a snapshot's project id does
	// not match the project being compacted.
	ErrSnapshotMismatch = errors.New("snapshot project id mismatch")

	// ErrInvalidEvent is returned when an append carries an event that
	// fails its own validation.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrInvalidProjectID is returned for empty or unusable project ids.
	ErrInvalidProjectID = errors.New("invalid project id")
)

// Package sentinel holds the infrastructure facts stores report. Services
// translate them into coded domain errors; they never reach a client as-is.
package sentinel

import "errors"

var (
	// ErrNotFound: the record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict: the write lost a race (stale version or duplicate key).
	ErrConflict = errors.New("conflict")
	// ErrUnavailable: a dependency is temporarily refusing work.
	ErrUnavailable = errors.New("unavailable")
)

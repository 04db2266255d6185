package sentinel

import "errors"

// Dependency errors. Stores and clients return these, optionally wrapped, and
// the service translates them into domain errors once.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrBadRequest   = errors.New("bad request")
)

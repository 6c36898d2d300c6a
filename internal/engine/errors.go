package engine

import "errors"

// Error taxonomy shared by the engine and the persistence layer. Callers
// classify with errors.Is, the same way the services check pgx.ErrNoRows.
var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrInvalidMode            = errors.New("mode not offered by challenge type")
	ErrAlreadyActive          = errors.New("challenge already active")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrValidation             = errors.New("validation failed")
)

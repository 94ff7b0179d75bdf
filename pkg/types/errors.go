package types

import "errors"

// Denormalization errors. The engine wraps them in structured errors that
// carry context; match them with errors.Is.
var (
	// ErrConfiguration reports an ambiguous or colliding column mapping,
	// detected when a source type's mapping is built.
	ErrConfiguration = errors.New("denormalization configuration error")

	// ErrMapping reports an enumerated raw value with no symbol, detected
	// during projection before anything is written.
	ErrMapping = errors.New("denormalization mapping error")

	// ErrPersistence reports a failed atomic update of a target.
	ErrPersistence = errors.New("denormalization persistence error")
)

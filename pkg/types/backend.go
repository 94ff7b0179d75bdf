package types

import "errors"

// Backend is a storage backend that also serves as every collaborator the
// denormalization engine consumes. Callers attach it to storage, access
// tables by name, and detach when done.
type Backend interface {
	Metadata
	Associations
	Lifecycle
	Writer

	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if the name is not a declared table.
	GetTable(name string) (Table, error)

	// Attach connects the backend to the storage described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrBackendDetached.
	Detach() error
}

// Backend lifecycle errors.
var (
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
	ErrTableNotFound   = errors.New("table not found")
)

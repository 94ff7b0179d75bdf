// Package sqlite provides the public API for the SQLite backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/denormalize/internal/sqlite"
	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize,
// then register denormalized relations on it.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend:   types.BackendSQLite,
//	    DataDir:   ".denorm-db",
//	    Tables:    tables,
//	    Relations: relations,
//	})
//	defer backend.Detach()
//
//	engine := denorm.New(backend, backend, backend)
//	for _, rel := range relations {
//	    err = engine.Register(backend, rel)
//	}
func NewBackend() types.Backend {
	return sqlite.NewBackend()
}

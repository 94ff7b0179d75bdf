package types

import "context"

// Lifecycle delivers entity lifecycle events to registered hooks.
//
// After-commit hooks run once the write is durable and never for rolled back
// work. Before-destroy hooks run inside the deleting unit of work while the
// entity and its relations are still readable; an error aborts the delete.
type Lifecycle interface {
	OnAfterCreateCommit(typeName string, h Hook)
	OnAfterUpdateCommit(typeName string, h Hook)
	OnBeforeDestroy(typeName string, h Hook)
}

// Writer persists attribute changes.
type Writer interface {
	// AtomicUpdate writes attrs onto e as a single all-or-nothing update.
	// A storage-level violation is returned as an error and nothing is
	// applied.
	AtomicUpdate(ctx context.Context, e Entity, attrs Attributes) error
}

package types

import "context"

// Associations traverses declared relations between entity types.
type Associations interface {
	// ResolveToOne follows a to-one relation from e. It returns a nil Entity
	// and a nil error when the relation is unset or points at nothing.
	ResolveToOne(ctx context.Context, e Entity, relation string) (Entity, error)

	// ResolveToMany returns a query over the inverse collection of e.
	ResolveToMany(ctx context.Context, e Entity, relation string) (Query, error)
}

// Query is an immutable query over a to-many collection. Each method returns
// a new Query; First executes it.
type Query interface {
	// Filter keeps only entities for which pred returns true.
	Filter(pred Predicate) Query

	// Exclude drops the entity with the given primary key.
	Exclude(id any) Query

	// NewestFirst orders results by creation time, most recent first.
	NewestFirst() Query

	// First returns the first matching entity, or nil when none matches.
	First(ctx context.Context) (Entity, error)
}

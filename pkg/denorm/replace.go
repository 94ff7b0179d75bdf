package denorm

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// ReplacementResolver keeps a target consistent when its current source is
// about to be destroyed.
type ReplacementResolver struct {
	registry  *Registry
	assoc     types.Associations
	projector *Projector
	clearer   *Clearer
}

// BeforeDestroy runs while source still exists. If source is its target's
// current source, the newest opted-in sibling by creation time is projected
// in its place; which of several equally new siblings wins is up to the
// query. Without a sibling the target's denormalized columns are cleared.
// Non-current sources change nothing.
func (r *ReplacementResolver) BeforeDestroy(ctx context.Context, rel types.Relation, source types.Entity) error {
	target, err := r.assoc.ResolveToOne(ctx, source, rel.Name)
	if err != nil {
		return fmt.Errorf("resolve %s.%s: %w", source.TypeName(), rel.Name, err)
	}
	if target == nil {
		return nil
	}
	current, err := isCurrent(r.registry, source, target)
	if err != nil || !current {
		return err
	}

	candidate, err := r.replacement(ctx, rel, source, target)
	if err != nil {
		return err
	}
	if candidate != nil {
		return r.projector.Project(ctx, candidate, target)
	}
	return r.clearer.Clear(ctx, target, source.TypeName())
}

func (r *ReplacementResolver) replacement(ctx context.Context, rel types.Relation, source, target types.Entity) (types.Entity, error) {
	q, err := r.assoc.ResolveToMany(ctx, target, rel.Inverse)
	if err != nil {
		return nil, fmt.Errorf("resolve %s.%s: %w", target.TypeName(), rel.Inverse, err)
	}
	candidate, err := q.
		Filter(types.OptedIn).
		Exclude(source.PrimaryKey()).
		NewestFirst().
		First(ctx)
	if err != nil {
		return nil, fmt.Errorf("find replacement for %s %v: %w", source.TypeName(), source.PrimaryKey(), err)
	}
	return candidate, nil
}

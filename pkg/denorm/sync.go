package denorm

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// SyncController projects sources onto their targets after create and
// update commits.
type SyncController struct {
	registry  *Registry
	assoc     types.Associations
	projector *Projector
}

// AfterCreate projects a newly committed source onto its target when the
// source opts in and the relation resolves.
func (s *SyncController) AfterCreate(ctx context.Context, rel types.Relation, source types.Entity) error {
	if !types.OptedIn(source) {
		return nil
	}
	target, err := s.assoc.ResolveToOne(ctx, source, rel.Name)
	if err != nil {
		return fmt.Errorf("resolve %s.%s: %w", source.TypeName(), rel.Name, err)
	}
	if target == nil {
		return nil
	}
	return s.projector.Project(ctx, source, target)
}

// AfterUpdate re-projects an updated source, but only while it is the
// target's current source. Updates to other sources leave the target as it
// is, even if their data is newer.
func (s *SyncController) AfterUpdate(ctx context.Context, rel types.Relation, source types.Entity) error {
	target, err := s.assoc.ResolveToOne(ctx, source, rel.Name)
	if err != nil {
		return fmt.Errorf("resolve %s.%s: %w", source.TypeName(), rel.Name, err)
	}
	if target == nil {
		return nil
	}
	current, err := isCurrent(s.registry, source, target)
	if err != nil || !current {
		return err
	}
	return s.projector.Project(ctx, source, target)
}

// isCurrent reports whether target's foreign key names source.
func isCurrent(r *Registry, source, target types.Entity) (bool, error) {
	m, err := r.Mapping(source.TypeName())
	if err != nil {
		return false, err
	}
	fk, err := target.FieldValue(m.ForeignKey())
	if err != nil {
		return false, fmt.Errorf("read %s.%s: %w", target.TypeName(), m.ForeignKey(), err)
	}
	return types.SameKey(fk, source.PrimaryKey()), nil
}

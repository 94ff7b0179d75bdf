package denorm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// Clearer nulls the denormalized columns of a source type on a target.
type Clearer struct {
	registry *Registry
	meta     types.Metadata
	writer   types.Writer
	log      logrus.FieldLogger
}

// Clear sets every column of sourceType's mapping that exists on target to
// NULL, foreign key included, in one atomic update. Clearing an already
// cleared target rewrites the same NULLs and succeeds.
func (c *Clearer) Clear(ctx context.Context, target types.Entity, sourceType string) error {
	m, err := c.registry.Mapping(sourceType)
	if err != nil {
		return err
	}
	targetColumns, err := c.meta.ColumnNames(target.TypeName())
	if err != nil {
		return fmt.Errorf("columns of %s: %w", target.TypeName(), err)
	}

	columns := m.Intersect(targetColumns)
	if len(columns) == 0 {
		return nil
	}
	attrs := make(types.Attributes, len(columns))
	for _, col := range columns {
		attrs[col.Name] = nil
	}

	c.log.WithFields(logrus.Fields{
		"source":    sourceType,
		"target":    target.TypeName(),
		"target_id": target.PrimaryKey(),
	}).Debug("clearing denormalized columns")

	return write(ctx, c.writer, target, attrs)
}

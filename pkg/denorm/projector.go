package denorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// Projector copies a source's mapped fields onto a target in one atomic
// update.
type Projector struct {
	registry *Registry
	meta     types.Metadata
	writer   types.Writer
	now      func() time.Time
	log      logrus.FieldLogger
}

// Project writes the projection of source onto target. Only mapping columns
// that exist on the target are written. Enumerated fields are translated to
// their symbols; a raw value without one fails with a *MappingError before
// anything is written. When no column intersects, nothing is written and no
// error is returned. A failed write is returned as a *PersistenceError.
func (p *Projector) Project(ctx context.Context, source, target types.Entity) error {
	m, err := p.registry.Mapping(source.TypeName())
	if err != nil {
		return err
	}
	targetColumns, err := p.meta.ColumnNames(target.TypeName())
	if err != nil {
		return fmt.Errorf("columns of %s: %w", target.TypeName(), err)
	}

	attrs, err := p.attributes(m, source, m.Intersect(targetColumns))
	if err != nil {
		return err
	}

	log := p.log.WithFields(logrus.Fields{
		"source":    source.TypeName(),
		"source_id": source.PrimaryKey(),
		"target":    target.TypeName(),
		"target_id": target.PrimaryKey(),
	})
	if len(attrs) == 0 {
		log.Debug("no denormalized columns found")
		return nil
	}
	log.WithField("attributes", attrs).Debug("denormalizing target")

	return write(ctx, p.writer, target, attrs)
}

func (p *Projector) attributes(m *Mapping, source types.Entity, columns []Column) (types.Attributes, error) {
	attrs := make(types.Attributes, len(columns))
	var now time.Time
	for _, c := range columns {
		if c.Timestamp {
			if now.IsZero() {
				now = p.now()
			}
			attrs[c.Name] = now
			continue
		}
		raw, err := source.FieldValue(c.Field)
		if err != nil {
			return nil, fmt.Errorf("read %s.%s: %w", m.SourceType(), c.Field, err)
		}
		value, err := p.translate(m.SourceType(), c.Field, raw)
		if err != nil {
			return nil, err
		}
		attrs[c.Name] = value
	}
	return attrs, nil
}

// translate resolves enumerated values. Statically typed discriminants
// implementing types.Symbolizer translate themselves; other values go through
// the runtime table from metadata. Fields that are not enumerated pass
// through unchanged, NULL included. An enumerated field holding NULL has no
// symbol and fails like any other unmapped value.
func (p *Projector) translate(sourceType, field string, raw any) (any, error) {
	unmapped := &MappingError{SourceType: sourceType, Field: field, Value: raw}
	if s, ok := raw.(types.Symbolizer); ok {
		if types.Indirect(raw) == nil {
			return nil, unmapped
		}
		sym, ok := s.Symbol()
		if !ok {
			return nil, unmapped
		}
		return sym, nil
	}
	table, ok := p.meta.EnumValues(sourceType, field)
	if !ok {
		return raw, nil
	}
	if types.Indirect(raw) == nil {
		return nil, unmapped
	}
	sym, ok := table.Lookup(raw)
	if !ok {
		return nil, unmapped
	}
	return sym, nil
}

// write issues the single atomic update shared by Projector and Clearer.
func write(ctx context.Context, w types.Writer, target types.Entity, attrs types.Attributes) error {
	if err := w.AtomicUpdate(ctx, target, attrs); err != nil {
		var perr *PersistenceError
		if errors.As(err, &perr) {
			return err
		}
		return &PersistenceError{
			TargetType: target.TypeName(),
			TargetID:   target.PrimaryKey(),
			Err:        err,
		}
	}
	return nil
}

package gormmeta

import (
	"context"
	"fmt"
	"reflect"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

var _ types.Writer = StructWriter{}

// StructWriter implements types.Writer by assigning attributes onto wrapped
// struct models. Persisting the model afterwards is the caller's job.
type StructWriter struct{}

type assignment struct {
	column string
	value  any
}

// AtomicUpdate assigns every attribute or, when one cannot be assigned,
// restores the fields already written and returns the error.
func (StructWriter) AtomicUpdate(ctx context.Context, e types.Entity, attrs types.Attributes) error {
	ent, ok := e.(*Entity)
	if !ok {
		return fmt.Errorf("%w: %T is not a gormmeta entity", types.ErrInvalidData, e)
	}
	if ent.value.Kind() != reflect.Pointer {
		return fmt.Errorf("%s: %w: model wrapped by value is read-only", ent.schema.Table, types.ErrInvalidData)
	}

	var undo []assignment
	for _, column := range attrs.Keys() {
		f := ent.schema.LookUpField(column)
		if f == nil || f.DBName == "" {
			return restore(ctx, ent, undo, fmt.Errorf("%s.%s: %w", ent.schema.Table, column, types.ErrUnknownField))
		}
		prev, _ := f.ValueOf(ctx, ent.value.Elem())
		if err := ent.set(ctx, column, attrs[column]); err != nil {
			return restore(ctx, ent, undo, err)
		}
		undo = append(undo, assignment{column: column, value: prev})
	}
	return nil
}

func restore(ctx context.Context, e *Entity, undo []assignment, err error) error {
	for i := len(undo) - 1; i >= 0; i-- {
		_ = e.set(ctx, undo[i].column, undo[i].value)
	}
	return err
}

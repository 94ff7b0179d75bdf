package gormmeta

import (
	"context"
	"fmt"
	"reflect"

	"gorm.io/gorm/schema"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

var (
	_ types.Entity = (*Entity)(nil)
	_ types.OptIn  = (*Entity)(nil)
)

// Entity adapts a registered struct model to types.Entity.
type Entity struct {
	schema *schema.Schema
	model  any
	value  reflect.Value
}

// TypeName returns the model's table name.
func (e *Entity) TypeName() string { return e.schema.Table }

// Model returns the wrapped value.
func (e *Entity) Model() any { return e.model }

// PrimaryKey returns the value of the primary key field.
func (e *Entity) PrimaryKey() any {
	v, _ := e.read(e.schema.PrioritizedPrimaryField)
	return v
}

// FieldValue returns the value of the field stored in column field, or of
// the Go field with that name. Nil pointers read as nil and other pointers
// are dereferenced.
func (e *Entity) FieldValue(field string) (any, error) {
	f := e.schema.LookUpField(field)
	if f == nil || f.DBName == "" {
		return nil, fmt.Errorf("%s.%s: %w", e.schema.Table, field, types.ErrUnknownField)
	}
	return e.read(f)
}

// Denormalize delegates to the model when it implements types.OptIn.
func (e *Entity) Denormalize() bool {
	if o, ok := e.model.(types.OptIn); ok {
		return o.Denormalize()
	}
	return true
}

func (e *Entity) read(f *schema.Field) (any, error) {
	v, _ := f.ValueOf(context.Background(), reflect.Indirect(e.value))
	if _, ok := v.(types.Symbolizer); ok {
		return v, nil
	}
	return types.Indirect(v), nil
}

// set assigns v to the field stored in column.
func (e *Entity) set(ctx context.Context, column string, v any) error {
	f := e.schema.LookUpField(column)
	if f == nil || f.DBName == "" {
		return fmt.Errorf("%s.%s: %w", e.schema.Table, column, types.ErrUnknownField)
	}
	if e.value.Kind() != reflect.Pointer {
		return fmt.Errorf("%s: %w: model wrapped by value is read-only", e.schema.Table, types.ErrInvalidData)
	}
	if err := f.Set(ctx, e.value.Elem(), v); err != nil {
		return fmt.Errorf("%s.%s: %w", e.schema.Table, column, err)
	}
	return nil
}

package types

import (
	"context"
	"fmt"
	"reflect"
	"sort"
)

// Entity is the capability every persisted instance exposes to the engine.
// Backends implement it per entity type; the engine never inspects concrete
// types.
type Entity interface {
	// TypeName returns the entity's type (table) name, e.g. "suppliers".
	TypeName() string

	// PrimaryKey returns the value of the primary key field.
	PrimaryKey() any

	// FieldValue returns the raw value stored in the named field.
	// Returns ErrUnknownField if the entity has no such field.
	FieldValue(field string) (any, error)
}

// OptIn is implemented by entities that decide per instance whether they
// take part in denormalization. Entities that do not implement it opt in.
type OptIn interface {
	Denormalize() bool
}

// OptedIn reports whether e takes part in denormalization.
func OptedIn(e Entity) bool {
	if o, ok := e.(OptIn); ok {
		return o.Denormalize()
	}
	return true
}

// Symbolizer is implemented by statically typed discriminants that know their
// own symbolic form. ok is false when the raw value has no symbol.
type Symbolizer interface {
	Symbol() (symbol string, ok bool)
}

// Predicate selects entities in a Query.
type Predicate func(Entity) bool

// Hook is a lifecycle handler registered through Lifecycle.
type Hook func(ctx context.Context, e Entity) error

// Attributes is a set of column values written in one atomic update.
type Attributes map[string]any

// Keys returns the attribute names in sorted order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EnumTable maps the raw discriminant of an enumerated field to its symbol.
type EnumTable map[int64]string

// Lookup translates raw through the table. Integer raw values of any width
// are accepted; anything else has no entry.
func (t EnumTable) Lookup(raw any) (string, bool) {
	n, ok := AsInt64(raw)
	if !ok {
		return "", false
	}
	sym, ok := t[n]
	return sym, ok
}

// AsInt64 converts integer values of any width (and pointers to them) to
// int64.
func AsInt64(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return 0, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int64(rv.Uint()), true
	default:
		return 0, false
	}
}

// Indirect dereferences pointer values. A nil pointer yields nil.
func Indirect(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

// SameKey reports whether two primary/foreign key values identify the same
// entity. Integers compare by value regardless of width, everything else by
// its string form. A nil key never matches.
func SameKey(a, b any) bool {
	a, b = Indirect(a), Indirect(b)
	if a == nil || b == nil {
		return false
	}
	if ai, ok := AsInt64(a); ok {
		if bi, ok := AsInt64(b); ok {
			return ai == bi
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// Package gormmeta describes Go struct models to the denormalization engine.
//
// Models parses structs with the gorm schema parser, so table and column
// names follow gorm's naming strategy: a Supplier struct is the "suppliers"
// type and its ProductID field the "product_id" column. Wrap turns a model
// value into a types.Entity, and StructWriter assigns projected columns back
// onto the struct before the caller persists it.
package gormmeta

import (
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm/schema"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

var _ types.Metadata = (*Models)(nil)

// Models is a registry of parsed struct models. It implements
// types.Metadata.
type Models struct {
	mu      sync.RWMutex
	cache   *sync.Map
	namer   schema.Namer
	schemas map[string]*schema.Schema
	enums   map[string]map[string]types.EnumTable
}

// New returns an empty registry using gorm's default naming strategy.
func New() *Models {
	return NewWithNamer(schema.NamingStrategy{})
}

// NewWithNamer returns an empty registry using namer for table and column
// names.
func NewWithNamer(namer schema.Namer) *Models {
	return &Models{
		cache:   &sync.Map{},
		namer:   namer,
		schemas: make(map[string]*schema.Schema),
		enums:   make(map[string]map[string]types.EnumTable),
	}
}

// Register parses model (a struct or pointer to one) and returns its type
// name. Registering the same struct twice is a no-op.
func (m *Models) Register(model any) (string, error) {
	s, err := schema.Parse(model, m.cache, m.namer)
	if err != nil {
		return "", fmt.Errorf("parse %T: %w", model, err)
	}
	if s.PrioritizedPrimaryField == nil {
		return "", fmt.Errorf("%s: %w: no primary key", s.Table, types.ErrInvalidData)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.schemas[s.Table]; ok && prev.ModelType != s.ModelType {
		return "", fmt.Errorf("%s: %w: claimed by %s and %s", s.Table, types.ErrDuplicateTable, prev.ModelType, s.ModelType)
	}
	m.schemas[s.Table] = s
	return s.Table, nil
}

// RegisterEnum declares the raw-to-symbol table of an integer column.
// Fields whose type implements types.Symbolizer need no table.
func (m *Models) RegisterEnum(typeName, column string, values types.EnumTable) error {
	s, err := m.schema(typeName)
	if err != nil {
		return err
	}
	if s.LookUpField(column) == nil {
		return fmt.Errorf("%s.%s: %w", typeName, column, types.ErrUnknownField)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enums[typeName] == nil {
		m.enums[typeName] = make(map[string]types.EnumTable)
	}
	m.enums[typeName][column] = values
	return nil
}

// ColumnNames returns the database column names of the model in field
// order.
func (m *Models) ColumnNames(typeName string) ([]string, error) {
	s, err := m.schema(typeName)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), s.DBNames...), nil
}

// PrimaryKeyName returns the primary key column of the model.
func (m *Models) PrimaryKeyName(typeName string) (string, error) {
	s, err := m.schema(typeName)
	if err != nil {
		return "", err
	}
	return s.PrioritizedPrimaryField.DBName, nil
}

// EnumValues returns the table registered with RegisterEnum.
func (m *Models) EnumValues(typeName, field string) (types.EnumTable, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.enums[typeName][field]
	return t, ok
}

// Wrap returns model as an entity. The model's struct type must have been
// registered. Pass a pointer when StructWriter will write to it.
func (m *Models) Wrap(model any) (*Entity, error) {
	rv := reflect.ValueOf(model)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, fmt.Errorf("%w: nil %T", types.ErrInvalidData, model)
	}
	typ := reflect.Indirect(rv).Type()

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.schemas {
		if s.ModelType == typ {
			return &Entity{schema: s, model: model, value: rv}, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", typ, types.ErrTableNotFound)
}

func (m *Models) schema(typeName string) (*schema.Schema, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.schemas[typeName]
	if !ok {
		return nil, fmt.Errorf("%s: %w", typeName, types.ErrTableNotFound)
	}
	return s, nil
}

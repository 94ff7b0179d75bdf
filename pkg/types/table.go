package types

import (
	"context"
	"errors"
)

// Table provides uniform CRUD operations for a single entity type.
// Writes go through the backend's lifecycle so registered hooks observe them.
type Table interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(ctx context.Context, id string) (Entity, error)

	// Set creates or updates an entity. When id is empty, or names no
	// existing entity, a new entity is created (with a generated UUID v7 if
	// id is empty). Returns the actual ID used.
	Set(ctx context.Context, id string, data Attributes) (string, error)

	// Delete removes the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Delete(ctx context.Context, id string) error

	// Fetch returns all entities whose columns equal the filter values,
	// oldest first. An empty filter returns every entity in the table.
	Fetch(ctx context.Context, filter Attributes) ([]Entity, error)
}

// Column value types understood by TableSchema.
const (
	ColumnText      = "text"
	ColumnInteger   = "integer"
	ColumnReal      = "real"
	ColumnBoolean   = "boolean"
	ColumnTimestamp = "timestamp"
)

// Managed column names present on every table.
const (
	DefaultPrimaryKey = "id"
	CreatedAtColumn   = "created_at"
	UpdatedAtColumn   = "updated_at"
)

// TableSchema declares an entity type stored by a backend.
type TableSchema struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// PrimaryKey defaults to DefaultPrimaryKey.
	PrimaryKey string `json:"primary_key,omitempty" yaml:"primary_key,omitempty" mapstructure:"primary_key"`

	Columns []ColumnSchema `json:"columns" yaml:"columns" mapstructure:"columns"`

	// OptInColumn names a boolean column deciding per row whether the row
	// takes part in denormalization. Empty means every row opts in.
	OptInColumn string `json:"opt_in_column,omitempty" yaml:"opt_in_column,omitempty" mapstructure:"opt_in_column"`
}

// ColumnSchema declares one column of a TableSchema.
type ColumnSchema struct {
	Name    string `json:"name" yaml:"name" mapstructure:"name"`
	Type    string `json:"type" yaml:"type" mapstructure:"type"`
	NotNull bool   `json:"not_null,omitempty" yaml:"not_null,omitempty" mapstructure:"not_null"`

	// Default is stored when a create leaves the column unset.
	Default any `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`

	// Enum makes an integer column enumerated: raw value to symbol.
	Enum map[int64]string `json:"enum,omitempty" yaml:"enum,omitempty" mapstructure:"enum"`
}

// Key returns the effective primary key column name.
func (s TableSchema) Key() string {
	if s.PrimaryKey != "" {
		return s.PrimaryKey
	}
	return DefaultPrimaryKey
}

// ColumnNames returns the primary key, the declared columns and the managed
// timestamps, in storage order.
func (s TableSchema) ColumnNames() []string {
	names := make([]string, 0, len(s.Columns)+3)
	names = append(names, s.Key())
	for _, c := range s.Columns {
		names = append(names, c.Name)
	}
	return append(names, CreatedAtColumn, UpdatedAtColumn)
}

// Column returns the declared column with the given name.
func (s TableSchema) Column(name string) (ColumnSchema, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSchema{}, false
}

// Validate checks names, types and duplicates.
func (s TableSchema) Validate() error {
	if s.Name == "" {
		return ErrInvalidName
	}
	seen := map[string]bool{s.Key(): true, CreatedAtColumn: true, UpdatedAtColumn: true}
	for _, c := range s.Columns {
		if c.Name == "" {
			return ErrInvalidName
		}
		if seen[c.Name] {
			return ErrDuplicateColumn
		}
		seen[c.Name] = true
		if !validColumnTypes[c.Type] {
			return ErrInvalidColumnType
		}
		if len(c.Enum) > 0 && c.Type != ColumnInteger {
			return ErrInvalidColumnType
		}
	}
	if s.OptInColumn != "" {
		c, ok := s.Column(s.OptInColumn)
		if !ok || c.Type != ColumnBoolean {
			return ErrInvalidColumnType
		}
	}
	return nil
}

var validColumnTypes = map[string]bool{
	ColumnText:      true,
	ColumnInteger:   true,
	ColumnReal:      true,
	ColumnBoolean:   true,
	ColumnTimestamp: true,
}

// Table operation errors.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidID         = errors.New("invalid entity ID")
	ErrInvalidData       = errors.New("invalid entity data")
	ErrInvalidName       = errors.New("invalid name")
	ErrUnknownField      = errors.New("unknown field")
	ErrDuplicateColumn   = errors.New("duplicate column")
	ErrInvalidColumnType = errors.New("invalid column type")
	ErrUnknownRelation   = errors.New("unknown relation")
	ErrInvalidFilter     = errors.New("invalid filter")
	ErrReadOnlyColumn    = errors.New("column is maintained by denormalization")
)

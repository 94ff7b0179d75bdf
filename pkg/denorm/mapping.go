package denorm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// TimestampField is the pseudo field that the <prefix>_denormalized_at column
// maps to. It is filled with the projection time instead of a source value.
const TimestampField = "denormalized_at"

// Column is one entry of a Mapping.
type Column struct {
	Name      string // Denormalized column on the target, e.g. "supplier_name".
	Field     string // Source field copied into it; empty for the timestamp.
	Timestamp bool   // Set for <prefix>_denormalized_at.
}

// Mapping is the immutable column mapping of one source type.
type Mapping struct {
	sourceType string
	prefix     string
	primaryKey string
	columns    []Column
	index      map[string]int
}

// BuildMapping derives the mapping "<prefix>_<field>" -> field for every
// field, plus "<prefix>_denormalized_at" -> timestamp. Fields that collide on
// the same column (compared case-insensitively, as SQL does) fail with a
// *ConfigurationError; a field named denormalized_at collides with the
// timestamp column.
func BuildMapping(sourceType, prefix, primaryKey string, fields []string) (*Mapping, error) {
	m := &Mapping{
		sourceType: sourceType,
		prefix:     prefix,
		primaryKey: primaryKey,
		columns:    make([]Column, 0, len(fields)+1),
		index:      make(map[string]int, len(fields)+1),
	}
	claimed := make(map[string]string, len(fields)+1)

	add := func(c Column) error {
		key := strings.ToLower(c.Name)
		if prev, dup := claimed[key]; dup {
			return &ConfigurationError{
				SourceType: sourceType,
				Column:     c.Name,
				Fields:     []string{prev, fieldLabel(c)},
			}
		}
		claimed[key] = fieldLabel(c)
		m.index[c.Name] = len(m.columns)
		m.columns = append(m.columns, c)
		return nil
	}

	for _, f := range fields {
		if err := add(Column{Name: ColumnName(prefix, f), Field: f}); err != nil {
			return nil, err
		}
	}
	if err := add(Column{Name: ColumnName(prefix, TimestampField), Timestamp: true}); err != nil {
		return nil, err
	}
	return m, nil
}

func fieldLabel(c Column) string {
	if c.Timestamp {
		return "<timestamp>"
	}
	return c.Field
}

// SourceType returns the source type the mapping was built for.
func (m *Mapping) SourceType() string { return m.sourceType }

// Prefix returns the column prefix, e.g. "supplier".
func (m *Mapping) Prefix() string { return m.prefix }

// ForeignKey returns the target column that identifies the current source,
// "<prefix>_<primary key>".
func (m *Mapping) ForeignKey() string { return ColumnName(m.prefix, m.primaryKey) }

// PrimaryKey returns the source type's primary key field.
func (m *Mapping) PrimaryKey() string { return m.primaryKey }

// Columns returns a copy of every column in mapping order.
func (m *Mapping) Columns() []Column {
	out := make([]Column, len(m.columns))
	copy(out, m.columns)
	return out
}

// Lookup returns the column with the given name.
func (m *Mapping) Lookup(name string) (Column, bool) {
	i, ok := m.index[name]
	if !ok {
		return Column{}, false
	}
	return m.columns[i], true
}

// Intersect returns the mapping columns present in targetColumns, in mapping
// order. Target columns unknown to the mapping are ignored.
func (m *Mapping) Intersect(targetColumns []string) []Column {
	present := make(map[string]bool, len(targetColumns))
	for _, c := range targetColumns {
		present[c] = true
	}
	var out []Column
	for _, c := range m.columns {
		if present[c.Name] {
			out = append(out, c)
		}
	}
	return out
}

// Registry builds and caches one Mapping per source type. Mappings are built
// on first use and never rebuilt; the type metadata is assumed not to change
// while the registry lives.
type Registry struct {
	meta types.Metadata

	mu       sync.RWMutex
	mappings map[string]*Mapping
}

// NewRegistry returns an empty registry reading type metadata from meta.
func NewRegistry(meta types.Metadata) *Registry {
	return &Registry{
		meta:     meta,
		mappings: make(map[string]*Mapping),
	}
}

// Mapping returns the cached mapping of sourceType, building it on first use.
func (r *Registry) Mapping(sourceType string) (*Mapping, error) {
	r.mu.RLock()
	m, ok := r.mappings[sourceType]
	r.mu.RUnlock()
	if ok {
		return m, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.mappings[sourceType]; ok {
		return m, nil
	}

	fields, err := r.meta.ColumnNames(sourceType)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", sourceType, err)
	}
	pk, err := r.meta.PrimaryKeyName(sourceType)
	if err != nil {
		return nil, fmt.Errorf("primary key of %s: %w", sourceType, err)
	}
	m, err = BuildMapping(sourceType, Prefix(sourceType), pk, fields)
	if err != nil {
		return nil, err
	}
	r.mappings[sourceType] = m
	return m, nil
}

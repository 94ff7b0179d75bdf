package sqlite

import "github.com/mesh-intelligence/denormalize/pkg/types"

// ColumnNames returns the primary key, declared columns and managed
// timestamps of a table.
func (b *Backend) ColumnNames(table string) ([]string, error) {
	_, s, err := b.handle(table)
	if err != nil {
		return nil, err
	}
	return s.ColumnNames(), nil
}

// PrimaryKeyName returns the primary key column of a table.
func (b *Backend) PrimaryKeyName(table string) (string, error) {
	_, s, err := b.handle(table)
	if err != nil {
		return "", err
	}
	return s.Key(), nil
}

// EnumValues returns the value table of an enumerated column.
func (b *Backend) EnumValues(table, field string) (types.EnumTable, bool) {
	_, s, err := b.handle(table)
	if err != nil {
		return nil, false
	}
	c, ok := s.Column(field)
	if !ok || len(c.Enum) == 0 {
		return nil, false
	}
	return types.EnumTable(c.Enum), true
}

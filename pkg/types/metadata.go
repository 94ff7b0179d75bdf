package types

// Metadata describes entity types: their columns, primary key, and the value
// tables of enumerated fields.
type Metadata interface {
	// ColumnNames returns the ordered column names of the type.
	// Returns ErrTableNotFound for an unknown type.
	ColumnNames(typeName string) ([]string, error)

	// PrimaryKeyName returns the name of the type's primary key column.
	PrimaryKeyName(typeName string) (string, error)

	// EnumValues returns the raw-to-symbol table of an enumerated field.
	// ok is false when the field is not enumerated.
	EnumValues(typeName, field string) (table EnumTable, ok bool)
}

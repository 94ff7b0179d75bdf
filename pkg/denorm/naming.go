package denorm

import (
	"github.com/jinzhu/inflection"
	"gorm.io/gorm/schema"
)

// naming converts type names to snake_case the way gorm derives column names.
var naming = schema.NamingStrategy{}

// Prefix returns the denormalized column prefix for a source type: the
// singular snake_case form of its name. "suppliers" and "Supplier" both give
// "supplier"; "SupplierQuotes" gives "supplier_quote".
func Prefix(typeName string) string {
	return inflection.Singular(naming.ColumnName("", typeName))
}

// ColumnName joins a prefix and a field into a denormalized column name.
func ColumnName(prefix, field string) string {
	return prefix + "_" + field
}

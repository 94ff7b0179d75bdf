package sqlite

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// storageTypes maps column types to SQLite storage classes. Timestamps are
// stored as fixed-width UTC text so they sort lexically; booleans as 0/1.
var storageTypes = map[string]string{
	types.ColumnText:      "TEXT",
	types.ColumnInteger:   "INTEGER",
	types.ColumnReal:      "REAL",
	types.ColumnBoolean:   "INTEGER",
	types.ColumnTimestamp: "TEXT",
}

// schemaDDL returns the CREATE statements for the declared tables: one
// table per schema plus an index on created_at for newest-first queries.
func schemaDDL(tables []types.TableSchema) ([]string, error) {
	var ddl []string
	for _, t := range tables {
		create, err := createTable(t)
		if err != nil {
			return nil, err
		}
		ddl = append(ddl, create,
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s);",
				quote("idx_"+t.Name+"_created_at"), quote(t.Name), quote(types.CreatedAtColumn)))
	}
	return ddl, nil
}

func createTable(t types.TableSchema) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n    %s TEXT PRIMARY KEY", quote(t.Name), quote(t.Key()))
	for _, c := range t.Columns {
		fmt.Fprintf(&b, ",\n    %s %s", quote(c.Name), storageTypes[c.Type])
		if c.NotNull {
			b.WriteString(" NOT NULL")
		}
		if c.Default != nil {
			lit, err := defaultLiteral(c)
			if err != nil {
				return "", fmt.Errorf("default of %s.%s: %w", t.Name, c.Name, err)
			}
			b.WriteString(" DEFAULT " + lit)
		}
	}
	fmt.Fprintf(&b, ",\n    %s TEXT NOT NULL,\n    %s TEXT NOT NULL\n);",
		quote(types.CreatedAtColumn), quote(types.UpdatedAtColumn))
	return b.String(), nil
}

// defaultLiteral renders a column default in its storage form.
func defaultLiteral(c types.ColumnSchema) (string, error) {
	v, err := encode(c.Type, c.Default)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'", nil
	}
	return "NULL", nil
}

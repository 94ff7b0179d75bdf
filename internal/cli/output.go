package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/denormalize/internal/sqlite"
	"github.com/mesh-intelligence/denormalize/pkg/denorm"
	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// nullLiteral is the value argument that stands for NULL.
const nullLiteral = "null"

// parseAssignments parses column=value arguments.
func parseAssignments(args []string) (types.Attributes, error) {
	out := make(types.Attributes, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: expected column=value, got %q", errUsage, arg)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("%w: column %q given twice", errUsage, name)
		}
		if value == nullLiteral {
			out[name] = nil
			continue
		}
		out[name] = value
	}
	return out, nil
}

func printID(cmd *cobra.Command, id string) {
	if flags.jsonMode {
		data, _ := json.Marshal(map[string]string{"id": id})
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
}

func printRecord(cmd *cobra.Command, r *sqlite.Record) error {
	if flags.jsonMode {
		return printJSON(cmd, r.Values())
	}
	values := r.Values()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, name := range values.Keys() {
		fmt.Fprintf(w, "%s\t%s\n", name, formatValue(values[name]))
	}
	return w.Flush()
}

func printRecords(cmd *cobra.Command, records []*sqlite.Record) error {
	if flags.jsonMode {
		rows := make([]types.Attributes, len(records))
		for i, r := range records {
			rows[i] = r.Values()
		}
		return printJSON(cmd, rows)
	}
	for i, r := range records {
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		if err := printRecord(cmd, r); err != nil {
			return err
		}
	}
	return nil
}

// mappingRow is the JSON form of one mapping column.
type mappingRow struct {
	Column    string `json:"column"`
	Field     string `json:"field,omitempty"`
	Timestamp bool   `json:"timestamp,omitempty"`
}

func printMapping(cmd *cobra.Command, m *denorm.Mapping) error {
	columns := m.Columns()
	if flags.jsonMode {
		rows := make([]mappingRow, len(columns))
		for i, c := range columns {
			rows[i] = mappingRow{Column: c.Name, Field: c.Field, Timestamp: c.Timestamp}
		}
		return printJSON(cmd, rows)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, c := range columns {
		source := m.SourceType() + "." + c.Field
		if c.Timestamp {
			source = "(time of projection)"
		}
		fmt.Fprintf(w, "%s\t<-\t%s\n", c.Name, source)
	}
	return w.Flush()
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return nullLiteral
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

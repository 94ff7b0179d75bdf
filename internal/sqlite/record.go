package sqlite

import (
	"database/sql"
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// timeLayout is the fixed-width UTC layout used for every stored timestamp.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Record is one row of a declared table. It implements types.Entity and
// types.OptIn.
type Record struct {
	schema *types.TableSchema
	id     string
	values map[string]any
}

// TypeName returns the table name.
func (r *Record) TypeName() string { return r.schema.Name }

// PrimaryKey returns the row id.
func (r *Record) PrimaryKey() any { return r.id }

// ID returns the row id.
func (r *Record) ID() string { return r.id }

// FieldValue returns the decoded value of a column. NULL is nil.
func (r *Record) FieldValue(field string) (any, error) {
	if field == r.schema.Key() {
		return r.id, nil
	}
	v, ok := r.values[field]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", r.schema.Name, field, types.ErrUnknownField)
	}
	return v, nil
}

// Denormalize reports the row's opt-in column. Rows of tables without one,
// and rows where it is NULL, opt in.
func (r *Record) Denormalize() bool {
	if r.schema.OptInColumn == "" {
		return true
	}
	v, ok := r.values[r.schema.OptInColumn].(bool)
	return !ok || v
}

// CreatedAt returns the row's creation time.
func (r *Record) CreatedAt() time.Time {
	t, _ := r.values[types.CreatedAtColumn].(time.Time)
	return t
}

// Values returns a copy of every column value, primary key included.
func (r *Record) Values() types.Attributes {
	out := make(types.Attributes, len(r.values)+1)
	maps.Copy(out, r.values)
	out[r.schema.Key()] = r.id
	return out
}

// selectColumns returns the quoted column list in storage order.
func selectColumns(s *types.TableSchema) string {
	cols := s.ColumnNames()
	out := quote(cols[0])
	for _, c := range cols[1:] {
		out += ", " + quote(c)
	}
	return out
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one row selected with selectColumns.
func scanRecord(s *types.TableSchema, row scanner) (*Record, error) {
	cols := s.ColumnNames()
	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}
	if err := row.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("scanning %s: %w", s.Name, err)
	}

	r := &Record{schema: s, values: make(map[string]any, len(cols)-1)}
	r.id = fmt.Sprint(decodeText(raw[0]))
	for i, name := range cols[1:] {
		v, err := decode(columnType(s, name), raw[i+1])
		if err != nil {
			return nil, fmt.Errorf("decoding %s.%s: %w", s.Name, name, err)
		}
		r.values[name] = v
	}
	return r, nil
}

// columnType returns the declared type of a column; managed timestamps are
// timestamps.
func columnType(s *types.TableSchema, name string) string {
	if name == types.CreatedAtColumn || name == types.UpdatedAtColumn {
		return types.ColumnTimestamp
	}
	if c, ok := s.Column(name); ok {
		return c.Type
	}
	return types.ColumnText
}

// encode converts a Go value into the storage form of a column type. Strings
// are parsed for every type so values typed on a command line are accepted.
func encode(colType string, v any) (any, error) {
	v = types.Indirect(v)
	if v == nil {
		return nil, nil
	}
	switch colType {
	case types.ColumnText:
		switch x := v.(type) {
		case string:
			return x, nil
		case []byte:
			return string(x), nil
		case time.Time:
			return x.UTC().Format(timeLayout), nil
		case fmt.Stringer:
			return x.String(), nil
		default:
			return fmt.Sprint(x), nil
		}
	case types.ColumnInteger:
		if n, ok := types.AsInt64(v); ok {
			return n, nil
		}
		if s, ok := v.(string); ok {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not an integer", types.ErrInvalidData, s)
			}
			return n, nil
		}
	case types.ColumnReal:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case string:
			f, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a number", types.ErrInvalidData, x)
			}
			return f, nil
		}
		if n, ok := types.AsInt64(v); ok {
			return float64(n), nil
		}
	case types.ColumnBoolean:
		switch x := v.(type) {
		case bool:
			return boolInt(x), nil
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a boolean", types.ErrInvalidData, x)
			}
			return boolInt(b), nil
		}
	case types.ColumnTimestamp:
		switch x := v.(type) {
		case time.Time:
			return x.UTC().Format(timeLayout), nil
		case string:
			t, err := time.Parse(time.RFC3339Nano, x)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not an RFC 3339 time", types.ErrInvalidData, x)
			}
			return t.UTC().Format(timeLayout), nil
		}
	}
	return nil, fmt.Errorf("%w: %T for %s column", types.ErrInvalidData, v, colType)
}

// decode converts a scanned value back into its Go form.
func decode(colType string, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch colType {
	case types.ColumnInteger:
		if n, ok := types.AsInt64(raw); ok {
			return n, nil
		}
		return strconv.ParseInt(fmt.Sprint(decodeText(raw)), 10, 64)
	case types.ColumnReal:
		switch x := raw.(type) {
		case float64:
			return x, nil
		case int64:
			return float64(x), nil
		}
		return strconv.ParseFloat(fmt.Sprint(decodeText(raw)), 64)
	case types.ColumnBoolean:
		n, ok := types.AsInt64(raw)
		if !ok {
			return nil, fmt.Errorf("boolean stored as %T", raw)
		}
		return n != 0, nil
	case types.ColumnTimestamp:
		if t, ok := raw.(time.Time); ok {
			return t.UTC(), nil
		}
		return time.Parse(time.RFC3339Nano, fmt.Sprint(decodeText(raw)))
	default:
		return decodeText(raw), nil
	}
}

func decodeText(raw any) any {
	if b, ok := raw.([]byte); ok {
		return string(b)
	}
	return raw
}

// normalize returns v as it reads back after being stored.
func normalize(colType string, v any) (any, error) {
	enc, err := encode(colType, v)
	if err != nil {
		return nil, err
	}
	return decode(colType, enc)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// Table implements types.Table for one declared table. Writes fire the
// backend's lifecycle hooks.
type Table struct {
	schema  *types.TableSchema
	backend *Backend
}

func newTable(b *Backend, s *types.TableSchema) *Table {
	return &Table{schema: s, backend: b}
}

// Get retrieves a row by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if not found.
func (t *Table) Get(ctx context.Context, id string) (types.Entity, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	return t.backend.get(ctx, t.schema.Name, id)
}

// Set creates or updates a row. An empty id, or one naming no row, creates
// the row (generating a UUID v7 for an empty id) and then runs the after
// create commit hooks; otherwise the row is updated and the after update
// commit hooks run. Columns maintained by denormalization and the managed
// columns cannot be set. A hook error is returned after the write has
// committed.
func (t *Table) Set(ctx context.Context, id string, data types.Attributes) (string, error) {
	db, s, err := t.backend.handle(t.schema.Name)
	if err != nil {
		return "", err
	}
	if err := t.checkWritable(data); err != nil {
		return "", err
	}

	exists := false
	if id != "" {
		if _, err := t.backend.get(ctx, s.Name, id); err == nil {
			exists = true
		} else if err != types.ErrNotFound {
			return "", err
		}
	} else {
		id = newUUID()
	}

	now := t.backend.now().UTC().Format(timeLayout)
	event := eventAfterCreateCommit
	err = inTx(ctx, db, func(ctx context.Context, q querier) error {
		if exists {
			event = eventAfterUpdateCommit
			return t.update(ctx, q, id, data, now)
		}
		return t.insert(ctx, q, id, data, now)
	})
	if err != nil {
		return "", err
	}

	r, err := t.backend.get(ctx, s.Name, id)
	if err != nil {
		return "", err
	}
	if err := t.backend.hooks.run(ctx, event, r); err != nil {
		return id, fmt.Errorf("%s %s %s: %w", s.Name, id, event, err)
	}
	return id, nil
}

func (t *Table) checkWritable(data types.Attributes) error {
	ro := t.backend.readOnlyFor(t.schema.Name)
	for name := range data {
		if _, ok := t.schema.Column(name); !ok {
			return fmt.Errorf("%w: unknown column %s.%s", types.ErrInvalidData, t.schema.Name, name)
		}
		if ro[name] {
			return fmt.Errorf("%w: %s.%s", types.ErrReadOnlyColumn, t.schema.Name, name)
		}
	}
	return nil
}

func (t *Table) insert(ctx context.Context, q querier, id string, data types.Attributes, now string) error {
	cols := []string{quote(t.schema.Key()), quote(types.CreatedAtColumn), quote(types.UpdatedAtColumn)}
	args := []any{id, now, now}
	for _, name := range data.Keys() {
		v, err := t.encode(name, data[name])
		if err != nil {
			return err
		}
		cols = append(cols, quote(name))
		args = append(args, v)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(t.schema.Name), strings.Join(cols, ", "), placeholders(len(cols)))
	if _, err := q.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("inserting %s: %w", t.schema.Name, err)
	}
	return nil
}

func (t *Table) update(ctx context.Context, q querier, id string, data types.Attributes, now string) error {
	sets := []string{quote(types.UpdatedAtColumn) + " = ?"}
	args := []any{now}
	for _, name := range data.Keys() {
		v, err := t.encode(name, data[name])
		if err != nil {
			return err
		}
		sets = append(sets, quote(name)+" = ?")
		args = append(args, v)
	}
	args = append(args, id)
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		quote(t.schema.Name), strings.Join(sets, ", "), quote(t.schema.Key()))
	if _, err := q.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("updating %s: %w", t.schema.Name, err)
	}
	return nil
}

func (t *Table) encode(name string, v any) (any, error) {
	enc, err := encode(columnType(t.schema, name), v)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", t.schema.Name, name, err)
	}
	return enc, nil
}

// Delete removes a row. The before destroy hooks run inside the delete
// transaction; a hook error rolls the delete back and is returned.
// Returns ErrInvalidID if id is empty, ErrNotFound if not found.
func (t *Table) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, s, err := t.backend.handle(t.schema.Name)
	if err != nil {
		return err
	}
	return inTx(ctx, db, func(ctx context.Context, q querier) error {
		r, err := t.backend.get(ctx, s.Name, id)
		if err != nil {
			return err
		}
		if err := t.backend.hooks.run(ctx, eventBeforeDestroy, r); err != nil {
			return fmt.Errorf("%s %s %s: %w", s.Name, id, eventBeforeDestroy, err)
		}
		stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", quote(s.Name), quote(s.Key()))
		if _, err := q.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("deleting %s: %w", s.Name, err)
		}
		return nil
	})
}

// Fetch returns rows whose columns equal every filter value, oldest first.
// A nil filter value matches NULL. An empty filter returns every row.
func (t *Table) Fetch(ctx context.Context, filter types.Attributes) ([]types.Entity, error) {
	db, s, err := t.backend.handle(t.schema.Name)
	if err != nil {
		return nil, err
	}

	var where []string
	var args []any
	for _, name := range filter.Keys() {
		if name != s.Key() {
			if _, ok := s.Column(name); !ok {
				return nil, fmt.Errorf("%w: unknown column %s.%s", types.ErrInvalidFilter, s.Name, name)
			}
		}
		if filter[name] == nil {
			where = append(where, quote(name)+" IS NULL")
			continue
		}
		v, err := encode(columnType(s, name), filter[name])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", types.ErrInvalidFilter, name, err)
		}
		where = append(where, quote(name)+" = ?")
		args = append(args, v)
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s", selectColumns(s), quote(s.Name))
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += fmt.Sprintf(" ORDER BY %s ASC, rowid ASC", quote(types.CreatedAtColumn))

	records, err := queryRecords(ctx, conn(ctx, db), s, stmt, args...)
	if err != nil {
		return nil, err
	}
	out := make([]types.Entity, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out, nil
}

// get loads one row through the transaction carried by ctx, if any.
func (b *Backend) get(ctx context.Context, table, id string) (*Record, error) {
	db, s, err := b.handle(table)
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", selectColumns(s), quote(s.Name), quote(s.Key()))
	return scanRecord(s, conn(ctx, db).QueryRowContext(ctx, stmt, id))
}

func (b *Backend) readOnlyFor(table string) map[string]bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.readOnly[table]
}

// queryRecords reads every row of the query before returning so the
// connection is free for the caller's next statement.
func queryRecords(ctx context.Context, q querier, s *types.TableSchema, stmt string, args ...any) ([]*Record, error) {
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.Name, err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		r, err := scanRecord(s, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// AtomicUpdate writes attrs onto e in one transaction, or in the transaction
// carried by ctx. Every attribute must be a declared column. Lifecycle hooks
// do not fire. On success e is updated in place when it is a *Record.
func (b *Backend) AtomicUpdate(ctx context.Context, e types.Entity, attrs types.Attributes) error {
	db, s, err := b.handle(e.TypeName())
	if err != nil {
		return err
	}
	if len(attrs) == 0 {
		return nil
	}

	sets := []string{quote(types.UpdatedAtColumn) + " = ?"}
	args := []any{b.now().UTC().Format(timeLayout)}
	for _, name := range attrs.Keys() {
		c, ok := s.Column(name)
		if !ok {
			return fmt.Errorf("%w: unknown column %s.%s", types.ErrInvalidData, s.Name, name)
		}
		v, err := encode(c.Type, attrs[name])
		if err != nil {
			return fmt.Errorf("%s.%s: %w", s.Name, name, err)
		}
		sets = append(sets, quote(name)+" = ?")
		args = append(args, v)
	}
	id := fmt.Sprint(e.PrimaryKey())
	args = append(args, id)
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", quote(s.Name), strings.Join(sets, ", "), quote(s.Key()))

	err = inTx(ctx, db, func(ctx context.Context, q querier) error {
		res, err := q.ExecContext(ctx, stmt, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%s %s: %w", s.Name, id, types.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if r, ok := e.(*Record); ok {
		for name, v := range attrs {
			c, _ := s.Column(name)
			r.values[name], _ = normalize(c.Type, v)
		}
		r.values[types.UpdatedAtColumn], _ = decode(types.ColumnTimestamp, args[0])
	}
	return nil
}

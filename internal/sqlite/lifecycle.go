package sqlite

import (
	"context"
	"database/sql"
	"sync"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// Lifecycle events delivered to hooks.
const (
	eventAfterCreateCommit = "after_create_commit"
	eventAfterUpdateCommit = "after_update_commit"
	eventBeforeDestroy     = "before_destroy"
)

// hooks holds registered lifecycle hooks per event and table.
type hooks struct {
	mu       sync.RWMutex
	handlers map[string]map[string][]types.Hook
}

func (h *hooks) add(event, table string, hook types.Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.handlers == nil {
		h.handlers = make(map[string]map[string][]types.Hook)
	}
	if h.handlers[event] == nil {
		h.handlers[event] = make(map[string][]types.Hook)
	}
	h.handlers[event][table] = append(h.handlers[event][table], hook)
}

// run calls the hooks of event for e's table in registration order and
// stops at the first error.
func (h *hooks) run(ctx context.Context, event string, e types.Entity) error {
	h.mu.RLock()
	handlers := append([]types.Hook(nil), h.handlers[event][e.TypeName()]...)
	h.mu.RUnlock()

	for _, hook := range handlers {
		if err := hook(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// OnAfterCreateCommit registers h to run after a row of table is created
// and committed.
func (b *Backend) OnAfterCreateCommit(table string, h types.Hook) {
	b.hooks.add(eventAfterCreateCommit, table, h)
}

// OnAfterUpdateCommit registers h to run after a row of table is updated
// and committed.
func (b *Backend) OnAfterUpdateCommit(table string, h types.Hook) {
	b.hooks.add(eventAfterUpdateCommit, table, h)
}

// OnBeforeDestroy registers h to run inside the delete transaction of a row
// of table, before the row is removed.
func (b *Backend) OnBeforeDestroy(table string, h types.Hook) {
	b.hooks.add(eventBeforeDestroy, table, h)
}

// txKey carries the open transaction in a context.
type txKey struct{}

func withTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// querier is implemented by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the transaction carried by ctx, or db.
func conn(ctx context.Context, db *sql.DB) querier {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return db
}

// inTx runs fn on the transaction carried by ctx, or on a new transaction
// that is committed when fn succeeds and rolled back otherwise.
func inTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, q querier) error) error {
	if tx, ok := txFrom(ctx); ok {
		return fn(ctx, tx)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(withTx(ctx, tx), tx); err != nil {
		return err
	}
	return tx.Commit()
}

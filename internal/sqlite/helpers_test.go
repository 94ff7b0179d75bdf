package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

var supplierStatus = map[int64]string{0: "pending", 1: "active", 2: "closed"}

// testTables declares suppliers belonging to products. Products cache the
// current supplier's id, name and status.
func testTables() []types.TableSchema {
	return []types.TableSchema{
		{
			Name: "suppliers",
			Columns: []types.ColumnSchema{
				{Name: "name", Type: types.ColumnText, NotNull: true},
				{Name: "status", Type: types.ColumnInteger, Default: 0, Enum: supplierStatus},
				{Name: "product_id", Type: types.ColumnText},
				{Name: "preferred", Type: types.ColumnBoolean},
			},
			OptInColumn: "preferred",
		},
		{
			Name: "products",
			Columns: []types.ColumnSchema{
				{Name: "title", Type: types.ColumnText, NotNull: true},
				{Name: "price", Type: types.ColumnReal},
				{Name: "supplier_id", Type: types.ColumnText},
				{Name: "supplier_name", Type: types.ColumnText},
				{Name: "supplier_status", Type: types.ColumnText},
				{Name: "supplier_denormalized_at", Type: types.ColumnTimestamp},
			},
		},
	}
}

var testRelation = types.Relation{
	Source:      "suppliers",
	Target:      "products",
	Name:        "product",
	Inverse:     "suppliers",
	Denormalize: true,
}

func testConfig(dataDir string) types.Config {
	return types.Config{
		Backend:   types.BackendSQLite,
		DataDir:   dataDir,
		Tables:    testTables(),
		Relations: []types.Relation{testRelation},
	}
}

// setupBackend creates an attached Backend over the test tables whose clock
// advances one second per call, so creation order is strict.
func setupBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(testConfig(t.TempDir())))
	t.Cleanup(func() { b.Detach() })
	b.now = steppingClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	return b
}

func steppingClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}
}

func mustTable(t *testing.T, b *Backend, name string) types.Table {
	t.Helper()
	table, err := b.GetTable(name)
	require.NoError(t, err)
	return table
}

func mustSet(t *testing.T, table types.Table, id string, data types.Attributes) string {
	t.Helper()
	got, err := table.Set(context.Background(), id, data)
	require.NoError(t, err)
	return got
}

func mustGet(t *testing.T, table types.Table, id string) *Record {
	t.Helper()
	e, err := table.Get(context.Background(), id)
	require.NoError(t, err)
	return e.(*Record)
}

func field(t *testing.T, e types.Entity, name string) any {
	t.Helper()
	v, err := e.FieldValue(name)
	require.NoError(t, err)
	return v
}

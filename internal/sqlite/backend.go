// Package sqlite implements the SQLite storage backend.
//
// The backend stores the tables declared in types.Config, traverses the
// declared relations, delivers lifecycle events to registered hooks and
// performs the atomic updates the denormalization engine issues. Every
// blocking method takes a context; a transaction opened by the backend is
// carried in the context handed to before-destroy hooks so their reads and
// writes join the deleting unit of work.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/denormalize/pkg/denorm"
	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// DatabaseFile is the SQLite file created inside DataDir.
const DatabaseFile = "denorm.db"

var _ types.Backend = (*Backend)(nil)

// Backend implements types.Backend using SQLite.
type Backend struct {
	mu        sync.RWMutex
	attached  bool
	config    types.Config
	db        *sql.DB
	schemas   map[string]*types.TableSchema
	tables    map[string]*Table
	relations []types.Relation

	// readOnly holds, per target table, the columns maintained by
	// denormalization. Table.Set refuses to write them.
	readOnly map[string]map[string]bool

	hooks hooks
	now   func() time.Time
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		schemas:  make(map[string]*types.TableSchema),
		tables:   make(map[string]*Table),
		readOnly: make(map[string]map[string]bool),
		now:      time.Now,
	}
}

// GetTable returns the Table for the specified table name.
// Returns ErrTableNotFound if the table name is not declared.
// Returns ErrBackendDetached if the backend is not attached.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrBackendDetached
	}
	table, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return table, nil
}

// Attach validates config, creates DataDir if needed, opens the database
// and creates any declared table that does not exist yet.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return err
	}
	// Before-destroy hooks run on the deleting transaction's connection;
	// a single connection keeps every other write queued behind it.
	db.SetMaxOpenConns(1)

	stmts, err := schemaDDL(config.Tables)
	if err != nil {
		db.Close()
		return err
	}
	for _, ddl := range stmts {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("create schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.relations = append([]types.Relation(nil), config.Relations...)
	for i := range config.Tables {
		s := config.Tables[i]
		b.schemas[s.Name] = &s
		b.tables[s.Name] = newTable(b, &s)
	}
	b.readOnly = readOnlyColumns(b.schemas, b.relations)
	b.attached = true
	return nil
}

// Detach releases all resources held by the backend. After Detach, all
// operations return ErrBackendDetached. Registered hooks are kept.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.schemas = make(map[string]*types.TableSchema)
	b.tables = make(map[string]*Table)
	b.readOnly = make(map[string]map[string]bool)
	b.relations = nil
	return nil
}

// handle returns the database and the schema of table name.
func (b *Backend) handle(name string) (*sql.DB, *types.TableSchema, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, nil, types.ErrBackendDetached
	}
	s, ok := b.schemas[name]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", name, types.ErrTableNotFound)
	}
	return b.db, s, nil
}

// readOnlyColumns collects the target columns that a denormalized relation
// owns: <prefix>_<source column> and <prefix>_denormalized_at.
func readOnlyColumns(schemas map[string]*types.TableSchema, relations []types.Relation) map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	for _, r := range relations {
		if !r.Denormalize {
			continue
		}
		src, target := schemas[r.Source], schemas[r.Target]
		prefix := denorm.Prefix(r.Source)
		owned := map[string]bool{denorm.ColumnName(prefix, denorm.TimestampField): true}
		for _, c := range src.ColumnNames() {
			owned[denorm.ColumnName(prefix, c)] = true
		}
		for _, c := range target.Columns {
			if owned[c.Name] {
				if out[r.Target] == nil {
					out[r.Target] = make(map[string]bool)
				}
				out[r.Target][c.Name] = true
			}
		}
	}
	return out
}

// newUUID generates a UUID v7 string for entity IDs.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// quote quotes an SQL identifier.
func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

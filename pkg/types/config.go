package types

import (
	"errors"
	"fmt"
)

// Config holds backend selection and the declared tables and relations
// passed to Backend.Attach.
type Config struct {
	Backend   string        `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir   string        `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Tables    []TableSchema `json:"tables" yaml:"tables" mapstructure:"tables"`
	Relations []Relation    `json:"relations" yaml:"relations" mapstructure:"relations"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDuplicateTable = errors.New("duplicate table")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed: a known backend, valid and
// unique tables, and relations between declared tables whose foreign key is
// a declared source column.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}

	tables := make(map[string]TableSchema, len(c.Tables))
	for _, t := range c.Tables {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("table %q: %w", t.Name, err)
		}
		if _, dup := tables[t.Name]; dup {
			return fmt.Errorf("table %q: %w", t.Name, ErrDuplicateTable)
		}
		tables[t.Name] = t
	}

	for _, r := range c.Relations {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("relation %q: %w", r.Name, err)
		}
		src, ok := tables[r.Source]
		if !ok {
			return fmt.Errorf("relation %q source %q: %w", r.Name, r.Source, ErrTableNotFound)
		}
		if _, ok := tables[r.Target]; !ok {
			return fmt.Errorf("relation %q target %q: %w", r.Name, r.Target, ErrTableNotFound)
		}
		if _, ok := src.Column(r.ForeignKeyColumn()); !ok {
			return fmt.Errorf("relation %q foreign key %q: %w", r.Name, r.ForeignKeyColumn(), ErrUnknownField)
		}
	}
	return nil
}

package denorm

import (
	"fmt"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// ConfigurationError reports two source fields that map onto the same
// denormalized column. It unwraps to types.ErrConfiguration.
type ConfigurationError struct {
	SourceType string
	Column     string
	Fields     []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: column %q is claimed by fields %q",
		types.ErrConfiguration, e.SourceType, e.Column, e.Fields)
}

func (e *ConfigurationError) Unwrap() error { return types.ErrConfiguration }

// MappingError reports an enumerated raw value without a symbol.
// It unwraps to types.ErrMapping.
type MappingError struct {
	SourceType string
	Field      string
	Value      any
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("%s: %s.%s: no symbol for raw value %v",
		types.ErrMapping, e.SourceType, e.Field, e.Value)
}

func (e *MappingError) Unwrap() error { return types.ErrMapping }

// PersistenceError wraps a failed atomic update of a target. It matches both
// types.ErrPersistence and the underlying storage error.
type PersistenceError struct {
	TargetType string
	TargetID   any
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: update %s %v: %v", types.ErrPersistence, e.TargetType, e.TargetID, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{types.ErrPersistence, e.Err} }

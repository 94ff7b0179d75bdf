package types

import "errors"

// Relation declares a one-to-many association whose source fields are
// cached on the target. Source rows point at a target row through
// ForeignKey; the target sees every source through the Inverse collection.
type Relation struct {
	// Source is the type whose fields are copied, e.g. "suppliers".
	Source string `json:"source" yaml:"source" mapstructure:"source"`

	// Target is the type that holds the cached copies, e.g. "products".
	Target string `json:"target" yaml:"target" mapstructure:"target"`

	// Name is the to-one relation on the source, e.g. "product".
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Inverse is the to-many relation on the target, e.g. "suppliers".
	Inverse string `json:"inverse" yaml:"inverse" mapstructure:"inverse"`

	// ForeignKey is the source column holding the target's id. Backends
	// default it to "<Name>_id".
	ForeignKey string `json:"foreign_key,omitempty" yaml:"foreign_key,omitempty" mapstructure:"foreign_key"`

	// Denormalize enables denormalization for this relation. Relations
	// declared without it are ignored by the engine.
	Denormalize bool `json:"denormalize" yaml:"denormalize" mapstructure:"denormalize"`
}

// Relation validation errors.
var (
	ErrRelationSource  = errors.New("relation source must not be empty")
	ErrRelationTarget  = errors.New("relation target must not be empty")
	ErrRelationName    = errors.New("relation name must not be empty")
	ErrRelationInverse = errors.New("relation inverse must not be empty")
)

// Validate checks that every name of the relation is set.
func (r Relation) Validate() error {
	switch {
	case r.Source == "":
		return ErrRelationSource
	case r.Target == "":
		return ErrRelationTarget
	case r.Name == "":
		return ErrRelationName
	case r.Inverse == "":
		return ErrRelationInverse
	}
	return nil
}

// ForeignKeyColumn returns ForeignKey, or "<Name>_id" when it is unset.
func (r Relation) ForeignKeyColumn() string {
	if r.ForeignKey != "" {
		return r.ForeignKey
	}
	return r.Name + "_id"
}

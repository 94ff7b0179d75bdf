package denorm

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// Engine wires the mapping registry, projector, clearer, sync controller and
// replacement resolver over one set of collaborators.
type Engine struct {
	registry *Registry
	project  *Projector
	clear    *Clearer
	sync     *SyncController
	replace  *ReplacementResolver
	log      logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	now func() time.Time
	log logrus.FieldLogger
}

// WithClock sets the time source used for <prefix>_denormalized_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

// New returns an Engine over the given collaborators. Nothing is registered
// until Register is called.
func New(meta types.Metadata, assoc types.Associations, writer types.Writer, opts ...Option) *Engine {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.log = l
	}

	registry := NewRegistry(meta)
	project := &Projector{registry: registry, meta: meta, writer: writer, now: o.now, log: o.log}
	clear := &Clearer{registry: registry, meta: meta, writer: writer, log: o.log}
	return &Engine{
		registry: registry,
		project:  project,
		clear:    clear,
		sync:     &SyncController{registry: registry, assoc: assoc, projector: project},
		replace:  &ReplacementResolver{registry: registry, assoc: assoc, projector: project, clearer: clear},
		log:      o.log,
	}
}

// Register installs the lifecycle hooks of rel on lc. Relations without the
// Denormalize flag are skipped. The source mapping is built here, so a
// colliding mapping fails registration with a *ConfigurationError.
func (e *Engine) Register(lc types.Lifecycle, rel types.Relation) error {
	if !rel.Denormalize {
		return nil
	}
	if err := rel.Validate(); err != nil {
		return err
	}
	if _, err := e.registry.Mapping(rel.Source); err != nil {
		return fmt.Errorf("register %s.%s: %w", rel.Source, rel.Name, err)
	}

	lc.OnAfterCreateCommit(rel.Source, func(ctx context.Context, source types.Entity) error {
		return e.sync.AfterCreate(ctx, rel, source)
	})
	lc.OnAfterUpdateCommit(rel.Source, func(ctx context.Context, source types.Entity) error {
		return e.sync.AfterUpdate(ctx, rel, source)
	})
	lc.OnBeforeDestroy(rel.Source, func(ctx context.Context, source types.Entity) error {
		return e.replace.BeforeDestroy(ctx, rel, source)
	})

	e.log.WithFields(logrus.Fields{
		"source":   rel.Source,
		"target":   rel.Target,
		"relation": rel.Name,
	}).Debug("registered denormalized relation")
	return nil
}

// Denormalize projects source onto target unconditionally.
func (e *Engine) Denormalize(ctx context.Context, source, target types.Entity) error {
	return e.project.Project(ctx, source, target)
}

// ClearDenormalized nulls the columns of sourceType cached on target.
func (e *Engine) ClearDenormalized(ctx context.Context, target types.Entity, sourceType string) error {
	return e.clear.Clear(ctx, target, sourceType)
}

// Mapping returns the column mapping of sourceType.
func (e *Engine) Mapping(sourceType string) (*Mapping, error) {
	return e.registry.Mapping(sourceType)
}

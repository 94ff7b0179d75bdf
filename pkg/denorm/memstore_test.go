package denorm

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// memEntity is a map-backed entity used by the engine tests.
type memEntity struct {
	typ       string
	id        any
	fields    map[string]any
	createdAt time.Time
	optOut    bool
}

func (e *memEntity) TypeName() string { return e.typ }
func (e *memEntity) PrimaryKey() any  { return e.id }
func (e *memEntity) Denormalize() bool { return !e.optOut }

func (e *memEntity) FieldValue(field string) (any, error) {
	if field == "id" {
		return e.id, nil
	}
	v, ok := e.fields[field]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", e.typ, field, types.ErrUnknownField)
	}
	return v, nil
}

type memWrite struct {
	target types.Entity
	attrs  types.Attributes
}

// memStore implements every collaborator in memory.
type memStore struct {
	columns   map[string][]string
	enums     map[string]map[string]types.EnumTable
	entities  map[string]map[string]*memEntity
	relations []types.Relation
	writes    []memWrite
	failWith  error
	hooks     map[string]map[string][]types.Hook
}

func newMemStore() *memStore {
	return &memStore{
		columns:  make(map[string][]string),
		enums:    make(map[string]map[string]types.EnumTable),
		entities: make(map[string]map[string]*memEntity),
		hooks:    make(map[string]map[string][]types.Hook),
	}
}

// supplierStore declares suppliers belonging to products, with an enumerated
// status and products caching name, status and the current supplier id.
func supplierStore() *memStore {
	s := newMemStore()
	s.columns["suppliers"] = []string{"id", "name", "status", "product_id", "created_at"}
	s.columns["products"] = []string{"id", "title", "supplier_id", "supplier_name", "supplier_status", "supplier_denormalized_at"}
	s.enums["suppliers"] = map[string]types.EnumTable{
		"status": {0: "pending", 1: "active", 2: "closed"},
	}
	s.relations = []types.Relation{supplierRelation}
	return s
}

var supplierRelation = types.Relation{
	Source:      "suppliers",
	Target:      "products",
	Name:        "product",
	Inverse:     "suppliers",
	ForeignKey:  "product_id",
	Denormalize: true,
}

func (s *memStore) put(e *memEntity) *memEntity {
	if s.entities[e.typ] == nil {
		s.entities[e.typ] = make(map[string]*memEntity)
	}
	s.entities[e.typ][fmt.Sprint(e.id)] = e
	return e
}

func (s *memStore) product(id int, fields map[string]any) *memEntity {
	f := map[string]any{
		"title":                    "Widget",
		"supplier_id":              nil,
		"supplier_name":            nil,
		"supplier_status":          nil,
		"supplier_denormalized_at": nil,
	}
	for k, v := range fields {
		f[k] = v
	}
	return s.put(&memEntity{typ: "products", id: id, fields: f})
}

func (s *memStore) supplier(id int, name string, status int, productID any, created time.Time) *memEntity {
	return s.put(&memEntity{
		typ: "suppliers",
		id:  id,
		fields: map[string]any{
			"name":       name,
			"status":     status,
			"product_id": productID,
			"created_at": created,
		},
		createdAt: created,
	})
}

// Metadata.

func (s *memStore) ColumnNames(typeName string) ([]string, error) {
	cols, ok := s.columns[typeName]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return cols, nil
}

func (s *memStore) PrimaryKeyName(typeName string) (string, error) {
	if _, ok := s.columns[typeName]; !ok {
		return "", types.ErrTableNotFound
	}
	return "id", nil
}

func (s *memStore) EnumValues(typeName, field string) (types.EnumTable, bool) {
	t, ok := s.enums[typeName][field]
	return t, ok
}

// Associations.

func (s *memStore) ResolveToOne(_ context.Context, e types.Entity, relation string) (types.Entity, error) {
	for _, r := range s.relations {
		if r.Source != e.TypeName() || r.Name != relation {
			continue
		}
		fk, err := e.FieldValue(r.ForeignKeyColumn())
		if err != nil {
			return nil, err
		}
		if fk == nil {
			return nil, nil
		}
		if t, ok := s.entities[r.Target][fmt.Sprint(fk)]; ok {
			return t, nil
		}
		return nil, nil
	}
	return nil, types.ErrUnknownRelation
}

func (s *memStore) ResolveToMany(_ context.Context, e types.Entity, relation string) (types.Query, error) {
	for _, r := range s.relations {
		if r.Target != e.TypeName() || r.Inverse != relation {
			continue
		}
		var items []*memEntity
		for _, src := range s.entities[r.Source] {
			if types.SameKey(src.fields[r.ForeignKeyColumn()], e.PrimaryKey()) {
				items = append(items, src)
			}
		}
		sort.Slice(items, func(i, j int) bool { return fmt.Sprint(items[i].id) < fmt.Sprint(items[j].id) })
		return memQuery{items: items}, nil
	}
	return nil, types.ErrUnknownRelation
}

type memQuery struct {
	items    []*memEntity
	preds    []types.Predicate
	excluded []any
	newest   bool
}

func (q memQuery) Filter(pred types.Predicate) types.Query {
	q.preds = append(append([]types.Predicate(nil), q.preds...), pred)
	return q
}

func (q memQuery) Exclude(id any) types.Query {
	q.excluded = append(append([]any(nil), q.excluded...), id)
	return q
}

func (q memQuery) NewestFirst() types.Query {
	q.newest = true
	return q
}

func (q memQuery) First(context.Context) (types.Entity, error) {
	items := append([]*memEntity(nil), q.items...)
	if q.newest {
		sort.SliceStable(items, func(i, j int) bool { return items[i].createdAt.After(items[j].createdAt) })
	}
next:
	for _, e := range items {
		for _, id := range q.excluded {
			if types.SameKey(e.id, id) {
				continue next
			}
		}
		for _, p := range q.preds {
			if !p(e) {
				continue next
			}
		}
		return e, nil
	}
	return nil, nil
}

// Writer.

func (s *memStore) AtomicUpdate(_ context.Context, e types.Entity, attrs types.Attributes) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.writes = append(s.writes, memWrite{target: e, attrs: attrs})
	me := e.(*memEntity)
	for k, v := range attrs {
		me.fields[k] = v
	}
	return nil
}

// Lifecycle.

const (
	evCreate  = "create"
	evUpdate  = "update"
	evDestroy = "destroy"
)

func (s *memStore) on(event, typeName string, h types.Hook) {
	if s.hooks[event] == nil {
		s.hooks[event] = make(map[string][]types.Hook)
	}
	s.hooks[event][typeName] = append(s.hooks[event][typeName], h)
}

func (s *memStore) OnAfterCreateCommit(typeName string, h types.Hook) { s.on(evCreate, typeName, h) }
func (s *memStore) OnAfterUpdateCommit(typeName string, h types.Hook) { s.on(evUpdate, typeName, h) }
func (s *memStore) OnBeforeDestroy(typeName string, h types.Hook)     { s.on(evDestroy, typeName, h) }

func (s *memStore) fire(ctx context.Context, event string, e *memEntity) error {
	for _, h := range s.hooks[event][e.typ] {
		if err := h(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *memStore) create(ctx context.Context, e *memEntity) error {
	s.put(e)
	return s.fire(ctx, evCreate, e)
}

func (s *memStore) update(ctx context.Context, e *memEntity, changes map[string]any) error {
	for k, v := range changes {
		e.fields[k] = v
	}
	return s.fire(ctx, evUpdate, e)
}

func (s *memStore) destroy(ctx context.Context, e *memEntity) error {
	if err := s.fire(ctx, evDestroy, e); err != nil {
		return err
	}
	delete(s.entities[e.typ], fmt.Sprint(e.id))
	return nil
}

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

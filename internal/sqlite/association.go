package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// ResolveToOne follows the relation named relation from a source row to its
// target row. An unset foreign key or a missing target yields nil.
func (b *Backend) ResolveToOne(ctx context.Context, e types.Entity, relation string) (types.Entity, error) {
	r, ok := b.relation(func(r types.Relation) bool {
		return r.Source == e.TypeName() && r.Name == relation
	})
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", e.TypeName(), relation, types.ErrUnknownRelation)
	}
	fk, err := e.FieldValue(r.ForeignKeyColumn())
	if err != nil {
		return nil, err
	}
	fk = types.Indirect(fk)
	if fk == nil || fmt.Sprint(fk) == "" {
		return nil, nil
	}
	target, err := b.get(ctx, r.Target, fmt.Sprint(fk))
	if err == types.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return target, nil
}

// ResolveToMany returns a query over the source rows pointing at the target
// row e through the relation whose inverse is named relation.
func (b *Backend) ResolveToMany(_ context.Context, e types.Entity, relation string) (types.Query, error) {
	r, ok := b.relation(func(r types.Relation) bool {
		return r.Target == e.TypeName() && r.Inverse == relation
	})
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", e.TypeName(), relation, types.ErrUnknownRelation)
	}
	return &query{backend: b, rel: r, targetID: fmt.Sprint(e.PrimaryKey())}, nil
}

func (b *Backend) relation(match func(types.Relation) bool) (types.Relation, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, r := range b.relations {
		if match(r) {
			return r, true
		}
	}
	return types.Relation{}, false
}

// query implements types.Query over one inverse collection. Exclusions and
// ordering run in SQL; predicates run on the loaded rows in result order.
type query struct {
	backend  *Backend
	rel      types.Relation
	targetID string
	preds    []types.Predicate
	excluded []string
	newest   bool
}

func (q *query) clone() *query {
	c := *q
	c.preds = append([]types.Predicate(nil), q.preds...)
	c.excluded = append([]string(nil), q.excluded...)
	return &c
}

func (q *query) Filter(pred types.Predicate) types.Query {
	c := q.clone()
	c.preds = append(c.preds, pred)
	return c
}

func (q *query) Exclude(id any) types.Query {
	c := q.clone()
	c.excluded = append(c.excluded, fmt.Sprint(id))
	return c
}

func (q *query) NewestFirst() types.Query {
	c := q.clone()
	c.newest = true
	return c
}

// First runs the query and returns the first row accepted by every
// predicate, or nil.
func (q *query) First(ctx context.Context) (types.Entity, error) {
	db, s, err := q.backend.handle(q.rel.Source)
	if err != nil {
		return nil, err
	}

	where := []string{quote(q.rel.ForeignKeyColumn()) + " = ?"}
	args := []any{q.targetID}
	if len(q.excluded) > 0 {
		where = append(where, fmt.Sprintf("%s NOT IN (%s)", quote(s.Key()), placeholders(len(q.excluded))))
		for _, id := range q.excluded {
			args = append(args, id)
		}
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s", selectColumns(s), quote(s.Name), strings.Join(where, " AND "))
	if q.newest {
		stmt += fmt.Sprintf(" ORDER BY %s DESC", quote(types.CreatedAtColumn))
	}

	records, err := queryRecords(ctx, conn(ctx, db), s, stmt, args...)
	if err != nil {
		return nil, err
	}
next:
	for _, r := range records {
		for _, p := range q.preds {
			if !p(r) {
				continue next
			}
		}
		return r, nil
	}
	return nil, nil
}

package denorm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

func TestProjectCopiesFields(t *testing.T) {
	ctx := context.Background()
	s := supplierStore()
	product := s.product(10, nil)
	acme := s.supplier(1, "Acme", 1, 10, epoch)

	e := New(s, s, s, WithClock(fixedClock(epoch)))
	require.NoError(t, e.Denormalize(ctx, acme, product))

	require.Len(t, s.writes, 1)
	assert.Equal(t, types.Attributes{
		"supplier_id":              1,
		"supplier_name":            "Acme",
		"supplier_status":          "active",
		"supplier_denormalized_at": epoch,
	}, s.writes[0].attrs)
	assert.Equal(t, "Widget", product.fields["title"])
}

func TestProjectTimestampIsCallTime(t *testing.T) {
	ctx := context.Background()
	s := supplierStore()
	product := s.product(10, nil)
	acme := s.supplier(1, "Acme", 0, 10, epoch)

	e := New(s, s, s)
	before := time.Now()
	require.NoError(t, e.Denormalize(ctx, acme, product))

	assert.Equal(t, "Acme", product.fields["supplier_name"])
	stamp, ok := product.fields["supplier_denormalized_at"].(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, before, stamp, time.Second)
}

func TestProjectEnumTranslation(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    any
		wantErr error
	}{
		{name: "closed", raw: 2, want: "closed"},
		{name: "pending from int64", raw: int64(0), want: "pending"},
		{name: "absent raw value", raw: 5, wantErr: types.ErrMapping},
		{name: "null enumerated value", raw: nil, wantErr: types.ErrMapping},
		{name: "nil pointer enumerated value", raw: (*int)(nil), wantErr: types.ErrMapping},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := supplierStore()
			product := s.product(10, nil)
			src := s.supplier(1, "Acme", 0, 10, epoch)
			src.fields["status"] = tt.raw

			err := New(s, s, s).Denormalize(ctx, src, product)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var merr *MappingError
				require.True(t, errors.As(err, &merr))
				assert.Equal(t, "status", merr.Field)
				assert.Empty(t, s.writes, "mapping errors abort before writing")
				assert.Nil(t, product.fields["supplier_name"])
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, product.fields["supplier_status"])
		})
	}
}

// grade is a statically typed discriminant.
type grade int

func (g grade) Symbol() (string, bool) {
	switch g {
	case 0:
		return "bronze", true
	case 1:
		return "gold", true
	}
	return "", false
}

func TestProjectSymbolizer(t *testing.T) {
	ctx := context.Background()
	s := supplierStore()
	s.columns["suppliers"] = append(s.columns["suppliers"], "grade")
	s.columns["products"] = append(s.columns["products"], "supplier_grade")
	product := s.product(10, map[string]any{"supplier_grade": nil})
	src := s.supplier(1, "Acme", 0, 10, epoch)
	src.fields["grade"] = grade(1)

	require.NoError(t, New(s, s, s).Denormalize(ctx, src, product))
	assert.Equal(t, "gold", product.fields["supplier_grade"])

	src.fields["grade"] = grade(7)
	err := New(s, s, s).Denormalize(ctx, src, product)
	assert.ErrorIs(t, err, types.ErrMapping)

	writes := len(s.writes)
	src.fields["grade"] = (*grade)(nil)
	err = New(s, s, s).Denormalize(ctx, src, product)
	assert.ErrorIs(t, err, types.ErrMapping)
	assert.Len(t, s.writes, writes)
}

func TestProjectNullPlainField(t *testing.T) {
	ctx := context.Background()
	s := supplierStore()
	product := s.product(10, map[string]any{"supplier_name": "Old"})
	src := s.supplier(1, "Acme", 1, 10, epoch)
	src.fields["name"] = nil

	require.NoError(t, New(s, s, s).Denormalize(ctx, src, product))
	assert.Nil(t, product.fields["supplier_name"])
	assert.Equal(t, "active", product.fields["supplier_status"])
}

func TestProjectNoIntersection(t *testing.T) {
	ctx := context.Background()
	s := supplierStore()
	s.columns["products"] = []string{"id", "title", "price"}
	product := s.product(10, nil)
	src := s.supplier(1, "Acme", 0, 10, epoch)

	require.NoError(t, New(s, s, s).Denormalize(ctx, src, product))
	assert.Empty(t, s.writes)
}

func TestProjectPersistenceError(t *testing.T) {
	ctx := context.Background()
	s := supplierStore()
	product := s.product(10, nil)
	src := s.supplier(1, "Acme", 0, 10, epoch)
	constraint := errors.New("NOT NULL constraint failed: products.supplier_name")
	s.failWith = constraint

	err := New(s, s, s).Denormalize(ctx, src, product)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrPersistence)
	assert.ErrorIs(t, err, constraint)

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "products", perr.TargetType)
	assert.Equal(t, 10, perr.TargetID)
}

func TestProjectUnknownSourceField(t *testing.T) {
	ctx := context.Background()
	s := supplierStore()
	product := s.product(10, nil)
	src := s.supplier(1, "Acme", 0, 10, epoch)
	delete(src.fields, "name")

	err := New(s, s, s).Denormalize(ctx, src, product)
	assert.ErrorIs(t, err, types.ErrUnknownField)
	assert.Empty(t, s.writes)
}

func TestClearNullsColumns(t *testing.T) {
	ctx := context.Background()
	s := supplierStore()
	product := s.product(10, map[string]any{
		"supplier_id":              1,
		"supplier_name":            "Acme",
		"supplier_status":          "active",
		"supplier_denormalized_at": epoch,
	})
	e := New(s, s, s)

	require.NoError(t, e.ClearDenormalized(ctx, product, "suppliers"))
	require.NoError(t, e.ClearDenormalized(ctx, product, "suppliers"), "clearing twice succeeds")

	require.Len(t, s.writes, 2)
	assert.Equal(t, s.writes[0].attrs, s.writes[1].attrs)
	for _, col := range []string{"supplier_id", "supplier_name", "supplier_status", "supplier_denormalized_at"} {
		v, ok := s.writes[0].attrs[col]
		assert.True(t, ok, "column %s cleared", col)
		assert.Nil(t, v)
		assert.Nil(t, product.fields[col])
	}
	assert.Equal(t, "Widget", product.fields["title"])
}

func TestClearNoIntersection(t *testing.T) {
	s := supplierStore()
	s.columns["products"] = []string{"id", "title"}
	product := s.product(10, nil)

	require.NoError(t, New(s, s, s).ClearDenormalized(context.Background(), product, "suppliers"))
	assert.Empty(t, s.writes)
}

package denorm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

func TestPrefix(t *testing.T) {
	tests := []struct {
		typeName string
		want     string
	}{
		{"suppliers", "supplier"},
		{"Supplier", "supplier"},
		{"SupplierQuotes", "supplier_quote"},
		{"categories", "category"},
		{"people", "person"},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			assert.Equal(t, tt.want, Prefix(tt.typeName))
		})
	}
}

func TestBuildMapping(t *testing.T) {
	m, err := BuildMapping("suppliers", "supplier", "id", []string{"id", "name", "status"})
	require.NoError(t, err)

	assert.Equal(t, []Column{
		{Name: "supplier_id", Field: "id"},
		{Name: "supplier_name", Field: "name"},
		{Name: "supplier_status", Field: "status"},
		{Name: "supplier_denormalized_at", Timestamp: true},
	}, m.Columns())
	assert.Equal(t, "supplier_id", m.ForeignKey())
	assert.Equal(t, "supplier", m.Prefix())
	assert.Equal(t, "suppliers", m.SourceType())

	c, ok := m.Lookup("supplier_name")
	require.True(t, ok)
	assert.Equal(t, "name", c.Field)
	_, ok = m.Lookup("supplier_missing")
	assert.False(t, ok)
}

func TestBuildMappingDeterministic(t *testing.T) {
	fields := []string{"id", "name", "status", "product_id"}
	a, err := BuildMapping("suppliers", "supplier", "id", fields)
	require.NoError(t, err)
	b, err := BuildMapping("suppliers", "supplier", "id", fields)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildMappingCollision(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
	}{
		{name: "duplicate field", fields: []string{"id", "name", "name"}},
		{name: "case-insensitive clash", fields: []string{"id", "Name", "name"}},
		{name: "field shadows timestamp", fields: []string{"id", "denormalized_at"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildMapping("suppliers", "supplier", "id", tt.fields)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrConfiguration))

			var cerr *ConfigurationError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, "suppliers", cerr.SourceType)
			assert.Len(t, cerr.Fields, 2)
		})
	}
}

func TestMappingIntersect(t *testing.T) {
	m, err := BuildMapping("suppliers", "supplier", "id", []string{"id", "name", "status"})
	require.NoError(t, err)

	got := m.Intersect([]string{"title", "supplier_denormalized_at", "supplier_name", "other_name"})
	assert.Equal(t, []Column{
		{Name: "supplier_name", Field: "name"},
		{Name: "supplier_denormalized_at", Timestamp: true},
	}, got)

	assert.Empty(t, m.Intersect([]string{"title", "price"}))
}

func TestRegistryCachesMapping(t *testing.T) {
	s := supplierStore()
	r := NewRegistry(s)

	first, err := r.Mapping("suppliers")
	require.NoError(t, err)

	// Metadata changes after the first build are not observed.
	s.columns["suppliers"] = append(s.columns["suppliers"], "phone")
	second, err := r.Mapping("suppliers")
	require.NoError(t, err)

	assert.Same(t, first, second)
	_, ok := second.Lookup("supplier_phone")
	assert.False(t, ok)
}

func TestRegistryUnknownType(t *testing.T) {
	r := NewRegistry(supplierStore())
	_, err := r.Mapping("warehouses")
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}

func TestRegistryCollidingType(t *testing.T) {
	s := supplierStore()
	s.columns["suppliers"] = []string{"id", "name", "NAME"}
	r := NewRegistry(s)

	_, err := r.Mapping("suppliers")
	assert.ErrorIs(t, err, types.ErrConfiguration)

	// Failed builds are not cached.
	s.columns["suppliers"] = []string{"id", "name"}
	_, err = r.Mapping("suppliers")
	assert.NoError(t, err)
}

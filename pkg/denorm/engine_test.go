package denorm

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/denormalize/pkg/types"
)

func TestRegisterSkipsRelationsWithoutFlag(t *testing.T) {
	s := supplierStore()
	rel := supplierRelation
	rel.Denormalize = false

	require.NoError(t, New(s, s, s).Register(s, rel))
	assert.Empty(t, s.hooks)
}

func TestRegisterInstallsHooks(t *testing.T) {
	s := supplierStore()
	require.NoError(t, New(s, s, s).Register(s, supplierRelation))

	for _, ev := range []string{evCreate, evUpdate, evDestroy} {
		assert.Len(t, s.hooks[ev]["suppliers"], 1, ev)
	}
}

func TestRegisterRejectsCollidingMapping(t *testing.T) {
	s := supplierStore()
	s.columns["suppliers"] = []string{"id", "denormalized_at"}

	err := New(s, s, s).Register(s, supplierRelation)
	assert.ErrorIs(t, err, types.ErrConfiguration)
	assert.Empty(t, s.hooks)
}

func TestRegisterRejectsIncompleteRelation(t *testing.T) {
	s := supplierStore()
	rel := supplierRelation
	rel.Inverse = ""

	err := New(s, s, s).Register(s, rel)
	assert.ErrorIs(t, err, types.ErrRelationInverse)
}

func TestEngineMapping(t *testing.T) {
	s := supplierStore()
	m, err := New(s, s, s).Mapping("suppliers")
	require.NoError(t, err)
	assert.Equal(t, "supplier_id", m.ForeignKey())
	assert.Len(t, m.Columns(), len(s.columns["suppliers"])+1)
}

func TestEngineLogsProjection(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)
	log.SetFormatter(&logrus.JSONFormatter{})

	s := supplierStore()
	s.columns["products"] = []string{"id", "title"}
	product := s.product(10, nil)
	src := s.supplier(1, "Acme", 1, 10, epoch)

	require.NoError(t, New(s, s, s, WithLogger(log)).Denormalize(context.Background(), src, product))
	assert.Contains(t, buf.String(), "no denormalized columns found")
	assert.Contains(t, buf.String(), `"target":"products"`)
}

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type optOut struct{ stubEntity }

func (optOut) Denormalize() bool { return false }

type stubEntity struct{}

func (stubEntity) TypeName() string               { return "stubs" }
func (stubEntity) PrimaryKey() any                { return 1 }
func (stubEntity) FieldValue(string) (any, error) { return nil, ErrUnknownField }

func TestOptedIn(t *testing.T) {
	assert.True(t, OptedIn(stubEntity{}), "entities without OptIn opt in")
	assert.False(t, OptedIn(optOut{}))
}

func TestSameKey(t *testing.T) {
	n := int32(7)
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{name: "equal ints", a: 7, b: 7, want: true},
		{name: "mixed widths", a: int64(7), b: uint8(7), want: true},
		{name: "pointer", a: &n, b: 7, want: true},
		{name: "strings", a: "abc", b: "abc", want: true},
		{name: "int and string form", a: 2, b: "2", want: true},
		{name: "different", a: 1, b: 2, want: false},
		{name: "nil never matches", a: nil, b: nil, want: false},
		{name: "nil pointer", a: (*int32)(nil), b: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameKey(tt.a, tt.b))
		})
	}
}

func TestEnumTableLookup(t *testing.T) {
	table := EnumTable{0: "pending", 2: "closed"}

	sym, ok := table.Lookup(int16(2))
	assert.True(t, ok)
	assert.Equal(t, "closed", sym)

	_, ok = table.Lookup(5)
	assert.False(t, ok)
	_, ok = table.Lookup("2")
	assert.False(t, ok, "strings are not raw discriminants")
}

func TestAttributesKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Attributes{"c": 1, "a": 2, "b": 3}.Keys())
	assert.Empty(t, Attributes(nil).Keys())
}

func TestIndirect(t *testing.T) {
	s := "x"
	ps := &s
	assert.Equal(t, "x", Indirect(&ps))
	assert.Nil(t, Indirect((*string)(nil)))
	assert.Nil(t, Indirect(nil))
	assert.Equal(t, 3, Indirect(3))
}

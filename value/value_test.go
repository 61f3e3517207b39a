package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(Null{}))
	assert.False(t, Truthy(Bool(false)))
	assert.False(t, Truthy(Int(0)))
	assert.False(t, Truthy(Real(0)))
	assert.False(t, Truthy(String("")))
	assert.False(t, Truthy(NewArray()))
	assert.False(t, Truthy(NewObject()))
	assert.True(t, Truthy(Int(1)))
	assert.True(t, Truthy(String("x")))
}

func TestEqualNumericPromotion(t *testing.T) {
	assert.True(t, Equal(Int(2), Real(2.0)))
	assert.False(t, Equal(Int(2), Real(2.5)))
}

func TestEqualNullOnlyEqualsNull(t *testing.T) {
	assert.True(t, Equal(Null{}, Null{}))
	assert.False(t, Equal(Null{}, Int(0)))
	assert.False(t, Equal(Int(0), Null{}))
}

func TestEqualArraysElementwise(t *testing.T) {
	a := NewArray(Int(1), Int(2))
	b := NewArray(Int(1), Real(2.0))
	assert.True(t, Equal(a, b))
}

func TestArraysAreSharedByReference(t *testing.T) {
	a := NewArray(Int(1))
	b := a
	b.Cell.Items = append(b.Cell.Items, Int(2))
	assert.Equal(t, 2, len(a.Cell.Items))
}

func TestStrFormatsArrayWithQuotedStrings(t *testing.T) {
	arr := NewArray(Int(1), String("a"))
	assert.Equal(t, "[1, 'a']", Str(arr))
}

func TestStrFormatsSortedIntArray(t *testing.T) {
	assert.Equal(t, "[1, 2, 3]", Str(NewArray(Int(1), Int(2), Int(3))))
}

func TestLessIsTypeErrorForIncomparable(t *testing.T) {
	_, err := Less(NewArray(), NewArray())
	assert.Error(t, err)
}

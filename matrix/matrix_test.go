package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/lfsr/field"
	"github.com/tailored-agentic-units/lfsr/matrix"
)

func TestCompanion_Layout(t *testing.T) {
	f := field.MustNew(2)
	m, err := matrix.Companion(f, []uint32{1, 1, 0, 1})
	require.NoError(t, err)

	want, err := matrix.FromRows(f, [][]uint32{
		{0, 0, 0, 1},
		{1, 0, 0, 1},
		{0, 1, 0, 0},
		{0, 0, 1, 1},
	})
	require.NoError(t, err)
	assert.True(t, m.Equal(want), "Companion() =\n%v\nwant\n%v", m, want)
}

func TestCompanion_Errors(t *testing.T) {
	f := field.MustNew(3)

	_, err := matrix.Companion(f, nil)
	assert.ErrorIs(t, err, matrix.ErrDimension)

	_, err = matrix.Companion(f, []uint32{1, 3})
	assert.ErrorIs(t, err, matrix.ErrElement)
}

func TestApply_ShiftsAndFeedsBack(t *testing.T) {
	f := field.MustNew(3)
	m, err := matrix.Companion(f, []uint32{1, 2, 1})
	require.NoError(t, err)

	dst := make([]uint32, 3)
	m.Apply(dst, []uint32{1, 1, 1})
	// s' = (s1, s2, 1*s0 + 2*s1 + 1*s2) = (1, 1, 4 mod 3)
	assert.Equal(t, []uint32{1, 1, 1}, dst)

	m.Apply(dst, []uint32{2, 0, 1})
	assert.Equal(t, []uint32{0, 1, 0}, dst)
}

func TestFromRows_Errors(t *testing.T) {
	f := field.MustNew(2)

	_, err := matrix.FromRows(f, [][]uint32{{1, 0}, {1}})
	assert.ErrorIs(t, err, matrix.ErrDimension)

	_, err = matrix.FromRows(f, [][]uint32{{1, 0}, {2, 1}})
	assert.ErrorIs(t, err, matrix.ErrElement)
}

func TestDeterminant(t *testing.T) {
	tests := []struct {
		name   string
		order  uint32
		coeffs []uint32
		want   bool
	}{
		{name: "primitive binary", order: 2, coeffs: []uint32{1, 1, 0, 0}, want: true},
		{name: "zero feedback", order: 2, coeffs: []uint32{0, 0, 0, 0}, want: false},
		{name: "missing constant term", order: 3, coeffs: []uint32{0, 2, 1}, want: false},
		{name: "ternary", order: 3, coeffs: []uint32{1, 2, 1}, want: true},
		{name: "extension field", order: 4, coeffs: []uint32{2, 3}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := matrix.Companion(field.MustNew(tt.order), tt.coeffs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.IsInvertible())
		})
	}
}

func TestDeterminant_Value(t *testing.T) {
	f := field.MustNew(5)
	m, err := matrix.FromRows(f, [][]uint32{
		{2, 1},
		{3, 4},
	})
	require.NoError(t, err)
	// 2*4 - 1*3 = 5 = 0 mod 5
	assert.Equal(t, uint32(0), m.Determinant())

	m.Set(0, 0, 1)
	// 1*4 - 1*3 = 1
	assert.Equal(t, uint32(1), m.Determinant())
}

func TestMulAndPow(t *testing.T) {
	f := field.MustNew(2)
	m, err := matrix.Companion(f, []uint32{1, 1, 0, 0})
	require.NoError(t, err)

	id := matrix.Identity(f, 4)
	prod, err := m.Mul(id)
	require.NoError(t, err)
	assert.True(t, prod.Equal(m))

	assert.True(t, m.Pow(0).Equal(id))
	assert.True(t, m.Pow(1).Equal(m))
	assert.True(t, m.Pow(15).Equal(id))

	_, err = m.Mul(matrix.Identity(f, 3))
	assert.ErrorIs(t, err, matrix.ErrDimension)
}

func TestOrder(t *testing.T) {
	f := field.MustNew(2)

	primitive, err := matrix.Companion(f, []uint32{1, 1, 0, 0})
	require.NoError(t, err)
	order, err := primitive.Order(15)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), order)

	order, err = primitive.Order(15 * 4 * 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), order)

	reducible, err := matrix.Companion(f, []uint32{1, 1, 0, 1})
	require.NoError(t, err)
	order, err = reducible.Order(12)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), order)

	_, err = primitive.Order(4)
	assert.ErrorIs(t, err, matrix.ErrOrderBound)

	_, err = primitive.Order(0)
	assert.ErrorIs(t, err, matrix.ErrOrderBound)

	singular, err := matrix.Companion(f, []uint32{0, 1, 1, 1})
	require.NoError(t, err)
	_, err = singular.Order(15)
	assert.ErrorIs(t, err, matrix.ErrNotInvertible)
}

func TestOrder_Ternary(t *testing.T) {
	f := field.MustNew(3)

	m, err := matrix.Companion(f, []uint32{1, 2, 1})
	require.NoError(t, err)

	order, err := m.Order(24)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), order)
	assert.True(t, m.Pow(order).Equal(matrix.Identity(f, 3)))
}

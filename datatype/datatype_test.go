package datatype

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name  string
		typ   DataType
		in    any
		scale int32
		want  any
	}{
		{"null", Int, nil, 0, nil},
		{"bool", Boolean, true, 0, true},
		{"bool from string", Boolean, "false", 0, false},
		{"byte", Byte, 5, 0, int8(5)},
		{"short from int64", Short, int64(-300), 0, int16(-300)},
		{"int from float", Int, float64(42), 0, int32(42)},
		{"long from string", Long, "9000000000", 0, int64(9000000000)},
		{"float", Float, 1.5, 0, float32(1.5)},
		{"float narrowed", Float, 0.1, 0, float32(0.1)},
		{"float from string", Float, "0.1", 0, float32(0.1)},
		{"float pi", Float, math.Pi, 0, float32(math.Pi)},
		{"double from int", Double, 3, 0, float64(3)},
		{"decimal from int", Decimal, 12, 2, decimal128.FromI64(1200)},
		{"decimal from string", Decimal, "12.34", 2, decimal128.FromI64(1234)},
		{"decimal trailing zeros", Decimal, "1.2300", 2, decimal128.FromI64(123)},
		{"decimal exponent", Decimal, "5e-2", 2, decimal128.FromI64(5)},
		{"decimal from float", Decimal, 1.23, 2, decimal128.FromI64(123)},
		{"decimal short literal", Decimal, "-7.5", 3, decimal128.FromI64(-7500)},
		{"string", String, "abc", 0, "abc"},
		{"string from bytes", String, []byte("xy"), 0, "xy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.typ, tt.in, tt.scale)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvert_Errors(t *testing.T) {
	_, err := Convert(Byte, 300, 0)
	assert.ErrorIs(t, err, ErrNotRepresentable)

	_, err = Convert(Int, 1.5, 0)
	assert.ErrorIs(t, err, ErrNotRepresentable)

	_, err = Convert(Float, 1e300, 0)
	assert.ErrorIs(t, err, ErrNotRepresentable)

	_, err = Convert(Float, "1e300", 0)
	assert.ErrorIs(t, err, ErrNotRepresentable)

	for _, lit := range []any{"1.234", 1.2301, "123e-3", "1e-40", math.Inf(1)} {
		_, err = Convert(Decimal, lit, 2)
		assert.ErrorIs(t, err, ErrNotRepresentable, "%v", lit)
	}

	_, err = Convert(Decimal, "one", 2)
	assert.ErrorIs(t, err, ErrIncompatible)

	_, err = Convert(Int, "abc", 0)
	assert.ErrorIs(t, err, ErrIncompatible)

	_, err = Convert(Boolean, 1, 0)
	assert.ErrorIs(t, err, ErrIncompatible)

	_, err = Convert(Binary, []byte("x"), 0)
	assert.ErrorIs(t, err, ErrIncompatible)

	var ce *ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, Binary, ce.Type)
}

func TestComparator(t *testing.T) {
	c, err := ComparatorFor(Long)
	require.NoError(t, err)

	assert.Equal(t, 0, c(nil, nil))
	assert.Equal(t, -1, c(nil, int64(1)))
	assert.Equal(t, 1, c(int64(1), nil))
	assert.Equal(t, -1, c(int64(1), int64(2)))
	assert.Equal(t, 0, c(int64(7), int64(7)))

	d, err := ComparatorFor(Decimal)
	require.NoError(t, err)
	assert.Equal(t, 1, d(decimal128.FromI64(10), decimal128.FromI64(-10)))

	b, err := ComparatorFor(Boolean)
	require.NoError(t, err)
	assert.Equal(t, -1, b(false, true))

	s, err := ComparatorFor(String)
	require.NoError(t, err)
	assert.Equal(t, 1, s("b", "a"))

	_, err = ComparatorFor(Binary)
	assert.ErrorIs(t, err, ErrNoComparator)
}

func TestDataType(t *testing.T) {
	assert.Equal(t, "decimal", Decimal.String())
	assert.True(t, Short.IsIntegral())
	assert.True(t, Float.IsFloating())
	assert.False(t, Binary.IsMeasure())
	assert.Equal(t, 16, Decimal.Width())
	assert.Equal(t, 0, String.Width())
}

package filter

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/hupe1980/scanfilter/bitmap"
	"github.com/hupe1980/scanfilter/column"
	"github.com/hupe1980/scanfilter/datatype"
	"github.com/hupe1980/scanfilter/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func measurePage(t *testing.T, dt datatype.DataType, values []any, scale int32) column.MeasurePage {
	t.Helper()
	page, err := column.NewMeasurePage(dt, values, 0, scale)
	require.NoError(t, err)
	return page
}

func TestMembershipSet_NullScenario(t *testing.T) {
	values := []any{int64(0), int64(1), nil, int64(5), int64(4), int64(6), int64(2), nil, int64(9)}
	page := measurePage(t, datatype.Long, values, 0)

	set, err := NewMembershipSet(datatype.Long, []any{nil, 5}, 0)
	require.NoError(t, err)
	assert.True(t, set.HasNull())
	assert.Equal(t, 2, set.Len())

	want := []int{0, 1, 4, 5, 6, 8}
	assert.Equal(t, want, set.FilterPage(page).Indices())
	assert.Equal(t, want, set.FilterPageWithPrevious(page, bitmap.NewFullRow(len(values))).Indices())
}

func TestMembershipSet_NullsKeptUnlessExcluded(t *testing.T) {
	page := measurePage(t, datatype.Long, []any{int64(5), nil, int64(7)}, 0)

	set, err := NewMembershipSet(datatype.Long, []any{int64(5)}, 0)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, set.FilterPage(page).Indices())
	assert.Equal(t, []int{1, 2}, set.FilterPageWithPrevious(page, bitmap.NewFullRow(3)).Indices())
}

func TestMembershipSet_Types(t *testing.T) {
	dec := func(s string) decimal128.Num {
		n, err := decimal128.FromString(s, datatype.MaxDecimalPrecision, 2)
		require.NoError(t, err)
		return n
	}

	tests := []struct {
		name     string
		dt       datatype.DataType
		scale    int32
		page     []any
		excluded []any
		want     []int
	}{
		{"boolean", datatype.Boolean, 0, []any{true, false, nil, true}, []any{true}, []int{1, 2}},
		{"byte", datatype.Byte, 0, []any{int8(-1), int8(7), int8(-128)}, []any{-128, 7}, []int{0}},
		{"short", datatype.Short, 0, []any{int16(300), int16(-300), nil}, []any{int16(-300), nil}, []int{0}},
		{"int", datatype.Int, 0, []any{int32(1), int32(2), int32(3)}, []any{"2", int64(3)}, []int{0}},
		{"long", datatype.Long, 0, []any{int64(math.MaxInt64), int64(0)}, []any{uint64(math.MaxInt64)}, []int{1}},
		{"float", datatype.Float, 0, []any{float32(0.5), float32(1.25), float32(-0.0)}, []any{0.5, 0}, []int{1}},
		{"double", datatype.Double, 0, []any{0.1, 0.2, math.NaN(), nil}, []any{math.NaN(), 0.2}, []int{0, 3}},
		{"decimal", datatype.Decimal, 2, []any{dec("1.50"), dec("2.25"), nil}, []any{"2.25", 1}, []int{0, 2}},
		{"float inexact literal", datatype.Float, 0, []any{float32(0.1), float32(0.5), float32(0.1)}, []any{0.1}, []int{1}},
		{"float string literal", datatype.Float, 0, []any{float32(0.1), float32(0.5), float32(0.1)}, []any{"0.1"}, []int{1}},
		{"float widened literal", datatype.Float, 0, []any{float32(0.3), nil}, []any{float32(0.3), 0.7}, []int{1}},
		{"decimal finer literal", datatype.Decimal, 2, []any{dec("1.23"), dec("1.24"), nil}, []any{"1.234", 1.2301}, []int{0, 1, 2}},
		{"decimal equal literal", datatype.Decimal, 2, []any{dec("1.23"), dec("1.24"), nil}, []any{"1.2300", 1.24}, []int{2}},
		{"string", datatype.String, 0, []any{"a", "b", "", nil}, []any{"", "b", "zzz"}, []int{0, 3}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page := measurePage(t, tc.dt, tc.page, tc.scale)
			set, err := NewMembershipSet(tc.dt, tc.excluded, tc.scale)
			require.NoError(t, err)
			assert.Equal(t, tc.dt, set.DataType())

			assert.Equal(t, tc.want, set.FilterPage(page).Indices(), "full scan")
			assert.Equal(t, tc.want, set.FilterPageWithPrevious(page, bitmap.NewFullRow(len(tc.page))).Indices(), "previous")
		})
	}
}

func TestMembershipSet_Previous(t *testing.T) {
	rng := testutil.NewRNG(7)
	values := rng.NullableLongs(400, 30, 0.1)
	page := measurePage(t, datatype.Long, values, 0)

	for _, excluded := range [][]any{
		nil,
		{nil},
		{int64(3), int64(4)},
		{nil, int64(0), int64(29), int64(1000)},
	} {
		set, err := NewMembershipSet(datatype.Long, excluded, 0)
		require.NoError(t, err)

		for _, density := range []float64{0, 0.1, 0.9} {
			prev := bitmap.FromIndices(len(values), rng.Indices(len(values), density)...)
			want := set.FilterPage(page)
			want.And(prev)
			got := set.FilterPageWithPrevious(page, prev)
			assert.True(t, want.Equal(got), "excluded=%v density=%v", excluded, density)
		}
	}
}

func TestMembershipSet_Conversion(t *testing.T) {
	t.Run("not representable is dropped", func(t *testing.T) {
		set, err := NewMembershipSet(datatype.Byte, []any{300, 1.5, 4}, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, set.Dropped())
		assert.Equal(t, []any{int8(4)}, set.Values())
	})

	t.Run("literals finer than the column are dropped", func(t *testing.T) {
		page := measurePage(t, datatype.Decimal, []any{decimal128.FromI64(123)}, 2)
		set, err := NewMembershipSet(datatype.Decimal, []any{"1.234", 1.2301}, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, set.Dropped())
		assert.Zero(t, set.Len())
		assert.Equal(t, []int{0}, set.FilterPage(page).Indices())
	})

	t.Run("float literals narrow to the nearest value", func(t *testing.T) {
		set, err := NewMembershipSet(datatype.Float, []any{0.1, "0.1", 1e300}, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, set.Dropped())
		assert.True(t, set.Contains(float32(0.1)))
	})

	t.Run("incompatible", func(t *testing.T) {
		_, err := NewMembershipSet(datatype.Int, []any{"abc"}, 0)
		assert.ErrorIs(t, err, ErrFilterUnsupported)
		assert.ErrorIs(t, err, datatype.ErrIncompatible)

		var fu *FilterUnsupportedError
		assert.ErrorAs(t, err, &fu)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := NewMembershipSet(datatype.Binary, []any{[]byte{1}}, 0)
		assert.ErrorIs(t, err, ErrUnsupportedType)

		var ut *UnsupportedTypeError
		require.ErrorAs(t, err, &ut)
		assert.Equal(t, datatype.Binary, ut.Type)
	})
}

func TestMembershipSet_Contains(t *testing.T) {
	set, err := NewMembershipSet(datatype.String, []any{"x", nil}, 0)
	require.NoError(t, err)

	assert.True(t, set.Contains("x"))
	assert.True(t, set.Contains(nil))
	assert.False(t, set.Contains("y"))
}

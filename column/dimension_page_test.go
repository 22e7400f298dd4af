package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(vals ...byte) [][]byte {
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte{0, v}
	}
	return out
}

func TestDimensionPage_RowOrder(t *testing.T) {
	p, err := NewDimensionPage(keys(30, 10, 20), false)
	require.NoError(t, err)

	assert.False(t, p.IsExplicitSorted())
	assert.Equal(t, 3, p.RowCount())
	assert.Equal(t, 2, p.KeySize())
	assert.Equal(t, []byte{0, 10}, p.Key(1))
	assert.Equal(t, 1, p.InvertedIndex(1))
	assert.Equal(t, 2, p.InvertedReverseIndex(2))
	assert.Equal(t, 0, p.CompareTo(0, []byte{0, 30}))
	assert.Negative(t, p.CompareTo(1, []byte{0, 11}))
}

func TestDimensionPage_ExplicitSort(t *testing.T) {
	p, err := NewDimensionPage(keys(30, 10, 20, 10), true)
	require.NoError(t, err)
	require.True(t, p.IsExplicitSorted())

	// storage order: 10(row1) 10(row3) 20(row2) 30(row0)
	assert.Equal(t, []byte{0, 10}, p.Key(0))
	assert.Equal(t, []byte{0, 30}, p.Key(3))
	assert.Equal(t, 1, p.InvertedIndex(0))
	assert.Equal(t, 3, p.InvertedIndex(1))
	assert.Equal(t, 0, p.InvertedIndex(3))
	assert.Equal(t, 3, p.InvertedReverseIndex(0))

	for row, want := range keys(30, 10, 20, 10) {
		assert.Equal(t, want, RowKey(p, row))
	}
}

func TestDimensionPage_ExplicitValidation(t *testing.T) {
	_, err := NewExplicitDimensionPage(keys(2, 1), []int{0, 1})
	assert.ErrorIs(t, err, ErrCorruptPage)

	_, err = NewExplicitDimensionPage(keys(1, 2), []int{0, 0})
	assert.ErrorIs(t, err, ErrCorruptPage)

	_, err = NewExplicitDimensionPage(keys(1), []int{0, 1})
	assert.ErrorIs(t, err, ErrCorruptPage)

	_, err = NewDimensionPage([][]byte{{1}, {1, 2}}, false)
	assert.ErrorIs(t, err, ErrCorruptPage)
}

func TestDimensionPage_EncodeDecode(t *testing.T) {
	for _, explicit := range []bool{false, true} {
		p, err := NewDimensionPage(keys(5, 3, 9, 3, 1), explicit)
		require.NoError(t, err)

		back, err := DecodeDimensionPage(EncodeDimensionPage(p))
		require.NoError(t, err)

		assert.Equal(t, explicit, back.IsExplicitSorted())
		for row := 0; row < p.RowCount(); row++ {
			assert.Equal(t, RowKey(p, row), RowKey(back, row))
			assert.Equal(t, p.InvertedIndex(row), back.InvertedIndex(row))
		}
	}

	_, err := DecodeDimensionPage([]byte{0, 1})
	assert.ErrorIs(t, err, ErrCorruptPage)
}

package dictionary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(t *testing.T, v uint32, size int) []byte {
	t.Helper()
	k, err := EncodeSurrogate(v, size)
	require.NoError(t, err)
	return k
}

func TestEncodeSurrogate(t *testing.T) {
	k := key(t, 0x0102, 2)
	assert.Equal(t, []byte{0x01, 0x02}, k)
	assert.Equal(t, uint32(0x0102), DecodeSurrogate(k))

	_, err := EncodeSurrogate(256, 1)
	assert.ErrorIs(t, err, ErrKeyOverflow)

	_, err = EncodeSurrogate(1, 5)
	assert.Error(t, err)
}

func TestPrepareKeys_SortedAndDeduplicated(t *testing.T) {
	keys, err := PrepareKeys([]uint32{40, 20, 40, 10}, 4)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.Equal(t, uint32(10), DecodeSurrogate(keys[0]))
	assert.Equal(t, uint32(20), DecodeSurrogate(keys[1]))
	assert.Equal(t, uint32(40), DecodeSurrogate(keys[2]))
}

func TestLocal_OrderPreserving(t *testing.T) {
	d, err := NewLocal([][]byte{key(t, 300, 4), key(t, 7, 4), key(t, 300, 4), key(t, 42, 4)})
	require.NoError(t, err)

	assert.Equal(t, 3, d.Len())
	assert.Equal(t, 1, d.CodeSize())
	assert.Equal(t, 4, d.KeySize())

	c7, ok := d.Encode(key(t, 7, 4))
	require.True(t, ok)
	c42, _ := d.Encode(key(t, 42, 4))
	c300, _ := d.Encode(key(t, 300, 4))
	assert.Equal(t, []byte{0}, c7)
	assert.Equal(t, []byte{1}, c42)
	assert.Equal(t, []byte{2}, c300)

	g, ok := d.Decode(c300)
	require.True(t, ok)
	assert.Equal(t, key(t, 300, 4), g)

	_, ok = d.Encode(key(t, 8, 4))
	assert.False(t, ok)
	_, ok = d.Decode([]byte{9})
	assert.False(t, ok)
}

func TestLocal_MixedWidths(t *testing.T) {
	_, err := NewLocal([][]byte{{1}, {1, 2}})
	assert.Error(t, err)
}

func TestEncodeKeys(t *testing.T) {
	d, err := NewLocal([][]byte{key(t, 5, 2), key(t, 9, 2), key(t, 1, 2)})
	require.NoError(t, err)

	encoded := EncodeKeys(d, [][]byte{key(t, 9, 2), key(t, 3, 2), key(t, 1, 2)})
	assert.Equal(t, [][]byte{{0}, {2}}, encoded)

	global := [][]byte{key(t, 1, 2)}
	assert.Equal(t, global, EncodeKeys(nil, global))
}

func TestLocal_BinaryRoundTrip(t *testing.T) {
	d, err := NewLocal([][]byte{key(t, 3, 4), key(t, 1, 4)})
	require.NoError(t, err)

	data, err := d.MarshalBinary()
	require.NoError(t, err)

	back, err := UnmarshalLocal(data)
	require.NoError(t, err)
	assert.Equal(t, d.ID(), back.ID())

	_, err = UnmarshalLocal(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrCorruptDictionary)
}

func TestLocal_ID(t *testing.T) {
	build := func(vs ...uint32) *Local {
		keys := make([][]byte, len(vs))
		for i, v := range vs {
			keys[i] = key(t, v, 2)
		}
		d, err := NewLocal(keys)
		require.NoError(t, err)
		return d
	}

	tests := []struct {
		name string
		a, b *Local
		same bool
	}{
		{"equal entries", build(1, 2, 3), build(3, 1, 2), true},
		{"same count different keys", build(1, 2, 3), build(1, 2, 4), false},
		{"same count shifted keys", build(1, 2), build(2, 3), false},
		{"prefix", build(1, 2), build(1, 2, 3), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.same {
				assert.Equal(t, tt.a.ID(), tt.b.ID())
				assert.Equal(t, tt.a.Checksum(), tt.b.Checksum())
				return
			}
			assert.NotEqual(t, tt.a.ID(), tt.b.ID())
		})
	}

	one := build(7)
	wide, err := NewLocal([][]byte{key(t, 7, 4)})
	require.NoError(t, err)
	assert.NotEqual(t, one.ID(), wide.ID())
}

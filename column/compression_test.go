package column

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressBlock_RoundTrip(t *testing.T) {
	compressible := bytes.Repeat([]byte("dimension-key-"), 512)
	random := make([]byte, 256)
	for i := range random {
		random[i] = byte(i*131 + 7)
	}

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		for name, data := range map[string][]byte{"compressible": compressible, "short": random, "empty": {}} {
			t.Run(c.String()+"/"+name, func(t *testing.T) {
				block, err := CompressBlock(data, c)
				require.NoError(t, err)

				out, err := DecompressBlock(block, c)
				require.NoError(t, err)
				assert.Equal(t, len(data), len(out))
				assert.True(t, bytes.Equal(data, out))
			})
		}
	}
}

func TestCompressBlock_ShrinksRepetitiveData(t *testing.T) {
	data := bytes.Repeat([]byte{1, 2, 3, 4}, 4096)
	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		block, err := CompressBlock(data, c)
		require.NoError(t, err)
		assert.Less(t, len(block), len(data)/2, c.String())
	}
}

func TestDecompressBlock_Truncated(t *testing.T) {
	_, err := DecompressBlock([]byte{1, 2}, CompressionLZ4)
	assert.ErrorIs(t, err, ErrCorruptPage)

	block, err := CompressBlock(bytes.Repeat([]byte("x"), 1024), CompressionZSTD)
	require.NoError(t, err)
	_, err = DecompressBlock(block[:len(block)-3], CompressionZSTD)
	assert.ErrorIs(t, err, ErrCorruptPage)
}

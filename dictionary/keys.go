package dictionary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
)

// ErrKeyOverflow is returned when a surrogate does not fit the key width.
var ErrKeyOverflow = errors.New("surrogate key overflows key size")

// EncodeSurrogate encodes v as a big-endian key of size bytes (1..4).
func EncodeSurrogate(v uint32, size int) ([]byte, error) {
	if size < 1 || size > 4 {
		return nil, fmt.Errorf("invalid key size %d", size)
	}
	if size < 4 && v >= 1<<(8*size) {
		return nil, fmt.Errorf("%w: %d in %d bytes", ErrKeyOverflow, v, size)
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	out := make([]byte, size)
	copy(out, buf[4-size:])
	return out, nil
}

// DecodeSurrogate decodes a big-endian key of 1..4 bytes.
func DecodeSurrogate(key []byte) uint32 {
	var v uint32
	for _, b := range key {
		v = v<<8 | uint32(b)
	}
	return v
}

// PrepareKeys encodes surrogates as keys of keySize bytes and returns them
// sorted ascending without duplicates.
func PrepareKeys(surrogates []uint32, keySize int) ([][]byte, error) {
	keys := make([][]byte, 0, len(surrogates))
	for _, s := range surrogates {
		k, err := EncodeSurrogate(s, keySize)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return SortKeys(keys), nil
}

// SortKeys sorts keys in place by byte order and removes duplicates.
func SortKeys(keys [][]byte) [][]byte {
	slices.SortFunc(keys, bytes.Compare)
	return slices.CompactFunc(keys, bytes.Equal)
}

// EncodeKeys translates global keys into the codes of local. Keys absent from
// the dictionary cannot occur in the chunk and are dropped. The result is
// sorted. A nil dictionary returns keys unchanged.
func EncodeKeys(local *Local, keys [][]byte) [][]byte {
	if local == nil {
		return keys
	}
	out := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if code, ok := local.Encode(k); ok {
			out = append(out, code)
		}
	}
	return SortKeys(out)
}

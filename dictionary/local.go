package dictionary

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/hupe1980/scanfilter/internal/hash"
	"github.com/tidwall/btree"
)

// ErrCorruptDictionary is returned when a serialized dictionary is malformed.
var ErrCorruptDictionary = errors.New("corrupt local dictionary")

// Local is an immutable per-chunk dictionary from global keys to dense local
// codes. Codes are assigned in ascending global key order.
type Local struct {
	codes    btree.Map[string, uint32]
	globals  [][]byte
	keySize  int
	codeSize int
	id       uint64
	checksum uint32
}

// NewLocal builds a dictionary over the distinct values of keys. All keys
// must have the same width.
func NewLocal(keys [][]byte) (*Local, error) {
	d := &Local{}
	for _, k := range keys {
		if d.keySize == 0 {
			d.keySize = len(k)
		}
		if len(k) != d.keySize {
			return nil, fmt.Errorf("mixed key widths %d and %d", d.keySize, len(k))
		}
		d.codes.Set(string(k), 0)
	}

	d.globals = make([][]byte, 0, d.codes.Len())
	var code uint32
	d.codes.Scan(func(k string, _ uint32) bool {
		d.globals = append(d.globals, []byte(k))
		return true
	})
	for _, g := range d.globals {
		d.codes.Set(string(g), code)
		code++
	}

	d.codeSize = codeWidth(len(d.globals))
	d.id, d.checksum = d.fingerprint()
	return d, nil
}

func codeWidth(n int) int {
	switch {
	case n <= 1<<8:
		return 1
	case n <= 1<<16:
		return 2
	case n <= 1<<24:
		return 3
	}
	return 4
}

func (d *Local) fingerprint() (uint64, uint32) {
	x := xxhash.New()
	c := hash.NewCRC32C()
	var hdr [6]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(len(d.globals)))
	binary.LittleEndian.PutUint16(hdr[4:], uint16(d.keySize))
	_, _ = x.Write(hdr[:])
	for _, g := range d.globals {
		_, _ = x.Write(g)
		_, _ = c.Write(g)
	}
	return x.Sum64(), c.Sum32()
}

// Len returns the number of entries.
func (d *Local) Len() int { return len(d.globals) }

// KeySize returns the width of global keys.
func (d *Local) KeySize() int { return d.keySize }

// CodeSize returns the width of local codes.
func (d *Local) CodeSize() int { return d.codeSize }

// ID returns a 64-bit content fingerprint. Dictionaries with equal entries
// share an ID.
func (d *Local) ID() uint64 { return d.id }

// Checksum returns the CRC32C of the entries in code order. It is
// independent of ID and may be combined with it to widen the fingerprint.
func (d *Local) Checksum() uint32 { return d.checksum }

// Encode returns the local code of a global key.
func (d *Local) Encode(global []byte) ([]byte, bool) {
	code, ok := d.codes.Get(string(global))
	if !ok {
		return nil, false
	}
	out, _ := EncodeSurrogate(code, d.codeSize)
	return out, true
}

// Decode returns the global key of a local code.
func (d *Local) Decode(code []byte) ([]byte, bool) {
	c := DecodeSurrogate(code)
	if int(c) >= len(d.globals) {
		return nil, false
	}
	return d.globals[c], true
}

// MarshalBinary encodes the dictionary as
// [count u32][keySize u16][keys in code order].
func (d *Local) MarshalBinary() ([]byte, error) {
	out := make([]byte, 6, 6+len(d.globals)*d.keySize)
	binary.LittleEndian.PutUint32(out[0:], uint32(len(d.globals)))
	binary.LittleEndian.PutUint16(out[4:], uint16(d.keySize))
	for _, g := range d.globals {
		out = append(out, g...)
	}
	return out, nil
}

// UnmarshalLocal decodes a dictionary written by MarshalBinary.
func UnmarshalLocal(data []byte) (*Local, error) {
	if len(data) < 6 {
		return nil, ErrCorruptDictionary
	}
	n := int(binary.LittleEndian.Uint32(data[0:]))
	size := int(binary.LittleEndian.Uint16(data[4:]))
	body := data[6:]
	if size == 0 && n > 0 || len(body) != n*size {
		return nil, fmt.Errorf("%w: %d entries of %d bytes in %d bytes", ErrCorruptDictionary, n, size, len(body))
	}
	keys := make([][]byte, n)
	for i := range keys {
		keys[i] = body[i*size : (i+1)*size]
	}
	return NewLocal(keys)
}

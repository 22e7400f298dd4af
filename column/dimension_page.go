package column

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"
)

// DimensionPage is one decoded page of a dictionary-encoded column.
//
// Positions address the page in storage order. For a page that is not
// explicitly sorted, position and row are the same.
type DimensionPage interface {
	// RowCount returns the number of rows in the page.
	RowCount() int
	// KeySize returns the width of every stored key.
	KeySize() int
	// IsExplicitSorted reports whether storage order is key order and an
	// inverted index is present.
	IsExplicitSorted() bool
	// Key returns the key stored at position pos.
	Key(pos int) []byte
	// CompareTo compares the key at position pos with key.
	CompareTo(pos int, key []byte) int
	// InvertedIndex maps a sort position to its row.
	InvertedIndex(pos int) int
	// InvertedReverseIndex maps a row to its sort position.
	InvertedReverseIndex(row int) int
}

// FixedLengthDimensionPage stores fixed-width keys contiguously.
type FixedLengthDimensionPage struct {
	data     []byte
	keySize  int
	rows     int
	inverted []uint32
	reverse  []uint32
}

var _ DimensionPage = (*FixedLengthDimensionPage)(nil)

// NewDimensionPage builds a page from keys in row order. With explicitSort
// the keys are stored stable-sorted and an inverted index is recorded.
func NewDimensionPage(keys [][]byte, explicitSort bool) (*FixedLengthDimensionPage, error) {
	keySize, err := uniformWidth(keys)
	if err != nil {
		return nil, err
	}

	if !explicitSort {
		data := make([]byte, 0, len(keys)*keySize)
		for _, k := range keys {
			data = append(data, k...)
		}
		return &FixedLengthDimensionPage{data: data, keySize: keySize, rows: len(keys)}, nil
	}

	perm := make([]int, len(keys))
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		return bytes.Compare(keys[a], keys[b])
	})

	storage := make([][]byte, len(keys))
	for pos, row := range perm {
		storage[pos] = keys[row]
	}
	return NewExplicitDimensionPage(storage, perm)
}

// NewExplicitDimensionPage builds an explicitly sorted page from keys in
// storage order and the inverted index (storage position to row).
func NewExplicitDimensionPage(storage [][]byte, inverted []int) (*FixedLengthDimensionPage, error) {
	if len(storage) != len(inverted) {
		return nil, fmt.Errorf("%w: %d keys but %d index entries", ErrCorruptPage, len(storage), len(inverted))
	}
	keySize, err := uniformWidth(storage)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(storage); i++ {
		if bytes.Compare(storage[i-1], storage[i]) > 0 {
			return nil, fmt.Errorf("%w: keys not sorted at position %d", ErrCorruptPage, i)
		}
	}

	p := &FixedLengthDimensionPage{
		data:     make([]byte, 0, len(storage)*keySize),
		keySize:  keySize,
		rows:     len(storage),
		inverted: make([]uint32, len(inverted)),
	}
	for _, k := range storage {
		p.data = append(p.data, k...)
	}
	for pos, row := range inverted {
		p.inverted[pos] = uint32(row)
	}
	if err := p.buildReverse(); err != nil {
		return nil, err
	}
	return p, nil
}

func uniformWidth(keys [][]byte) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	w := len(keys[0])
	for i, k := range keys {
		if len(k) != w {
			return 0, fmt.Errorf("%w: key %d has width %d, want %d", ErrCorruptPage, i, len(k), w)
		}
	}
	return w, nil
}

func (p *FixedLengthDimensionPage) buildReverse() error {
	p.reverse = make([]uint32, p.rows)
	seen := make([]bool, p.rows)
	for pos, row := range p.inverted {
		if int(row) >= p.rows || seen[row] {
			return fmt.Errorf("%w: inverted index is not a permutation", ErrCorruptPage)
		}
		seen[row] = true
		p.reverse[row] = uint32(pos)
	}
	return nil
}

func (p *FixedLengthDimensionPage) RowCount() int { return p.rows }

func (p *FixedLengthDimensionPage) KeySize() int { return p.keySize }

func (p *FixedLengthDimensionPage) IsExplicitSorted() bool { return p.inverted != nil }

func (p *FixedLengthDimensionPage) Key(pos int) []byte {
	off := pos * p.keySize
	return p.data[off : off+p.keySize]
}

func (p *FixedLengthDimensionPage) CompareTo(pos int, key []byte) int {
	return bytes.Compare(p.Key(pos), key)
}

func (p *FixedLengthDimensionPage) InvertedIndex(pos int) int {
	if p.inverted == nil {
		return pos
	}
	return int(p.inverted[pos])
}

func (p *FixedLengthDimensionPage) InvertedReverseIndex(row int) int {
	if p.reverse == nil {
		return row
	}
	return int(p.reverse[row])
}

// RowKey returns the key of row, resolving the inverted index if needed.
func RowKey(p DimensionPage, row int) []byte {
	if p.IsExplicitSorted() {
		return p.Key(p.InvertedReverseIndex(row))
	}
	return p.Key(row)
}

const (
	dimFlagExplicitSorted = 1 << 0
	dimHeaderSize         = 7
)

// EncodeDimensionPage serializes a page as
// [flags u8][rows u32][keySize u16][keys][inverted u32 * rows].
func EncodeDimensionPage(p DimensionPage) []byte {
	rows, keySize := p.RowCount(), p.KeySize()
	size := dimHeaderSize + rows*keySize
	if p.IsExplicitSorted() {
		size += rows * 4
	}

	out := make([]byte, dimHeaderSize, size)
	if p.IsExplicitSorted() {
		out[0] = dimFlagExplicitSorted
	}
	binary.LittleEndian.PutUint32(out[1:], uint32(rows))
	binary.LittleEndian.PutUint16(out[5:], uint16(keySize))
	for pos := 0; pos < rows; pos++ {
		out = append(out, p.Key(pos)...)
	}
	if p.IsExplicitSorted() {
		for pos := 0; pos < rows; pos++ {
			out = binary.LittleEndian.AppendUint32(out, uint32(p.InvertedIndex(pos)))
		}
	}
	return out
}

// DecodeDimensionPage parses the output of EncodeDimensionPage. The returned
// page aliases data.
func DecodeDimensionPage(data []byte) (*FixedLengthDimensionPage, error) {
	if len(data) < dimHeaderSize {
		return nil, fmt.Errorf("%w: dimension header truncated", ErrCorruptPage)
	}
	flags := data[0]
	rows := int(binary.LittleEndian.Uint32(data[1:]))
	keySize := int(binary.LittleEndian.Uint16(data[5:]))
	body := data[dimHeaderSize:]

	keyBytes := rows * keySize
	want := keyBytes
	if flags&dimFlagExplicitSorted != 0 {
		want += rows * 4
	}
	if len(body) != want {
		return nil, fmt.Errorf("%w: dimension body is %d bytes, want %d", ErrCorruptPage, len(body), want)
	}

	p := &FixedLengthDimensionPage{data: body[:keyBytes], keySize: keySize, rows: rows}
	if flags&dimFlagExplicitSorted == 0 {
		return p, nil
	}

	idx := body[keyBytes:]
	p.inverted = make([]uint32, rows)
	for i := range p.inverted {
		p.inverted[i] = binary.LittleEndian.Uint32(idx[i*4:])
	}
	if err := p.buildReverse(); err != nil {
		return nil, err
	}
	return p, nil
}

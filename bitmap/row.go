package bitmap

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"
)

// Row is a fixed-length bit vector over the rows of one page.
//
// Row is not safe for concurrent mutation. Ownership passes to the caller
// when a Row is returned from a filter.
type Row struct {
	bits *bitset.BitSet
	n    int
}

// NewRow returns an all-clear bitmap of n rows.
func NewRow(n int) *Row {
	if n < 0 {
		n = 0
	}
	return &Row{bits: bitset.New(uint(n)), n: n}
}

// NewFullRow returns an all-set bitmap of n rows.
func NewFullRow(n int) *Row {
	r := NewRow(n)
	r.SetAll()
	return r
}

// FromIndices returns a bitmap of n rows with the given rows set.
// Indices outside [0, n) are ignored.
func FromIndices(n int, rows ...int) *Row {
	r := NewRow(n)
	for _, i := range rows {
		r.Set(i)
	}
	return r
}

// Len returns the number of rows covered by the bitmap.
func (r *Row) Len() int { return r.n }

// Set marks row i as a candidate.
func (r *Row) Set(i int) {
	if i < 0 || i >= r.n {
		return
	}
	r.bits.Set(uint(i))
}

// Clear removes row i.
func (r *Row) Clear(i int) {
	if i < 0 || i >= r.n {
		return
	}
	r.bits.Clear(uint(i))
}

// Test reports whether row i is set.
func (r *Row) Test(i int) bool {
	if i < 0 || i >= r.n {
		return false
	}
	return r.bits.Test(uint(i))
}

// SetAll sets every row.
func (r *Row) SetAll() {
	if r.n == 0 {
		return
	}
	r.bits.ClearAll()
	r.bits.FlipRange(0, uint(r.n))
}

// Cardinality returns the number of set rows.
func (r *Row) Cardinality() int {
	return int(r.bits.Count())
}

// IsEmpty reports whether no row is set.
func (r *Row) IsEmpty() bool {
	return r.bits.None()
}

// NextSet returns the first set row at or after i.
func (r *Row) NextSet(i int) (int, bool) {
	if i < 0 {
		i = 0
	}
	if i >= r.n {
		return 0, false
	}
	next, ok := r.bits.NextSet(uint(i))
	if !ok || int(next) >= r.n {
		return 0, false
	}
	return int(next), true
}

// ForEach calls fn for every set row in ascending order until fn returns false.
func (r *Row) ForEach(fn func(row int) bool) {
	for i, ok := r.NextSet(0); ok; i, ok = r.NextSet(i + 1) {
		if !fn(i) {
			return
		}
	}
}

// Indices returns the set rows in ascending order.
func (r *Row) Indices() []int {
	out := make([]int, 0, r.Cardinality())
	r.ForEach(func(row int) bool {
		out = append(out, row)
		return true
	})
	return out
}

// Clone returns a deep copy.
func (r *Row) Clone() *Row {
	return &Row{bits: r.bits.Clone(), n: r.n}
}

// And keeps only rows that are also set in other.
// Rows beyond other's length are cleared.
func (r *Row) And(other *Row) {
	if other == nil {
		r.bits.ClearAll()
		return
	}
	r.bits.InPlaceIntersection(other.bits)
}

// AndNot clears every row set in other.
func (r *Row) AndNot(other *Row) {
	if other == nil {
		return
	}
	r.bits.InPlaceDifference(other.bits)
}

// Equal reports whether both bitmaps cover the same rows with the same bits set.
func (r *Row) Equal(other *Row) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.n != other.n {
		return false
	}
	for i := 0; i < r.n; i++ {
		if r.bits.Test(uint(i)) != other.bits.Test(uint(i)) {
			return false
		}
	}
	return true
}

// ToRoaring returns the set rows as a roaring bitmap.
func (r *Row) ToRoaring() *roaring.Bitmap {
	rb := roaring.New()
	r.ForEach(func(row int) bool {
		rb.Add(uint32(row))
		return true
	})
	return rb
}

// ClearRoaring clears every row contained in rb.
func (r *Row) ClearRoaring(rb *roaring.Bitmap) {
	if rb == nil || rb.IsEmpty() {
		return
	}
	it := rb.Iterator()
	for it.HasNext() {
		r.Clear(int(it.Next()))
	}
}

// String renders the set rows, e.g. "{0, 3}".
func (r *Row) String() string {
	return r.ToRoaring().String()
}

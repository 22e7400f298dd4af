package filter

import (
	"bytes"
	"slices"
	"sort"

	"github.com/hupe1980/scanfilter/bitmap"
	"github.com/hupe1980/scanfilter/column"
	"github.com/hupe1980/scanfilter/dictionary"
)

// KeyExcluder excludes the rows of dimension pages whose key is in a sorted
// key set. It is immutable and safe for concurrent use.
type KeyExcluder struct {
	keys            [][]byte
	naturallySorted bool
}

// NewExcludeKeys creates an excluder over keys in the encoding of the pages
// it will scan. keys is copied, sorted and deduplicated. naturallySorted
// marks a column whose blocklet data is sorted by this column.
func NewExcludeKeys(keys [][]byte, naturallySorted bool) *KeyExcluder {
	return &KeyExcluder{
		keys:            dictionary.SortKeys(slices.Clone(keys)),
		naturallySorted: naturallySorted,
	}
}

// Keys returns the sorted excluded keys.
func (k *KeyExcluder) Keys() [][]byte { return k.keys }

// Len returns the number of excluded keys.
func (k *KeyExcluder) Len() int { return len(k.keys) }

// NaturallySorted reports whether merge scans are used for sorted pages.
func (k *KeyExcluder) NaturallySorted() bool { return k.naturallySorted }

// FilterPage returns the rows of page whose key is not excluded.
func (k *KeyExcluder) FilterPage(page column.DimensionPage) *bitmap.Row {
	rows := page.RowCount()
	out := bitmap.NewFullRow(rows)
	if len(k.keys) == 0 {
		return out
	}

	switch {
	case !page.IsExplicitSorted():
		k.scanRows(page, out)
	case k.naturallySorted:
		k.mergeSorted(page, out)
	default:
		k.searchSorted(page, out)
	}
	return out
}

// FilterPageWithPrevious returns prev with the rows of page whose key is
// excluded cleared. Only rows set in prev are inspected.
func (k *KeyExcluder) FilterPageWithPrevious(page column.DimensionPage, prev *bitmap.Row) *bitmap.Row {
	out := prev.Clone()
	if len(k.keys) == 0 || prev.IsEmpty() {
		return out
	}

	explicit := page.IsExplicitSorted()
	prev.ForEach(func(row int) bool {
		pos := row
		if explicit {
			pos = page.InvertedReverseIndex(row)
		}
		if k.containsAt(page, pos) {
			out.Clear(row)
		}
		return true
	})
	return out
}

// containsAt binary searches the key stored at pos.
func (k *KeyExcluder) containsAt(page column.DimensionPage, pos int) bool {
	lo, hi := 0, len(k.keys)-1
	for lo <= hi {
		mid := int(uint(lo+hi) >> 1)
		switch c := page.CompareTo(pos, k.keys[mid]); {
		case c == 0:
			return true
		case c > 0:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return false
}

// scanRows tests every row of a page stored in row order.
func (k *KeyExcluder) scanRows(page column.DimensionPage, out *bitmap.Row) {
	rows := page.RowCount()
	if len(k.keys) == 1 {
		key := k.keys[0]
		for i := 0; i < rows; i++ {
			if page.CompareTo(i, key) == 0 {
				out.Clear(i)
			}
		}
		return
	}
	for i := 0; i < rows; i++ {
		if k.containsAt(page, i) {
			out.Clear(i)
		}
	}
}

// mergeSorted walks the sorted page and the sorted keys together. Each key's
// run is searched from the end of the previous run.
func (k *KeyExcluder) mergeSorted(page column.DimensionPage, out *bitmap.Row) {
	rows := page.RowCount()
	start := 0
	for _, key := range k.keys {
		if start >= rows {
			return
		}
		first, end := keyRange(page, start, rows, key)
		for pos := first; pos < end; pos++ {
			out.Clear(page.InvertedIndex(pos))
		}
		start = end
	}
}

// searchSorted searches the full page for each key.
func (k *KeyExcluder) searchSorted(page column.DimensionPage, out *bitmap.Row) {
	rows := page.RowCount()
	for _, key := range k.keys {
		first, end := keyRange(page, 0, rows, key)
		for pos := first; pos < end; pos++ {
			out.Clear(page.InvertedIndex(pos))
		}
	}
}

// keyRange returns the positions [first, end) within [lo, hi) of a sorted
// page that hold key. first == end if key is absent.
func keyRange(page column.DimensionPage, lo, hi int, key []byte) (int, int) {
	first := lo + sort.Search(hi-lo, func(i int) bool {
		return page.CompareTo(lo+i, key) >= 0
	})
	end := first + sort.Search(hi-first, func(i int) bool {
		return page.CompareTo(first+i, key) > 0
	})
	return first, end
}

// containsKey reports whether key is in the sorted keys.
func containsKey(keys [][]byte, key []byte) bool {
	_, found := slices.BinarySearchFunc(keys, key, bytes.Compare)
	return found
}

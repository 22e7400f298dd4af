package filter

import "github.com/hupe1980/scanfilter/bitmap"

// usePrevious reports whether a page is evaluated by re-testing the rows set
// in prev instead of scanning it against k excluded values. Both paths give
// the same bitmap.
func usePrevious(prev *bitmap.Row, k int, ratio float64) bool {
	if prev == nil || k == 0 {
		return false
	}
	return float64(prev.Cardinality())/float64(k) < ratio
}

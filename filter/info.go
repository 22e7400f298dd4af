package filter

// ResolvedFilterInfo binds an exclusion filter to one column of a segment.
// Exactly one of Dimension and Measure must be set.
type ResolvedFilterInfo struct {
	Dimension *DimensionFilterInfo
	Measure   *MeasureFilterInfo
}

// DimensionFilterInfo excludes global surrogate values of a dimension.
type DimensionFilterInfo struct {
	Ordinal    int
	Surrogates []uint32
}

// MeasureFilterInfo excludes values of a measure. nil excludes null rows.
type MeasureFilterInfo struct {
	Ordinal int
	Values  []any
}

// Row is one materialized row addressed by column ordinal. Dimension values
// are global keys ([]byte), measure values canonical Go values (see package
// datatype) or nil.
type Row interface {
	Value(ordinal int) any
}

// Values is a Row backed by a slice.
type Values []any

// Value returns the value at ordinal, or nil if out of range.
func (v Values) Value(ordinal int) any {
	if ordinal < 0 || ordinal >= len(v) {
		return nil
	}
	return v[ordinal]
}

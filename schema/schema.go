// Package schema describes the columns of a segment and maps column ordinals
// to the chunk index at which each column is stored inside a blocklet.
package schema

import (
	"errors"
	"fmt"

	"github.com/hupe1980/scanfilter/datatype"
)

// ErrUnknownColumn is returned when an ordinal does not resolve to a column.
var ErrUnknownColumn = errors.New("unknown column")

// DimensionColumn is a dictionary-encoded column. Row values are fixed-width
// surrogate keys of KeySize bytes.
type DimensionColumn struct {
	Name    string
	Ordinal int
	KeySize int

	// SortColumn marks a column whose blocklet data is sorted globally by this
	// column (natural sort order).
	SortColumn bool

	// InvertedIndex marks a column whose pages may be stored explicitly sorted
	// together with an inverted index.
	InvertedIndex bool

	// LocalDictionary enables per-chunk re-encoding of keys.
	LocalDictionary bool
}

// NaturallySorted reports whether stored sort order follows key order across
// the whole column.
func (c DimensionColumn) NaturallySorted() bool {
	return c.InvertedIndex && c.SortColumn
}

// MeasureColumn is a raw typed column.
type MeasureColumn struct {
	Name      string
	Ordinal   int
	DataType  datatype.DataType
	Precision int32
	Scale     int32
}

// Segment holds the column layout shared by all blocklets of a segment.
type Segment struct {
	dimensions []DimensionColumn
	measures   []MeasureColumn
	dimChunk   map[int]int
	msrChunk   map[int]int
}

// NewSegment builds a segment. Chunk indexes follow the argument order.
func NewSegment(dimensions []DimensionColumn, measures []MeasureColumn) (*Segment, error) {
	s := &Segment{
		dimensions: dimensions,
		measures:   measures,
		dimChunk:   make(map[int]int, len(dimensions)),
		msrChunk:   make(map[int]int, len(measures)),
	}
	for i, d := range dimensions {
		if _, dup := s.dimChunk[d.Ordinal]; dup {
			return nil, fmt.Errorf("duplicate dimension ordinal %d", d.Ordinal)
		}
		if d.KeySize <= 0 {
			return nil, fmt.Errorf("dimension %q: key size must be positive", d.Name)
		}
		s.dimChunk[d.Ordinal] = i
	}
	for i, m := range measures {
		if _, dup := s.msrChunk[m.Ordinal]; dup {
			return nil, fmt.Errorf("duplicate measure ordinal %d", m.Ordinal)
		}
		s.msrChunk[m.Ordinal] = i
	}
	return s, nil
}

// Dimensions returns the dimension columns in chunk order.
func (s *Segment) Dimensions() []DimensionColumn { return s.dimensions }

// Measures returns the measure columns in chunk order.
func (s *Segment) Measures() []MeasureColumn { return s.measures }

// DimensionChunkIndex maps a dimension ordinal to its chunk index.
func (s *Segment) DimensionChunkIndex(ordinal int) (int, error) {
	idx, ok := s.dimChunk[ordinal]
	if !ok {
		return 0, fmt.Errorf("%w: dimension ordinal %d", ErrUnknownColumn, ordinal)
	}
	return idx, nil
}

// MeasureChunkIndex maps a measure ordinal to its chunk index.
func (s *Segment) MeasureChunkIndex(ordinal int) (int, error) {
	idx, ok := s.msrChunk[ordinal]
	if !ok {
		return 0, fmt.Errorf("%w: measure ordinal %d", ErrUnknownColumn, ordinal)
	}
	return idx, nil
}

// Dimension returns the dimension column with the given ordinal.
func (s *Segment) Dimension(ordinal int) (DimensionColumn, error) {
	idx, err := s.DimensionChunkIndex(ordinal)
	if err != nil {
		return DimensionColumn{}, err
	}
	return s.dimensions[idx], nil
}

// Measure returns the measure column with the given ordinal.
func (s *Segment) Measure(ordinal int) (MeasureColumn, error) {
	idx, err := s.MeasureChunkIndex(ordinal)
	if err != nil {
		return MeasureColumn{}, err
	}
	return s.measures[idx], nil
}

// DimensionOrdinalMax returns one past the largest dimension ordinal. Row-wise
// evaluation places measure values after all dimension values.
func (s *Segment) DimensionOrdinalMax() int {
	maxOrd := 0
	for _, d := range s.dimensions {
		if d.Ordinal+1 > maxOrd {
			maxOrd = d.Ordinal + 1
		}
	}
	return maxOrd
}

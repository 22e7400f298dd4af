package filter

import (
	"errors"

	"github.com/hupe1980/scanfilter/bitmap"
	"github.com/hupe1980/scanfilter/column"
	"github.com/hupe1980/scanfilter/datatype"
)

// MembershipSet holds the excluded values of a measure column.
//
// Values are converted to the column type once. The set keeps them in their
// original order for comparator-based probing and in a hash set specialised
// for the column type for full page scans. A nil value is tracked as HasNull
// and never enters the typed set. A MembershipSet is immutable and safe for
// concurrent use.
type MembershipSet struct {
	dataType datatype.DataType
	values   []any
	hasNull  bool
	members  members
	compare  datatype.Comparator
	dropped  int
}

// NewMembershipSet converts values to type t (scale applies to decimals) and
// builds the set. Values that lie outside the domain of t can never match a
// stored value and are dropped. Values of an unrelated kind fail with a
// FilterUnsupportedError; types without a specialised set fail with an
// UnsupportedTypeError.
func NewMembershipSet(t datatype.DataType, values []any, scale int32) (*MembershipSet, error) {
	m := newMembers(t)
	if m == nil {
		return nil, &UnsupportedTypeError{Type: t}
	}
	compare, err := datatype.ComparatorFor(t)
	if err != nil {
		return nil, &UnsupportedTypeError{Type: t}
	}

	s := &MembershipSet{
		dataType: t,
		values:   make([]any, 0, len(values)),
		members:  m,
		compare:  compare,
	}
	for _, v := range values {
		c, err := datatype.Convert(t, v, scale)
		if err != nil {
			if errors.Is(err, datatype.ErrNotRepresentable) {
				s.dropped++
				continue
			}
			return nil, &FilterUnsupportedError{Reason: "exclude value", cause: err}
		}
		s.values = append(s.values, c)
		if c == nil {
			s.hasNull = true
			continue
		}
		s.members.add(c)
	}
	return s, nil
}

// DataType returns the column type of the set.
func (s *MembershipSet) DataType() datatype.DataType { return s.dataType }

// Values returns the converted values in their original order, including nil.
func (s *MembershipSet) Values() []any { return s.values }

// HasNull reports whether null rows are excluded.
func (s *MembershipSet) HasNull() bool { return s.hasNull }

// Len returns the number of values, including nil.
func (s *MembershipSet) Len() int { return len(s.values) }

// Dropped returns the number of values that were not representable in the
// column type.
func (s *MembershipSet) Dropped() int { return s.dropped }

// Contains reports whether the non-null value v (of the set's type) is excluded.
func (s *MembershipSet) Contains(v any) bool {
	if v == nil {
		return s.hasNull
	}
	for _, f := range s.values {
		if f != nil && s.compare(v, f) == 0 {
			return true
		}
	}
	return false
}

// FilterPage returns the rows of page whose value is not excluded.
func (s *MembershipSet) FilterPage(page column.MeasurePage) *bitmap.Row {
	rows := page.RowCount()
	out := bitmap.NewFullRow(rows)
	nulls := page.NullBits()
	if s.hasNull {
		out.ClearRoaring(nulls)
	}
	if s.members.len() == 0 {
		return out
	}

	checkNulls := nulls != nil && !nulls.IsEmpty()
	for i := 0; i < rows; i++ {
		if checkNulls && nulls.Contains(uint32(i)) {
			continue
		}
		if s.members.contains(page, i) {
			out.Clear(i)
		}
	}
	return out
}

// FilterPageWithPrevious returns prev with the rows of page whose value is
// excluded cleared. Only rows set in prev are inspected.
func (s *MembershipSet) FilterPageWithPrevious(page column.MeasurePage, prev *bitmap.Row) *bitmap.Row {
	out := prev.Clone()
	prev.ForEach(func(row int) bool {
		if page.IsNull(row) {
			if s.hasNull {
				out.Clear(row)
			}
			return true
		}
		if s.Contains(page.Value(row)) {
			out.Clear(row)
		}
		return true
	})
	return out
}

// -----------------------------------------------------------------------------
// Typed member sets
// -----------------------------------------------------------------------------

type members interface {
	add(v any)
	contains(p column.MeasurePage, row int) bool
	len() int
}

func newMembers(t datatype.DataType) members {
	switch t {
	case datatype.Boolean:
		return newValueSet(func(p column.MeasurePage, row int) bool { return p.Boolean(row) })
	case datatype.Byte:
		return newValueSet(func(p column.MeasurePage, row int) int8 { return int8(p.Long(row)) })
	case datatype.Short:
		return newValueSet(func(p column.MeasurePage, row int) int16 { return int16(p.Long(row)) })
	case datatype.Int:
		return newValueSet(func(p column.MeasurePage, row int) int32 { return int32(p.Long(row)) })
	case datatype.Long:
		return newValueSet(func(p column.MeasurePage, row int) int64 { return p.Long(row) })
	case datatype.Float:
		return newFloatSet(func(p column.MeasurePage, row int) float32 { return float32(p.Double(row)) })
	case datatype.Double:
		return newFloatSet(func(p column.MeasurePage, row int) float64 { return p.Double(row) })
	case datatype.Decimal:
		// Decimal and string sets are keyed by the boxed value.
		return newValueSet(func(p column.MeasurePage, row int) any { return p.Decimal(row) })
	case datatype.String:
		return newValueSet(func(p column.MeasurePage, row int) any { return p.String(row) })
	}
	return nil
}

type valueSet[T comparable] struct {
	set map[T]struct{}
	at  func(p column.MeasurePage, row int) T
}

func newValueSet[T comparable](at func(p column.MeasurePage, row int) T) *valueSet[T] {
	return &valueSet[T]{set: make(map[T]struct{}), at: at}
}

func (s *valueSet[T]) add(v any) {
	s.set[v.(T)] = struct{}{}
}

func (s *valueSet[T]) contains(p column.MeasurePage, row int) bool {
	_, ok := s.set[s.at(p, row)]
	return ok
}

func (s *valueSet[T]) len() int { return len(s.set) }

// floatSet matches NaN against NaN, as the comparator does.
type floatSet[T float32 | float64] struct {
	set map[T]struct{}
	nan bool
	at  func(p column.MeasurePage, row int) T
}

func newFloatSet[T float32 | float64](at func(p column.MeasurePage, row int) T) *floatSet[T] {
	return &floatSet[T]{set: make(map[T]struct{}), at: at}
}

func (s *floatSet[T]) add(v any) {
	x := v.(T)
	if x != x {
		s.nan = true
		return
	}
	s.set[x] = struct{}{}
}

func (s *floatSet[T]) contains(p column.MeasurePage, row int) bool {
	x := s.at(p, row)
	if x != x {
		return s.nan
	}
	_, ok := s.set[x]
	return ok
}

func (s *floatSet[T]) len() int {
	if s.nan {
		return len(s.set) + 1
	}
	return len(s.set)
}

package datatype

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
)

// Comparator orders two values of one DataType. nil sorts before every
// non-null value and equals nil.
type Comparator func(a, b any) int

// ComparatorFor returns the comparator for values of type t.
func ComparatorFor(t DataType) (Comparator, error) {
	switch t {
	case Boolean:
		return nullSafe(compareBool), nil
	case Byte:
		return nullSafe(ordered[int8]), nil
	case Short:
		return nullSafe(ordered[int16]), nil
	case Int:
		return nullSafe(ordered[int32]), nil
	case Long:
		return nullSafe(ordered[int64]), nil
	case Float:
		return nullSafe(ordered[float32]), nil
	case Double:
		return nullSafe(ordered[float64]), nil
	case Decimal:
		return nullSafe(compareDecimal), nil
	case String:
		return nullSafe(compareString), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoComparator, t)
}

func nullSafe(fn func(a, b any) int) Comparator {
	return func(a, b any) int {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		case b == nil:
			return 1
		}
		return fn(a, b)
	}
}

func ordered[T cmp.Ordered](a, b any) int {
	return cmp.Compare(a.(T), b.(T))
}

func compareBool(a, b any) int {
	x, y := a.(bool), b.(bool)
	switch {
	case x == y:
		return 0
	case !x:
		return -1
	}
	return 1
}

func compareDecimal(a, b any) int {
	return a.(decimal128.Num).Cmp(b.(decimal128.Num))
}

func compareString(a, b any) int {
	return strings.Compare(a.(string), b.(string))
}

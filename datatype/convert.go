package datatype

import (
	"math"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
)

// MaxDecimalPrecision is the widest decimal precision a 128-bit value holds.
const MaxDecimalPrecision int32 = 38

// Convert coerces a filter literal into the canonical Go value of t.
// scale is only used for Decimal and is the column scale.
//
// nil converts to nil. Literals outside the domain of t fail with an error
// wrapping ErrNotRepresentable; literals of an unrelated kind fail with an
// error wrapping ErrIncompatible.
func Convert(t DataType, v any, scale int32) (any, error) {
	if v == nil {
		return nil, nil
	}

	var (
		out any
		err error
	)

	switch t {
	case Boolean:
		out, err = toBool(v)
	case Byte:
		out, err = toIntegral(v, math.MinInt8, math.MaxInt8, func(i int64) any { return int8(i) })
	case Short:
		out, err = toIntegral(v, math.MinInt16, math.MaxInt16, func(i int64) any { return int16(i) })
	case Int:
		out, err = toIntegral(v, math.MinInt32, math.MaxInt32, func(i int64) any { return int32(i) })
	case Long:
		out, err = toIntegral(v, math.MinInt64, math.MaxInt64, func(i int64) any { return i })
	case Float:
		out, err = toFloat32(v)
	case Double:
		out, err = toFloat64(v)
	case Decimal:
		out, err = toDecimal(v, scale)
	case String:
		out, err = toString(v)
	default:
		err = ErrIncompatible
	}

	if err != nil {
		return nil, &ConversionError{Type: t, Value: v, cause: err}
	}
	return out, nil
}

func toBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return nil, ErrIncompatible
		}
		return b, nil
	}
	return nil, ErrIncompatible
}

func toIntegral(v any, lo, hi int64, box func(int64) any) (any, error) {
	var i int64
	switch x := v.(type) {
	case int:
		i = int64(x)
	case int8:
		i = int64(x)
	case int16:
		i = int64(x)
	case int32:
		i = int64(x)
	case int64:
		i = x
	case uint8:
		i = int64(x)
	case uint16:
		i = int64(x)
	case uint32:
		i = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return nil, ErrNotRepresentable
		}
		i = int64(x)
	case float32:
		return toIntegral(float64(x), lo, hi, box)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return nil, ErrNotRepresentable
		}
		if x < float64(lo) || x > float64(hi) || x >= float64(math.MaxInt64) {
			return nil, ErrNotRepresentable
		}
		i = int64(x)
	case string:
		parsed, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
				return nil, ErrNotRepresentable
			}
			return nil, ErrIncompatible
		}
		i = parsed
	default:
		return nil, ErrIncompatible
	}
	if i < lo || i > hi {
		return nil, ErrNotRepresentable
	}
	return box(i), nil
}

func toFloat64(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
				return nil, ErrNotRepresentable
			}
			return nil, ErrIncompatible
		}
		return f, nil
	}
	return nil, ErrIncompatible
}

func toFloat32(v any) (any, error) {
	switch x := v.(type) {
	case float32:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(x, 32)
		if err != nil {
			if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
				return nil, ErrNotRepresentable
			}
			return nil, ErrIncompatible
		}
		return float32(f), nil
	}
	d, err := toFloat64(v)
	if err != nil {
		return nil, err
	}
	f := d.(float64)
	narrowed := float32(f)
	if math.IsInf(float64(narrowed), 0) && !math.IsInf(f, 0) {
		return nil, ErrNotRepresentable
	}
	return narrowed, nil
}

func toDecimal(v any, scale int32) (any, error) {
	switch x := v.(type) {
	case decimal128.Num:
		return x, nil
	case string:
		return parseDecimal(x, scale)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, ErrNotRepresentable
		}
		return parseDecimal(strconv.FormatFloat(x, 'g', -1, 64), scale)
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil, ErrNotRepresentable
		}
		return parseDecimal(strconv.FormatFloat(float64(x), 'g', -1, 32), scale)
	}
	i, err := toIntegral(v, math.MinInt64, math.MaxInt64, func(i int64) any { return i })
	if err != nil {
		return nil, err
	}
	return decimal128.FromI64(i.(int64)).IncreaseScaleBy(scale), nil
}

// parseDecimal parses s at its own scale and rescales it to scale. Literals
// with digits below the column scale are not representable.
func parseDecimal(s string, scale int32) (any, error) {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return nil, ErrNotRepresentable
		}
		return nil, ErrIncompatible
	}

	lit := max(literalScale(s), scale)
	if lit > MaxDecimalPrecision {
		return nil, ErrNotRepresentable
	}
	n, err := decimal128.FromString(s, MaxDecimalPrecision, lit)
	if err != nil {
		return nil, ErrNotRepresentable
	}
	if lit == scale {
		return n, nil
	}
	out, err := n.Rescale(lit, scale)
	if err != nil {
		return nil, ErrNotRepresentable
	}
	return out, nil
}

// literalScale returns the number of significant fractional digits of a
// decimal literal, accounting for an exponent.
func literalScale(s string) int32 {
	mant, exp := s, 0
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mant = s[:i]
		exp, _ = strconv.Atoi(s[i+1:])
	}
	frac := 0
	if i := strings.IndexByte(mant, '.'); i >= 0 {
		frac = len(strings.TrimRight(mant[i+1:], "0"))
	}
	return int32(frac - exp)
}

func toString(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	}
	return nil, ErrIncompatible
}

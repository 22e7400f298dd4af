package column

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/hupe1980/scanfilter/datatype"
)

// MeasurePage is one decoded page of a raw typed column.
//
// Integral types are read through Long, floating types through Double.
// Accessors that do not apply to the page type return the zero value, as do
// all accessors for null rows.
type MeasurePage interface {
	DataType() datatype.DataType
	RowCount() int
	// Scale is the decimal scale; zero for other types.
	Scale() int32
	// NullBits returns the null rows. The bitmap must not be modified.
	NullBits() *roaring.Bitmap
	IsNull(row int) bool
	Long(row int) int64
	Double(row int) float64
	Boolean(row int) bool
	Decimal(row int) decimal128.Num
	String(row int) string
	// Value returns the canonical Go value of row, nil when null.
	Value(row int) any
}

type pageBase struct {
	dataType datatype.DataType
	rows     int
	scale    int32
	nulls    *roaring.Bitmap
}

func (b *pageBase) DataType() datatype.DataType { return b.dataType }
func (b *pageBase) RowCount() int               { return b.rows }
func (b *pageBase) Scale() int32                { return b.scale }
func (b *pageBase) NullBits() *roaring.Bitmap   { return b.nulls }
func (b *pageBase) IsNull(row int) bool         { return b.nulls.Contains(uint32(row)) }
func (b *pageBase) Long(int) int64              { return 0 }
func (b *pageBase) Double(int) float64          { return 0 }
func (b *pageBase) Boolean(int) bool            { return false }
func (b *pageBase) Decimal(int) decimal128.Num  { return decimal128.Num{} }
func (b *pageBase) String(int) string           { return "" }

type numeric interface {
	int8 | int16 | int32 | int64 | float32 | float64
}

// numericPage exposes the value buffer of a primitive Arrow array.
type numericPage[T numeric] struct {
	pageBase
	arr    arrow.Array
	values []T
}

func (p *numericPage[T]) Long(row int) int64     { return int64(p.values[row]) }
func (p *numericPage[T]) Double(row int) float64 { return float64(p.values[row]) }

func (p *numericPage[T]) Value(row int) any {
	if p.IsNull(row) {
		return nil
	}
	return p.values[row]
}

type booleanPage struct {
	pageBase
	arr *array.Boolean
}

func (p *booleanPage) Boolean(row int) bool { return p.arr.Value(row) }

func (p *booleanPage) Value(row int) any {
	if p.IsNull(row) {
		return nil
	}
	return p.arr.Value(row)
}

type decimalPage struct {
	pageBase
	arr *array.Decimal128
}

func (p *decimalPage) Decimal(row int) decimal128.Num { return p.arr.Value(row) }

func (p *decimalPage) Value(row int) any {
	if p.IsNull(row) {
		return nil
	}
	return p.arr.Value(row)
}

type stringPage struct {
	pageBase
	arr *array.String
}

func (p *stringPage) String(row int) string { return p.arr.Value(row) }

func (p *stringPage) Value(row int) any {
	if p.IsNull(row) {
		return nil
	}
	return p.arr.Value(row)
}

type appender[T any] interface {
	Append(T)
	AppendNull()
	NewArray() arrow.Array
	Release()
}

func buildArray[T any](b appender[T], values []any) (arrow.Array, error) {
	defer b.Release()
	for i, v := range values {
		if v == nil {
			b.AppendNull()
			continue
		}
		x, ok := v.(T)
		if !ok {
			var want T
			return nil, fmt.Errorf("%w: row %d holds %T, want %T", ErrValueType, i, v, want)
		}
		b.Append(x)
	}
	return b.NewArray(), nil
}

// NewMeasurePage builds a page of type t from canonical Go values (see
// package datatype); nil marks a null row. precision and scale only apply to
// decimals.
func NewMeasurePage(t datatype.DataType, values []any, precision, scale int32) (MeasurePage, error) {
	mem := memory.DefaultAllocator

	var (
		arr arrow.Array
		err error
	)
	switch t {
	case datatype.Boolean:
		arr, err = buildArray[bool](array.NewBooleanBuilder(mem), values)
	case datatype.Byte:
		arr, err = buildArray[int8](array.NewInt8Builder(mem), values)
	case datatype.Short:
		arr, err = buildArray[int16](array.NewInt16Builder(mem), values)
	case datatype.Int:
		arr, err = buildArray[int32](array.NewInt32Builder(mem), values)
	case datatype.Long:
		arr, err = buildArray[int64](array.NewInt64Builder(mem), values)
	case datatype.Float:
		arr, err = buildArray[float32](array.NewFloat32Builder(mem), values)
	case datatype.Double:
		arr, err = buildArray[float64](array.NewFloat64Builder(mem), values)
	case datatype.Decimal:
		if precision <= 0 {
			precision = datatype.MaxDecimalPrecision
		}
		dt := &arrow.Decimal128Type{Precision: precision, Scale: scale}
		arr, err = buildArray[decimal128.Num](array.NewDecimal128Builder(mem, dt), values)
	case datatype.String:
		arr, err = buildArray[string](array.NewStringBuilder(mem), values)
	default:
		return nil, fmt.Errorf("%w: measure pages cannot hold %s", ErrValueType, t)
	}
	if err != nil {
		return nil, err
	}
	return wrapArray(t, scale, arr)
}

// FromArrow wraps an existing Arrow array as a measure page of type t.
func FromArrow(t datatype.DataType, scale int32, arr arrow.Array) (MeasurePage, error) {
	arr.Retain()
	return wrapArray(t, scale, arr)
}

func wrapArray(t datatype.DataType, scale int32, arr arrow.Array) (MeasurePage, error) {
	base := pageBase{dataType: t, rows: arr.Len(), nulls: roaring.New()}
	if t == datatype.Decimal {
		base.scale = scale
	}
	if arr.NullN() > 0 {
		for i := 0; i < arr.Len(); i++ {
			if arr.IsNull(i) {
				base.nulls.Add(uint32(i))
			}
		}
	}

	switch a := arr.(type) {
	case *array.Int8:
		if t == datatype.Byte {
			return &numericPage[int8]{pageBase: base, arr: a, values: a.Int8Values()}, nil
		}
	case *array.Int16:
		if t == datatype.Short {
			return &numericPage[int16]{pageBase: base, arr: a, values: a.Int16Values()}, nil
		}
	case *array.Int32:
		if t == datatype.Int {
			return &numericPage[int32]{pageBase: base, arr: a, values: a.Int32Values()}, nil
		}
	case *array.Int64:
		if t == datatype.Long {
			return &numericPage[int64]{pageBase: base, arr: a, values: a.Int64Values()}, nil
		}
	case *array.Float32:
		if t == datatype.Float {
			return &numericPage[float32]{pageBase: base, arr: a, values: a.Float32Values()}, nil
		}
	case *array.Float64:
		if t == datatype.Double {
			return &numericPage[float64]{pageBase: base, arr: a, values: a.Float64Values()}, nil
		}
	case *array.Boolean:
		if t == datatype.Boolean {
			return &booleanPage{pageBase: base, arr: a}, nil
		}
	case *array.Decimal128:
		if t == datatype.Decimal {
			return &decimalPage{pageBase: base, arr: a}, nil
		}
	case *array.String:
		if t == datatype.String {
			return &stringPage{pageBase: base, arr: a}, nil
		}
	}
	return nil, fmt.Errorf("%w: arrow %s cannot back a %s page", ErrValueType, arr.DataType(), t)
}

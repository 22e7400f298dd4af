// Package datatype defines the column value types understood by the scanner,
// conversion of filter literals to those types, and the comparator service
// used by row-wise evaluation.
//
// Values are carried as plain Go values of one fixed Go type per DataType:
//
//	Boolean  bool
//	Byte     int8
//	Short    int16
//	Int      int32
//	Long     int64
//	Float    float32
//	Double   float64
//	Decimal  decimal128.Num (unscaled, column scale applies)
//	String   string
//
// A nil value is SQL null.
package datatype

import "fmt"

// DataType identifies the physical type of a column.
type DataType uint8

const (
	Unknown DataType = iota
	Boolean
	Byte
	Short
	Int
	Long
	Float
	Double
	Decimal
	String
	Binary
)

var names = [...]string{
	Unknown: "unknown",
	Boolean: "boolean",
	Byte:    "byte",
	Short:   "short",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
	Decimal: "decimal",
	String:  "string",
	Binary:  "binary",
}

func (t DataType) String() string {
	if int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("datatype(%d)", uint8(t))
}

// IsIntegral reports whether values are read through the widened long accessor.
func (t DataType) IsIntegral() bool {
	switch t {
	case Byte, Short, Int, Long:
		return true
	}
	return false
}

// IsFloating reports whether values are read through the double accessor.
func (t DataType) IsFloating() bool {
	return t == Float || t == Double
}

// IsMeasure reports whether the type can be stored in a measure column.
func (t DataType) IsMeasure() bool {
	switch t {
	case Boolean, Byte, Short, Int, Long, Float, Double, Decimal, String:
		return true
	}
	return false
}

// Width returns the fixed encoded width of a value in bytes, or 0 for
// variable-length types.
func (t DataType) Width() int {
	switch t {
	case Boolean, Byte:
		return 1
	case Short:
		return 2
	case Int, Float:
		return 4
	case Long, Double:
		return 8
	case Decimal:
		return 16
	}
	return 0
}

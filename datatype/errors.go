package datatype

import (
	"errors"
	"fmt"
)

var (
	// ErrNotRepresentable is returned when a literal is well-formed but lies
	// outside the domain of the column type, so no stored value can equal it.
	ErrNotRepresentable = errors.New("value not representable in column type")

	// ErrIncompatible is returned when a literal cannot be interpreted as the
	// column type at all.
	ErrIncompatible = errors.New("value incompatible with column type")

	// ErrNoComparator is returned for types without a comparator.
	ErrNoComparator = errors.New("no comparator for data type")
)

// ConversionError describes a failed literal conversion.
type ConversionError struct {
	Type  DataType
	Value any
	cause error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %v (%T) to %s: %v", e.Value, e.Value, e.Type, e.cause)
}

func (e *ConversionError) Unwrap() error { return e.cause }

package filter

import (
	"errors"
	"fmt"

	"github.com/hupe1980/scanfilter/datatype"
)

var (
	// ErrFilterUnsupported is matched by FilterUnsupportedError.
	ErrFilterUnsupported = errors.New("filter unsupported")

	// ErrUnsupportedType is matched by UnsupportedTypeError.
	ErrUnsupportedType = errors.New("unsupported measure type")
)

// FilterUnsupportedError reports a filter this package cannot evaluate.
// Callers may fall back to row-wise evaluation.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type FilterUnsupportedError struct {
	Reason string
	cause  error
}

func (e *FilterUnsupportedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("filter unsupported: %s: %v", e.Reason, e.cause)
	}
	return "filter unsupported: " + e.Reason
}

func (e *FilterUnsupportedError) Unwrap() error { return e.cause }

func (e *FilterUnsupportedError) Is(target error) bool { return target == ErrFilterUnsupported }

// UnsupportedTypeError reports a measure type without a membership set, or a
// page whose type differs from the filtered column.
type UnsupportedTypeError struct {
	Type datatype.DataType
	// Want is the column type when a page type disagrees with it.
	Want datatype.DataType
}

func (e *UnsupportedTypeError) Error() string {
	if e.Want != datatype.Unknown {
		return fmt.Sprintf("unsupported measure type: page holds %s, column is %s", e.Type, e.Want)
	}
	return fmt.Sprintf("unsupported measure type: %s", e.Type)
}

func (e *UnsupportedTypeError) Is(target error) bool { return target == ErrUnsupportedType }

// ErrBitmapMismatch is returned when a previous page bitmap does not cover
// the rows of the page it is combined with.
var ErrBitmapMismatch = errors.New("previous bitmap does not match page")

package column

import "errors"

var (
	// ErrCorruptPage is returned when an encoded page is truncated or malformed.
	ErrCorruptPage = errors.New("corrupt column page")

	// ErrChecksumMismatch is returned when a page blob fails verification.
	ErrChecksumMismatch = errors.New("column page checksum mismatch")

	// ErrValueType is returned when a value does not match the page type.
	ErrValueType = errors.New("value does not match page type")

	// ErrPageIndex is returned for a page index outside the chunk.
	ErrPageIndex = errors.New("page index out of range")
)

package scanfilter

import (
	"errors"
	"fmt"

	"github.com/hupe1980/scanfilter/blocklet"
	"github.com/hupe1980/scanfilter/column"
	"github.com/hupe1980/scanfilter/filter"
	"github.com/hupe1980/scanfilter/resource"
)

var (
	// ErrFilterUnsupported is returned when a predicate cannot be bound to
	// a column.
	ErrFilterUnsupported = errors.New("filter unsupported")

	// ErrUnsupportedType is returned when a measure data type has no
	// membership implementation.
	ErrUnsupportedType = errors.New("unsupported data type")

	// ErrCorrupt is returned when stored blocklet data fails validation.
	ErrCorrupt = errors.New("corrupt blocklet")

	// ErrNoPredicates is returned by Scan when called without predicates.
	ErrNoPredicates = errors.New("no predicates")

	// ErrMemoryLimitExceeded is returned when a chunk does not fit the
	// configured memory limit.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
)

// ScanError reports the blocklet a scan failed on.
//
// The original underlying error can be accessed via errors.Unwrap.
type ScanError struct {
	Block int
	cause error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan blocklet %d: %v", e.Block, e.cause)
}

func (e *ScanError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, filter.ErrFilterUnsupported) {
		return fmt.Errorf("%w: %w", ErrFilterUnsupported, err)
	}
	if errors.Is(err, filter.ErrUnsupportedType) {
		return fmt.Errorf("%w: %w", ErrUnsupportedType, err)
	}

	if errors.Is(err, column.ErrChecksumMismatch) ||
		errors.Is(err, column.ErrCorruptPage) ||
		errors.Is(err, blocklet.ErrCorrupt) ||
		errors.Is(err, blocklet.ErrInvalidMagic) ||
		errors.Is(err, filter.ErrBitmapMismatch) {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	return err
}

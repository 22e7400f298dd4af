package resource

import (
	"errors"
	"fmt"
)

// ErrMemoryLimitExceeded is matched by LimitError.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// LimitError reports a single reservation larger than the whole budget.
type LimitError struct {
	Requested int64
	Limit     int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("memory limit exceeded: requested %d bytes, limit %d", e.Requested, e.Limit)
}

func (e *LimitError) Unwrap() error { return ErrMemoryLimitExceeded }

package blocklet

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/hupe1980/scanfilter/column"
)

// MemoryBlock is a DataBlock over chunks that are already in memory.
type MemoryBlock struct {
	pages int
	dims  []*column.DimensionRawChunk
	msrs  []*column.MeasureRawChunk
	reads atomic.Int64
}

var _ DataBlock = (*MemoryBlock)(nil)

// NewMemoryBlock creates a block of pages pages. Every chunk must have that
// many pages.
func NewMemoryBlock(pages int, dims []*column.DimensionRawChunk, msrs []*column.MeasureRawChunk) (*MemoryBlock, error) {
	for i, d := range dims {
		if d.PagesCount() != pages {
			return nil, fmt.Errorf("%w: dimension chunk %d has %d pages, want %d", ErrColumnMismatch, i, d.PagesCount(), pages)
		}
	}
	for i, m := range msrs {
		if m.PagesCount() != pages {
			return nil, fmt.Errorf("%w: measure chunk %d has %d pages, want %d", ErrColumnMismatch, i, m.PagesCount(), pages)
		}
	}
	return &MemoryBlock{pages: pages, dims: dims, msrs: msrs}, nil
}

// NumberOfPages returns the page count.
func (b *MemoryBlock) NumberOfPages() int { return b.pages }

// ReadDimensionChunk returns dimension chunk i.
func (b *MemoryBlock) ReadDimensionChunk(_ context.Context, i int) (*column.DimensionRawChunk, error) {
	if i < 0 || i >= len(b.dims) {
		return nil, fmt.Errorf("%w: dimension %d of %d", ErrChunkIndex, i, len(b.dims))
	}
	b.reads.Add(1)
	return b.dims[i], nil
}

// ReadMeasureChunk returns measure chunk i.
func (b *MemoryBlock) ReadMeasureChunk(_ context.Context, i int) (*column.MeasureRawChunk, error) {
	if i < 0 || i >= len(b.msrs) {
		return nil, fmt.Errorf("%w: measure %d of %d", ErrChunkIndex, i, len(b.msrs))
	}
	b.reads.Add(1)
	return b.msrs[i], nil
}

// Reads returns the number of chunk reads served.
func (b *MemoryBlock) Reads() int64 { return b.reads.Load() }

package blocklet

import (
	"context"

	"github.com/hupe1980/scanfilter/bitmap"
	"github.com/hupe1980/scanfilter/column"
	"github.com/hupe1980/scanfilter/resource"
)

// Chunks holds the column chunks read for one blocklet during a scan, and
// the bitmap group of the previous predicate of a conjunction.
//
// A chunk is read on first request and kept until Release. Chunks is not
// safe for concurrent use.
type Chunks struct {
	block    DataBlock
	rc       *resource.Controller
	dims     map[int]*column.DimensionRawChunk
	msrs     map[int]*column.MeasureRawChunk
	previous *bitmap.Group
	reserved int64
}

// NewChunks creates a holder over block. Encoded chunk bytes are accounted
// against rc until Release; rc may be nil.
func NewChunks(block DataBlock, rc *resource.Controller) *Chunks {
	return &Chunks{
		block: block,
		rc:    rc,
		dims:  make(map[int]*column.DimensionRawChunk),
		msrs:  make(map[int]*column.MeasureRawChunk),
	}
}

// Block returns the underlying data block.
func (c *Chunks) Block() DataBlock { return c.block }

// NumberOfPages returns the blocklet page count.
func (c *Chunks) NumberOfPages() int { return c.block.NumberOfPages() }

// DimensionChunk returns dimension chunk i, reading it if needed.
func (c *Chunks) DimensionChunk(ctx context.Context, i int) (*column.DimensionRawChunk, error) {
	if ch, ok := c.dims[i]; ok {
		return ch, nil
	}
	ch, err := c.block.ReadDimensionChunk(ctx, i)
	if err != nil {
		return nil, err
	}
	if err := c.reserve(ctx, ch.EncodedSize()); err != nil {
		return nil, err
	}
	c.dims[i] = ch
	return ch, nil
}

// MeasureChunk returns measure chunk i, reading it if needed.
func (c *Chunks) MeasureChunk(ctx context.Context, i int) (*column.MeasureRawChunk, error) {
	if ch, ok := c.msrs[i]; ok {
		return ch, nil
	}
	ch, err := c.block.ReadMeasureChunk(ctx, i)
	if err != nil {
		return nil, err
	}
	if err := c.reserve(ctx, ch.EncodedSize()); err != nil {
		return nil, err
	}
	c.msrs[i] = ch
	return ch, nil
}

// HasDimensionChunk reports whether dimension chunk i is loaded.
func (c *Chunks) HasDimensionChunk(i int) bool {
	_, ok := c.dims[i]
	return ok
}

// HasMeasureChunk reports whether measure chunk i is loaded.
func (c *Chunks) HasMeasureChunk(i int) bool {
	_, ok := c.msrs[i]
	return ok
}

// Previous returns the bitmap group of the previous predicate, or nil.
func (c *Chunks) Previous() *bitmap.Group { return c.previous }

// SetPrevious records g as the result of the previous predicate.
func (c *Chunks) SetPrevious(g *bitmap.Group) { c.previous = g }

// Reserved returns the encoded bytes accounted for loaded chunks.
func (c *Chunks) Reserved() int64 { return c.reserved }

// Release drops all chunks and returns their memory reservation.
func (c *Chunks) Release() {
	c.rc.ReleaseMemory(c.reserved)
	c.reserved = 0
	clear(c.dims)
	clear(c.msrs)
	c.previous = nil
}

func (c *Chunks) reserve(ctx context.Context, n int64) error {
	if err := c.rc.AcquireMemory(ctx, n); err != nil {
		return err
	}
	c.reserved += n
	return nil
}

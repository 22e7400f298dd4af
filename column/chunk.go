package column

import (
	"fmt"

	"github.com/hupe1980/scanfilter/dictionary"
	"github.com/hupe1980/scanfilter/internal/hash"
)

// EncodedPage is one compressed page blob as stored in a blocklet.
type EncodedPage struct {
	Data     []byte
	Rows     int
	Checksum uint32
}

func (e EncodedPage) decompress(c Compression) ([]byte, error) {
	if !hash.Verify(e.Data, e.Checksum) {
		return nil, ErrChecksumMismatch
	}
	return DecompressBlock(e.Data, c)
}

// EncodePage compresses an encoded page and records its checksum.
func EncodePage(raw []byte, rows int, c Compression) (EncodedPage, error) {
	block, err := CompressBlock(raw, c)
	if err != nil {
		return EncodedPage{}, err
	}
	return EncodedPage{Data: block, Rows: rows, Checksum: hash.CRC32C(block)}, nil
}

// DimensionRawChunk is the still-encoded data of one dimension column within
// a blocklet. Decoded pages are kept after the first decode.
//
// A DimensionRawChunk is not safe for concurrent use.
type DimensionRawChunk struct {
	pages       []EncodedPage
	compression Compression
	dict        *dictionary.Local
	decoded     []DimensionPage
}

// NewDimensionRawChunk wraps encoded pages. dict is the chunk's local
// dictionary, or nil if keys are stored in global form.
func NewDimensionRawChunk(pages []EncodedPage, c Compression, dict *dictionary.Local) *DimensionRawChunk {
	return &DimensionRawChunk{pages: pages, compression: c, dict: dict}
}

// DimensionChunkOf wraps already decoded pages.
func DimensionChunkOf(dict *dictionary.Local, pages ...DimensionPage) *DimensionRawChunk {
	c := &DimensionRawChunk{dict: dict, decoded: pages, pages: make([]EncodedPage, len(pages))}
	for i, p := range pages {
		c.pages[i].Rows = p.RowCount()
	}
	return c
}

// PagesCount returns the number of pages.
func (c *DimensionRawChunk) PagesCount() int { return len(c.pages) }

// RowCount returns the number of rows of page p.
func (c *DimensionRawChunk) RowCount(p int) int { return c.pages[p].Rows }

// LocalDictionary returns the chunk's local dictionary, or nil.
func (c *DimensionRawChunk) LocalDictionary() *dictionary.Local { return c.dict }

// EncodedSize returns the compressed size of all pages.
func (c *DimensionRawChunk) EncodedSize() int64 {
	var n int64
	for _, p := range c.pages {
		n += int64(len(p.Data))
	}
	return n
}

// DecodePage decodes page p.
func (c *DimensionRawChunk) DecodePage(p int) (DimensionPage, error) {
	if p < 0 || p >= len(c.pages) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageIndex, p, len(c.pages))
	}
	if c.decoded != nil && c.decoded[p] != nil {
		return c.decoded[p], nil
	}
	raw, err := c.pages[p].decompress(c.compression)
	if err != nil {
		return nil, fmt.Errorf("dimension page %d: %w", p, err)
	}
	page, err := DecodeDimensionPage(raw)
	if err != nil {
		return nil, fmt.Errorf("dimension page %d: %w", p, err)
	}
	if page.RowCount() != c.pages[p].Rows {
		return nil, fmt.Errorf("dimension page %d: %w: %d rows, footer says %d", p, ErrCorruptPage, page.RowCount(), c.pages[p].Rows)
	}
	if c.decoded == nil {
		c.decoded = make([]DimensionPage, len(c.pages))
	}
	c.decoded[p] = page
	return page, nil
}

// DecodeAllPages decodes every page in order.
func (c *DimensionRawChunk) DecodeAllPages() ([]DimensionPage, error) {
	for p := range c.pages {
		if _, err := c.DecodePage(p); err != nil {
			return nil, err
		}
	}
	return c.decoded, nil
}

// MeasureRawChunk is the still-encoded data of one measure column within a
// blocklet. Decoded pages are kept after the first decode.
//
// A MeasureRawChunk is not safe for concurrent use.
type MeasureRawChunk struct {
	pages       []EncodedPage
	compression Compression
	decoded     []MeasurePage
}

// NewMeasureRawChunk wraps encoded pages.
func NewMeasureRawChunk(pages []EncodedPage, c Compression) *MeasureRawChunk {
	return &MeasureRawChunk{pages: pages, compression: c}
}

// MeasureChunkOf wraps already decoded pages.
func MeasureChunkOf(pages ...MeasurePage) *MeasureRawChunk {
	c := &MeasureRawChunk{decoded: pages, pages: make([]EncodedPage, len(pages))}
	for i, p := range pages {
		c.pages[i].Rows = p.RowCount()
	}
	return c
}

// PagesCount returns the number of pages.
func (c *MeasureRawChunk) PagesCount() int { return len(c.pages) }

// RowCount returns the number of rows of page p.
func (c *MeasureRawChunk) RowCount(p int) int { return c.pages[p].Rows }

// EncodedSize returns the compressed size of all pages.
func (c *MeasureRawChunk) EncodedSize() int64 {
	var n int64
	for _, p := range c.pages {
		n += int64(len(p.Data))
	}
	return n
}

// DecodePage decodes page p.
func (c *MeasureRawChunk) DecodePage(p int) (MeasurePage, error) {
	if p < 0 || p >= len(c.pages) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageIndex, p, len(c.pages))
	}
	if c.decoded != nil && c.decoded[p] != nil {
		return c.decoded[p], nil
	}
	raw, err := c.pages[p].decompress(c.compression)
	if err != nil {
		return nil, fmt.Errorf("measure page %d: %w", p, err)
	}
	page, err := DecodeMeasurePage(raw)
	if err != nil {
		return nil, fmt.Errorf("measure page %d: %w", p, err)
	}
	if page.RowCount() != c.pages[p].Rows {
		return nil, fmt.Errorf("measure page %d: %w: %d rows, footer says %d", p, ErrCorruptPage, page.RowCount(), c.pages[p].Rows)
	}
	if c.decoded == nil {
		c.decoded = make([]MeasurePage, len(c.pages))
	}
	c.decoded[p] = page
	return page, nil
}

// DecodeAllPages decodes every page in order.
func (c *MeasureRawChunk) DecodeAllPages() ([]MeasurePage, error) {
	for p := range c.pages {
		if _, err := c.DecodePage(p); err != nil {
			return nil, err
		}
	}
	return c.decoded, nil
}

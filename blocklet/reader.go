package blocklet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hupe1980/scanfilter/blobstore"
	"github.com/hupe1980/scanfilter/codec"
	"github.com/hupe1980/scanfilter/column"
	"github.com/hupe1980/scanfilter/dictionary"
	"github.com/hupe1980/scanfilter/internal/hash"
	"github.com/hupe1980/scanfilter/resource"
)

// DataBlock gives access to the column chunks of one blocklet.
type DataBlock interface {
	// NumberOfPages returns the page count shared by all chunks.
	NumberOfPages() int
	// ReadDimensionChunk reads the dimension chunk at index i.
	ReadDimensionChunk(ctx context.Context, i int) (*column.DimensionRawChunk, error)
	// ReadMeasureChunk reads the measure chunk at index i.
	ReadMeasureChunk(ctx context.Context, i int) (*column.MeasureRawChunk, error)
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithResourceController limits concurrent reads and read throughput.
func WithResourceController(rc *resource.Controller) ReaderOption {
	return func(r *Reader) {
		r.rc = rc
	}
}

// WithLogger sets the logger for chunk reads.
func WithLogger(l *slog.Logger) ReaderOption {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// Reader reads a blocklet blob. It is safe for concurrent use.
//
// Chunks returned from a memory-mapped blob alias the mapping and must not be
// used after Close.
type Reader struct {
	name   string
	blob   blobstore.Blob
	data   []byte // mapped content, nil when reads go through the blob
	footer *Footer
	rc     *resource.Controller
	logger *slog.Logger
}

var _ DataBlock = (*Reader)(nil)

// Open opens the blocklet stored under name.
func Open(ctx context.Context, store blobstore.BlobStore, name string, opts ...ReaderOption) (*Reader, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open blocklet %s: %w", name, err)
	}
	r, err := OpenBlob(ctx, blob, append([]ReaderOption{withName(name)}, opts...)...)
	if err != nil {
		_ = blob.Close()
		return nil, fmt.Errorf("open blocklet %s: %w", name, err)
	}
	return r, nil
}

func withName(name string) ReaderOption {
	return func(r *Reader) {
		r.name = name
	}
}

// OpenBlob reads the trailer and footer of blob. The Reader takes ownership
// of blob on success.
func OpenBlob(ctx context.Context, blob blobstore.Blob, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{
		blob:   blob,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}

	if m, ok := blob.(blobstore.Mappable); ok {
		if data, err := m.Bytes(); err == nil {
			r.data = data
		}
	}

	size := blob.Size()
	if size < TrailerSize {
		return nil, fmt.Errorf("%w: blob is %d bytes", ErrCorrupt, size)
	}

	tb, err := r.readRange(ctx, size-TrailerSize, TrailerSize)
	if err != nil {
		return nil, fmt.Errorf("read trailer: %w", err)
	}
	t, err := decodeTrailer(tb)
	if err != nil {
		return nil, err
	}
	c, ok := codec.ByName(t.codec)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, t.codec)
	}

	footerOff := size - TrailerSize - int64(t.footerLen)
	if footerOff < 0 {
		return nil, fmt.Errorf("%w: footer length %d exceeds blob", ErrCorrupt, t.footerLen)
	}
	fb, err := r.readRange(ctx, footerOff, int64(t.footerLen))
	if err != nil {
		return nil, fmt.Errorf("read footer: %w", err)
	}
	if !hash.Verify(fb, t.footerCRC) {
		return nil, fmt.Errorf("%w: footer checksum mismatch", ErrCorrupt)
	}

	var f Footer
	if err := c.Unmarshal(fb, &f); err != nil {
		return nil, fmt.Errorf("%w: decode footer: %v", ErrCorrupt, err)
	}
	if err := f.validate(footerOff); err != nil {
		return nil, err
	}
	r.footer = &f
	return r, nil
}

// Name returns the blob name, or "" for readers created with OpenBlob.
func (r *Reader) Name() string { return r.name }

// Footer returns the decoded footer.
func (r *Reader) Footer() *Footer { return r.footer }

// NumberOfPages returns the page count shared by all chunks.
func (r *Reader) NumberOfPages() int { return len(r.footer.PageRows) }

// Close releases the blob.
func (r *Reader) Close() error { return r.blob.Close() }

// ReadDimensionChunk reads the pages and local dictionary of dimension chunk i.
func (r *Reader) ReadDimensionChunk(ctx context.Context, i int) (*column.DimensionRawChunk, error) {
	if i < 0 || i >= len(r.footer.Dimensions) {
		return nil, fmt.Errorf("%w: dimension %d of %d", ErrChunkIndex, i, len(r.footer.Dimensions))
	}
	meta := r.footer.Dimensions[i]

	pages, n, err := r.readPages(ctx, meta.Pages)
	if err != nil {
		return nil, fmt.Errorf("read dimension chunk %d: %w", i, err)
	}

	var dict *dictionary.Local
	if meta.Dictionary != nil {
		db, err := r.readRange(ctx, meta.Dictionary.Offset, meta.Dictionary.Length)
		if err != nil {
			return nil, fmt.Errorf("read dictionary of dimension chunk %d: %w", i, err)
		}
		if !hash.Verify(db, meta.Dictionary.Checksum) {
			return nil, fmt.Errorf("dictionary of dimension chunk %d: %w", i, column.ErrChecksumMismatch)
		}
		if dict, err = dictionary.UnmarshalLocal(db); err != nil {
			return nil, fmt.Errorf("dictionary of dimension chunk %d: %w", i, err)
		}
		n += meta.Dictionary.Length
	}

	r.logger.DebugContext(ctx, "read dimension chunk",
		slog.String("blocklet", r.name),
		slog.Int("chunk", i),
		slog.Int64("bytes", n),
		slog.Bool("local_dictionary", dict != nil),
	)
	return column.NewDimensionRawChunk(pages, r.footer.Compression, dict), nil
}

// ReadMeasureChunk reads the pages of measure chunk i.
func (r *Reader) ReadMeasureChunk(ctx context.Context, i int) (*column.MeasureRawChunk, error) {
	if i < 0 || i >= len(r.footer.Measures) {
		return nil, fmt.Errorf("%w: measure %d of %d", ErrChunkIndex, i, len(r.footer.Measures))
	}

	pages, n, err := r.readPages(ctx, r.footer.Measures[i].Pages)
	if err != nil {
		return nil, fmt.Errorf("read measure chunk %d: %w", i, err)
	}

	r.logger.DebugContext(ctx, "read measure chunk",
		slog.String("blocklet", r.name),
		slog.Int("chunk", i),
		slog.Int64("bytes", n),
	)
	return column.NewMeasureRawChunk(pages, r.footer.Compression), nil
}

// readPages fetches the pages of a chunk with a single read. The writer
// stores a chunk's pages back to back.
func (r *Reader) readPages(ctx context.Context, regions []Region) ([]column.EncodedPage, int64, error) {
	if len(regions) == 0 {
		return nil, 0, nil
	}
	start, end := regions[0].Offset, regions[0].End()
	for _, reg := range regions[1:] {
		start = min(start, reg.Offset)
		end = max(end, reg.End())
	}

	buf, err := r.readRange(ctx, start, end-start)
	if err != nil {
		return nil, 0, err
	}

	pages := make([]column.EncodedPage, len(regions))
	for p, reg := range regions {
		pages[p] = column.EncodedPage{
			Data:     buf[reg.Offset-start : reg.End()-start],
			Rows:     r.footer.PageRows[p],
			Checksum: reg.Checksum,
		}
	}
	return pages, end - start, nil
}

func (r *Reader) readRange(ctx context.Context, off, n int64) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if r.data != nil {
		if off < 0 || off+n > int64(len(r.data)) {
			return nil, fmt.Errorf("%w: range [%d,%d) outside blob", ErrCorrupt, off, off+n)
		}
		return r.data[off : off+n], nil
	}

	if err := r.rc.AcquireRead(ctx); err != nil {
		return nil, err
	}
	defer r.rc.ReleaseRead()

	if err := r.rc.AcquireIO(ctx, int(n)); err != nil {
		return nil, err
	}

	buf := make([]byte, n)
	if _, err := r.blob.ReadAt(ctx, buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}

package blocklet

import (
	"context"
	"fmt"

	"github.com/hupe1980/scanfilter/blobstore"
	"github.com/hupe1980/scanfilter/codec"
	"github.com/hupe1980/scanfilter/column"
	"github.com/hupe1980/scanfilter/datatype"
	"github.com/hupe1980/scanfilter/dictionary"
	"github.com/hupe1980/scanfilter/internal/hash"
	"github.com/hupe1980/scanfilter/schema"
)

// DefaultPageSize is the number of rows per page.
const DefaultPageSize = 32000

// Data holds the rows of one blocklet in column form.
type Data struct {
	// Dimensions holds one surrogate slice per segment dimension, in
	// segment order.
	Dimensions [][]uint32
	// Measures holds one value slice per segment measure, in segment order.
	// nil marks a null row; other values are converted to the column type.
	Measures [][]any
}

func (d Data) rowCount() (int, error) {
	n := -1
	check := func(l int) error {
		if n == -1 {
			n = l
		}
		if l != n {
			return fmt.Errorf("%w: column lengths %d and %d differ", ErrColumnMismatch, n, l)
		}
		return nil
	}
	for _, col := range d.Dimensions {
		if err := check(len(col)); err != nil {
			return 0, err
		}
	}
	for _, col := range d.Measures {
		if err := check(len(col)); err != nil {
			return 0, err
		}
	}
	return max(n, 0), nil
}

// WriterOption configures Encode and Write.
type WriterOption func(*writerOptions)

type writerOptions struct {
	pageSize    int
	compression column.Compression
	codec       codec.Codec
}

// WithPageSize sets the number of rows per page.
func WithPageSize(rows int) WriterOption {
	return func(o *writerOptions) {
		if rows > 0 {
			o.pageSize = rows
		}
	}
}

// WithCompression sets the page compression.
func WithCompression(c column.Compression) WriterOption {
	return func(o *writerOptions) {
		o.compression = c
	}
}

// WithCodec sets the footer codec.
func WithCodec(c codec.Codec) WriterOption {
	return func(o *writerOptions) {
		if c != nil {
			o.codec = c
		}
	}
}

// Write encodes data and stores it under name.
func Write(ctx context.Context, store blobstore.BlobStore, name string, seg *schema.Segment, data Data, opts ...WriterOption) (*Footer, error) {
	buf, footer, err := Encode(seg, data, opts...)
	if err != nil {
		return nil, err
	}
	if err := store.Put(ctx, name, buf); err != nil {
		return nil, fmt.Errorf("put blocklet %s: %w", name, err)
	}
	return footer, nil
}

// Encode serializes data as a blocklet blob laid out for seg.
func Encode(seg *schema.Segment, data Data, opts ...WriterOption) ([]byte, *Footer, error) {
	o := writerOptions{
		pageSize:    DefaultPageSize,
		compression: column.CompressionLZ4,
		codec:       codec.Default,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.codec.Name()) > codec.MaxNameLen {
		return nil, nil, fmt.Errorf("codec name %q longer than %d bytes", o.codec.Name(), codec.MaxNameLen)
	}

	dims, msrs := seg.Dimensions(), seg.Measures()
	if len(data.Dimensions) != len(dims) || len(data.Measures) != len(msrs) {
		return nil, nil, fmt.Errorf("%w: got %d dimensions and %d measures, want %d and %d",
			ErrColumnMismatch, len(data.Dimensions), len(data.Measures), len(dims), len(msrs))
	}
	rows, err := data.rowCount()
	if err != nil {
		return nil, nil, err
	}

	w := &writer{opts: o}
	w.footer = &Footer{
		Version:     Version,
		Compression: o.compression,
		Dimensions:  make([]ChunkMeta, len(dims)),
		Measures:    make([]ChunkMeta, len(msrs)),
	}
	for lo := 0; lo < rows; lo += o.pageSize {
		w.footer.PageRows = append(w.footer.PageRows, min(o.pageSize, rows-lo))
	}

	for i, col := range dims {
		meta, err := w.dimension(col, data.Dimensions[i])
		if err != nil {
			return nil, nil, fmt.Errorf("dimension %s: %w", col.Name, err)
		}
		w.footer.Dimensions[i] = meta
	}
	for i, col := range msrs {
		meta, err := w.measure(col, data.Measures[i])
		if err != nil {
			return nil, nil, fmt.Errorf("measure %s: %w", col.Name, err)
		}
		w.footer.Measures[i] = meta
	}

	footerBytes, err := o.codec.Marshal(w.footer)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal footer: %w", err)
	}
	w.buf = append(w.buf, footerBytes...)
	w.buf = append(w.buf, trailer{
		footerLen: uint32(len(footerBytes)),
		footerCRC: hash.CRC32C(footerBytes),
		codec:     o.codec.Name(),
	}.encode()...)

	return w.buf, w.footer, nil
}

type writer struct {
	opts   writerOptions
	footer *Footer
	buf    []byte
}

func (w *writer) appendRegion(data []byte, checksum uint32) Region {
	r := Region{Offset: int64(len(w.buf)), Length: int64(len(data)), Checksum: checksum}
	w.buf = append(w.buf, data...)
	return r
}

func (w *writer) appendPage(raw []byte, rows int) (Region, error) {
	page, err := column.EncodePage(raw, rows, w.opts.compression)
	if err != nil {
		return Region{}, err
	}
	return w.appendRegion(page.Data, page.Checksum), nil
}

func (w *writer) dimension(col schema.DimensionColumn, values []uint32) (ChunkMeta, error) {
	keys := make([][]byte, len(values))
	for i, v := range values {
		k, err := dictionary.EncodeSurrogate(v, col.KeySize)
		if err != nil {
			return ChunkMeta{}, fmt.Errorf("row %d: %w", i, err)
		}
		keys[i] = k
	}

	var dictBytes []byte
	if col.LocalDictionary && len(keys) > 0 {
		local, err := dictionary.NewLocal(keys)
		if err != nil {
			return ChunkMeta{}, err
		}
		for i, k := range keys {
			keys[i], _ = local.Encode(k)
		}
		if dictBytes, err = local.MarshalBinary(); err != nil {
			return ChunkMeta{}, err
		}
	}

	meta := ChunkMeta{Pages: make([]Region, len(w.footer.PageRows))}
	lo := 0
	for p, rows := range w.footer.PageRows {
		page, err := column.NewDimensionPage(keys[lo:lo+rows], col.InvertedIndex)
		if err != nil {
			return ChunkMeta{}, fmt.Errorf("page %d: %w", p, err)
		}
		if meta.Pages[p], err = w.appendPage(column.EncodeDimensionPage(page), rows); err != nil {
			return ChunkMeta{}, fmt.Errorf("page %d: %w", p, err)
		}
		lo += rows
	}

	if dictBytes != nil {
		r := w.appendRegion(dictBytes, hash.CRC32C(dictBytes))
		meta.Dictionary = &r
	}
	return meta, nil
}

func (w *writer) measure(col schema.MeasureColumn, values []any) (ChunkMeta, error) {
	converted := make([]any, len(values))
	for i, v := range values {
		c, err := datatype.Convert(col.DataType, v, col.Scale)
		if err != nil {
			return ChunkMeta{}, fmt.Errorf("row %d: %w", i, err)
		}
		converted[i] = c
	}

	meta := ChunkMeta{Pages: make([]Region, len(w.footer.PageRows))}
	lo := 0
	for p, rows := range w.footer.PageRows {
		page, err := column.NewMeasurePage(col.DataType, converted[lo:lo+rows], col.Precision, col.Scale)
		if err != nil {
			return ChunkMeta{}, fmt.Errorf("page %d: %w", p, err)
		}
		raw, err := column.EncodeMeasurePage(page, col.Precision)
		if err != nil {
			return ChunkMeta{}, fmt.Errorf("page %d: %w", p, err)
		}
		if meta.Pages[p], err = w.appendPage(raw, rows); err != nil {
			return ChunkMeta{}, fmt.Errorf("page %d: %w", p, err)
		}
		lo += rows
	}
	return meta, nil
}

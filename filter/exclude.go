package filter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/hupe1980/scanfilter/bitmap"
	"github.com/hupe1980/scanfilter/blocklet"
	"github.com/hupe1980/scanfilter/datatype"
	"github.com/hupe1980/scanfilter/dictionary"
	"github.com/hupe1980/scanfilter/internal/cache"
	"github.com/hupe1980/scanfilter/schema"
)

// Executor evaluates one predicate of a conjunction over blocklets.
type Executor interface {
	// Evaluate returns one bitmap per page of the blocklet.
	Evaluate(ctx context.Context, chunks *blocklet.Chunks, usePipeline bool) (*bitmap.Group, error)
	// PrunePages returns the pages that must be scanned.
	PrunePages(ctx context.Context, chunks *blocklet.Chunks) (*bitmap.Row, error)
	// IsScanRequired decides from block statistics whether a block must be scanned.
	IsScanRequired(blockMax, blockMin [][]byte, isMinMaxSet []bool) *bitmap.Row
	// EvaluateRow evaluates one materialized row.
	EvaluateRow(row Row, dimensionOrdinalMax int) bool
	// ReadColumnChunks loads the chunks the predicate needs.
	ReadColumnChunks(ctx context.Context, chunks *blocklet.Chunks) error
}

// Stats are cumulative evaluation counters of an executor.
type Stats struct {
	// Pages is the number of pages evaluated.
	Pages int64
	// PipelinedPages is the number of pages evaluated from a previous bitmap.
	PipelinedPages int64
	// RowsScanned is the number of row values tested.
	RowsScanned int64
}

var executorSeq atomic.Uint64

// ExcludeExecutor evaluates "column NOT IN values" for one dimension or
// measure column.
//
// An ExcludeExecutor is immutable after construction apart from its key cache
// and counters, and may be shared by goroutines scanning different blocklets.
type ExcludeExecutor struct {
	id         string
	opts       options
	chunkIndex int

	dimension *schema.DimensionColumn
	keys      *KeyExcluder
	keyCache  cache.BlockCache

	measure *schema.MeasureColumn
	set     *MembershipSet

	pages     atomic.Int64
	pipelined atomic.Int64
	scanned   atomic.Int64
}

var _ Executor = (*ExcludeExecutor)(nil)

// New creates an executor for info over the columns of seg.
func New(info ResolvedFilterInfo, seg *schema.Segment, opts ...Option) (*ExcludeExecutor, error) {
	switch {
	case info.Dimension != nil && info.Measure != nil:
		return nil, &FilterUnsupportedError{Reason: "filter binds both a dimension and a measure"}
	case info.Dimension != nil:
		return NewDimension(info.Dimension, seg, opts...)
	case info.Measure != nil:
		return NewMeasure(info.Measure, seg, opts...)
	}
	return nil, &FilterUnsupportedError{Reason: "filter binds no column"}
}

func newExecutor(opts []Option) *ExcludeExecutor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &ExcludeExecutor{
		id:   "exclude-" + strconv.FormatUint(executorSeq.Add(1), 10),
		opts: o,
	}
}

// NewDimension creates an executor excluding surrogate values of a dimension.
// Surrogates too wide for the column's key size cannot occur and are dropped.
func NewDimension(info *DimensionFilterInfo, seg *schema.Segment, opts ...Option) (*ExcludeExecutor, error) {
	col, err := seg.Dimension(info.Ordinal)
	if err != nil {
		return nil, &FilterUnsupportedError{Reason: "dimension", cause: err}
	}
	idx, err := seg.DimensionChunkIndex(info.Ordinal)
	if err != nil {
		return nil, &FilterUnsupportedError{Reason: "dimension", cause: err}
	}

	keys := make([][]byte, 0, len(info.Surrogates))
	for _, s := range info.Surrogates {
		k, err := dictionary.EncodeSurrogate(s, col.KeySize)
		if err != nil {
			if errors.Is(err, dictionary.ErrKeyOverflow) {
				continue
			}
			return nil, &FilterUnsupportedError{Reason: "dimension " + col.Name, cause: err}
		}
		keys = append(keys, k)
	}

	e := newExecutor(opts)
	e.chunkIndex = idx
	e.dimension = &col
	e.keys = NewExcludeKeys(keys, col.NaturallySorted())
	e.keyCache = e.opts.keyCache
	if e.keyCache == nil {
		e.keyCache = cache.NewLRUBlockCache(e.opts.keyCacheCapacity, nil)
	}
	return e, nil
}

// NewMeasure creates an executor excluding values of a measure.
func NewMeasure(info *MeasureFilterInfo, seg *schema.Segment, opts ...Option) (*ExcludeExecutor, error) {
	col, err := seg.Measure(info.Ordinal)
	if err != nil {
		return nil, &FilterUnsupportedError{Reason: "measure", cause: err}
	}
	idx, err := seg.MeasureChunkIndex(info.Ordinal)
	if err != nil {
		return nil, &FilterUnsupportedError{Reason: "measure", cause: err}
	}
	set, err := NewMembershipSet(col.DataType, info.Values, col.Scale)
	if err != nil {
		return nil, err
	}

	e := newExecutor(opts)
	e.chunkIndex = idx
	e.measure = &col
	e.set = set
	return e, nil
}

// ChunkIndex returns the chunk index of the filtered column.
func (e *ExcludeExecutor) ChunkIndex() int { return e.chunkIndex }

// IsDimension reports whether the executor filters a dimension column.
func (e *ExcludeExecutor) IsDimension() bool { return e.dimension != nil }

// Column returns the name of the filtered column.
func (e *ExcludeExecutor) Column() string {
	if e.dimension != nil {
		return e.dimension.Name
	}
	return e.measure.Name
}

// Stats returns the cumulative counters.
func (e *ExcludeExecutor) Stats() Stats {
	return Stats{
		Pages:          e.pages.Load(),
		PipelinedPages: e.pipelined.Load(),
		RowsScanned:    e.scanned.Load(),
	}
}

// Evaluate reads the filtered column chunk through chunks, decodes all pages
// and returns the rows of each page that are not excluded.
//
// With usePipeline and a previous group on chunks, every page result is
// restricted to the rows set in the previous page bitmap.
func (e *ExcludeExecutor) Evaluate(ctx context.Context, chunks *blocklet.Chunks, usePipeline bool) (*bitmap.Group, error) {
	if e.dimension != nil {
		return e.evaluateDimension(ctx, chunks, usePipeline)
	}
	return e.evaluateMeasure(ctx, chunks, usePipeline)
}

func (e *ExcludeExecutor) evaluateDimension(ctx context.Context, chunks *blocklet.Chunks, usePipeline bool) (*bitmap.Group, error) {
	chunk, err := chunks.DimensionChunk(ctx, e.chunkIndex)
	if err != nil {
		return nil, fmt.Errorf("read dimension chunk %d: %w", e.chunkIndex, err)
	}
	pages, err := chunk.DecodeAllPages()
	if err != nil {
		return nil, fmt.Errorf("decode dimension chunk %d: %w", e.chunkIndex, err)
	}
	keys := e.localKeys(ctx, chunk.LocalDictionary())

	group := bitmap.NewGroup(len(pages))
	for p, page := range pages {
		prev, err := previousPage(chunks, usePipeline, p, page.RowCount())
		if err != nil {
			return nil, err
		}

		var out *bitmap.Row
		if prev != nil && usePrevious(prev, keys.Len(), e.opts.pipelineRatio) {
			e.pipelined.Add(1)
			e.scanned.Add(int64(prev.Cardinality()))
			out = keys.FilterPageWithPrevious(page, prev)
		} else {
			e.scanned.Add(int64(page.RowCount()))
			out = keys.FilterPage(page)
			if prev != nil {
				out.And(prev)
			}
		}
		e.pages.Add(1)
		group.SetPage(p, out)
	}
	return group, nil
}

func (e *ExcludeExecutor) evaluateMeasure(ctx context.Context, chunks *blocklet.Chunks, usePipeline bool) (*bitmap.Group, error) {
	chunk, err := chunks.MeasureChunk(ctx, e.chunkIndex)
	if err != nil {
		return nil, fmt.Errorf("read measure chunk %d: %w", e.chunkIndex, err)
	}
	pages, err := chunk.DecodeAllPages()
	if err != nil {
		return nil, fmt.Errorf("decode measure chunk %d: %w", e.chunkIndex, err)
	}

	group := bitmap.NewGroup(len(pages))
	for p, page := range pages {
		if page.DataType() != e.set.DataType() {
			return nil, &UnsupportedTypeError{Type: page.DataType(), Want: e.set.DataType()}
		}
		prev, err := previousPage(chunks, usePipeline, p, page.RowCount())
		if err != nil {
			return nil, err
		}

		var out *bitmap.Row
		if prev != nil && usePrevious(prev, e.set.Len(), e.opts.pipelineRatio) {
			e.pipelined.Add(1)
			e.scanned.Add(int64(prev.Cardinality()))
			out = e.set.FilterPageWithPrevious(page, prev)
		} else {
			e.scanned.Add(int64(page.RowCount()))
			out = e.set.FilterPage(page)
			if prev != nil {
				out.And(prev)
			}
		}
		e.pages.Add(1)
		group.SetPage(p, out)
	}
	return group, nil
}

// PrunePages marks every page for scanning. Exclusion cannot be decided
// from page statistics.
func (e *ExcludeExecutor) PrunePages(_ context.Context, chunks *blocklet.Chunks) (*bitmap.Row, error) {
	return bitmap.NewFullRow(chunks.NumberOfPages()), nil
}

// IsScanRequired always reports that the block must be scanned.
func (e *ExcludeExecutor) IsScanRequired(_, _ [][]byte, _ []bool) *bitmap.Row {
	return bitmap.NewFullRow(1)
}

// EvaluateRow reports whether row survives the exclusion. Dimension values
// are compared as global keys. Measure values are read at the measure
// ordinal plus dimensionOrdinalMax and compared null-aware.
func (e *ExcludeExecutor) EvaluateRow(row Row, dimensionOrdinalMax int) bool {
	if e.dimension != nil {
		key, ok := row.Value(e.dimension.Ordinal).([]byte)
		if !ok {
			return true
		}
		return !containsKey(e.keys.Keys(), key)
	}

	v, err := datatype.Convert(e.measure.DataType, row.Value(e.measure.Ordinal+dimensionOrdinalMax), e.measure.Scale)
	if err != nil {
		return true
	}
	return !e.set.Contains(v)
}

// ReadColumnChunks loads the filtered column chunk into chunks.
func (e *ExcludeExecutor) ReadColumnChunks(ctx context.Context, chunks *blocklet.Chunks) error {
	var err error
	if e.dimension != nil {
		_, err = chunks.DimensionChunk(ctx, e.chunkIndex)
	} else {
		_, err = chunks.MeasureChunk(ctx, e.chunkIndex)
	}
	if err != nil {
		return fmt.Errorf("read chunk %d: %w", e.chunkIndex, err)
	}
	return nil
}

// previousPage returns the previous bitmap of page p when pipelining.
func previousPage(chunks *blocklet.Chunks, usePipeline bool, p, rows int) (*bitmap.Row, error) {
	if !usePipeline {
		return nil, nil
	}
	prev := chunks.Previous().Page(p)
	if prev == nil {
		return nil, nil
	}
	if prev.Len() != rows {
		return nil, fmt.Errorf("%w: page %d has %d rows, bitmap covers %d", ErrBitmapMismatch, p, rows, prev.Len())
	}
	return prev, nil
}

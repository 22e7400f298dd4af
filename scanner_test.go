package scanfilter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"testing"

	"github.com/hupe1980/scanfilter/bitmap"
	"github.com/hupe1980/scanfilter/blobstore"
	"github.com/hupe1980/scanfilter/blocklet"
	"github.com/hupe1980/scanfilter/column"
	"github.com/hupe1980/scanfilter/datatype"
	"github.com/hupe1980/scanfilter/filter"
	"github.com/hupe1980/scanfilter/resource"
	"github.com/hupe1980/scanfilter/schema"
	"github.com/hupe1980/scanfilter/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSegment(t *testing.T) *schema.Segment {
	t.Helper()
	seg, err := schema.NewSegment(
		[]schema.DimensionColumn{
			{Name: "city", Ordinal: 0, KeySize: 2, InvertedIndex: true, SortColumn: true},
			{Name: "device", Ordinal: 1, KeySize: 2, InvertedIndex: true, LocalDictionary: true},
		},
		[]schema.MeasureColumn{
			{Name: "clicks", Ordinal: 0, DataType: datatype.Long},
		},
	)
	require.NoError(t, err)
	return seg
}

type testBlocks struct {
	seg    *schema.Segment
	data   []blocklet.Data
	blocks []blocklet.DataBlock
}

func newTestBlocks(t *testing.T, n, rows int) *testBlocks {
	t.Helper()
	ctx := context.Background()
	seg := testSegment(t)
	store := blobstore.NewMemoryStore()
	rng := testutil.NewRNG(7)

	tb := &testBlocks{seg: seg}
	for i := range n {
		data := blocklet.Data{
			Dimensions: [][]uint32{
				rng.SortedSurrogates(rows, 30),
				rng.Surrogates(rows, 200),
			},
			Measures: [][]any{rng.NullableLongs(rows, 10, 0.2)},
		}
		name := fmt.Sprintf("part-%04d", i)
		_, err := blocklet.Write(ctx, store, name, seg, data, blocklet.WithPageSize(64))
		require.NoError(t, err)
		r, err := blocklet.Open(ctx, store, name)
		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })

		tb.data = append(tb.data, data)
		tb.blocks = append(tb.blocks, r)
	}
	return tb
}

// expected returns the surviving global row indices of block b.
func (tb *testBlocks) expected(b int, cities, devices []uint32, clicks []any) []int {
	d := tb.data[b]
	out := []int{}
	for i := range d.Dimensions[0] {
		if slices.Contains(cities, d.Dimensions[0][i]) || slices.Contains(devices, d.Dimensions[1][i]) {
			continue
		}
		if v := d.Measures[0][i]; slices.ContainsFunc(clicks, func(x any) bool {
			if x == nil {
				return v == nil
			}
			return v != nil && v.(int64) == int64(x.(int))
		}) {
			continue
		}
		out = append(out, i)
	}
	return out
}

func groupIndices(g *bitmap.Group) []int {
	out := []int{}
	offset := 0
	for p := 0; p < g.Len(); p++ {
		r := g.Page(p)
		for _, i := range r.Indices() {
			out = append(out, offset+i)
		}
		offset += r.Len()
	}
	return out
}

func TestScanner_Conjunction(t *testing.T) {
	ctx := context.Background()
	tb := newTestBlocks(t, 4, 500)

	cities := []uint32{1, 2, 3, 10}
	devices := testutil.Sample(testutil.NewRNG(9), tb.data[0].Dimensions[1], 20)
	clicks := []any{nil, 3}

	for _, pipeline := range []bool{true, false} {
		for _, workers := range []int{1, 3} {
			t.Run(fmt.Sprintf("pipeline=%v/workers=%d", pipeline, workers), func(t *testing.T) {
				s := New(WithPipeline(pipeline), WithWorkers(workers))
				defer s.Close()

				city, err := s.NewExclude(filter.ResolvedFilterInfo{
					Dimension: &filter.DimensionFilterInfo{Ordinal: 0, Surrogates: cities},
				}, tb.seg)
				require.NoError(t, err)
				device, err := s.NewExclude(filter.ResolvedFilterInfo{
					Dimension: &filter.DimensionFilterInfo{Ordinal: 1, Surrogates: devices},
				}, tb.seg)
				require.NoError(t, err)
				click, err := s.NewExclude(filter.ResolvedFilterInfo{
					Measure: &filter.MeasureFilterInfo{Ordinal: 0, Values: clicks},
				}, tb.seg)
				require.NoError(t, err)

				groups, err := s.Scan(ctx, tb.blocks, city, device, click)
				require.NoError(t, err)
				require.Len(t, groups, len(tb.blocks))

				for b, g := range groups {
					require.NotNil(t, g)
					assert.Equal(t, tb.blocks[b].NumberOfPages(), g.Len())
					assert.Equal(t, tb.expected(b, cities, devices, clicks), groupIndices(g), "block %d", b)
				}
			})
		}
	}
}

func TestScanner_PredicateOrder(t *testing.T) {
	ctx := context.Background()
	tb := newTestBlocks(t, 2, 300)
	s := New()
	defer s.Close()

	a, err := s.NewExclude(filter.ResolvedFilterInfo{Dimension: &filter.DimensionFilterInfo{Ordinal: 1, Surrogates: []uint32{5, 6, 7}}}, tb.seg)
	require.NoError(t, err)
	b, err := s.NewExclude(filter.ResolvedFilterInfo{Measure: &filter.MeasureFilterInfo{Ordinal: 0, Values: []any{1, 2}}}, tb.seg)
	require.NoError(t, err)

	ab, err := s.Scan(ctx, tb.blocks, a, b)
	require.NoError(t, err)
	ba, err := s.Scan(ctx, tb.blocks, b, a)
	require.NoError(t, err)

	for i := range ab {
		assert.True(t, ab[i].Equal(ba[i]))
	}
}

type skipExecutor struct {
	filter.Executor
}

func (skipExecutor) IsScanRequired(_, _ [][]byte, _ []bool) *bitmap.Row {
	return bitmap.NewRow(1)
}

type prunedExecutor struct {
	*filter.ExcludeExecutor
	keep []int
}

func (e prunedExecutor) PrunePages(_ context.Context, chunks *blocklet.Chunks) (*bitmap.Row, error) {
	return bitmap.FromIndices(chunks.NumberOfPages(), e.keep...), nil
}

// sparseExecutor leaves the slots of the given pages unset.
type sparseExecutor struct {
	prunedExecutor
	unset []int
}

func (e sparseExecutor) Evaluate(ctx context.Context, chunks *blocklet.Chunks, usePipeline bool) (*bitmap.Group, error) {
	g, err := e.ExcludeExecutor.Evaluate(ctx, chunks, usePipeline)
	if err != nil {
		return nil, err
	}
	for _, p := range e.unset {
		g.SetPage(p, nil)
	}
	return g, nil
}

func TestScanner_Pruning(t *testing.T) {
	ctx := context.Background()
	tb := newTestBlocks(t, 1, 200)
	mc := &BasicMetricsCollector{}
	s := New(WithMetricsCollector(mc))
	defer s.Close()

	e, err := s.NewExclude(filter.ResolvedFilterInfo{Dimension: &filter.DimensionFilterInfo{Ordinal: 0, Surrogates: []uint32{1}}}, tb.seg)
	require.NoError(t, err)

	t.Run("blocklet skipped", func(t *testing.T) {
		groups, err := s.Scan(ctx, tb.blocks, e, skipExecutor{Executor: e})
		require.NoError(t, err)
		assert.Equal(t, []*bitmap.Group{nil}, groups)
		assert.Equal(t, int64(1), mc.GetStats().ScanSkipped)
	})

	t.Run("pages pruned", func(t *testing.T) {
		groups, err := s.Scan(ctx, tb.blocks, prunedExecutor{ExcludeExecutor: e, keep: []int{1}})
		require.NoError(t, err)
		g := groups[0]
		require.Equal(t, 4, g.Len())
		for p := 0; p < g.Len(); p++ {
			if p == 1 {
				assert.False(t, g.Page(p).IsEmpty())
			} else {
				assert.True(t, g.Page(p).IsEmpty())
			}
		}
	})

	t.Run("pruned page without bitmap", func(t *testing.T) {
		tests := []struct {
			name  string
			unset []int
		}{
			{"pruned slot unset", []int{0}},
			{"every pruned slot unset", []int{0, 2, 3}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ex := sparseExecutor{prunedExecutor: prunedExecutor{ExcludeExecutor: e, keep: []int{1}}, unset: tt.unset}
				var (
					groups  []*bitmap.Group
					scanErr error
				)
				require.NotPanics(t, func() {
					groups, scanErr = s.Scan(ctx, tb.blocks, ex)
				})
				require.NoError(t, scanErr)
				g := groups[0]
				require.Equal(t, 4, g.Len())
				assert.False(t, g.Page(1).IsEmpty())
				for _, p := range tt.unset {
					assert.Nil(t, g.Page(p))
				}
			})
		}
	})

	t.Run("all pages pruned", func(t *testing.T) {
		groups, err := s.Scan(ctx, tb.blocks, prunedExecutor{ExcludeExecutor: e})
		require.NoError(t, err)
		assert.Nil(t, groups[0])
	})
}

func TestScanner_Errors(t *testing.T) {
	ctx := context.Background()
	tb := newTestBlocks(t, 2, 100)

	t.Run("no predicates", func(t *testing.T) {
		s := New()
		_, err := s.Scan(ctx, tb.blocks)
		assert.ErrorIs(t, err, ErrNoPredicates)
	})

	t.Run("unsupported filter", func(t *testing.T) {
		s := New()
		_, err := s.NewExclude(filter.ResolvedFilterInfo{}, tb.seg)
		assert.ErrorIs(t, err, ErrFilterUnsupported)
		assert.ErrorIs(t, err, filter.ErrFilterUnsupported)

		_, err = s.NewExclude(filter.ResolvedFilterInfo{Measure: &filter.MeasureFilterInfo{Ordinal: 0, Values: []any{"x"}}}, tb.seg)
		assert.ErrorIs(t, err, ErrFilterUnsupported)
	})

	t.Run("unsupported type", func(t *testing.T) {
		seg, err := schema.NewSegment(nil, []schema.MeasureColumn{{Name: "raw", Ordinal: 0, DataType: datatype.Binary}})
		require.NoError(t, err)
		_, err = New().NewExclude(filter.ResolvedFilterInfo{Measure: &filter.MeasureFilterInfo{}}, seg)
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("corrupt blocklet", func(t *testing.T) {
		buf, _, err := blocklet.Encode(tb.seg, tb.data[0], blocklet.WithCompression(column.CompressionNone))
		require.NoError(t, err)
		buf[10] ^= 0xFF
		store := blobstore.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "bad", buf))
		bad, err := blocklet.Open(ctx, store, "bad")
		require.NoError(t, err)
		defer bad.Close()

		mc := &BasicMetricsCollector{}
		s := New(WithMetricsCollector(mc))
		e, err := s.NewExclude(filter.ResolvedFilterInfo{Dimension: &filter.DimensionFilterInfo{Ordinal: 0, Surrogates: []uint32{1}}}, tb.seg)
		require.NoError(t, err)

		groups, err := s.Scan(ctx, []blocklet.DataBlock{tb.blocks[0], bad}, e)
		assert.Nil(t, groups)
		assert.ErrorIs(t, err, ErrCorrupt)
		assert.ErrorIs(t, err, column.ErrChecksumMismatch)

		var se *ScanError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 1, se.Block)

		stats := mc.GetStats()
		assert.Equal(t, int64(1), stats.ScanErrors)
		assert.Equal(t, int64(1), stats.EvaluateErrors)
	})

	t.Run("memory limit", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 16})
		s := New(WithResourceController(rc))
		e, err := s.NewExclude(filter.ResolvedFilterInfo{Dimension: &filter.DimensionFilterInfo{Ordinal: 1, Surrogates: []uint32{1}}}, tb.seg)
		require.NoError(t, err)

		_, err = s.Scan(ctx, tb.blocks, e)
		assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
		assert.Zero(t, rc.MemoryUsage())
	})

	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
		require.NoError(t, rc.AcquireMemory(ctx, 1<<30))
		defer rc.ReleaseMemory(1 << 30)

		s := New(WithResourceController(rc))
		e, err := s.NewExclude(filter.ResolvedFilterInfo{Dimension: &filter.DimensionFilterInfo{Ordinal: 0, Surrogates: []uint32{1}}}, tb.seg)
		require.NoError(t, err)
		_, err = s.Scan(cctx, tb.blocks, e)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestScanner_ReleasesMemory(t *testing.T) {
	ctx := context.Background()
	tb := newTestBlocks(t, 3, 400)
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})
	s := New(WithResourceController(rc), WithWorkers(2))
	defer s.Close()

	e, err := s.NewExclude(filter.ResolvedFilterInfo{Measure: &filter.MeasureFilterInfo{Ordinal: 0, Values: []any{nil}}}, tb.seg)
	require.NoError(t, err)
	_, err = s.Scan(ctx, tb.blocks, e)
	require.NoError(t, err)
	assert.Zero(t, rc.MemoryUsage())
}

func TestScanner_Observability(t *testing.T) {
	ctx := context.Background()
	tb := newTestBlocks(t, 2, 100)

	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mc := &BasicMetricsCollector{}
	s := New(WithLogger(logger), WithMetricsCollector(mc))
	defer s.Close()

	e, err := s.NewExclude(filter.ResolvedFilterInfo{Dimension: &filter.DimensionFilterInfo{Ordinal: 1, Surrogates: []uint32{3}}}, tb.seg)
	require.NoError(t, err)
	groups, err := s.Scan(ctx, tb.blocks, e)
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.ScanCount)
	assert.Equal(t, int64(2), stats.ScanBlocks)
	assert.Equal(t, int64(2), stats.EvaluateCount)
	assert.Equal(t, int64(groups[0].Cardinality()+groups[1].Cardinality()), stats.EvaluateRows)
	assert.Zero(t, stats.EvaluateErrors)

	out := buf.String()
	assert.Contains(t, out, `"msg":"scan completed"`)
	assert.Contains(t, out, `"msg":"evaluate completed"`)
	assert.Contains(t, out, `"blocklet":"part-0000"`)
	assert.Contains(t, out, `"column":"device"`)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	boom := errors.New("boom")
	assert.Equal(t, boom, translateError(boom))

	err := translateError(&filter.UnsupportedTypeError{Type: datatype.Binary})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	err = translateError(fmt.Errorf("decode: %w", column.ErrCorruptPage))
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.ErrorIs(t, err, column.ErrCorruptPage)

	err = translateError(fmt.Errorf("page 0: %w", filter.ErrBitmapMismatch))
	assert.ErrorIs(t, err, ErrCorrupt)
}

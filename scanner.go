package scanfilter

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/scanfilter/bitmap"
	"github.com/hupe1980/scanfilter/blocklet"
	"github.com/hupe1980/scanfilter/filter"
	"github.com/hupe1980/scanfilter/internal/cache"
	"github.com/hupe1980/scanfilter/schema"
)

// Scanner evaluates conjunctions of predicates over blocklets.
//
// A Scanner is safe for concurrent use.
type Scanner struct {
	opts     options
	keyCache *cache.ShardedLRUBlockCache
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Scanner{
		opts:     o,
		keyCache: cache.NewShardedLRUBlockCache(o.keyCacheCapacity, nil),
	}
}

// NewExclude creates an exclusion predicate over seg that shares the
// scanner's key cache and pipelining threshold.
func (s *Scanner) NewExclude(info filter.ResolvedFilterInfo, seg *schema.Segment) (*filter.ExcludeExecutor, error) {
	e, err := filter.New(info, seg,
		filter.WithPipelineRatio(s.opts.pipelineRatio),
		filter.WithKeyCache(s.keyCache),
	)
	if err != nil {
		return nil, translateError(err)
	}
	return e, nil
}

// Scan evaluates the conjunction of preds over every blocklet and returns
// one group per blocklet, in order. A nil group marks a blocklet that
// needed no scan because no row can survive.
//
// Blocklets are scanned concurrently. The first failure cancels the scan
// and no partial results are returned.
func (s *Scanner) Scan(ctx context.Context, blocks []blocklet.DataBlock, preds ...filter.Executor) ([]*bitmap.Group, error) {
	start := time.Now()
	if len(preds) == 0 {
		s.opts.metricsCollector.RecordScan(len(blocks), 0, time.Since(start), ErrNoPredicates)
		return nil, ErrNoPredicates
	}

	results := make([]*bitmap.Group, len(blocks))
	var skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.workers)
	for i, block := range blocks {
		g.Go(func() error {
			res, err := s.scanBlock(gctx, i, block, preds)
			if err != nil {
				return &ScanError{Block: i, cause: translateError(err)}
			}
			if res == nil {
				skipped.Add(1)
			}
			results[i] = res
			return nil
		})
	}
	err := g.Wait()

	s.opts.metricsCollector.RecordScan(len(blocks), int(skipped.Load()), time.Since(start), err)
	s.opts.logger.LogScan(ctx, len(blocks), int(skipped.Load()), len(preds), err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Scanner) scanBlock(ctx context.Context, i int, block blocklet.DataBlock, preds []filter.Executor) (*bitmap.Group, error) {
	log := s.opts.logger.WithBlocklet(blockName(i, block))

	for _, p := range preds {
		if p.IsScanRequired(nil, nil, nil).IsEmpty() {
			log.DebugContext(ctx, "blocklet skipped", "column", columnName(p))
			return nil, nil
		}
	}

	chunks := blocklet.NewChunks(block, s.opts.rc)
	defer chunks.Release()

	pages := bitmap.NewFullRow(chunks.NumberOfPages())
	for _, p := range preds {
		r, err := p.PrunePages(ctx, chunks)
		if err != nil {
			return nil, err
		}
		pages.And(r)
	}
	if pages.Len() > 0 && pages.IsEmpty() {
		log.DebugContext(ctx, "all pages pruned")
		return nil, nil
	}

	for _, p := range preds {
		if err := p.ReadColumnChunks(ctx, chunks); err != nil {
			return nil, err
		}
	}

	var acc *bitmap.Group
	for _, p := range preds {
		col := columnName(p)
		start := time.Now()
		g, err := p.Evaluate(ctx, chunks, s.opts.pipeline)
		if err == nil && acc != nil && !s.opts.pipeline {
			g.And(acc)
		}

		rows := 0
		if err == nil {
			rows = g.Cardinality()
		}
		s.opts.metricsCollector.RecordEvaluate(col, rows, time.Since(start), err)
		log.WithPredicate(col).LogEvaluate(ctx, rows, err)
		if err != nil {
			return nil, err
		}

		acc = g
		chunks.SetPrevious(acc)
		if acc.IsEmpty() {
			break
		}
	}

	for p := 0; p < acc.Len(); p++ {
		if r := acc.Page(p); r != nil && !pages.Test(p) {
			acc.SetPage(p, bitmap.NewRow(r.Len()))
		}
	}
	return acc, nil
}

// Close releases the key cache.
func (s *Scanner) Close() error {
	return s.keyCache.Close()
}

func blockName(i int, block blocklet.DataBlock) string {
	if n, ok := block.(interface{ Name() string }); ok {
		return n.Name()
	}
	return strconv.Itoa(i)
}

func columnName(p filter.Executor) string {
	if c, ok := p.(interface{ Column() string }); ok {
		return c.Column()
	}
	return ""
}

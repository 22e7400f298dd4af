// Package scanfilter evaluates exclusion predicates ("column NOT IN values")
// over columnar blocklets and returns, for every page of every blocklet, the
// bitmap of rows that survive.
//
// # Quick Start
//
//	ctx := context.Background()
//	store := blobstore.NewMemoryStore()
//	_, _ = blocklet.Write(ctx, store, "part-0", seg, data)
//	block, _ := blocklet.Open(ctx, store, "part-0")
//
//	s := scanfilter.New(scanfilter.WithWorkers(4))
//	defer s.Close()
//
//	city, _ := s.NewExclude(filter.ResolvedFilterInfo{
//	    Dimension: &filter.DimensionFilterInfo{Ordinal: 0, Surrogates: []uint32{20, 40}},
//	}, seg)
//	clicks, _ := s.NewExclude(filter.ResolvedFilterInfo{
//	    Measure: &filter.MeasureFilterInfo{Ordinal: 0, Values: []any{nil}},
//	}, seg)
//
//	groups, _ := s.Scan(ctx, []blocklet.DataBlock{block}, city, clicks)
//
// # Conjunctions
//
// Predicates passed to Scan are combined with AND. Each stage sees the result
// of the previous one. With pipelining enabled (the default) a stage may
// re-test only the surviving rows of a page instead of scanning it. Both
// paths yield identical bitmaps.
//
// # Storage
//
// Blocklets are read through blobstore.BlobStore implementations: in-memory,
// local files (mmap), S3 and MinIO. Reads can be bounded in concurrency,
// throughput and memory with a resource.Controller.
//
// # Observability
//
// Scanner logs through Logger (log/slog) and reports to a MetricsCollector.
// Package prommetrics provides a Prometheus implementation.
package scanfilter

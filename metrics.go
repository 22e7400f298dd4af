package scanfilter

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus
// (see package prommetrics).
type MetricsCollector interface {
	// RecordScan is called after each Scan call.
	// blocks is the number of blocklets, skipped those that needed no scan,
	// duration the total time taken and err nil if successful.
	RecordScan(blocks, skipped int, duration time.Duration, err error)

	// RecordEvaluate is called after each predicate evaluation over a blocklet.
	// rows is the number of surviving rows.
	RecordEvaluate(column string, rows int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordScan(int, int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordEvaluate(string, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ScanCount          atomic.Int64
	ScanErrors         atomic.Int64
	ScanBlocks         atomic.Int64
	ScanSkipped        atomic.Int64
	ScanTotalNanos     atomic.Int64
	EvaluateCount      atomic.Int64
	EvaluateErrors     atomic.Int64
	EvaluateRows       atomic.Int64
	EvaluateTotalNanos atomic.Int64
}

// RecordScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScan(blocks, skipped int, duration time.Duration, err error) {
	b.ScanCount.Add(1)
	b.ScanBlocks.Add(int64(blocks))
	b.ScanSkipped.Add(int64(skipped))
	b.ScanTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ScanErrors.Add(1)
	}
}

// RecordEvaluate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvaluate(_ string, rows int, duration time.Duration, err error) {
	b.EvaluateCount.Add(1)
	b.EvaluateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EvaluateErrors.Add(1)
		return
	}
	b.EvaluateRows.Add(int64(rows))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ScanCount:        b.ScanCount.Load(),
		ScanErrors:       b.ScanErrors.Load(),
		ScanBlocks:       b.ScanBlocks.Load(),
		ScanSkipped:      b.ScanSkipped.Load(),
		ScanAvgNanos:     avg(b.ScanTotalNanos.Load(), b.ScanCount.Load()),
		EvaluateCount:    b.EvaluateCount.Load(),
		EvaluateErrors:   b.EvaluateErrors.Load(),
		EvaluateRows:     b.EvaluateRows.Load(),
		EvaluateAvgNanos: avg(b.EvaluateTotalNanos.Load(), b.EvaluateCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ScanCount        int64
	ScanErrors       int64
	ScanBlocks       int64
	ScanSkipped      int64
	ScanAvgNanos     int64
	EvaluateCount    int64
	EvaluateErrors   int64
	EvaluateRows     int64
	EvaluateAvgNanos int64
}

// Package prommetrics exports scan metrics to Prometheus.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/scanfilter"
)

// Collector implements scanfilter.MetricsCollector on Prometheus metrics.
type Collector struct {
	Scans         *prometheus.CounterVec
	ScanDuration  prometheus.Histogram
	Blocklets     *prometheus.CounterVec
	Evaluations   *prometheus.CounterVec
	EvalDuration  *prometheus.HistogramVec
	SurvivingRows *prometheus.CounterVec
}

var _ scanfilter.MetricsCollector = (*Collector)(nil)

// New creates and registers all metrics with reg. namespace prefixes every
// metric name and may be empty.
func New(reg prometheus.Registerer, namespace string) *Collector {
	c := &Collector{
		Scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scanfilter_scans_total",
			Help:      "Scans by outcome",
		}, []string{"status"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scanfilter_scan_duration_seconds",
			Help:      "Scan latency",
			Buckets:   prometheus.DefBuckets,
		}),
		Blocklets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scanfilter_blocklets_total",
			Help:      "Blocklets visited by scans",
		}, []string{"result"}),
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scanfilter_evaluations_total",
			Help:      "Predicate evaluations by column and outcome",
		}, []string{"column", "status"}),
		EvalDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scanfilter_evaluation_duration_seconds",
			Help:      "Predicate evaluation latency per blocklet",
			Buckets:   prometheus.DefBuckets,
		}, []string{"column"}),
		SurvivingRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scanfilter_surviving_rows_total",
			Help:      "Rows surviving predicate evaluation",
		}, []string{"column"}),
	}

	reg.MustRegister(c.Scans, c.ScanDuration, c.Blocklets, c.Evaluations, c.EvalDuration, c.SurvivingRows)
	return c
}

// RecordScan implements scanfilter.MetricsCollector.
func (c *Collector) RecordScan(blocks, skipped int, d time.Duration, err error) {
	c.Scans.WithLabelValues(status(err)).Inc()
	c.ScanDuration.Observe(d.Seconds())
	c.Blocklets.WithLabelValues("scanned").Add(float64(blocks - skipped))
	c.Blocklets.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordEvaluate implements scanfilter.MetricsCollector.
func (c *Collector) RecordEvaluate(column string, rows int, d time.Duration, err error) {
	c.Evaluations.WithLabelValues(column, status(err)).Inc()
	c.EvalDuration.WithLabelValues(column).Observe(d.Seconds())
	if err == nil {
		c.SurvivingRows.WithLabelValues(column).Add(float64(rows))
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

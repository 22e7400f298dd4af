package scanfilter

import (
	"runtime"

	"github.com/hupe1980/scanfilter/filter"
	"github.com/hupe1980/scanfilter/resource"
)

// DefaultKeyCacheCapacity bounds the bytes of excluded key sets translated
// into local dictionaries that a Scanner keeps for its executors.
const DefaultKeyCacheCapacity = 16 << 20

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	workers          int
	pipeline         bool
	pipelineRatio    float64
	rc               *resource.Controller
	keyCacheCapacity int64
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		workers:          runtime.GOMAXPROCS(0),
		pipeline:         true,
		pipelineRatio:    filter.DefaultPipelineRatio,
		keyCacheCapacity: DefaultKeyCacheCapacity,
	}
}

// Option configures a Scanner.
type Option func(*options)

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithWorkers bounds the number of blocklets scanned concurrently.
// Values below 1 select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithPipeline enables or disables feeding each predicate the result of the
// previous one. When disabled, stage results are intersected after
// evaluation. Results are identical either way.
func WithPipeline(enabled bool) Option {
	return func(o *options) {
		o.pipeline = enabled
	}
}

// WithPipelineRatio sets the pipelining threshold of executors created by
// Scanner.NewExclude (see filter.WithPipelineRatio).
func WithPipelineRatio(ratio float64) Option {
	return func(o *options) {
		if ratio >= 0 {
			o.pipelineRatio = ratio
		}
	}
}

// WithResourceController bounds chunk memory held by concurrent scans.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithKeyCacheCapacity bounds the key cache shared by executors created by
// Scanner.NewExclude.
func WithKeyCacheCapacity(bytes int64) Option {
	return func(o *options) {
		if bytes > 0 {
			o.keyCacheCapacity = bytes
		}
	}
}

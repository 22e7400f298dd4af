package filter

import "github.com/hupe1980/scanfilter/internal/cache"

const (
	// DefaultPipelineRatio is the largest ratio of surviving rows to excluded
	// values at which a page is evaluated from the previous bitmap.
	DefaultPipelineRatio = 100

	// DefaultKeyCacheCapacity bounds the bytes of translated key sets an
	// executor keeps per local dictionary.
	DefaultKeyCacheCapacity = 1 << 20
)

// Option configures an ExcludeExecutor.
type Option func(*options)

type options struct {
	pipelineRatio    float64
	keyCacheCapacity int64
	keyCache         cache.BlockCache
}

func defaultOptions() options {
	return options{
		pipelineRatio:    DefaultPipelineRatio,
		keyCacheCapacity: DefaultKeyCacheCapacity,
	}
}

// WithPipelineRatio sets the surviving-rows-per-value ratio below which a
// page is evaluated by re-testing the previous bitmap. 0 disables the
// re-test path; results are identical either way.
func WithPipelineRatio(ratio float64) Option {
	return func(o *options) {
		if ratio >= 0 {
			o.pipelineRatio = ratio
		}
	}
}

// WithKeyCacheCapacity bounds the executor's cache of key sets translated
// into local dictionaries.
func WithKeyCacheCapacity(bytes int64) Option {
	return func(o *options) {
		if bytes > 0 {
			o.keyCacheCapacity = bytes
		}
	}
}

// WithKeyCache shares a cache of translated key sets between executors.
// Entries are keyed by executor identity and dictionary fingerprint.
func WithKeyCache(c cache.BlockCache) Option {
	return func(o *options) {
		o.keyCache = c
	}
}

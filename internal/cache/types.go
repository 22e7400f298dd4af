package cache

import "context"

// CacheKind separates key spaces.
type CacheKind uint8

const (
	CacheKindUnknown     CacheKind = iota
	CacheKindBlob                  // blocklet file ranges
	CacheKindEncodedKeys           // filter keys in local dictionary form
)

// CacheKey identifies a cached block.
type CacheKey struct {
	Kind CacheKind
	// Path names the source, e.g. a blob name or a filter identity.
	Path string
	// Offset is a block index or dictionary fingerprint.
	Offset uint64
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok=false if missing.
	Get(ctx context.Context, key CacheKey) (b []byte, ok bool)
	// Set caches a block. The caller must treat b as immutable afterwards.
	Set(ctx context.Context, key CacheKey, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key CacheKey) bool)
	// Close releases any resources.
	Close() error
	// Stats returns cache statistics.
	Stats() (hits, misses int64)
}

package filter

import (
	"context"
	"strconv"

	"github.com/hupe1980/scanfilter/dictionary"
	"github.com/hupe1980/scanfilter/internal/cache"
)

// localKeys returns the excluded keys in the encoding of dict. Translations
// are cached per dictionary fingerprint.
func (e *ExcludeExecutor) localKeys(ctx context.Context, dict *dictionary.Local) *KeyExcluder {
	if dict == nil {
		return e.keys
	}

	ck := keyCacheKey(e.id, dict)
	if flat, ok := e.keyCache.Get(ctx, ck); ok {
		return &KeyExcluder{keys: splitKeys(flat, dict.CodeSize()), naturallySorted: e.keys.naturallySorted}
	}

	encoded := dictionary.EncodeKeys(dict, e.keys.keys)
	e.keyCache.Set(ctx, ck, joinKeys(encoded, dict.CodeSize()))
	return &KeyExcluder{keys: encoded, naturallySorted: e.keys.naturallySorted}
}

// keyCacheKey combines the 64-bit content hash with the entry count and an
// independent CRC so that two dictionaries alias only if all three agree.
func keyCacheKey(executor string, dict *dictionary.Local) cache.CacheKey {
	path := executor + "/" + strconv.Itoa(dict.Len()) + "/" + strconv.FormatUint(uint64(dict.Checksum()), 16)
	return cache.CacheKey{Kind: cache.CacheKindEncodedKeys, Path: path, Offset: dict.ID()}
}

func joinKeys(keys [][]byte, width int) []byte {
	out := make([]byte, 0, len(keys)*width)
	for _, k := range keys {
		out = append(out, k...)
	}
	return out
}

func splitKeys(flat []byte, width int) [][]byte {
	if width <= 0 {
		return nil
	}
	keys := make([][]byte, 0, len(flat)/width)
	for off := 0; off+width <= len(flat); off += width {
		keys = append(keys, flat[off:off+width:off+width])
	}
	return keys
}

// Package cache provides byte-oriented LRU caches for immutable blocks.
//
// Two kinds of blocks are cached: fixed-size ranges of blocklet files read
// through blobstore.CachingStore, and encoded filter key sets translated to a
// chunk's local dictionary.
//
// LRUBlockCache is a single-mutex LRU. ShardedLRUBlockCache spreads keys over
// 16 LRUs to reduce contention when many scan workers share one cache. Both
// can report their memory to a resource.Controller.
package cache

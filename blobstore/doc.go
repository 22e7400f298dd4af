// Package blobstore abstracts the storage that holds blocklet files.
//
// Blocklets are immutable: they are written once with Put and then read with
// random-access ReadAt calls, one column chunk at a time.
//
// Built-in implementations:
//
//   - MemoryStore: in-process map, for tests and small tables
//   - LocalStore: local files, read through mmap
//   - CachingStore: block cache in front of any other store
//   - s3.Store: Amazon S3 (subpackage s3)
//   - minio.Store: MinIO and other S3-compatible stores (subpackage minio)
//
// Implementations must be safe for concurrent use.
package blobstore

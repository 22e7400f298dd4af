// Package resource bounds the memory held by loaded column chunks, the number
// of concurrent chunk reads and the read throughput against a blob store.
//
// A nil *Controller is valid and imposes no limits.
package resource

// Package blocklet implements the on-disk unit of a scan: a fixed number of
// pages for every column of a segment, stored in one blob.
//
// # File Layout
//
//	[page blobs...][dictionaries...][footer][trailer]
//
// Pages are compressed blocks (see column.CompressBlock) with a CRC32C kept
// in the footer. The footer is encoded with a codec from package codec and
// the fixed 28 byte trailer records its length, checksum and codec name:
//
//	[footerLen u32][footerCRC u32][codec name 16B][magic "SFBL"]
//
// # Reading
//
// A Reader implements DataBlock. Chunks wraps a DataBlock for one scan and
// caches every chunk it reads, together with the bitmap group produced by
// the previous predicate of a conjunction.
package blocklet

// Package column holds decoded column pages and the raw, still-encoded
// column chunks they are decoded from.
//
// Dimension pages store fixed-width dictionary keys. A page is either kept in
// row order or explicitly sorted, in which case it carries an inverted index
// mapping sort positions to rows.
//
// Measure pages store raw typed values in Apache Arrow arrays together with a
// roaring bitmap of null rows.
//
// Pages are serialized with EncodeDimensionPage / EncodeMeasurePage and
// block-compressed with LZ4 or ZSTD.
package column

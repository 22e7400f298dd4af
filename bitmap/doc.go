// Package bitmap provides the per-page row bitmaps produced by scan filters.
//
// A Row is a fixed-length bit vector sized to the number of rows in one
// column page. A set bit means the row is still a candidate for the query.
// Filters only ever clear bits, so a Row starts all-set (or as a copy of the
// result of an earlier predicate) and shrinks.
//
// A Group collects one Row per page of a blocklet, in page order.
package bitmap

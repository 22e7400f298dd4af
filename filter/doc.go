// Package filter evaluates row-exclusion predicates ("column NOT IN values")
// over the column chunks of a blocklet.
//
// An ExcludeExecutor is bound to exactly one dimension or one measure column.
// Evaluate produces a bitmap.Group with one bitmap per page in which a set
// bit marks a row whose value is not excluded. Bits are only ever cleared,
// so results of the predicates of a conjunction can be combined with AND or
// fed into each other (pipelining).
//
// # Dimension Columns
//
// Excluded surrogates are encoded once as sorted fixed-width keys and
// translated per chunk into the chunk's local dictionary. Pages are scanned
// in one of three ways:
//
//   - natural row order: every row is looked up in the key set
//   - explicitly sorted, column naturally sorted: one merge pass over the
//     sorted page with an advancing cursor
//   - explicitly sorted otherwise: an independent range search per key
//
// # Measure Columns
//
// Excluded values are converted to the column type and kept in a
// MembershipSet specialised for that type. A nil value excludes null rows.
//
// # Pipelining
//
// When the caller passes the previous predicate's group (see
// blocklet.Chunks.SetPrevious) and pipelining is requested, each page result
// is the previous page bitmap with excluded rows removed. Pages where few rows
// survived the previous predicate are evaluated by re-testing only those rows.
package filter

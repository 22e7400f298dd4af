// Package testutil provides testing utilities for scanfilter.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG and generators for column data.
//
// # Column Data
//
//	rng := testutil.NewRNG(seed)
//	city := rng.Surrogates(1000, 50)           // surrogates in [1, 50]
//	sorted := rng.SortedSurrogates(1000, 50)   // a naturally sorted column
//	clicks := rng.NullableLongs(1000, 20, 0.1) // ~10% nil
//	excluded := rng.Sample(city, 5)
package testutil

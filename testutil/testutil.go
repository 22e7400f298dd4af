package testutil

import (
	"math/rand"
	"slices"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Surrogates returns n surrogate values drawn uniformly from [1, cardinality].
func (r *RNG) Surrogates(n, cardinality int) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(1 + r.rand.Intn(cardinality))
	}
	return out
}

// SortedSurrogates returns n ascending surrogate values from [1, cardinality].
func (r *RNG) SortedSurrogates(n, cardinality int) []uint32 {
	out := r.Surrogates(n, cardinality)
	slices.Sort(out)
	return out
}

// NullableLongs returns n int64 values in [0, cardinality) as []any, each nil
// with probability nullRate.
func (r *RNG) NullableLongs(n, cardinality int, nullRate float64) []any {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]any, n)
	for i := range out {
		if r.rand.Float64() < nullRate {
			continue
		}
		out[i] = int64(r.rand.Intn(cardinality))
	}
	return out
}

// Indices returns the ascending indices in [0, n), each chosen with
// probability density.
func (r *RNG) Indices(n int, density float64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []int
	for i := 0; i < n; i++ {
		if r.rand.Float64() < density {
			out = append(out, i)
		}
	}
	return out
}

// Sample returns k elements of values chosen without replacement of
// positions. Duplicate values may repeat.
func Sample[T any](r *RNG, values []T, k int) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	k = min(k, len(values))
	perm := r.rand.Perm(len(values))[:k]
	out := make([]T, k)
	for i, p := range perm {
		out[i] = values[p]
	}
	return out
}

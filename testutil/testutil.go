package testutil

import (
	"math"
	"math/rand"
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

// Int64 returns a pseudo-random int64 over the full range.
func (r *RNG) Int64() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(r.rand.Uint64())
}

// int64InLocked returns a value in [lo, hi] (caller must hold lock).
func (r *RNG) int64InLocked(lo, hi int64) int64 {
	span := uint64(hi - lo)
	if span == math.MaxUint64 {
		return int64(r.rand.Uint64())
	}
	return lo + int64(r.rand.Uint64()%(span+1))
}

// Int64In returns a value in [lo, hi].
func (r *RNG) Int64In(lo, hi int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.int64InLocked(lo, hi)
}

// Uniform generates n values uniformly distributed in [lo, hi].
func (r *RNG) Uniform(n int, lo, hi int64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vals := make([]int64, n)
	for i := range vals {
		vals[i] = r.int64InLocked(lo, hi)
	}
	return vals
}

// Width generates n values that exactly need a signed field of width bits:
// they are uniform over the signed width range and include both extremes.
func (r *RNG) Width(n int, width uint) []int64 {
	var lo, hi int64
	switch {
	case width >= 64:
		lo, hi = math.MinInt64, math.MaxInt64
	default:
		hi = int64(1)<<(width-1) - 1
		lo = -hi - 1
	}
	vals := r.Uniform(n, lo, hi)
	if n > 0 {
		vals[0] = lo
	}
	if n > 1 {
		vals[n-1] = hi
	}
	return vals
}

// FewDistinct generates n values drawn from k random wide values.
func (r *RNG) FewDistinct(n, k int) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	table := make([]int64, k)
	for i := range table {
		table[i] = r.int64InLocked(-1<<40, 1<<40)
	}
	vals := make([]int64, n)
	for i := range vals {
		vals[i] = table[r.rand.Intn(k)]
	}
	return vals
}

// Constant returns n copies of v.
func Constant(n int, v int64) []int64 {
	vals := make([]int64, n)
	for i := range vals {
		vals[i] = v
	}
	return vals
}

// Sequential returns start, start+1, ..., start+n-1.
func Sequential(n int, start int64) []int64 {
	vals := make([]int64, n)
	for i := range vals {
		vals[i] = start + int64(i)
	}
	return vals
}

// Zipf generates n values in [0, k) following Zipf's law: P(j) ∝ 1/(j+1)^s.
// s=1.0 gives standard Zipf, s=1.5 gives a heavy tail.
func (r *RNG) Zipf(n, k int, s float64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vals := make([]int64, n)
	if k <= 1 {
		return vals
	}

	var hns float64
	for i := 1; i <= k; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	for i := range vals {
		u := r.rand.Float64() * hns
		var cumulative float64
		j := k - 1
		for c := 1; c <= k; c++ {
			cumulative += 1.0 / math.Pow(float64(c), s)
			if u <= cumulative {
				j = c - 1
				break
			}
		}
		vals[i] = int64(j)
	}
	return vals
}

// Spread generates n distinct values spaced step apart in shuffled order.
// It is the worst case for a distinct-value table.
func (r *RNG) Spread(n int, step int64) []int64 {
	vals := Sequential(n, 0)
	for i := range vals {
		vals[i] *= step
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(n, func(i, j int) { vals[i], vals[j] = vals[j], vals[i] })
	return vals
}

// Filter returns the indices of vals accepted by keep, in ascending order.
func Filter(vals []int64, keep func(v int64) bool) []int {
	var out []int
	for i, v := range vals {
		if keep(v) {
			out = append(out, i)
		}
	}
	return out
}

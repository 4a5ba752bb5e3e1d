package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniform(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.Uniform(256, -5, 5)

	require.Len(t, v, 256)
	for _, x := range v {
		assert.GreaterOrEqual(t, x, int64(-5))
		assert.LessOrEqual(t, x, int64(5))
	}
}

func TestUniformFullRange(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.Uniform(8, math.MinInt64, math.MaxInt64)
	assert.Len(t, v, 8)
}

func TestWidth(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.Width(100, 8)
	assert.Equal(t, int64(-128), v[0])
	assert.Equal(t, int64(127), v[99])
	for _, x := range v {
		assert.GreaterOrEqual(t, x, int64(-128))
		assert.LessOrEqual(t, x, int64(127))
	}

	v = rng.Width(2, 64)
	assert.Equal(t, []int64{math.MinInt64, math.MaxInt64}, v)
}

func TestFewDistinct(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.FewDistinct(500, 3)

	seen := map[int64]struct{}{}
	for _, x := range v {
		seen[x] = struct{}{}
	}
	assert.LessOrEqual(t, len(seen), 3)
}

func TestZipf(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.Zipf(1000, 16, 1.5)

	counts := make([]int, 16)
	for _, x := range v {
		require.GreaterOrEqual(t, x, int64(0))
		require.Less(t, x, int64(16))
		counts[x]++
	}
	assert.Greater(t, counts[0], counts[15])
}

func TestSpread(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.Spread(50, 1000)

	assert.ElementsMatch(t, v, func() []int64 {
		s := Sequential(50, 0)
		for i := range s {
			s[i] *= 1000
		}
		return s
	}())
}

func TestFilter(t *testing.T) {
	got := Filter([]int64{3, -1, 7, 3}, func(v int64) bool { return v == 3 })
	assert.Equal(t, []int{0, 3}, got)
	assert.Empty(t, Filter(nil, func(int64) bool { return true }))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.Uniform(10, 0, 1000)

	rng.Reset()
	v2 := rng.Uniform(10, 0, 1000)

	assert.Equal(t, v1, v2)
	assert.Equal(t, int64(4711), rng.Seed())
}

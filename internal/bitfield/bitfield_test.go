package bitfield

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var widths = []uint{1, 2, 4, 8, 16, 32, 64}

func TestSignExtend(t *testing.T) {
	tests := []struct {
		width uint
		raw   uint64
		want  int64
	}{
		{0, 0xFFFF, 0},
		{1, 0, 0},
		{1, 1, -1},
		{2, 1, 1},
		{2, 2, -2},
		{4, 0xF, -1},
		{4, 7, 7},
		{8, 0x80, -128},
		{16, 0x4004, 16388},
		{32, 0xFFFFFFFF, -1},
		{64, math.MaxUint64, -1},
		{64, 1 << 63, math.MinInt64},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SignExtend(tt.width, tt.raw), "width=%d raw=%#x", tt.width, tt.raw)
	}
}

func TestSignExtend_TruncateRoundTrip(t *testing.T) {
	for _, w := range widths {
		lo, hi := SignedBounds(w)
		for _, v := range []int64{lo, lo + 1, -1, 0, 1, hi - 1, hi} {
			if !FitsSigned(w, v) {
				continue
			}
			assert.Equal(t, v, SignExtend(w, Truncate(w, v)), "width=%d v=%d", w, v)
		}
	}
}

func TestSignedWidth(t *testing.T) {
	tests := []struct {
		v    int64
		want uint
	}{
		{0, 1},
		{-1, 1},
		{1, 2},
		{-2, 2},
		{2, 4},
		{7, 4},
		{-8, 4},
		{8, 8},
		{10, 8},
		{-1, 1},
		{127, 8},
		{128, 16},
		{16388, 16},
		{-32768, 16},
		{32768, 32},
		{math.MaxInt32, 32},
		{math.MaxInt32 + 1, 64},
		{math.MinInt64, 64},
		{math.MaxInt64, 64},
	}
	for _, tt := range tests {
		got := SignedWidth(tt.v)
		assert.Equal(t, tt.want, got, "v=%d", tt.v)
		assert.True(t, FitsSigned(got, tt.v))
	}
	// Scenario: 10 fits four unsigned bits, but -1 in the same set forces signed 8.
	assert.Equal(t, uint(8), SignedRangeWidth(-1, 10))
}

func TestUnsignedWidth(t *testing.T) {
	assert.Equal(t, uint(1), UnsignedWidth(0))
	assert.Equal(t, uint(1), UnsignedWidth(1))
	assert.Equal(t, uint(2), UnsignedWidth(2))
	assert.Equal(t, uint(2), UnsignedWidth(3))
	assert.Equal(t, uint(4), UnsignedWidth(4))
	assert.Equal(t, uint(8), UnsignedWidth(255))
	assert.Equal(t, uint(16), UnsignedWidth(256))
	assert.Equal(t, uint(64), UnsignedWidth(math.MaxUint64))
}

func TestStorageWidth(t *testing.T) {
	assert.Equal(t, uint(0), StorageWidth(0))
	assert.Equal(t, uint(1), StorageWidth(1))
	assert.Equal(t, uint(2), StorageWidth(3))
	assert.Equal(t, uint(4), StorageWidth(15))
	assert.Equal(t, uint(8), StorageWidth(16))
	assert.Equal(t, uint(8), StorageWidth(-1))
	assert.Equal(t, uint(16), StorageWidth(16388))
	assert.Equal(t, uint(64), StorageWidth(math.MinInt64))

	assert.Equal(t, int64(15), DecodeStorage(4, 15))
	assert.Equal(t, int64(-1), DecodeStorage(8, 0xFF))
}

func TestReadWrite_Straddling(t *testing.T) {
	for _, w := range widths {
		words := make([]uint64, 4)
		// An offset that makes every field with w > 4 straddle a word boundary.
		off := uint64(64 - w/2)
		if w == 1 {
			off = 63
		}
		want := Mask(w) &^ 1
		Write(words, off, w, want)
		require.Equal(t, want, Read(words, off, w), "width=%d", w)
		require.Equal(t, want, ReadTail(words, off, w), "width=%d", w)

		// Neighbouring bits stay untouched.
		Write(words, off, w, 0)
		for _, word := range words {
			require.Zero(t, word, "width=%d", w)
		}
	}
}

func TestReadTail_PastEnd(t *testing.T) {
	words := []uint64{math.MaxUint64}
	assert.Equal(t, uint64(0xFF), ReadTail(words, 56, 16))
	assert.Equal(t, uint64(0), ReadTail(words, 64, 8))
}

func TestCursor(t *testing.T) {
	for _, w := range widths {
		const n = 100
		words := make([]uint64, (n*int(w)+17+63)/64+1)
		c := NewCursor(words, 17, w, w, 0)
		for i := 0; i < n; i++ {
			c.Set(uint64(i*7) & Mask(w))
			c.Next()
		}

		c.Move(n - 1)
		for i := n - 1; i >= 0; i-- {
			require.Equal(t, uint64(i*7)&Mask(w), c.Get(), "width=%d i=%d", w, i)
			if i > 0 {
				c.Prev()
			}
		}

		r := NewCursor(words, 17, w, w, 42)
		assert.Equal(t, uint64(42*7)&Mask(w), r.Get())
		assert.Equal(t, w, r.Width())
	}
}

func TestCursor_ZeroWidth(t *testing.T) {
	c := NewCursor(nil, 0, 0, 0, 5)
	c.Set(123)
	assert.Zero(t, c.Get())
}

func TestUnalignedReader(t *testing.T) {
	const w = 4
	words := make([]uint64, 3)
	for i := 0; i < 40; i++ {
		Write(words, uint64(3+i*w), w, uint64(i%16))
	}

	r := NewUnalignedReader(words, 3)
	chunk := r.Consume(64)
	for i := 0; i < 16; i++ {
		assert.Equal(t, uint64(i%16), chunk&Mask(w), "lane %d", i)
		chunk >>= w
	}
	assert.Equal(t, uint64(67), r.Position())

	next := r.Consume(64)
	assert.Equal(t, uint64(0), next&Mask(w), "lane 16 wraps to zero")
	tail := r.Consume(8 * w)
	assert.Equal(t, uint64(7), (tail>>(7*w))&Mask(w))
	assert.Equal(t, uint64(3+40*w), r.Position())
}

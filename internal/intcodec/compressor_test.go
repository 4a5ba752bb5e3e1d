package intcodec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/leafpack/internal/alloc"
	"github.com/hupe1980/leafpack/internal/layout"
	"github.com/hupe1980/leafpack/query"
	"github.com/hupe1980/leafpack/testutil"
)

func TestScenarioFlex(t *testing.T) {
	input := []int64{16388, 409, 16388, 16388, 409, 16388}
	l := newLeaf(t, alloc.NewSlab(), input)
	assert.Equal(t, 32, l.size())

	p, ok := compressLeaf(t, l, DefaultHeuristic())
	require.True(t, ok)
	assert.Equal(t, layout.Flex, p.Encoding)
	assert.Equal(t, []int64{409, 16388}, p.Values)
	assert.Equal(t, 32, p.PackedSize)
	assert.Equal(t, 24, p.FlexSize)

	c := bind(t, l)
	assert.Equal(t, layout.Flex, c.Encoding())
	assert.Equal(t, 2, c.ValueCount())
	assert.Equal(t, uint(16), c.ValueWidth())
	assert.Equal(t, uint(1), c.IndexWidth())
	assert.Equal(t, 6, c.Len())
	assert.Equal(t, input, l.values())

	lo, hi := c.Bounds()
	assert.Equal(t, int64(409), lo)
	assert.Equal(t, int64(16388), hi)

	var got query.Collect
	assert.True(t, c.FindAll(query.Equal, 16388, 0, -1, 0, &got))
	assert.Equal(t, []int{0, 2, 3, 5}, got.Indices)
}

func TestScenarioAppendReplans(t *testing.T) {
	a := alloc.NewSlab()
	l := newLeaf(t, a, []int64{16388, 409, 16388, 16388, 409, 16388})
	_, ok := compressLeaf(t, l, DefaultHeuristic())
	require.True(t, ok)

	// Appending a new distinct value goes through decompress and recompress.
	require.NoError(t, bind(t, l).Decompress(l))
	assert.Equal(t, layout.Uncompressed, layout.EncodingOf(l.words))

	extended := append(l.values(), 20)
	l2 := newLeaf(t, a, extended)
	p, ok := compressLeaf(t, l2, DefaultHeuristic())
	require.True(t, ok)
	assert.Equal(t, layout.Flex, p.Encoding)
	assert.Equal(t, []int64{20, 409, 16388}, p.Values)

	c := bind(t, l2)
	assert.Equal(t, 3, c.ValueCount())
	assert.Equal(t, uint(2), c.IndexWidth())
	assert.Equal(t, extended, l2.values())

	require.NoError(t, c.Decompress(l2))
	assert.Equal(t, []int64{16388, 409, 16388, 16388, 409, 16388, 20}, l2.values())
}

func TestScenarioPackedSignedness(t *testing.T) {
	input := []int64{10, -1, 5}
	l := newLeaf(t, alloc.NewSlab(), input)

	p, ok := compressLeaf(t, l, Force{Encoding: layout.Packed})
	require.True(t, ok)
	assert.Equal(t, uint(8), p.PackedWidth)

	c := bind(t, l)
	assert.Equal(t, uint(8), c.ValueWidth())
	assert.Equal(t, input, l.values())
}

func TestRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(4711)
	datasets := map[string][]int64{
		"single":   {-7},
		"small":    rng.Uniform(40, 0, 15),
		"signed":   rng.Uniform(300, -100, 100),
		"few":      rng.FewDistinct(500, 5),
		"zipf":     rng.Zipf(400, 32, 1.5),
		"w32":      rng.Width(129, 32),
		"w64":      rng.Width(65, 64),
		"spread":   rng.Spread(200, 1<<20),
		"constant": testutil.Constant(100, -3),
	}
	policies := map[string]Policy{
		"heuristic": DefaultHeuristic(),
		"packed":    Force{Encoding: layout.Packed},
		"flex":      Force{Encoding: layout.Flex},
	}

	for name, vals := range datasets {
		for pname, policy := range policies {
			t.Run(name+"/"+pname, func(t *testing.T) {
				a := alloc.NewSlab()
				l := newLeaf(t, a, vals)
				_, ok := compressLeaf(t, l, policy)
				assert.Equal(t, vals, l.values())

				if !ok {
					return
				}
				c := bind(t, l)
				assert.Equal(t, vals, c.GetAll(0, c.Len()))
				if len(vals) > 3 {
					assert.Equal(t, vals[1:len(vals)-2], c.GetAll(1, len(vals)-2))
				}

				var chunk [8]int64
				for i := 0; i < len(vals); i += 8 {
					c.GetChunk(i, &chunk)
					for j := range 8 {
						if i+j < len(vals) {
							assert.Equal(t, vals[i+j], chunk[j])
						} else {
							assert.Zero(t, chunk[j])
						}
					}
				}

				require.NoError(t, c.Decompress(l))
				assert.Equal(t, vals, l.values())
				assert.Equal(t, l.ref, l.parent)
				assert.Equal(t, uint64(1), a.Stats().LiveRegions)
			})
		}
	}
}

func TestInitUncompressed(t *testing.T) {
	l := newLeaf(t, alloc.NewSlab(), []int64{1, 2, 3})

	var c Compressor
	assert.False(t, c.Init(l.words))
	assert.False(t, c.IsCompressed())
	assert.NoError(t, c.Decompress(l))
}

func TestSetDirectPacked(t *testing.T) {
	l := newLeaf(t, alloc.NewSlab(), []int64{-3, 100, 7, 0})
	_, ok := compressLeaf(t, l, Force{Encoding: layout.Packed})
	require.True(t, ok)

	c := bind(t, l)
	require.Equal(t, uint(8), c.ValueWidth())
	assert.True(t, c.CanSetDirect(-128))
	assert.False(t, c.CanSetDirect(128))

	c.SetDirect(2, -128)
	assert.Equal(t, []int64{-3, 100, -128, 0}, l.values())

	assert.Panics(t, func() { c.SetDirect(0, 1000) })
}

func TestSetDirectFlex(t *testing.T) {
	l := newLeaf(t, alloc.NewSlab(), []int64{5000, -5000, 5000, 5000})
	_, ok := compressLeaf(t, l, Force{Encoding: layout.Flex})
	require.True(t, ok)

	c := bind(t, l)
	assert.True(t, c.CanSetDirect(-5000))
	assert.False(t, c.CanSetDirect(1))

	c.SetDirect(0, -5000)
	c.SetDirect(1, 5000)
	assert.Equal(t, []int64{-5000, 5000, 5000, 5000}, l.values())
	assert.Equal(t, 2, c.ValueCount())

	assert.Panics(t, func() { c.SetDirect(2, 1) })
}

func TestDecompressRelinksBeforeFree(t *testing.T) {
	a := alloc.NewSlab()
	l := newLeaf(t, a, []int64{7, 7, 7, 9, 9, 1000})
	_, ok := compressLeaf(t, l, Force{Encoding: layout.Flex})
	require.True(t, ok)
	old := l.ref

	require.NoError(t, bind(t, l).Decompress(l))
	assert.NotEqual(t, old, l.ref)
	assert.Equal(t, l.ref, l.parent)

	_, err := a.Translate(old)
	assert.ErrorIs(t, err, alloc.ErrInvalidRef)
	assert.Equal(t, layout.Uncompressed, layout.EncodingOf(l.words))
	assert.Equal(t, []int64{7, 7, 7, 9, 9, 1000}, l.values())
}

func TestDecompressParentFailure(t *testing.T) {
	a := alloc.NewSlab()
	l := newLeaf(t, a, []int64{1, -1, 1, -1})
	_, ok := compressLeaf(t, l, Force{Encoding: layout.Packed})
	require.True(t, ok)
	old := l.ref

	errParent := errors.New("parent gone")
	l.parentErr = errParent
	err := bind(t, l).Decompress(l)
	require.ErrorIs(t, err, errParent)

	assert.Equal(t, old, l.ref)
	assert.Equal(t, layout.Packed, layout.EncodingOf(l.words))
	assert.Equal(t, uint64(1), a.Stats().LiveRegions)
}

func TestDecompressOutOfMemory(t *testing.T) {
	acq := &limitAcquirer{limit: 1 << 10}
	a := alloc.NewSlab(alloc.WithMemoryAcquirer(acq))
	l := newLeaf(t, a, testutil.Constant(40, 3))
	_, ok := compressLeaf(t, l, Force{Encoding: layout.Packed})
	require.True(t, ok)

	acq.limit = acq.used
	err := bind(t, l).Decompress(l)
	assert.ErrorIs(t, err, alloc.ErrOutOfMemory)
	assert.Equal(t, layout.Packed, layout.EncodingOf(l.words))
}

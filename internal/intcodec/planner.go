package intcodec

import (
	"fmt"
	"slices"
	"sort"

	"github.com/hupe1980/leafpack/internal/bitfield"
	"github.com/hupe1980/leafpack/internal/layout"
)

// Margin divisors applied before committing to an encoding. A candidate of
// size s is charged s + s/divisor.
const (
	DefaultPackedMarginDivisor = 8
	DefaultFlexMarginDivisor   = 4
)

// CompressValues returns the ascending distinct values of raw and, for every
// element of raw, the slot of its value in that table.
func CompressValues(raw []int64) ([]int64, []uint32) {
	values := slices.Clone(raw)
	slices.Sort(values)
	values = slices.Compact(values)

	indices := make([]uint32, len(raw))
	for i, v := range raw {
		indices[i] = uint32(sort.Search(len(values), func(j int) bool { return values[j] >= v }))
	}
	return values, indices
}

// Plan holds the measurements of one source under every encoding.
type Plan struct {
	Values  []int64
	Indices []uint32
	N       int

	PackedWidth uint
	ValueWidth  uint
	IndexWidth  uint

	UncompressedSize int
	PackedSize       int
	FlexSize         int

	// Encoding is the policy's choice; Uncompressed means keep the source.
	Encoding layout.Encoding
}

// NewPlan measures src. uncompressedSize is the current size of the source
// region.
func NewPlan(src Source, uncompressedSize int) Plan {
	n := src.Len()
	raw := make([]int64, n)
	for i := range raw {
		raw[i] = src.Get(i)
	}
	p := Plan{N: n, UncompressedSize: uncompressedSize}
	if n == 0 {
		return p
	}

	p.Values, p.Indices = CompressValues(raw)
	lo, hi := p.Values[0], p.Values[len(p.Values)-1]
	p.PackedWidth = bitfield.SignedRangeWidth(lo, hi)
	p.ValueWidth = p.PackedWidth
	p.IndexWidth = bitfield.UnsignedWidth(uint64(len(p.Values) - 1))

	p.PackedSize = layout.PackedSize(n, p.PackedWidth)
	p.FlexSize = layout.FlexSize(len(p.Values), p.ValueWidth, n, p.IndexWidth)
	return p
}

// Size returns the size of the chosen encoding.
func (p Plan) Size() int {
	switch p.Encoding {
	case layout.Packed:
		return p.PackedSize
	case layout.Flex:
		return p.FlexSize
	}
	return p.UncompressedSize
}

// Policy picks the target encoding of a plan.
type Policy interface {
	Choose(p Plan) layout.Encoding
}

// Heuristic adopts a compressed encoding only when its margin-adjusted size
// beats the alternatives.
type Heuristic struct {
	PackedMarginDivisor int
	FlexMarginDivisor   int
}

// DefaultHeuristic returns the heuristic with the default margins.
func DefaultHeuristic() Heuristic {
	return Heuristic{
		PackedMarginDivisor: DefaultPackedMarginDivisor,
		FlexMarginDivisor:   DefaultFlexMarginDivisor,
	}
}

func adjusted(size, divisor int) int {
	if divisor <= 0 {
		return size
	}
	return size + size/divisor
}

// Choose implements Policy.
func (h Heuristic) Choose(p Plan) layout.Encoding {
	if p.N == 0 {
		return layout.Uncompressed
	}
	packed := adjusted(p.PackedSize, h.PackedMarginDivisor)
	flex := adjusted(p.FlexSize, h.FlexMarginDivisor)
	switch {
	case flex < packed && flex < p.UncompressedSize:
		return layout.Flex
	case packed < p.UncompressedSize:
		return layout.Packed
	}
	return layout.Uncompressed
}

// Force always selects Encoding, regardless of size.
type Force struct {
	Encoding layout.Encoding
}

// Choose implements Policy.
func (f Force) Choose(p Plan) layout.Encoding {
	if p.N == 0 {
		return layout.Uncompressed
	}
	return f.Encoding
}

// Compress plans origin under policy and, if a compressed encoding is chosen,
// writes it into a fresh region of dest's allocator and binds dest to it. It
// returns false, leaving dest untouched, when the policy keeps origin as is.
// dest's previous region is not freed and its parent is not updated.
func Compress(origin Source, dest Array, flags layout.Flags, uncompressedSize int, policy Policy) (Plan, bool, error) {
	p := NewPlan(origin, uncompressedSize)
	p.Encoding = policy.Choose(p)

	var size int
	switch p.Encoding {
	case layout.Uncompressed:
		return p, false, nil
	case layout.Packed:
		size = p.PackedSize
	case layout.Flex:
		size = p.FlexSize
	default:
		panic(fmt.Sprintf("intcodec: policy chose unknown encoding %d", p.Encoding))
	}

	mem, err := dest.Allocator().Alloc(size)
	if err != nil {
		return p, false, fmt.Errorf("compress: %w", err)
	}
	clear(mem.Words)

	switch p.Encoding {
	case layout.Packed:
		InitPacked(mem.Words, flags, p.PackedWidth, p.N)
		CopyPacked(mem.Words, origin)
	case layout.Flex:
		InitFlex(mem.Words, flags, p.ValueWidth, len(p.Values), p.IndexWidth, p.N)
		CopyFlex(mem.Words, p.Values, p.Indices)
	}
	layout.SetCapacity(mem.Words, mem.Size())
	dest.InitFromMem(mem)
	return p, true, nil
}

package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadWrite(t *testing.T) {
	words := make([]uint64, HeaderWords)
	d := Descriptor{
		Encoding: Flex,
		Flags:    FlagHasRefs | FlagContext,
		WidthA:   16,
		CountA:   2,
		WidthB:   1,
		CountB:   6,
		Capacity: 32,
	}
	Write(words, d)

	got := Read(words)
	assert.Equal(t, d, got)
	assert.Equal(t, Flex, EncodingOf(words))
	assert.Equal(t, 6, got.ElementCount())
	assert.Equal(t, uint64(2*16+6*1), got.PayloadBits())
	assert.Equal(t, 24, got.ByteSize())
}

func TestSetCapacity(t *testing.T) {
	words := make([]uint64, HeaderWords)
	Write(words, Descriptor{Encoding: Packed, WidthA: 8, CountA: 3, CountB: 7})
	SetCapacity(words, 4096)

	d := Read(words)
	assert.Equal(t, uint32(4096), d.Capacity)
	assert.Equal(t, uint32(7), d.CountB)
	assert.Equal(t, 3, d.ElementCount())
}

func TestWrite_PanicsOnMalformed(t *testing.T) {
	words := make([]uint64, HeaderWords)
	assert.Panics(t, func() { Write(words, Descriptor{Encoding: Encoding(7)}) })
	assert.Panics(t, func() { Write(words, Descriptor{Encoding: Packed, WidthA: 3}) })
}

func TestSizes(t *testing.T) {
	// Every size is a multiple of 8.
	for n := 0; n < 200; n++ {
		for _, w := range []uint{0, 1, 2, 4, 8, 16, 32, 64} {
			assert.Zero(t, UncompressedSize(n, w)%8)
		}
	}

	assert.Equal(t, HeaderSize, SizeForBits(0))
	assert.Equal(t, HeaderSize+8, SizeForBits(1))
	assert.Equal(t, HeaderSize+8, SizeForBits(64))
	assert.Equal(t, HeaderSize+16, SizeForBits(65))

	// 6 x 16 bits uncompressed vs 2 x 16 + 6 x 1 bits flex.
	assert.Equal(t, 32, UncompressedSize(6, 16))
	assert.Equal(t, 32, PackedSize(6, 16))
	assert.Equal(t, 24, FlexSize(2, 16, 6, 1))
	assert.Equal(t, 4, WordsForSize(32))
}

func TestEncodingString(t *testing.T) {
	assert.Equal(t, "packed", Packed.String())
	assert.Equal(t, "flex", Flex.String())
	assert.Equal(t, "uncompressed", Uncompressed.String())
	assert.Equal(t, "encoding(9)", Encoding(9).String())
}

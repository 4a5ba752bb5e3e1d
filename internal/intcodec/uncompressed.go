package intcodec

import (
	"github.com/hupe1980/leafpack/internal/bitfield"
	"github.com/hupe1980/leafpack/internal/layout"
)

// InitUncompressed writes an Uncompressed header for n elements stored at
// the given storage width.
func InitUncompressed(words []uint64, flags layout.Flags, width uint, n int) {
	layout.Write(words, layout.Descriptor{
		Encoding: layout.Uncompressed,
		Flags:    flags,
		WidthA:   uint8(width),
		CountA:   uint32(n),
	})
}

// GetUncompressed returns element ndx of an uncompressed payload.
func GetUncompressed(payload []uint64, width uint, ndx int) int64 {
	return bitfield.DecodeStorage(width, bitfield.Read(payload, uint64(ndx)*uint64(width), width))
}

// SetUncompressed stores v as element ndx of an uncompressed payload. v must
// fit the storage width.
func SetUncompressed(payload []uint64, width uint, ndx int, v int64) {
	bitfield.Write(payload, uint64(ndx)*uint64(width), width, bitfield.Truncate(width, v))
}

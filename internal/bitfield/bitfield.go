package bitfield

import "math/bits"

// Mask returns a mask covering the low width bits.
func Mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// Read returns the width-bit field starting at bit offset off.
// The field must lie entirely inside words.
func Read(words []uint64, off uint64, width uint) uint64 {
	if width == 0 {
		return 0
	}
	wi := off >> 6
	shift := uint(off & 63)
	v := words[wi] >> shift
	if shift+width > 64 {
		v |= words[wi+1] << (64 - shift)
	}
	return v & Mask(width)
}

// Write stores the low width bits of v at bit offset off.
// The field must lie entirely inside words.
func Write(words []uint64, off uint64, width uint, v uint64) {
	if width == 0 {
		return
	}
	m := Mask(width)
	v &= m
	wi := off >> 6
	shift := uint(off & 63)
	words[wi] = words[wi]&^(m<<shift) | v<<shift
	if shift+width > 64 {
		rem := 64 - shift
		words[wi+1] = words[wi+1]&^(m>>rem) | v>>rem
	}
}

// ReadTail is like Read but treats bits past the end of words as zero.
// It is the only reader allowed to run off the buffer, and is used by the
// bulk paths that fetch a whole word of lanes near the end of a region.
func ReadTail(words []uint64, off uint64, width uint) uint64 {
	if width == 0 {
		return 0
	}
	wi := off >> 6
	if wi >= uint64(len(words)) {
		return 0
	}
	shift := uint(off & 63)
	v := words[wi] >> shift
	if shift+width > 64 && wi+1 < uint64(len(words)) {
		v |= words[wi+1] << (64 - shift)
	}
	return v & Mask(width)
}

// SignExtend converts the raw width-bit field into a signed 64-bit value.
// Width 0 always yields 0 and width 64 is the identity.
func SignExtend(width uint, raw uint64) int64 {
	switch {
	case width == 0:
		return 0
	case width >= 64:
		return int64(raw)
	}
	shift := 64 - width
	return int64(raw<<shift) >> shift
}

// Truncate returns the two's-complement bits of v that fit a width-bit field.
func Truncate(width uint, v int64) uint64 {
	return uint64(v) & Mask(width)
}

// FitsSigned reports whether v is representable in a signed width-bit field.
func FitsSigned(width uint, v int64) bool {
	if width == 0 {
		return v == 0
	}
	lo, hi := SignedBounds(width)
	return v >= lo && v <= hi
}

// SignedBounds returns the inclusive range of a signed width-bit field.
func SignedBounds(width uint) (lo, hi int64) {
	switch {
	case width == 0:
		return 0, 0
	case width >= 64:
		return -1 << 63, 1<<63 - 1
	}
	hi = int64(1)<<(width-1) - 1
	return -hi - 1, hi
}

// roundWidth rounds a bit count up to the next supported field width,
// never returning less than 1.
func roundWidth(n int) uint {
	switch {
	case n <= 1:
		return 1
	case n <= 2:
		return 2
	case n <= 4:
		return 4
	case n <= 8:
		return 8
	case n <= 16:
		return 16
	case n <= 32:
		return 32
	default:
		return 64
	}
}

// SignedWidth returns the smallest width in {1,2,4,8,16,32,64} that holds v
// as a two's-complement value.
func SignedWidth(v int64) uint {
	// v ^ (v >> 63) drops redundant sign bits for negative values.
	return roundWidth(bits.Len64(uint64(v^(v>>63))) + 1)
}

// SignedRangeWidth returns the signed width covering both lo and hi.
func SignedRangeWidth(lo, hi int64) uint {
	return max(SignedWidth(lo), SignedWidth(hi))
}

// UnsignedWidth returns the smallest width in {1,2,4,8,16,32,64} that holds v.
func UnsignedWidth(v uint64) uint {
	return roundWidth(bits.Len64(v))
}

// StorageWidth returns the width an uncompressed leaf uses for v: 0 for
// zero, 1/2/4 for small non-negative values (stored unsigned) and
// 8/16/32/64 otherwise (stored signed).
func StorageWidth(v int64) uint {
	if v >= 0 && v < 16 {
		switch {
		case v == 0:
			return 0
		case v == 1:
			return 1
		case v < 4:
			return 2
		default:
			return 4
		}
	}
	return max(8, SignedWidth(v))
}

// DecodeStorage interprets a raw uncompressed field of the given width.
func DecodeStorage(width uint, raw uint64) int64 {
	if width < 8 {
		return int64(raw)
	}
	return SignExtend(width, raw)
}

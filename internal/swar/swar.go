package swar

import (
	"math/bits"

	"github.com/hupe1980/leafpack/internal/bitfield"
)

// Predicate is a lane comparison: lane OP needle.
type Predicate uint8

const (
	// Equal matches lanes equal to the needle.
	Equal Predicate = iota
	// NotEqual matches lanes different from the needle.
	NotEqual
	// Less matches lanes below the needle.
	Less
	// Greater matches lanes above the needle.
	Greater
	// GreaterEqual matches lanes at or above the needle.
	GreaterEqual
)

// MSBs returns a word with the high bit of every width-bit lane set.
func MSBs(width uint) uint64 {
	return Broadcast(width, uint64(1)<<(width-1))
}

// Broadcast replicates the low width bits of v into every lane of a word.
func Broadcast(width uint, v uint64) uint64 {
	v &= bitfield.Mask(width)
	for w := width; w < 64; w <<= 1 {
		v |= v << w
	}
	return v
}

// nonZero marks lanes of x that contain at least one set bit.
func nonZero(msbs, x uint64) uint64 {
	low := ^msbs
	// (x & low) + low sets a lane's high bit iff any lower bit was set; the
	// sum never exceeds the lane, so nothing carries into the next one.
	return (((x & low) + low) | x) & msbs
}

// lessUnsigned marks lanes where a < b, both taken as unsigned.
func lessUnsigned(msbs, a, b uint64) uint64 {
	low := ^msbs
	// Per lane: 2^(w-1) + lowA - lowB >= 1, so no borrow leaves the lane and
	// the high bit is clear exactly when lowA < lowB.
	d := ((a & low) | msbs) - (b & low)
	lowLess := ^d & msbs
	ha, hb := a&msbs, b&msbs
	return (^ha&hb | ^(ha^hb)&lowLess) & msbs
}

// Match returns the lane high bits of a that satisfy pred against b. Signed
// lanes are compared as two's-complement values of the lane width.
func Match(pred Predicate, signed bool, msbs, a, b uint64) uint64 {
	switch pred {
	case Equal:
		return ^nonZero(msbs, a^b) & msbs
	case NotEqual:
		return nonZero(msbs, a^b)
	}
	if signed {
		// Flipping the sign bit maps two's-complement order onto unsigned order.
		a ^= msbs
		b ^= msbs
	}
	switch pred {
	case Less:
		return lessUnsigned(msbs, a, b)
	case Greater:
		return lessUnsigned(msbs, b, a)
	case GreaterEqual:
		return ^lessUnsigned(msbs, a, b) & msbs
	}
	panic("swar: unknown predicate")
}

// Scan describes a run of width-bit lanes starting at bit offset Base of
// Words.
type Scan struct {
	Words  []uint64
	Base   uint64
	Width  uint
	Signed bool
}

// FindNext returns the index of the first lane in [start, end) whose value
// satisfies pred against needle, or end when there is none. needle must be a
// Broadcast word for s.Width.
func (s Scan) FindNext(pred Predicate, needle uint64, start, end int) int {
	w := s.Width
	msbs := MSBs(w)
	perWord := int(64 / w)
	for i := start; i < end; {
		data := bitfield.ReadTail(s.Words, s.Base+uint64(i)*uint64(w), 64)
		n := min(perWord, end-i)
		m := Match(pred, s.Signed, msbs, data, needle)
		if n < perWord {
			m &= bitfield.Mask(uint(n) * w)
		}
		if m != 0 {
			return i + bits.TrailingZeros64(m)/int(w)
		}
		i += n
	}
	return end
}

// FindValue is FindNext with the needle broadcast from v.
func (s Scan) FindValue(pred Predicate, v uint64, start, end int) int {
	return s.FindNext(pred, Broadcast(s.Width, v), start, end)
}

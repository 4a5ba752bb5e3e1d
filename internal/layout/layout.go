package layout

import "fmt"

// Encoding identifies how the payload of a region is laid out.
type Encoding uint8

const (
	// Uncompressed stores one field per element at the storage width.
	Uncompressed Encoding = iota
	// Packed stores one signed field per element at a minimal width.
	Packed
	// Flex stores a sorted table of distinct values and one index per element.
	Flex
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case Uncompressed:
		return "uncompressed"
	case Packed:
		return "packed"
	case Flex:
		return "flex"
	default:
		return fmt.Sprintf("encoding(%d)", uint8(e))
	}
}

// Valid reports whether e is one of the known encodings.
func (e Encoding) Valid() bool { return e <= Flex }

// Flags are opaque per-region bits carried through every re-encode.
type Flags uint8

const (
	// FlagHasRefs marks a leaf whose values are references to other regions.
	FlagHasRefs Flags = 1 << iota
	// FlagInnerNode marks an inner node of the owning tree.
	FlagInnerNode
	// FlagContext is reserved for the owner.
	FlagContext
)

const (
	// HeaderWords is the header size in 64-bit words.
	HeaderWords = 2
	// HeaderSize is the header size in bytes.
	HeaderSize = HeaderWords * 8
)

// Descriptor is the decoded form of a region header.
type Descriptor struct {
	Encoding Encoding
	Flags    Flags
	WidthA   uint8
	CountA   uint32
	WidthB   uint8
	CountB   uint32
	// Capacity is the allocated region size in bytes.
	Capacity uint32
}

// Read decodes the header at the start of words.
func Read(words []uint64) Descriptor {
	w0, w1 := words[0], words[1]
	return Descriptor{
		Encoding: Encoding(w0),
		Flags:    Flags(w0 >> 8),
		WidthA:   uint8(w0 >> 16),
		WidthB:   uint8(w0 >> 24),
		CountA:   uint32(w0 >> 32),
		CountB:   uint32(w1),
		Capacity: uint32(w1 >> 32),
	}
}

// Write encodes d into the header at the start of words.
func Write(words []uint64, d Descriptor) {
	if !d.Encoding.Valid() {
		panic(fmt.Sprintf("layout: unknown encoding %d", d.Encoding))
	}
	if !validWidth(d.WidthA) || !validWidth(d.WidthB) {
		panic(fmt.Sprintf("layout: invalid widths %d/%d", d.WidthA, d.WidthB))
	}
	words[0] = uint64(d.Encoding) |
		uint64(d.Flags)<<8 |
		uint64(d.WidthA)<<16 |
		uint64(d.WidthB)<<24 |
		uint64(d.CountA)<<32
	words[1] = uint64(d.CountB) | uint64(d.Capacity)<<32
}

// EncodingOf returns the encoding tag of a header without decoding the rest.
func EncodingOf(words []uint64) Encoding {
	return Encoding(words[0])
}

// SetCapacity records the allocated size of the region.
func SetCapacity(words []uint64, capacity int) {
	words[1] = words[1]&0xFFFFFFFF | uint64(uint32(capacity))<<32
}

// Payload returns the words following the header.
func Payload(words []uint64) []uint64 {
	return words[HeaderWords:]
}

func validWidth(w uint8) bool {
	switch w {
	case 0, 1, 2, 4, 8, 16, 32, 64:
		return true
	}
	return false
}

// ElementCount returns the number of logical elements described by d.
func (d Descriptor) ElementCount() int {
	if d.Encoding == Flex {
		return int(d.CountB)
	}
	return int(d.CountA)
}

// PayloadBits returns the number of meaningful payload bits described by d.
func (d Descriptor) PayloadBits() uint64 {
	bits := uint64(d.CountA) * uint64(d.WidthA)
	if d.Encoding == Flex {
		bits += uint64(d.CountB) * uint64(d.WidthB)
	}
	return bits
}

// ByteSize returns the header plus payload size described by d.
func (d Descriptor) ByteSize() int {
	return SizeForBits(d.PayloadBits())
}

package bitfield

// UnalignedReader consumes bits sequentially from an arbitrary bit offset.
//
// Each Consume returns up to 64 bits packed into the low bits of a word, so a
// caller reading fields of width w receives 64/w fields per call and unpacks
// them with shifts instead of re-deriving a position for every field.
type UnalignedReader struct {
	words []uint64
	pos   uint64
}

// NewUnalignedReader returns a reader positioned at bit offset off.
func NewUnalignedReader(words []uint64, off uint64) UnalignedReader {
	return UnalignedReader{words: words, pos: off}
}

// Consume returns the next n bits (1 <= n <= 64) and advances past them.
// Bits beyond the buffer read as zero.
func (r *UnalignedReader) Consume(n uint) uint64 {
	v := ReadTail(r.words, r.pos, n)
	r.pos += uint64(n)
	return v
}

// Position returns the current bit offset.
func (r *UnalignedReader) Position() uint64 { return r.pos }

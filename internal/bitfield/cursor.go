package bitfield

// Cursor is a positioned accessor for fixed-width fields.
//
// It tracks the current field as a (word index, bit offset) pair over a
// bounds-checked word slice. The stride is the distance in bits between
// consecutive fields and is normally equal to the width.
type Cursor struct {
	words  []uint64
	offset uint64
	width  uint
	stride uint64

	wordIdx uint64
	bitOff  uint
}

// NewCursor returns a cursor over words positioned at element index.
// offset is the bit offset of element 0.
func NewCursor(words []uint64, offset uint64, width, stride uint, index int) Cursor {
	c := Cursor{
		words:  words,
		offset: offset,
		width:  width,
		stride: uint64(stride),
	}
	c.Move(index)
	return c
}

// Width returns the field width in bits.
func (c *Cursor) Width() uint { return c.width }

// Move repositions the cursor to element index.
func (c *Cursor) Move(index int) {
	pos := c.offset + uint64(index)*c.stride
	c.wordIdx = pos >> 6
	c.bitOff = uint(pos & 63)
}

// Next advances the cursor by one stride.
func (c *Cursor) Next() {
	pos := c.bitOff + uint(c.stride)
	c.wordIdx += uint64(pos >> 6)
	c.bitOff = pos & 63
}

// Prev moves the cursor back by one stride.
func (c *Cursor) Prev() {
	pos := c.wordIdx<<6 + uint64(c.bitOff) - c.stride
	c.wordIdx = pos >> 6
	c.bitOff = uint(pos & 63)
}

// Get returns the raw field at the current position.
func (c *Cursor) Get() uint64 {
	if c.width == 0 {
		return 0
	}
	v := c.words[c.wordIdx] >> c.bitOff
	if c.bitOff+c.width > 64 {
		v |= c.words[c.wordIdx+1] << (64 - c.bitOff)
	}
	return v & Mask(c.width)
}

// Set writes the low width bits of v at the current position.
func (c *Cursor) Set(v uint64) {
	Write(c.words, c.wordIdx<<6+uint64(c.bitOff), c.width, v)
}

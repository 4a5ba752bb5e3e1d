package intcodec

import (
	"fmt"

	"github.com/hupe1980/leafpack/internal/alloc"
	"github.com/hupe1980/leafpack/internal/bitfield"
	"github.com/hupe1980/leafpack/internal/layout"
	"github.com/hupe1980/leafpack/query"
)

// Source is a readable sequence of logical values.
type Source interface {
	Len() int
	Get(i int) int64
}

// Array is the leaf a Compressor re-encodes. It owns a region obtained from
// its allocator and a back-reference in its parent.
type Array interface {
	Source
	// Words returns the current region, header included.
	Words() []uint64
	// Ref returns the handle of the current region.
	Ref() alloc.Ref
	// Allocator returns the allocator that owns the region.
	Allocator() alloc.Allocator
	// InitFromMem rebinds the array to mem. The previous region is left
	// alone.
	InitFromMem(mem alloc.MemRef)
	// UpdateParent stores the current ref in the parent's slot.
	UpdateParent() error
}

type finder func(c *Compressor, value int64, start, end, base int, state query.State) bool

// vtable is the operation set of one encoding.
type vtable struct {
	get       func(c *Compressor, ndx int) int64
	getChunk  func(c *Compressor, ndx int, out *[8]int64)
	getAll    func(c *Compressor, begin, end int) []int64
	setDirect func(c *Compressor, ndx int, v int64)
	canDirect func(c *Compressor, v int64) bool
	find      [query.NumConds]finder
}

type scanMode uint8

const (
	scanAuto scanMode = iota
	scanLinear
	scanParallel
)

// Compressor exposes a uniform operation set over a Packed or Flex region.
// The zero value is inert.
type Compressor struct {
	encoding layout.Encoding
	flags    layout.Flags
	data     []uint64

	vWidth   uint
	vCount   int
	ndxWidth uint
	ndxCount int

	// lbound/ubound bound every stored value: the width range for Packed,
	// the actual table extremes for Flex.
	lbound int64
	ubound int64

	vt   *vtable
	mode scanMode
}

// Init binds c to the region in words and reports whether the region is
// compressed. For an uncompressed region c stays inert.
func (c *Compressor) Init(words []uint64) bool {
	d := layout.Read(words)
	*c = Compressor{encoding: d.Encoding, flags: d.Flags, mode: c.mode}

	switch d.Encoding {
	case layout.Packed:
		c.data = layout.Payload(words)
		c.vWidth = uint(d.WidthA)
		c.vCount = int(d.CountA)
		c.ndxCount = int(d.CountA)
		c.lbound, c.ubound = bitfield.SignedBounds(c.vWidth)
		c.vt = &packedTable
	case layout.Flex:
		c.data = layout.Payload(words)
		c.vWidth = uint(d.WidthA)
		c.vCount = int(d.CountA)
		c.ndxWidth = uint(d.WidthB)
		c.ndxCount = int(d.CountB)
		c.lbound = flexMin(c)
		c.ubound = flexMax(c)
		c.vt = &flexTable
	default:
		return false
	}
	return true
}

// IsCompressed reports whether c is bound to a compressed region.
func (c *Compressor) IsCompressed() bool { return c.vt != nil }

// Encoding returns the bound encoding.
func (c *Compressor) Encoding() layout.Encoding { return c.encoding }

// Flags returns the region flags.
func (c *Compressor) Flags() layout.Flags { return c.flags }

// Len returns the number of logical elements.
func (c *Compressor) Len() int { return c.ndxCount }

// ValueWidth returns the width of stored values.
func (c *Compressor) ValueWidth() uint { return c.vWidth }

// ValueCount returns the number of stored values (distinct for Flex).
func (c *Compressor) ValueCount() int { return c.vCount }

// IndexWidth returns the Flex index width (0 for Packed).
func (c *Compressor) IndexWidth() uint { return c.ndxWidth }

// Bounds returns values no stored element lies outside of. For Flex these
// are the actual minimum and maximum.
func (c *Compressor) Bounds() (lo, hi int64) { return c.lbound, c.ubound }

// Get returns element ndx.
func (c *Compressor) Get(ndx int) int64 { return c.vt.get(c, ndx) }

// GetChunk fills out with elements ndx..ndx+7, zero past the end.
func (c *Compressor) GetChunk(ndx int, out *[8]int64) { c.vt.getChunk(c, ndx, out) }

// GetAll returns elements [begin, end).
func (c *Compressor) GetAll(begin, end int) []int64 {
	if end > c.ndxCount {
		end = c.ndxCount
	}
	if begin >= end {
		return nil
	}
	return c.vt.getAll(c, begin, end)
}

// CanSetDirect reports whether v can be written with SetDirect without
// re-encoding.
func (c *Compressor) CanSetDirect(v int64) bool { return c.vt.canDirect(c, v) }

// SetDirect overwrites element ndx in place. v must satisfy CanSetDirect;
// violating that is a programmer error and panics.
func (c *Compressor) SetDirect(ndx int, v int64) { c.vt.setDirect(c, ndx, v) }

// FindAll reports every index in [start, end) whose value satisfies cond
// against value to state, offset by base. A negative end means the end of
// the array. It returns false if state stopped the scan.
func (c *Compressor) FindAll(cond query.Cond, value int64, start, end, base int, state query.State) bool {
	if end < 0 || end > c.ndxCount {
		end = c.ndxCount
	}
	if start >= end {
		return true
	}
	return c.vt.find[cond](c, value, start, end, base, state)
}

// Decompress rewrites arr's region as an uncompressed one. The parent is
// re-linked to the new region before the old one is freed.
func (c *Compressor) Decompress(arr Array) error {
	if !c.IsCompressed() {
		return nil
	}
	n := c.ndxCount
	values := make([]int64, n)
	for i := range values {
		values[i] = c.vt.get(c, i)
	}

	var width uint
	if n > 0 {
		lo, hi := values[0], values[0]
		for _, v := range values[1:] {
			lo, hi = min(lo, v), max(hi, v)
		}
		width = max(bitfield.StorageWidth(lo), bitfield.StorageWidth(hi))
	}

	a := arr.Allocator()
	mem, err := a.Alloc(layout.UncompressedSize(n, width))
	if err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	InitUncompressed(mem.Words, c.flags, width, n)
	layout.SetCapacity(mem.Words, mem.Size())
	payload := layout.Payload(mem.Words)
	for i, v := range values {
		bitfield.Write(payload, uint64(i)*uint64(width), width, bitfield.Truncate(width, v))
	}

	old := alloc.MemRef{Ref: arr.Ref(), Words: arr.Words()}
	arr.InitFromMem(mem)
	if err := arr.UpdateParent(); err != nil {
		arr.InitFromMem(old)
		_ = a.Free(mem.Ref)
		return fmt.Errorf("decompress: update parent: %w", err)
	}
	return a.Free(old.Ref)
}

// findAllMatch reports every index in [start, end) without reading data.
func findAllMatch(start, end, base int, state query.State) bool {
	for i := start; i < end; i++ {
		if !state.Match(i + base) {
			return false
		}
	}
	return true
}

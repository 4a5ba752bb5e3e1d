package leafpack

import (
	"context"
	"time"

	"github.com/hupe1980/leafpack/internal/alloc"
	"github.com/hupe1980/leafpack/internal/bitfield"
	"github.com/hupe1980/leafpack/internal/intcodec"
	"github.com/hupe1980/leafpack/internal/layout"
	"github.com/hupe1980/leafpack/query"
)

// Parent owns the slot that refers to an array's region. It is told about
// every region change before the previous region is freed.
type Parent interface {
	UpdateChildRef(ndx int, ref Ref) error
}

// Array is a leaf of signed 64-bit integers stored in one allocator region,
// uncompressed or in a compressed encoding.
//
// An Array is not safe for concurrent use.
type Array struct {
	alloc Allocator
	opts  options

	ref   Ref
	words []uint64

	// Uncompressed view, valid while comp is inert.
	width uint
	n     int

	comp intcodec.Compressor
}

var _ intcodec.Array = (*Array)(nil)

// NewArray returns a detached array using a for its regions.
func NewArray(a Allocator, opts ...Option) *Array {
	return &Array{
		alloc: a,
		opts:  applyOptions(opts),
	}
}

// Create attaches the array to a fresh, empty uncompressed region.
func (a *Array) Create() error {
	if a.IsAttached() {
		return ErrAttached
	}
	mem, err := a.alloc.Alloc(layout.HeaderSize)
	if err != nil {
		return translateError(err)
	}
	intcodec.InitUncompressed(mem.Words, 0, 0, 0)
	layout.SetCapacity(mem.Words, mem.Size())
	a.InitFromMem(mem)
	if err := a.UpdateParent(); err != nil {
		_ = a.alloc.Free(mem.Ref)
		a.detach()
		return err
	}
	return nil
}

// InitFromRef attaches the array to an existing region.
func (a *Array) InitFromRef(ref Ref) error {
	words, err := a.alloc.Translate(ref)
	if err != nil {
		return translateError(err)
	}
	a.InitFromMem(alloc.MemRef{Ref: ref, Words: words})
	return nil
}

// InitFromMem attaches the array to mem without touching the previous
// region.
func (a *Array) InitFromMem(mem alloc.MemRef) {
	a.ref, a.words = mem.Ref, mem.Words
	if a.comp.Init(mem.Words) {
		a.width, a.n = 0, a.comp.Len()
		return
	}
	d := layout.Read(mem.Words)
	a.width, a.n = uint(d.WidthA), int(d.CountA)
}

// SetParent links the array to slot ndx of p.
func (a *Array) SetParent(p Parent, ndx int) {
	a.opts.parent, a.opts.ndxInParent = p, ndx
}

// UpdateParent stores the current ref in the parent's slot.
func (a *Array) UpdateParent() error {
	if a.opts.parent == nil {
		return nil
	}
	return a.opts.parent.UpdateChildRef(a.opts.ndxInParent, a.ref)
}

// Destroy frees the region and detaches the array. The parent is not
// updated.
func (a *Array) Destroy() error {
	if !a.IsAttached() {
		return nil
	}
	err := a.alloc.Free(a.ref)
	a.detach()
	return translateError(err)
}

func (a *Array) detach() {
	a.ref, a.words = 0, nil
	a.width, a.n = 0, 0
	a.comp = intcodec.Compressor{}
}

// IsAttached reports whether the array owns a region.
func (a *Array) IsAttached() bool { return a.words != nil }

// Ref returns the handle of the current region.
func (a *Array) Ref() Ref { return a.ref }

// Words returns the current region, header included.
func (a *Array) Words() []uint64 { return a.words }

// Allocator returns the allocator that owns the region.
func (a *Array) Allocator() Allocator { return a.alloc }

// Len returns the number of elements.
func (a *Array) Len() int { return a.n }

// IsEncoded reports whether the region is Packed or Flex.
func (a *Array) IsEncoded() bool { return a.comp.IsCompressed() }

// Encoding returns the storage form of the region.
func (a *Array) Encoding() Encoding {
	if a.comp.IsCompressed() {
		return a.comp.Encoding()
	}
	return EncodingUncompressed
}

// ByteSize returns the bytes the region's header and payload occupy.
func (a *Array) ByteSize() int {
	if !a.IsAttached() {
		return 0
	}
	return layout.Read(a.words).ByteSize()
}

// Capacity returns the allocated size of the region in bytes.
func (a *Array) Capacity() int { return len(a.words) * 8 }

func (a *Array) flags() layout.Flags {
	if !a.IsAttached() {
		return 0
	}
	return layout.Read(a.words).Flags
}

func (a *Array) checkIndex(ndx, n int) error {
	if ndx < 0 || ndx >= n {
		return &IndexError{Index: ndx, Len: n}
	}
	return nil
}

// Get returns element i. It panics with an *IndexError if i is out of
// range.
func (a *Array) Get(i int) int64 {
	if err := a.checkIndex(i, a.n); err != nil {
		panic(err)
	}
	if a.comp.IsCompressed() {
		return a.comp.Get(i)
	}
	return intcodec.GetUncompressed(layout.Payload(a.words), a.width, i)
}

// GetAll returns elements [begin, end), clamped to the array.
func (a *Array) GetAll(begin, end int) []int64 {
	begin, end = max(begin, 0), min(end, a.n)
	if begin >= end {
		return nil
	}
	if a.comp.IsCompressed() {
		return a.comp.GetAll(begin, end)
	}
	out := make([]int64, end-begin)
	payload := layout.Payload(a.words)
	for i := range out {
		out[i] = intcodec.GetUncompressed(payload, a.width, begin+i)
	}
	return out
}

// GetChunk fills out with elements ndx..ndx+7, zero past the end.
func (a *Array) GetChunk(ndx int, out *[8]int64) {
	if a.comp.IsCompressed() {
		a.comp.GetChunk(ndx, out)
		return
	}
	*out = [8]int64{}
	payload := layout.Payload(a.words)
	for i := ndx; i < min(ndx+8, a.n); i++ {
		out[i-ndx] = intcodec.GetUncompressed(payload, a.width, i)
	}
}

// Bounds returns values no element lies outside of: the actual extremes for
// Flex and the range of the field width otherwise.
func (a *Array) Bounds() (lo, hi int64) {
	if a.comp.IsCompressed() {
		return a.comp.Bounds()
	}
	if a.width < 8 {
		return 0, int64(bitfield.Mask(a.width))
	}
	return bitfield.SignedBounds(a.width)
}

// Set overwrites element ndx. A compressed array is written in place when v
// is representable without re-encoding and decompressed otherwise.
func (a *Array) Set(ndx int, v int64) error {
	if !a.IsAttached() {
		return ErrDetached
	}
	if err := a.checkIndex(ndx, a.n); err != nil {
		return err
	}
	if a.comp.IsCompressed() {
		if a.comp.CanSetDirect(v) {
			a.comp.SetDirect(ndx, v)
			return nil
		}
		if err := a.Decompress(context.Background()); err != nil {
			return err
		}
	}
	if bitfield.StorageWidth(v) <= a.width {
		intcodec.SetUncompressed(layout.Payload(a.words), a.width, ndx, v)
		return nil
	}
	values := a.GetAll(0, a.n)
	values[ndx] = v
	return a.rewrite(values)
}

// Add appends v.
func (a *Array) Add(v int64) error {
	return a.Insert(a.n, v)
}

// Insert inserts v before element ndx; ndx == Len appends. A compressed
// array is decompressed first.
func (a *Array) Insert(ndx int, v int64) error {
	if !a.IsAttached() {
		return ErrDetached
	}
	if err := a.checkIndex(ndx, a.n+1); err != nil {
		return err
	}
	if err := a.Decompress(context.Background()); err != nil {
		return err
	}

	if bitfield.StorageWidth(v) <= a.width && layout.UncompressedSize(a.n+1, a.width) <= a.Capacity() {
		payload := layout.Payload(a.words)
		for i := a.n; i > ndx; i-- {
			intcodec.SetUncompressed(payload, a.width, i, intcodec.GetUncompressed(payload, a.width, i-1))
		}
		intcodec.SetUncompressed(payload, a.width, ndx, v)
		a.setCount(a.n + 1)
		return nil
	}

	values := make([]int64, 0, a.n+1)
	values = append(values, a.GetAll(0, ndx)...)
	values = append(values, v)
	values = append(values, a.GetAll(ndx, a.n)...)
	return a.rewrite(values)
}

// Erase removes element ndx. A compressed array is decompressed first.
func (a *Array) Erase(ndx int) error {
	if !a.IsAttached() {
		return ErrDetached
	}
	if err := a.checkIndex(ndx, a.n); err != nil {
		return err
	}
	if err := a.Decompress(context.Background()); err != nil {
		return err
	}

	payload := layout.Payload(a.words)
	for i := ndx; i < a.n-1; i++ {
		intcodec.SetUncompressed(payload, a.width, i, intcodec.GetUncompressed(payload, a.width, i+1))
	}
	a.setCount(a.n - 1)
	return nil
}

func (a *Array) setCount(n int) {
	intcodec.InitUncompressed(a.words, a.flags(), a.width, n)
	layout.SetCapacity(a.words, a.Capacity())
	a.n = n
}

// rewrite stores values uncompressed at their storage width, moving to a
// larger region when the current one is too small.
func (a *Array) rewrite(values []int64) error {
	var width uint
	for _, v := range values {
		width = max(width, bitfield.StorageWidth(v))
	}
	size := layout.UncompressedSize(len(values), width)
	flags := a.flags()

	if size <= a.Capacity() {
		a.width = width
		a.writeValues(a.words, flags, values)
		return nil
	}

	mem, err := a.alloc.Alloc(max(size, 2*a.Capacity()))
	if err != nil {
		return translateError(err)
	}
	a.width = width
	a.writeValues(mem.Words, flags, values)
	return a.replace(mem)
}

func (a *Array) writeValues(words []uint64, flags layout.Flags, values []int64) {
	intcodec.InitUncompressed(words, flags, a.width, len(values))
	layout.SetCapacity(words, len(words)*8)
	payload := layout.Payload(words)
	for i, v := range values {
		intcodec.SetUncompressed(payload, a.width, i, v)
	}
	a.n = len(values)
}

// replace moves the array to mem, re-links the parent and frees the old
// region.
func (a *Array) replace(mem alloc.MemRef) error {
	old := alloc.MemRef{Ref: a.ref, Words: a.words}
	a.InitFromMem(mem)
	if err := a.UpdateParent(); err != nil {
		a.InitFromMem(old)
		_ = a.alloc.Free(mem.Ref)
		return err
	}
	return translateError(a.alloc.Free(old.Ref))
}

// Compress re-encodes the array in place with the configured policy and
// reports whether it now uses a compressed encoding. An array the policy
// keeps uncompressed is left untouched. Already compressed arrays are left
// as they are.
func (a *Array) Compress(ctx context.Context) (bool, error) {
	if !a.IsAttached() {
		return false, ErrDetached
	}
	if a.comp.IsCompressed() {
		return true, nil
	}

	start := time.Now()
	before := a.ByteSize()
	old := alloc.MemRef{Ref: a.ref, Words: a.words}

	plan, ok, err := intcodec.Compress(a, a, a.flags(), before, a.opts.policy)
	if err == nil && ok {
		if perr := a.UpdateParent(); perr != nil {
			newRef := a.ref
			a.InitFromMem(old)
			_ = a.alloc.Free(newRef)
			ok, err = false, perr
		} else {
			err = a.alloc.Free(old.Ref)
		}
	}
	err = translateError(err)

	after := before
	if ok {
		after = plan.Size()
	}
	a.opts.metricsCollector.RecordCompress(a.Encoding(), before, after, time.Since(start), err)
	a.opts.logger.LogCompress(ctx, a.ref, a.Encoding(), before, after, err)
	return ok, err
}

// Encode writes a compressed copy of the array into dest, which must be
// detached, and reports whether the policy found a beneficial encoding.
// The array itself is not modified; on false dest stays detached.
func (a *Array) Encode(ctx context.Context, dest *Array) (bool, error) {
	if !a.IsAttached() {
		return false, ErrDetached
	}
	if dest.IsAttached() {
		return false, ErrAttached
	}

	start := time.Now()
	before := a.ByteSize()
	plan, ok, err := intcodec.Compress(a, dest, a.flags(), before, a.opts.policy)
	if err == nil && ok {
		if perr := dest.UpdateParent(); perr != nil {
			_ = dest.alloc.Free(dest.ref)
			dest.detach()
			ok, err = false, perr
		}
	}
	err = translateError(err)

	after := before
	if ok {
		after = plan.Size()
	}
	a.opts.metricsCollector.RecordCompress(plan.Encoding, before, after, time.Since(start), err)
	a.opts.logger.LogCompress(ctx, dest.ref, plan.Encoding, before, after, err)
	return ok, err
}

// Decompress rewrites a compressed array as an uncompressed one. The parent
// is re-linked to the new region before the old one is freed.
func (a *Array) Decompress(ctx context.Context) error {
	if !a.comp.IsCompressed() {
		return nil
	}
	start := time.Now()
	from, ref := a.comp.Encoding(), a.ref

	// InitFromMem rebinds a.comp while Decompress runs.
	c := a.comp
	err := translateError(c.Decompress(a))

	a.opts.metricsCollector.RecordDecompress(time.Since(start), err)
	a.opts.logger.LogDecompress(ctx, ref, from, err)
	return err
}

type countingState struct {
	query.State
	n int
}

func (s *countingState) Match(index int) bool {
	s.n++
	return s.State.Match(index)
}

// FindAll reports every index in [start, end) whose element satisfies cond
// against value to state, offset by base. A negative end means the end of
// the array. It returns false if state stopped the scan.
func (a *Array) FindAll(cond query.Cond, value int64, start, end, base int, state query.State) bool {
	begin := time.Now()
	cs := &countingState{State: state}

	var cont bool
	if a.comp.IsCompressed() {
		cont = a.comp.FindAll(cond, value, start, end, base, cs)
	} else {
		cont = a.findUncompressed(cond, value, start, end, base, cs)
	}

	a.opts.metricsCollector.RecordFind(cond, cs.n, time.Since(begin))
	return cont
}

func (a *Array) findUncompressed(cond query.Cond, value int64, start, end, base int, state query.State) bool {
	if end < 0 || end > a.n {
		end = a.n
	}
	if start >= end {
		return true
	}
	lo, hi := a.Bounds()
	if !cond.CanMatch(value, lo, hi) {
		return true
	}
	payload := layout.Payload(a.words)
	all := cond.WillMatch(value, lo, hi)
	for i := start; i < end; i++ {
		if (all || cond.Eval(intcodec.GetUncompressed(payload, a.width, i), value)) && !state.Match(i+base) {
			return false
		}
	}
	return true
}

// FindBitmap returns the indices of all elements satisfying cond against
// value as a roaring bitmap.
func (a *Array) FindBitmap(cond query.Cond, value int64) *query.Bitmap {
	bm := query.NewBitmap()
	a.FindAll(cond, value, 0, -1, 0, bm)
	return bm
}

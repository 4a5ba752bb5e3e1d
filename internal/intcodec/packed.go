package intcodec

import (
	"fmt"

	"github.com/hupe1980/leafpack/internal/bitfield"
	"github.com/hupe1980/leafpack/internal/layout"
	"github.com/hupe1980/leafpack/internal/swar"
	"github.com/hupe1980/leafpack/query"
)

var packedTable = vtable{
	get:       getPacked,
	getChunk:  getChunkPacked,
	getAll:    getAllPacked,
	setDirect: setDirectPacked,
	canDirect: canDirectPacked,
	find: [query.NumConds]finder{
		query.Equal:    findPacked(query.Equal),
		query.NotEqual: findPacked(query.NotEqual),
		query.Less:     findPacked(query.Less),
		query.Greater:  findPacked(query.Greater),
	},
}

// InitPacked writes a Packed header for n elements of valueWidth bits.
func InitPacked(words []uint64, flags layout.Flags, valueWidth uint, n int) {
	layout.Write(words, layout.Descriptor{
		Encoding: layout.Packed,
		Flags:    flags,
		WidthA:   uint8(valueWidth),
		CountA:   uint32(n),
	})
}

// CopyPacked writes every element of src into the Packed region words.
func CopyPacked(words []uint64, src Source) {
	d := layout.Read(words)
	w := uint(d.WidthA)
	it := bitfield.NewCursor(layout.Payload(words), 0, w, w, 0)
	for i, n := 0, src.Len(); i < n; i++ {
		it.Set(bitfield.Truncate(w, src.Get(i)))
		it.Next()
	}
}

func getPacked(c *Compressor, ndx int) int64 {
	w := c.vWidth
	return bitfield.SignExtend(w, bitfield.Read(c.data, uint64(ndx)*uint64(w), w))
}

func getChunkPacked(c *Compressor, ndx int, out *[8]int64) {
	*out = [8]int64{}
	end := min(ndx+8, c.ndxCount)
	for i := ndx; i < end; i++ {
		out[i-ndx] = getPacked(c, i)
	}
}

func getAllPacked(c *Compressor, begin, end int) []int64 {
	w := c.vWidth
	res := make([]int64, 0, end-begin)
	r := bitfield.NewUnalignedReader(c.data, uint64(begin)*uint64(w))
	perWord := int(64 / w)
	mask := bitfield.Mask(w)
	remaining := end - begin
	for remaining > 0 {
		n := min(perWord, remaining)
		word := r.Consume(uint(n) * w)
		for i := 0; i < n; i++ {
			res = append(res, bitfield.SignExtend(w, word&mask))
			word >>= w % 64
		}
		remaining -= n
	}
	return res
}

func canDirectPacked(c *Compressor, v int64) bool {
	return bitfield.FitsSigned(c.vWidth, v)
}

func setDirectPacked(c *Compressor, ndx int, v int64) {
	w := c.vWidth
	if !bitfield.FitsSigned(w, v) {
		panic(fmt.Sprintf("intcodec: value %d does not fit packed width %d", v, w))
	}
	bitfield.Write(c.data, uint64(ndx)*uint64(w), w, bitfield.Truncate(w, v))
}

func findPacked(cond query.Cond) finder {
	pred := predicateOf(cond)
	return func(c *Compressor, value int64, start, end, base int, state query.State) bool {
		if !cond.CanMatch(value, c.lbound, c.ubound) {
			return true
		}
		if cond.WillMatch(value, c.lbound, c.ubound) {
			return findAllMatch(start, end, base, state)
		}
		if c.useParallel(pred, c.vWidth, end-start) {
			return findParallelPacked(c, pred, value, start, end, base, state)
		}
		return findLinearPacked(c, cond, value, start, end, base, state)
	}
}

func findLinearPacked(c *Compressor, cond query.Cond, value int64, start, end, base int, state query.State) bool {
	w := c.vWidth
	it := bitfield.NewCursor(c.data, 0, w, w, start)
	for i := start; i < end; i++ {
		if cond.Eval(bitfield.SignExtend(w, it.Get()), value) && !state.Match(i+base) {
			return false
		}
		it.Next()
	}
	return true
}

func findParallelPacked(c *Compressor, pred swar.Predicate, value int64, start, end, base int, state query.State) bool {
	s := swar.Scan{Words: c.data, Width: c.vWidth, Signed: true}
	needle := swar.Broadcast(c.vWidth, bitfield.Truncate(c.vWidth, value))
	for start < end {
		start = s.FindNext(pred, needle, start, end)
		if start < end && !state.Match(start+base) {
			return false
		}
		start++
	}
	return true
}

func predicateOf(cond query.Cond) swar.Predicate {
	switch cond {
	case query.Equal:
		return swar.Equal
	case query.NotEqual:
		return swar.NotEqual
	case query.Less:
		return swar.Less
	case query.Greater:
		return swar.Greater
	}
	panic(fmt.Sprintf("intcodec: unknown condition %d", cond))
}

func (c *Compressor) useParallel(pred swar.Predicate, width uint, n int) bool {
	switch c.mode {
	case scanLinear:
		return false
	case scanParallel:
		return true
	}
	return swar.Worthwhile(pred, width, n)
}

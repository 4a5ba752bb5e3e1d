package intcodec

import (
	"fmt"
	"sort"

	"github.com/hupe1980/leafpack/internal/bitfield"
	"github.com/hupe1980/leafpack/internal/layout"
	"github.com/hupe1980/leafpack/internal/swar"
	"github.com/hupe1980/leafpack/query"
)

var flexTable = vtable{
	get:       getFlex,
	getChunk:  getChunkFlex,
	getAll:    getAllFlex,
	setDirect: setDirectFlex,
	canDirect: canDirectFlex,
	find: [query.NumConds]finder{
		query.Equal:    findFlex(query.Equal),
		query.NotEqual: findFlex(query.NotEqual),
		query.Less:     findFlex(query.Less),
		query.Greater:  findFlex(query.Greater),
	},
}

// InitFlex writes a Flex header for a table of valueCount values and n
// indices.
func InitFlex(words []uint64, flags layout.Flags, valueWidth uint, valueCount int, indexWidth uint, n int) {
	layout.Write(words, layout.Descriptor{
		Encoding: layout.Flex,
		Flags:    flags,
		WidthA:   uint8(valueWidth),
		CountA:   uint32(valueCount),
		WidthB:   uint8(indexWidth),
		CountB:   uint32(n),
	})
}

// CopyFlex writes the distinct-value table and the index table into the
// Flex region words.
func CopyFlex(words []uint64, values []int64, indices []uint32) {
	d := layout.Read(words)
	vw, iw := uint(d.WidthA), uint(d.WidthB)
	payload := layout.Payload(words)

	it := bitfield.NewCursor(payload, 0, vw, vw, 0)
	for _, v := range values {
		it.Set(bitfield.Truncate(vw, v))
		it.Next()
	}
	it = bitfield.NewCursor(payload, uint64(len(values))*uint64(vw), iw, iw, 0)
	for _, ndx := range indices {
		it.Set(uint64(ndx))
		it.Next()
	}
}

func (c *Compressor) indexOffset() uint64 {
	return uint64(c.vCount) * uint64(c.vWidth)
}

func flexValue(c *Compressor, slot int) int64 {
	w := c.vWidth
	return bitfield.SignExtend(w, bitfield.Read(c.data, uint64(slot)*uint64(w), w))
}

func flexIndex(c *Compressor, ndx int) int {
	w := c.ndxWidth
	return int(bitfield.Read(c.data, c.indexOffset()+uint64(ndx)*uint64(w), w))
}

func flexMin(c *Compressor) int64 {
	if c.vCount == 0 {
		return 0
	}
	return flexValue(c, 0)
}

func flexMax(c *Compressor) int64 {
	if c.vCount == 0 {
		return 0
	}
	return flexValue(c, c.vCount-1)
}

// flexLowerBound returns the first slot whose value is >= v.
func flexLowerBound(c *Compressor, v int64) int {
	return sort.Search(c.vCount, func(i int) bool { return flexValue(c, i) >= v })
}

// flexUpperBound returns the first slot whose value is > v.
func flexUpperBound(c *Compressor, v int64) int {
	return sort.Search(c.vCount, func(i int) bool { return flexValue(c, i) > v })
}

// flexSlot returns the slot holding v.
func flexSlot(c *Compressor, v int64) (int, bool) {
	slot := flexLowerBound(c, v)
	if slot < c.vCount && flexValue(c, slot) == v {
		return slot, true
	}
	return 0, false
}

func getFlex(c *Compressor, ndx int) int64 {
	return flexValue(c, flexIndex(c, ndx))
}

func getChunkFlex(c *Compressor, ndx int, out *[8]int64) {
	*out = [8]int64{}
	end := min(ndx+8, c.ndxCount)
	for i := ndx; i < end; i++ {
		out[i-ndx] = getFlex(c, i)
	}
}

func getAllFlex(c *Compressor, begin, end int) []int64 {
	w := c.ndxWidth
	res := make([]int64, 0, end-begin)
	r := bitfield.NewUnalignedReader(c.data, c.indexOffset()+uint64(begin)*uint64(w))
	perWord := int(64 / w)
	mask := bitfield.Mask(w)
	remaining := end - begin
	for remaining > 0 {
		n := min(perWord, remaining)
		word := r.Consume(uint(n) * w)
		for i := 0; i < n; i++ {
			res = append(res, flexValue(c, int(word&mask)))
			word >>= w % 64
		}
		remaining -= n
	}
	return res
}

func canDirectFlex(c *Compressor, v int64) bool {
	_, ok := flexSlot(c, v)
	return ok
}

// setDirectFlex repoints element ndx at the slot already holding v. Only the
// index table changes.
func setDirectFlex(c *Compressor, ndx int, v int64) {
	slot, ok := flexSlot(c, v)
	if !ok {
		panic(fmt.Sprintf("intcodec: value %d is not in the flex table", v))
	}
	w := c.ndxWidth
	bitfield.Write(c.data, c.indexOffset()+uint64(ndx)*uint64(w), w, uint64(slot))
}

func findFlex(cond query.Cond) finder {
	pred := predicateOf(cond)
	return func(c *Compressor, value int64, start, end, base int, state query.State) bool {
		if !cond.CanMatch(value, c.lbound, c.ubound) {
			return true
		}
		if cond.WillMatch(value, c.lbound, c.ubound) {
			return findAllMatch(start, end, base, state)
		}
		if c.useParallel(pred, c.vWidth, min(c.vCount, end-start)) {
			return findParallelFlex(c, cond, value, start, end, base, state)
		}
		return findLinearFlex(c, cond, value, start, end, base, state)
	}
}

func findLinearFlex(c *Compressor, cond query.Cond, value int64, start, end, base int, state query.State) bool {
	vw, iw := c.vWidth, c.ndxWidth
	ndx := bitfield.NewCursor(c.data, c.indexOffset(), iw, iw, start)
	val := bitfield.NewCursor(c.data, 0, vw, vw, 0)
	for i := start; i < end; i++ {
		val.Move(int(ndx.Get()))
		if cond.Eval(bitfield.SignExtend(vw, val.Get()), value) && !state.Match(i+base) {
			return false
		}
		ndx.Next()
	}
	return true
}

// findParallelFlex locates the boundary slot for cond in the value table,
// then scans the index table for elements on the matching side of it.
func findParallelFlex(c *Compressor, cond query.Cond, value int64, start, end, base int, state query.State) bool {
	table := swar.Scan{Words: c.data, Width: c.vWidth, Signed: true}
	needle := bitfield.Truncate(c.vWidth, value)

	var (
		slotPred  swar.Predicate
		indexPred swar.Predicate
	)
	switch cond {
	case query.Equal:
		slotPred, indexPred = swar.Equal, swar.Equal
	case query.NotEqual:
		slotPred, indexPred = swar.Equal, swar.NotEqual
	case query.Less:
		slotPred, indexPred = swar.GreaterEqual, swar.Less
	case query.Greater:
		slotPred, indexPred = swar.Greater, swar.GreaterEqual
	}

	slot := table.FindValue(slotPred, needle, 0, c.vCount)
	switch {
	case slot == c.vCount:
		// No slot satisfied the boundary predicate.
		switch cond {
		case query.Equal, query.Greater:
			return true
		default:
			return findAllMatch(start, end, base, state)
		}
	case slot == 0 && cond == query.Less:
		return true
	case slot == 0 && cond == query.Greater:
		return findAllMatch(start, end, base, state)
	}

	indices := swar.Scan{Words: c.data, Base: c.indexOffset(), Width: c.ndxWidth}
	target := swar.Broadcast(c.ndxWidth, uint64(slot))
	for start < end {
		start = indices.FindNext(indexPred, target, start, end)
		if start < end && !state.Match(start+base) {
			return false
		}
		start++
	}
	return true
}

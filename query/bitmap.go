package query

import (
	"iter"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap collects matching indices into a roaring bitmap. It is the sink to
// use when results of several finds are combined with And/Or.
type Bitmap struct {
	rb *roaring.Bitmap
}

var bitmapPool = sync.Pool{
	New: func() any {
		return &Bitmap{rb: roaring.New()}
	},
}

// NewBitmap creates an empty bitmap sink.
func NewBitmap() *Bitmap {
	return &Bitmap{rb: roaring.New()}
}

// GetBitmap takes a cleared bitmap from the pool. Call PutBitmap when done.
func GetBitmap() *Bitmap {
	b := bitmapPool.Get().(*Bitmap)
	b.rb.Clear()
	return b
}

// PutBitmap returns a bitmap to the pool.
func PutBitmap(b *Bitmap) {
	if b == nil {
		return
	}
	b.rb.Clear()
	bitmapPool.Put(b)
}

// Match implements State.
func (b *Bitmap) Match(index int) bool {
	b.rb.Add(uint32(index))
	return true
}

// Contains reports whether index matched.
func (b *Bitmap) Contains(index int) bool {
	return b.rb.Contains(uint32(index))
}

// Cardinality returns the number of matches.
func (b *Bitmap) Cardinality() uint64 {
	return b.rb.GetCardinality()
}

// And keeps only indices present in both bitmaps.
func (b *Bitmap) And(other *Bitmap) {
	b.rb.And(other.rb)
}

// Or adds the indices of other.
func (b *Bitmap) Or(other *Bitmap) {
	b.rb.Or(other.rb)
}

// Indices returns the matches in ascending order.
func (b *Bitmap) Indices() []int {
	out := make([]int, 0, b.rb.GetCardinality())
	for v := range b.All() {
		out = append(out, v)
	}
	return out
}

// All iterates over the matches in ascending order.
func (b *Bitmap) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := b.rb.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

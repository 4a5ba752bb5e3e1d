package intcodec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/leafpack/internal/alloc"
	"github.com/hupe1980/leafpack/internal/bitfield"
	"github.com/hupe1980/leafpack/internal/layout"
)

// leaf is a minimal Array over a Slab, with a single parent slot.
type leaf struct {
	a     alloc.Allocator
	ref   alloc.Ref
	words []uint64

	parent    alloc.Ref
	parentErr error
}

func (l *leaf) Len() int { return layout.Read(l.words).ElementCount() }

func (l *leaf) Get(i int) int64 {
	var c Compressor
	if c.Init(l.words) {
		return c.Get(i)
	}
	d := layout.Read(l.words)
	return GetUncompressed(layout.Payload(l.words), uint(d.WidthA), i)
}

func (l *leaf) Words() []uint64            { return l.words }
func (l *leaf) Ref() alloc.Ref             { return l.ref }
func (l *leaf) Allocator() alloc.Allocator { return l.a }

func (l *leaf) InitFromMem(mem alloc.MemRef) {
	l.ref, l.words = mem.Ref, mem.Words
}

func (l *leaf) UpdateParent() error {
	if l.parentErr != nil {
		return l.parentErr
	}
	l.parent = l.ref
	return nil
}

func (l *leaf) values() []int64 {
	out := make([]int64, l.Len())
	for i := range out {
		out[i] = l.Get(i)
	}
	return out
}

func (l *leaf) size() int { return len(l.words) * 8 }

// newLeaf writes vals into a fresh uncompressed region.
func newLeaf(t testing.TB, a alloc.Allocator, vals []int64) *leaf {
	t.Helper()

	var width uint
	for _, v := range vals {
		width = max(width, bitfield.StorageWidth(v))
	}
	mem, err := a.Alloc(layout.UncompressedSize(len(vals), width))
	require.NoError(t, err)

	InitUncompressed(mem.Words, 0, width, len(vals))
	layout.SetCapacity(mem.Words, mem.Size())
	for i, v := range vals {
		SetUncompressed(layout.Payload(mem.Words), width, i, v)
	}

	l := &leaf{a: a}
	l.InitFromMem(mem)
	require.NoError(t, l.UpdateParent())
	return l
}

// compressLeaf replaces l's region with the encoding chosen by policy.
func compressLeaf(t testing.TB, l *leaf, policy Policy) (Plan, bool) {
	t.Helper()

	old := l.ref
	p, ok, err := Compress(l, l, 0, l.size(), policy)
	require.NoError(t, err)
	if ok {
		require.NoError(t, l.UpdateParent())
		require.NoError(t, l.a.Free(old))
	}
	return p, ok
}

func bind(t testing.TB, l *leaf) *Compressor {
	t.Helper()

	var c Compressor
	require.True(t, c.Init(l.words))
	return &c
}

type limitAcquirer struct {
	limit, used int64
}

var errLimit = errors.New("limit reached")

func (l *limitAcquirer) AcquireMemory(n int64) error {
	if l.used+n > l.limit {
		return errLimit
	}
	l.used += n
	return nil
}

func (l *limitAcquirer) ReleaseMemory(n int64) { l.used -= n }

package alloc

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	// ErrOutOfMemory is returned when an allocation cannot be satisfied.
	ErrOutOfMemory = errors.New("alloc: out of memory")
	// ErrInvalidRef is returned for a Ref that is null or not live.
	ErrInvalidRef = errors.New("alloc: invalid ref")
	// ErrInvalidSize is returned for sizes that are not positive multiples of 8.
	ErrInvalidSize = errors.New("alloc: invalid size")
)

// Ref is a handle to an allocated region. The zero Ref is null.
type Ref uint64

// MemRef pairs a Ref with the words it names.
type MemRef struct {
	Ref   Ref
	Words []uint64
}

// Size returns the region size in bytes.
func (m MemRef) Size() int { return len(m.Words) * 8 }

// Allocator hands out and reclaims regions.
type Allocator interface {
	// Alloc returns a zeroed region of size bytes (a positive multiple of 8).
	Alloc(size int) (MemRef, error)
	// Free releases the region named by ref.
	Free(ref Ref) error
	// Translate returns the words of a live region.
	Translate(ref Ref) ([]uint64, error)
}

// MemoryAcquirer accounts for allocated bytes.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Stats tracks slab usage.
type Stats struct {
	Allocs      uint64 // Historical: total allocations
	Frees       uint64 // Historical: total frees
	Reused      uint64 // Historical: allocations served from a free list
	LiveRegions uint64 // Current: regions not yet freed
	LiveBytes   uint64 // Current: bytes held by live regions
}

type atomicStats struct {
	Allocs      atomic.Uint64
	Frees       atomic.Uint64
	Reused      atomic.Uint64
	LiveRegions atomic.Uint64
	LiveBytes   atomic.Uint64
}

// Option configures a Slab.
type Option func(*Slab)

// WithMemoryAcquirer charges every allocation against acquirer.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(s *Slab) {
		s.acquirer = acquirer
	}
}

// WithMaxFreeListLen bounds the number of cached buffers per size class.
func WithMaxFreeListLen(n int) Option {
	return func(s *Slab) {
		s.maxFree = n
	}
}

// Slab is a heap-backed Allocator.
type Slab struct {
	mu       sync.Mutex
	regions  map[Ref][]uint64
	free     map[int][][]uint64 // keyed by word count
	next     Ref
	maxFree  int
	acquirer MemoryAcquirer
	stats    atomicStats
}

// NewSlab creates an empty slab.
func NewSlab(opts ...Option) *Slab {
	s := &Slab{
		regions: make(map[Ref][]uint64),
		free:    make(map[int][][]uint64),
		next:    8, // Ref 0 is null
		maxFree: 64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Alloc implements Allocator.
func (s *Slab) Alloc(size int) (MemRef, error) {
	if size <= 0 || size%8 != 0 {
		return MemRef{}, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if s.acquirer != nil {
		if err := s.acquirer.AcquireMemory(int64(size)); err != nil {
			return MemRef{}, fmt.Errorf("%w: %d bytes: %w", ErrOutOfMemory, size, err)
		}
	}

	n := size / 8

	s.mu.Lock()
	var words []uint64
	if list := s.free[n]; len(list) > 0 {
		words = list[len(list)-1]
		s.free[n] = list[:len(list)-1]
		clear(words)
		s.stats.Reused.Add(1)
	} else {
		words = make([]uint64, n)
	}
	ref := s.next
	s.next += Ref(size)
	s.regions[ref] = words
	s.mu.Unlock()

	s.stats.Allocs.Add(1)
	s.stats.LiveRegions.Add(1)
	s.stats.LiveBytes.Add(uint64(size))
	return MemRef{Ref: ref, Words: words}, nil
}

// Free implements Allocator.
func (s *Slab) Free(ref Ref) error {
	s.mu.Lock()
	words, ok := s.regions[ref]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrInvalidRef, ref)
	}
	delete(s.regions, ref)
	n := len(words)
	if len(s.free[n]) < s.maxFree {
		s.free[n] = append(s.free[n], words)
	}
	s.mu.Unlock()

	size := uint64(n) * 8
	if s.acquirer != nil {
		s.acquirer.ReleaseMemory(int64(size))
	}
	s.stats.Frees.Add(1)
	s.stats.LiveRegions.Add(^uint64(0))
	s.stats.LiveBytes.Add(-size)
	return nil
}

// Translate implements Allocator.
func (s *Slab) Translate(ref Ref) ([]uint64, error) {
	s.mu.Lock()
	words, ok := s.regions[ref]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRef, ref)
	}
	return words, nil
}

// Stats returns a snapshot of usage counters.
func (s *Slab) Stats() Stats {
	return Stats{
		Allocs:      s.stats.Allocs.Load(),
		Frees:       s.stats.Frees.Load(),
		Reused:      s.stats.Reused.Load(),
		LiveRegions: s.stats.LiveRegions.Load(),
		LiveBytes:   s.stats.LiveBytes.Load(),
	}
}

package leafpack

import (
	"github.com/hupe1980/leafpack/internal/alloc"
	"github.com/hupe1980/leafpack/internal/intcodec"
	"github.com/hupe1980/leafpack/internal/layout"
	"github.com/hupe1980/leafpack/internal/resource"
)

// Ref is the allocator handle of a region. The zero Ref is null.
type Ref = alloc.Ref

// Allocator supplies and frees the regions arrays live in.
type Allocator = alloc.Allocator

// AllocatorStats are usage counters of a Slab.
type AllocatorStats = alloc.Stats

// Slab is the default heap-backed Allocator.
type Slab = alloc.Slab

// NewAllocator returns a Slab. A non-nil controller limits the bytes held
// by live regions.
func NewAllocator(rc *ResourceController) *Slab {
	if rc == nil {
		return alloc.NewSlab()
	}
	return alloc.NewSlab(alloc.WithMemoryAcquirer(rc))
}

// ResourceConfig holds memory, worker and IO limits.
type ResourceConfig = resource.Config

// ResourceController enforces a ResourceConfig.
type ResourceController = resource.Controller

// NewResourceController creates a controller for cfg.
func NewResourceController(cfg ResourceConfig) *ResourceController {
	return resource.NewController(cfg)
}

// Encoding is the storage form of an array.
type Encoding = layout.Encoding

const (
	EncodingUncompressed = layout.Uncompressed
	EncodingPacked       = layout.Packed
	EncodingFlex         = layout.Flex
)

// Policy picks the encoding an array is compressed to.
type Policy = intcodec.Policy

// Plan holds the measurements a Policy decides on.
type Plan = intcodec.Plan

// Heuristic is the margin-based default Policy.
type Heuristic = intcodec.Heuristic

// Force is a Policy that always compresses to one encoding.
type Force = intcodec.Force

// DefaultHeuristic returns the heuristic with the default margins.
func DefaultHeuristic() Heuristic { return intcodec.DefaultHeuristic() }

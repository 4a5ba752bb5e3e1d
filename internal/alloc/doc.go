// Package alloc supplies the raw memory leaf regions live in.
//
// Regions are []uint64 word buffers, so every region is 8-byte aligned and
// its size is a multiple of 8 bytes. Callers hold regions by Ref, a stable
// handle that the owning tree stores in its parent slots; Translate turns a
// Ref back into the words.
//
// # Features
//
//   - Ref handles with 0 reserved as null
//   - Size-class free lists so re-encode cycles reuse buffers
//   - Optional memory accounting through a MemoryAcquirer (fail-fast OOM)
//   - Atomic usage statistics
//
// A Slab is safe for concurrent use; regions themselves are not.
package alloc

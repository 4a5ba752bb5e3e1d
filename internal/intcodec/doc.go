// Package intcodec implements the compressed encodings of integer leaves and
// the machinery that chooses between them.
//
// # Encodings
//
//	Packed: || header || v0 v1 v2 ... vN-1                    ||
//	Flex:   || header || t0 t1 ... tC-1 || i0 i1 ... iN-1     ||
//
// Packed stores every element as a signed field of the minimal width that
// holds the extremes. Flex stores the ascending, de-duplicated values once
// (t) and one unsigned index into that table per element (i). The table
// boundary is C*value_width bits past the payload start.
//
// # Lifecycle
//
//	Uncompressed --Compress--> Packed | Flex
//	Packed | Flex --Decompress--> Uncompressed
//
// Compress runs the planner over the logical values and, when the Policy
// picks an encoding, writes a fresh region for it. A compressed region is
// only mutated in place through SetDirect, which never introduces a value
// the encoding cannot already represent; everything else goes through
// Decompress, mutate, Compress.
//
// # Queries
//
// A Compressor binds to one region and resolves its operation table once.
// FindAll answers Equal/NotEqual/Less/Greater directly on the packed bits:
// trivial bound checks first, then either a per-element loop or the
// word-parallel scan from package swar, which must report the same indices
// in the same order.
//
// Nothing in this package is safe for concurrent mutation; exclusive access
// to a region is provided by the owner.
package intcodec

// Package swar evaluates comparison predicates against many packed fields at
// once ("SIMD within a register").
//
// A 64-bit word holds 64/w lanes of width w. The kernels in this package
// compare every lane of a data word against the matching lane of a broadcast
// needle using only integer arithmetic and masks, and return a word whose
// lane high bits mark the lanes that satisfy the predicate:
//
//	data:    | 0101 | 1100 | 0101 | 0011 |      (w = 4)
//	needle:  | 0101 | 0101 | 0101 | 0101 |
//	Equal:   | 1000 | 0000 | 1000 | 0000 |
//
// No carry or borrow ever crosses a lane boundary, so the result is exact for
// every width in {1, 2, 4, ..., 64}. FindNext walks a buffer word by word and
// returns the first satisfying lane, which makes it a drop-in replacement for
// a per-field loop. The scan is single-threaded and stateless.
package swar

// Package layout reads and writes the 16-byte header that precedes every
// leaf region.
//
// Memory layout (two little-endian 64-bit words):
//
//	word 0: [ tag:8 | flags:8 | widthA:8 | widthB:8 | countA:32 ]
//	word 1: [ countB:32 | capacity:32 ]
//
// The meaning of the (width, count) pairs depends on the encoding:
//
//	Uncompressed: A = element width/count
//	Packed:       A = value width / element count
//	Flex:         A = value width / distinct value count
//	              B = index width / element count
//
// Headers are only ever written by this module, so Write treats an unknown
// encoding as a programmer error and panics.
package layout

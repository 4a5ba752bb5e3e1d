// Package snapshot writes and reads the finalized leaf regions of a commit.
//
// # Format
//
//	magic "LPK1" | compression u8 | 3 reserved bytes
//	block*
//
// Each block is
//
//	[uncompressed u32][compressed u32][crc32c u32][data]
//
// where compressed == 0 means data is stored raw. The checksum covers the
// uncompressed bytes. The concatenated block payload is
//
//	count uvarint | (ref uvarint | size uvarint | size bytes)*count
//
// Region words are written little-endian. The reader verifies checksums and
// framing but not the contents of a region: headers inside a region are
// trusted to be this module's own output.
package snapshot

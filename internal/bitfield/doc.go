// Package bitfield provides positioned access to fixed-width unsigned fields
// packed into a []uint64 word buffer.
//
// Fields are laid out little-endian within each word: field i of width w
// starting at bit offset o occupies bits [o+i*w, o+(i+1)*w) of the buffer,
// where bit b lives in word b/64 at position b%64. A field may straddle two
// words when w does not divide the offset.
//
// # Components
//
//   - Cursor: random access and stepping over fields of one width/stride
//   - UnalignedReader: bulk sequential extraction of up to 64 bits at a time
//     from an arbitrary bit offset (used by GetAll paths)
//   - SignExtend: two's-complement sign extension of a w-bit field
//   - SignedWidth / UnsignedWidth / StorageWidth: minimal field widths
//
// Widths are restricted to {0, 1, 2, 4, 8, 16, 32, 64}. Width 0 denotes a
// field whose value is always zero; nothing is read or written for it.
package bitfield

// Package conv provides checked integer conversions for sizes and counts
// read from or written to a snapshot stream.
//
// Conversions that are safe by construction (element widths, loop indices)
// use plain casts instead.
package conv

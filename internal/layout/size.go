package layout

// SizeForBits returns the region size in bytes for a payload of the given
// number of bits: the header plus the payload rounded up to 8 bytes.
func SizeForBits(bits uint64) int {
	bytes := (bits + 7) / 8
	return HeaderSize + int((bytes+7)&^7)
}

// WordsForSize returns the number of 64-bit words in a region of size bytes.
func WordsForSize(size int) int {
	return (size + 7) / 8
}

// UncompressedSize returns the size of an uncompressed region of n elements.
func UncompressedSize(n int, width uint) int {
	return SizeForBits(uint64(n) * uint64(width))
}

// PackedSize returns the size of a Packed region of n elements.
func PackedSize(n int, valueWidth uint) int {
	return SizeForBits(uint64(n) * uint64(valueWidth))
}

// FlexSize returns the size of a Flex region holding valueCount distinct
// values and n indices.
func FlexSize(valueCount int, valueWidth uint, n int, indexWidth uint) int {
	return SizeForBits(uint64(valueCount)*uint64(valueWidth) + uint64(n)*uint64(indexWidth))
}

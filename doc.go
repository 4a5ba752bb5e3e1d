// Package leafpack stores leaves of signed 64-bit integers in compact,
// queryable encodings.
//
// An Array lives in one region handed out by an Allocator. It starts
// uncompressed and is re-encoded at finalize points into one of two
// compressed forms:
//
//   - Packed: every element at the smallest signed width covering all of them.
//   - Flex: a sorted table of the distinct values plus one narrow index per
//     element.
//
// A Policy decides which, if any, encoding pays off. The default heuristic
// charges each candidate a safety margin so that Flex, which costs an extra
// indirection per read, is only chosen when its size advantage is clear.
//
// # Quick Start
//
//	a := leafpack.NewAllocator(nil)
//	arr := leafpack.NewArray(a)
//	if err := arr.Create(); err != nil {
//	    panic(err)
//	}
//	for _, v := range []int64{16388, 409, 16388, 16388, 409, 16388} {
//	    _ = arr.Add(v)
//	}
//
//	compressed, err := arr.Compress(ctx) // Flex: [409 16388] + 1-bit indices
//
// Queries run directly on the encoded bits:
//
//	var hits query.Collect
//	arr.FindAll(query.Equal, 16388, 0, -1, 0, &hits) // hits.Indices == [0 2 3 5]
//
// # Lifecycle
//
// Reads never decode the whole array. Set writes a compressed array in place
// when the value needs no re-encoding; Add, Insert, Erase and any Set that
// does need it first decompress the array. Every region change re-links the
// Parent before the previous region is freed.
//
// # Commit
//
// FinalizeAll compresses a batch of arrays concurrently, and WriteSnapshot /
// ReadSnapshot persist and restore their regions as a block-compressed,
// checksummed stream.
package leafpack

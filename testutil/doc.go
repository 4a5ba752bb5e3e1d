// Package testutil provides testing utilities for leafpack.
//
// This package is intended for use in tests and benchmarks only.
// It generates integer sequences with the shapes that drive the encoding
// choice: narrow uniform ranges, few distinct values, skewed and
// adversarial spreads.
//
// # Random Sequences
//
//	rng := testutil.NewRNG(seed)
//	vals := rng.Uniform(1000, -50, 50)   // uniform in [-50, 50]
//	vals = rng.FewDistinct(1000, 4)      // 4 distinct wide values
//	vals = rng.Zipf(1000, 64, 1.5)       // power-law over 64 values
//
// # Reference Queries
//
//	want := testutil.Filter(vals, func(v int64) bool { return v < 10 })
package testutil

// Package resource governs the shared limits a leaf store runs under.
//
//	┌────────────────────────────────────────────────────────────┐
//	│                        Controller                          │
//	├──────────────────┬──────────────────┬──────────────────────┤
//	│  Region memory   │  Finalize slots  │  Snapshot IO         │
//	│  (fail-fast)     │  (semaphore)     │  (token bucket)      │
//	├──────────────────┼──────────────────┼──────────────────────┤
//	│  AcquireMemory   │  Worker          │  AcquireIO           │
//	│  ReleaseMemory   │                  │  NewRateLimitedWriter│
//	│  MemoryUsage     │                  │  NewRateLimitedReader│
//	└──────────────────┴──────────────────┴──────────────────────┘
//
// Memory is reserved by the region allocator for every allocation and
// released on free. AcquireMemory never blocks: when the limit would be
// exceeded it returns ErrMemoryLimitExceeded and the caller decides what to
// do. Retry policy belongs to the transaction layer, not here.
//
// All methods are safe for concurrent use and treat a nil *Controller as
// "no limits".
package resource

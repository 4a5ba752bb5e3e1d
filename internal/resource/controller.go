package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a reservation would exceed the limit.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits. Zero fields mean unlimited, except
// MaxWorkers which defaults to 1.
type Config struct {
	MemoryLimitBytes   int64 // bytes held by live regions
	MaxWorkers         int64 // concurrent finalize workers
	IOLimitBytesPerSec int64 // snapshot read/write throughput
}

// Stats is a point-in-time view of a Controller.
type Stats struct {
	MemoryUsed  int64
	MemoryPeak  int64
	MemoryLimit int64
	Workers     int64
}

// budget tracks reserved bytes against an optional cap.
type budget struct {
	limit *semaphore.Weighted
	used  atomic.Int64
	peak  atomic.Int64
}

func (b *budget) reserve(n int64) bool {
	if b.limit != nil && !b.limit.TryAcquire(n) {
		return false
	}
	used := b.used.Add(n)
	for peak := b.peak.Load(); used > peak; peak = b.peak.Load() {
		if b.peak.CompareAndSwap(peak, used) {
			break
		}
	}
	return true
}

func (b *budget) release(n int64) {
	if b.limit != nil {
		b.limit.Release(n)
	}
	b.used.Add(-n)
}

// Controller enforces a Config. A nil *Controller imposes no limits.
type Controller struct {
	cfg     Config
	mem     budget
	workers *semaphore.Weighted
	io      *rate.Limiter
}

// NewController creates a controller for cfg.
func NewController(cfg Config) *Controller {
	cfg.MaxWorkers = max(cfg.MaxWorkers, 1)

	c := &Controller{
		cfg:     cfg,
		workers: semaphore.NewWeighted(cfg.MaxWorkers),
	}
	if cfg.MemoryLimitBytes > 0 {
		c.mem.limit = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.io = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// AcquireMemory reserves bytes. It never blocks.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if !c.mem.reserve(bytes) {
		return ErrMemoryLimitExceeded
	}
	return nil
}

// ReleaseMemory returns a reservation.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	c.mem.release(bytes)
}

// MemoryUsage returns the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.mem.used.Load()
}

// Stats returns the current usage and limits.
func (c *Controller) Stats() Stats {
	if c == nil {
		return Stats{Workers: 1}
	}
	return Stats{
		MemoryUsed:  c.mem.used.Load(),
		MemoryPeak:  c.mem.peak.Load(),
		MemoryLimit: c.cfg.MemoryLimitBytes,
		Workers:     c.cfg.MaxWorkers,
	}
}

// Worker blocks until a finalize slot is free. The returned func gives the
// slot back and must be called exactly once.
func (c *Controller) Worker(ctx context.Context) (func(), error) {
	if c == nil {
		return func() {}, ctx.Err()
	}
	if err := c.workers.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { c.workers.Release(1) }, nil
}

// AcquireIO waits until the IO budget allows bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.io == nil {
		return nil
	}
	for bytes > 0 {
		// WaitN rejects requests larger than the burst.
		n := min(bytes, c.io.Burst())
		if err := c.io.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

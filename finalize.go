package leafpack

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// FinalizeStats summarizes a FinalizeAll run.
type FinalizeStats struct {
	Arrays      int
	Packed      int
	Flex        int
	Unchanged   int
	BytesBefore int64
	BytesAfter  int64
}

type finalizeOptions struct {
	concurrency int
	rc          *ResourceController
	logger      *Logger
}

// FinalizeOption configures FinalizeAll.
type FinalizeOption func(*finalizeOptions)

// WithConcurrency caps the number of arrays compressed at once.
func WithConcurrency(n int) FinalizeOption {
	return func(o *finalizeOptions) {
		o.concurrency = n
	}
}

// WithResourceController makes every worker hold one of rc's worker slots.
func WithResourceController(rc *ResourceController) FinalizeOption {
	return func(o *finalizeOptions) {
		o.rc = rc
	}
}

// WithFinalizeLogger sets the logger for the batch summary.
func WithFinalizeLogger(l *Logger) FinalizeOption {
	return func(o *finalizeOptions) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// FinalizeAll compresses every array ahead of a commit. Arrays are
// processed concurrently and must not share regions; parents reached from
// more than one array must tolerate concurrent UpdateChildRef calls.
// Detached arrays are skipped. The first error cancels the remaining work.
func FinalizeAll(ctx context.Context, arrays []*Array, opts ...FinalizeOption) (FinalizeStats, error) {
	o := finalizeOptions{
		concurrency: 1,
		logger:      NoopLogger(),
	}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	var (
		mu    sync.Mutex
		stats = FinalizeStats{Arrays: len(arrays)}
	)

	g, gctx := errgroup.WithContext(ctx)
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}

	for i, arr := range arrays {
		g.Go(func() error {
			release, err := o.rc.Worker(gctx)
			if err != nil {
				return err
			}
			defer release()

			if err := gctx.Err(); err != nil {
				return err
			}
			if !arr.IsAttached() {
				mu.Lock()
				stats.Unchanged++
				mu.Unlock()
				return nil
			}

			before := arr.ByteSize()
			if _, err := arr.Compress(gctx); err != nil {
				return fmt.Errorf("finalize array %d: %w", i, err)
			}
			after := arr.ByteSize()

			mu.Lock()
			defer mu.Unlock()
			switch arr.Encoding() {
			case EncodingPacked:
				stats.Packed++
			case EncodingFlex:
				stats.Flex++
			default:
				stats.Unchanged++
			}
			stats.BytesBefore += int64(before)
			stats.BytesAfter += int64(after)
			return nil
		})
	}

	err := g.Wait()
	o.logger.LogFinalize(ctx, stats, err)
	return stats, err
}

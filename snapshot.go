package leafpack

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/leafpack/internal/layout"
	"github.com/hupe1980/leafpack/internal/snapshot"
)

// Compression selects the block compression of a snapshot.
type Compression = snapshot.Compression

const (
	CompressionNone = snapshot.CompressionNone
	CompressionLZ4  = snapshot.CompressionLZ4
	CompressionZSTD = snapshot.CompressionZSTD
)

// SnapshotStats describes a written snapshot.
type SnapshotStats = snapshot.Stats

// Snapshot errors.
var (
	ErrSnapshotBadMagic = snapshot.ErrBadMagic
	ErrSnapshotCorrupt  = snapshot.ErrCorrupt
)

type snapshotOptions struct {
	logger    *Logger
	stream    []snapshot.Option
	arrayOpts []Option
}

// SnapshotOption configures WriteSnapshot and ReadSnapshot.
type SnapshotOption func(*snapshotOptions)

// WithSnapshotCompression sets the block compression used by WriteSnapshot.
func WithSnapshotCompression(c Compression) SnapshotOption {
	return func(o *snapshotOptions) {
		o.stream = append(o.stream, snapshot.WithCompression(c))
	}
}

// WithSnapshotBlockSize sets the uncompressed block size used by
// WriteSnapshot.
func WithSnapshotBlockSize(n int) SnapshotOption {
	return func(o *snapshotOptions) {
		o.stream = append(o.stream, snapshot.WithBlockSize(n))
	}
}

// WithSnapshotResourceController charges snapshot IO against rc.
func WithSnapshotResourceController(rc *ResourceController) SnapshotOption {
	return func(o *snapshotOptions) {
		o.stream = append(o.stream, snapshot.WithResourceController(rc))
	}
}

// WithSnapshotLogger sets the logger for snapshot operations.
func WithSnapshotLogger(l *Logger) SnapshotOption {
	return func(o *snapshotOptions) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithRestoreOptions sets the options of arrays created by ReadSnapshot.
func WithRestoreOptions(opts ...Option) SnapshotOption {
	return func(o *snapshotOptions) {
		o.arrayOpts = append(o.arrayOpts, opts...)
	}
}

func applySnapshotOptions(optFns []SnapshotOption) snapshotOptions {
	o := snapshotOptions{logger: NoopLogger()}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// WriteSnapshot writes the regions of arrays to w, typically after
// FinalizeAll.
func WriteSnapshot(ctx context.Context, w io.Writer, arrays []*Array, opts ...SnapshotOption) (SnapshotStats, error) {
	o := applySnapshotOptions(opts)

	regions := make([]snapshot.Region, len(arrays))
	for i, arr := range arrays {
		if !arr.IsAttached() {
			return SnapshotStats{}, fmt.Errorf("snapshot array %d: %w", i, ErrDetached)
		}
		regions[i] = snapshot.Region{Ref: arr.Ref(), Words: arr.Words()}
	}

	stats, err := snapshot.Write(ctx, w, regions, o.stream...)
	o.logger.LogSnapshot(ctx, "write", stats.Regions, stats.WrittenBytes, err)
	return stats, err
}

// ReadSnapshot restores the arrays written by WriteSnapshot into fresh
// regions of a, in the order they were written. On error every region
// allocated so far is freed.
func ReadSnapshot(ctx context.Context, r io.Reader, a Allocator, opts ...SnapshotOption) ([]*Array, error) {
	o := applySnapshotOptions(opts)

	regions, err := snapshot.Read(ctx, r, o.stream...)
	if err != nil {
		o.logger.LogSnapshot(ctx, "read", 0, 0, err)
		return nil, err
	}

	arrays := make([]*Array, 0, len(regions))
	var total int64
	for _, region := range regions {
		mem, err := a.Alloc(len(region.Words) * 8)
		if err == nil && len(region.Words) < layout.HeaderWords {
			_ = a.Free(mem.Ref)
			err = fmt.Errorf("%w: region %d has no header", ErrSnapshotCorrupt, region.Ref)
		}
		if err != nil {
			for _, arr := range arrays {
				_ = arr.Destroy()
			}
			err = translateError(err)
			o.logger.LogSnapshot(ctx, "read", len(arrays), total, err)
			return nil, err
		}
		copy(mem.Words, region.Words)
		layout.SetCapacity(mem.Words, mem.Size())

		arr := NewArray(a, o.arrayOpts...)
		arr.InitFromMem(mem)
		arrays = append(arrays, arr)
		total += int64(mem.Size())
	}

	o.logger.LogSnapshot(ctx, "read", len(arrays), total, nil)
	return arrays, nil
}

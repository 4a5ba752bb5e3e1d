package leafpack

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/leafpack/query"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordCompress is called after each compression attempt. chosen is
	// Uncompressed when the planner kept the array as is.
	RecordCompress(chosen Encoding, before, after int, duration time.Duration, err error)

	// RecordDecompress is called after each decompression.
	RecordDecompress(duration time.Duration, err error)

	// RecordFind is called after each FindAll.
	RecordFind(cond query.Cond, matches int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCompress(Encoding, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordDecompress(time.Duration, error)                   {}
func (NoopMetricsCollector) RecordFind(query.Cond, int, time.Duration)               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	CompressCount      atomic.Int64
	CompressErrors     atomic.Int64
	CompressTotalNanos atomic.Int64
	PackedCount        atomic.Int64
	FlexCount          atomic.Int64
	BytesBefore        atomic.Int64
	BytesAfter         atomic.Int64
	DecompressCount    atomic.Int64
	DecompressErrors   atomic.Int64
	FindCount          atomic.Int64
	FindMatches        atomic.Int64
	FindTotalNanos     atomic.Int64
}

// RecordCompress implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompress(chosen Encoding, before, after int, duration time.Duration, err error) {
	b.CompressCount.Add(1)
	b.CompressTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CompressErrors.Add(1)
		return
	}
	switch chosen {
	case EncodingPacked:
		b.PackedCount.Add(1)
	case EncodingFlex:
		b.FlexCount.Add(1)
	}
	b.BytesBefore.Add(int64(before))
	b.BytesAfter.Add(int64(after))
}

// RecordDecompress implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecompress(_ time.Duration, err error) {
	b.DecompressCount.Add(1)
	if err != nil {
		b.DecompressErrors.Add(1)
	}
}

// RecordFind implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFind(_ query.Cond, matches int, duration time.Duration) {
	b.FindCount.Add(1)
	b.FindMatches.Add(int64(matches))
	b.FindTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of the collected metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CompressCount:    b.CompressCount.Load(),
		CompressErrors:   b.CompressErrors.Load(),
		CompressAvgNanos: avg(b.CompressTotalNanos.Load(), b.CompressCount.Load()),
		PackedCount:      b.PackedCount.Load(),
		FlexCount:        b.FlexCount.Load(),
		BytesBefore:      b.BytesBefore.Load(),
		BytesAfter:       b.BytesAfter.Load(),
		DecompressCount:  b.DecompressCount.Load(),
		DecompressErrors: b.DecompressErrors.Load(),
		FindCount:        b.FindCount.Load(),
		FindMatches:      b.FindMatches.Load(),
		FindAvgNanos:     avg(b.FindTotalNanos.Load(), b.FindCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CompressCount    int64
	CompressErrors   int64
	CompressAvgNanos int64
	PackedCount      int64
	FlexCount        int64
	BytesBefore      int64
	BytesAfter       int64
	DecompressCount  int64
	DecompressErrors int64
	FindCount        int64
	FindMatches      int64
	FindAvgNanos     int64
}

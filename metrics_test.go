package leafpack

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/leafpack/query"
)

func TestBasicMetricsCollector(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	arr := newFilled(t, NewAllocator(nil), scenario, WithMetricsCollector(metrics))

	ok, err := arr.Compress(t.Context())
	require.NoError(t, err)
	require.True(t, ok)

	var c query.Count
	arr.FindAll(query.Equal, 16388, 0, -1, 0, &c)
	require.Equal(t, 4, c.N)

	require.NoError(t, arr.Decompress(t.Context()))

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.CompressCount)
	assert.Zero(t, stats.CompressErrors)
	assert.Equal(t, int64(1), stats.FlexCount)
	assert.Zero(t, stats.PackedCount)
	assert.Equal(t, int64(32), stats.BytesBefore)
	assert.Equal(t, int64(24), stats.BytesAfter)
	assert.Equal(t, int64(1), stats.DecompressCount)
	assert.Equal(t, int64(1), stats.FindCount)
	assert.Equal(t, int64(4), stats.FindMatches)
}

func TestBasicMetricsCollectorErrors(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	metrics.RecordCompress(EncodingPacked, 64, 0, 0, errors.New("boom"))
	metrics.RecordDecompress(0, errors.New("boom"))

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.CompressErrors)
	assert.Zero(t, stats.PackedCount)
	assert.Zero(t, stats.BytesBefore)
	assert.Equal(t, int64(1), stats.DecompressErrors)
	assert.Zero(t, stats.FindAvgNanos)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	arr := newFilled(t, NewAllocator(nil), scenario, WithLogger(logger))
	_, err := arr.Compress(t.Context())
	require.NoError(t, err)
	require.NoError(t, arr.Decompress(t.Context()))

	out := buf.String()
	assert.Contains(t, out, `"msg":"compress completed"`)
	assert.Contains(t, out, `"encoding":"flex"`)
	assert.Contains(t, out, `"bytes_after":24`)
	assert.Contains(t, out, `"msg":"decompress completed"`)
}

func TestLoggerFinalize(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	a := NewAllocator(nil)
	arrays := []*Array{newFilled(t, a, scenario), newFilled(t, a, []int64{1, 2, 3})}
	_, err := FinalizeAll(t.Context(), arrays, WithFinalizeLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "finalize completed")
	assert.Contains(t, out, "arrays=2")
	assert.Contains(t, out, "flex=1")
	assert.Contains(t, out, "saved=\"8 B\"")
	assert.NotContains(t, out, "compress completed")
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(t.Context(), slog.LevelError))
	l.WithRef(1).WithCount(2).WithEncoding(EncodingFlex).LogCompress(t.Context(), 1, EncodingFlex, 32, 24, nil)
}

package leafpack

import (
	"context"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
)

// Logger wraps slog.Logger with leafpack-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithRef adds the region ref to the logger.
func (l *Logger) WithRef(ref Ref) *Logger {
	return &Logger{
		Logger: l.Logger.With("ref", uint64(ref)),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// WithEncoding adds an encoding field to the logger.
func (l *Logger) WithEncoding(e Encoding) *Logger {
	return &Logger{
		Logger: l.Logger.With("encoding", e.String()),
	}
}

// LogCompress logs a compression decision.
func (l *Logger) LogCompress(ctx context.Context, ref Ref, chosen Encoding, before, after int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compress failed",
			"ref", uint64(ref),
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "compress completed",
		"ref", uint64(ref),
		"encoding", chosen.String(),
		"bytes_before", before,
		"bytes_after", after,
	)
}

// LogDecompress logs a decompression.
func (l *Logger) LogDecompress(ctx context.Context, ref Ref, from Encoding, err error) {
	if err != nil {
		l.ErrorContext(ctx, "decompress failed",
			"ref", uint64(ref),
			"encoding", from.String(),
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "decompress completed",
		"ref", uint64(ref),
		"encoding", from.String(),
	)
}

// LogFinalize logs a batch finalize.
func (l *Logger) LogFinalize(ctx context.Context, stats FinalizeStats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "finalize failed",
			"arrays", stats.Arrays,
			"compressed", stats.Packed+stats.Flex,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "finalize completed",
		"arrays", stats.Arrays,
		"packed", stats.Packed,
		"flex", stats.Flex,
		"bytes_before", stats.BytesBefore,
		"bytes_after", stats.BytesAfter,
		"saved", humanize.IBytes(uint64(max(stats.BytesBefore-stats.BytesAfter, 0))),
	)
}

// LogSnapshot logs a snapshot write or restore.
func (l *Logger) LogSnapshot(ctx context.Context, op string, regions int, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+op+" failed",
			"regions", regions,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot "+op+" completed",
		"regions", regions,
		"bytes", bytes,
		"size", humanize.IBytes(uint64(max(bytes, 0))),
	)
}

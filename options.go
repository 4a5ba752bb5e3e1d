package leafpack

import (
	"log/slog"

	"github.com/hupe1980/leafpack/internal/intcodec"
)

type options struct {
	policy           Policy
	metricsCollector MetricsCollector
	logger           *Logger
	parent           Parent
	ndxInParent      int
}

// Option configures an Array.
type Option func(*options)

// WithPolicy sets the compression policy. Pass nil for the default heuristic.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		if p == nil {
			p = intcodec.DefaultHeuristic()
		}
		o.policy = p
	}
}

// WithMargins sets the heuristic margin divisors. A candidate of size s is
// charged s + s/divisor; a divisor <= 0 disables that margin.
func WithMargins(packedDivisor, flexDivisor int) Option {
	return func(o *options) {
		o.policy = intcodec.Heuristic{
			PackedMarginDivisor: packedDivisor,
			FlexMarginDivisor:   flexDivisor,
		}
	}
}

// WithAlwaysCompress forces every non-empty array to e regardless of size.
func WithAlwaysCompress(e Encoding) Option {
	return func(o *options) {
		o.policy = intcodec.Force{Encoding: e}
	}
}

// WithParent links the array to slot ndx of p. The parent is told about
// every region change.
func WithParent(p Parent, ndx int) Option {
	return func(o *options) {
		o.parent = p
		o.ndxInParent = ndx
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &leafpack.BasicMetricsCollector{}
//	arr := leafpack.NewArray(a, leafpack.WithMetricsCollector(metrics))
//	// ... use arr ...
//	stats := metrics.GetStats()
//	fmt.Printf("Flex: %d, Packed: %d\n", stats.FlexCount, stats.PackedCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		policy:           intcodec.DefaultHeuristic(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

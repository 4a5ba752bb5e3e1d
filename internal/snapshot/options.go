package snapshot

import "github.com/hupe1980/leafpack/internal/resource"

// DefaultBlockSize is the uncompressed size of a block.
const DefaultBlockSize = 256 * 1024

type options struct {
	compression Compression
	blockSize   int
	rc          *resource.Controller
}

// Option configures Write and Read.
type Option func(*options)

// WithCompression sets the block compression (Write only; Read takes it from
// the stream).
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithBlockSize sets the uncompressed block size.
func WithBlockSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.blockSize = n
		}
	}
}

// WithResourceController charges all stream IO against rc's IO budget.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

func newOptions(opts []Option) options {
	o := options{
		compression: CompressionLZ4,
		blockSize:   DefaultBlockSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

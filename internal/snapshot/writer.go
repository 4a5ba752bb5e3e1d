package snapshot

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/leafpack/internal/alloc"
	"github.com/hupe1980/leafpack/internal/resource"
)

var magic = [4]byte{'L', 'P', 'K', '1'}

const streamHeaderSize = 8

// Region is one allocator region captured in a snapshot.
type Region struct {
	Ref   alloc.Ref
	Words []uint64
}

// Stats describes a written snapshot.
type Stats struct {
	Regions      int
	Blocks       int
	RawBytes     int64
	WrittenBytes int64
}

// blockWriter frames everything written to it into blocks.
type blockWriter struct {
	w           io.Writer
	compression Compression
	blockSize   int
	buf         []byte
	out         []byte
	stats       *Stats
}

func (b *blockWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		if len(b.buf) == b.blockSize {
			if err := b.Flush(); err != nil {
				return total, err
			}
		}
		n := min(len(p), b.blockSize-len(b.buf))
		b.buf = append(b.buf, p[:n]...)
		p = p[n:]
		total += n
	}
	return total, nil
}

// Flush writes the pending block, if any.
func (b *blockWriter) Flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	out, err := encodeBlock(b.out[:0], b.buf, b.compression)
	if err != nil {
		return err
	}
	b.out = out
	n, err := b.w.Write(out)
	b.stats.WrittenBytes += int64(n)
	if err != nil {
		return err
	}
	b.stats.Blocks++
	b.stats.RawBytes += int64(len(b.buf))
	b.buf = b.buf[:0]
	return nil
}

// Write serializes regions to w.
func Write(ctx context.Context, w io.Writer, regions []Region, opts ...Option) (Stats, error) {
	o := newOptions(opts)
	w = resource.NewRateLimitedWriter(ctx, w, o.rc)

	var stats Stats
	var hdr [streamHeaderSize]byte
	copy(hdr[:], magic[:])
	hdr[4] = byte(o.compression)
	n, err := w.Write(hdr[:])
	stats.WrittenBytes += int64(n)
	if err != nil {
		return stats, fmt.Errorf("snapshot: write header: %w", err)
	}

	bw := &blockWriter{
		w:           w,
		compression: o.compression,
		blockSize:   o.blockSize,
		buf:         make([]byte, 0, o.blockSize),
		stats:       &stats,
	}

	var scratch [binary.MaxVarintLen64]byte
	putUvarint := func(v uint64) error {
		_, err := bw.Write(scratch[:binary.PutUvarint(scratch[:], v)])
		return err
	}

	if err := putUvarint(uint64(len(regions))); err != nil {
		return stats, fmt.Errorf("snapshot: %w", err)
	}
	var word [8]byte
	for _, r := range regions {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := putUvarint(uint64(r.Ref)); err != nil {
			return stats, fmt.Errorf("snapshot: region %d: %w", r.Ref, err)
		}
		if err := putUvarint(uint64(len(r.Words) * 8)); err != nil {
			return stats, fmt.Errorf("snapshot: region %d: %w", r.Ref, err)
		}
		for _, x := range r.Words {
			binary.LittleEndian.PutUint64(word[:], x)
			if _, err := bw.Write(word[:]); err != nil {
				return stats, fmt.Errorf("snapshot: region %d: %w", r.Ref, err)
			}
		}
		stats.Regions++
	}
	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("snapshot: %w", err)
	}
	return stats, nil
}

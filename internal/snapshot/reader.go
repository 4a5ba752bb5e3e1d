package snapshot

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/leafpack/internal/alloc"
	"github.com/hupe1980/leafpack/internal/conv"
	"github.com/hupe1980/leafpack/internal/resource"
)

const (
	maxBlockSize  = 1 << 30
	maxRegionSize = 1 << 32
)

// blockReader yields the payload of consecutive blocks.
type blockReader struct {
	r           io.Reader
	compression Compression
	cur         []byte
}

func (b *blockReader) Read(p []byte) (int, error) {
	for len(b.cur) == 0 {
		if err := b.next(); err != nil {
			return 0, err
		}
	}
	n := copy(p, b.cur)
	b.cur = b.cur[n:]
	return n, nil
}

func (b *blockReader) next() error {
	var hdr [blockHeaderSize]byte
	if _, err := io.ReadFull(b.r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: truncated block header", ErrCorrupt)
		}
		return err
	}
	uncompressed := binary.LittleEndian.Uint32(hdr[0:])
	compressed := binary.LittleEndian.Uint32(hdr[4:])
	sum := binary.LittleEndian.Uint32(hdr[8:])
	if uncompressed > maxBlockSize || compressed > maxBlockSize {
		return fmt.Errorf("%w: block size %d/%d", ErrCorrupt, uncompressed, compressed)
	}

	size := uncompressed
	if compressed != 0 {
		size = compressed
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(b.r, payload); err != nil {
		return fmt.Errorf("%w: truncated block: %w", ErrCorrupt, err)
	}
	data, err := decodeBlock(payload, uncompressed, compressed, sum, b.compression)
	if err != nil {
		return err
	}
	b.cur = data
	return nil
}

// Read deserializes the regions written by Write.
func Read(ctx context.Context, r io.Reader, opts ...Option) ([]Region, error) {
	o := newOptions(opts)
	r = resource.NewRateLimitedReader(ctx, r, o.rc)

	var hdr [streamHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadMagic, err)
	}
	if [4]byte(hdr[:4]) != magic {
		return nil, ErrBadMagic
	}
	c := Compression(hdr[4])
	if c > CompressionZSTD {
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, c)
	}

	br := bufio.NewReader(&blockReader{r: r, compression: c})
	readUvarint := func() (uint64, error) {
		v, err := binary.ReadUvarint(br)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("%w: truncated stream", ErrCorrupt)
		}
		return v, err
	}

	count, err := readUvarint()
	if err != nil {
		return nil, err
	}
	regions := make([]Region, 0, min(count, 1024))
	buf := make([]byte, 0, 4096)
	for i := uint64(0); i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ref, err := readUvarint()
		if err != nil {
			return nil, err
		}
		size, err := readUvarint()
		if err != nil {
			return nil, err
		}
		if size%8 != 0 || size > maxRegionSize {
			return nil, fmt.Errorf("%w: region %d size %d", ErrCorrupt, ref, size)
		}

		n, err := conv.Uint64ToInt(size)
		if err != nil {
			return nil, fmt.Errorf("%w: region %d: %w", ErrCorrupt, ref, err)
		}
		if cap(buf) < n {
			buf = make([]byte, n)
		}
		buf = buf[:n]
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: region %d: %w", ErrCorrupt, ref, err)
		}
		words := make([]uint64, n/8)
		for j := range words {
			words[j] = binary.LittleEndian.Uint64(buf[j*8:])
		}
		regions = append(regions, Region{Ref: alloc.Ref(ref), Words: words})
	}

	if _, err := br.ReadByte(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, fmt.Errorf("%w: trailing data", ErrCorrupt)
		}
		return nil, err
	}
	return regions, nil
}

package snapshot

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/leafpack/internal/conv"
)

// Compression selects the block compression algorithm.
type Compression uint8

const (
	// CompressionNone stores blocks raw.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio).
	CompressionZSTD Compression = 2
)

// String returns the algorithm name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

const blockHeaderSize = 12

// encodeBlock appends the framed form of data to dst. Data is stored raw
// when compression does not make it smaller.
func encodeBlock(dst, data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}

	rawLen, err := conv.IntToUint32(len(data))
	if err != nil {
		return nil, err
	}
	var hdr [blockHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], rawLen)
	binary.LittleEndian.PutUint32(hdr[8:], crc32.Checksum(data, castagnoli))

	// n == 0 from lz4 means incompressible.
	if len(compressed) == 0 || len(compressed) >= len(data) {
		dst = append(dst, hdr[:]...)
		return append(dst, data...), nil
	}
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(compressed)))
	dst = append(dst, hdr[:]...)
	return append(dst, compressed...), nil
}

// decodeBlock restores a block body. payload is the raw or compressed data
// that followed the header.
func decodeBlock(payload []byte, uncompressed, compressed, sum uint32, c Compression) ([]byte, error) {
	var data []byte
	if compressed == 0 {
		data = payload
	} else {
		data = make([]byte, uncompressed)
		switch c {
		case CompressionLZ4:
			n, err := lz4.UncompressBlock(payload, data)
			if err != nil {
				return nil, fmt.Errorf("%w: lz4: %w", ErrCorrupt, err)
			}
			if uint32(n) != uncompressed {
				return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
			}
		case CompressionZSTD:
			dec := getZstdDecoder()
			decoded, err := dec.DecodeAll(payload, data[:0])
			zstdDecoderPool.Put(dec)
			if err != nil {
				return nil, fmt.Errorf("%w: zstd: %w", ErrCorrupt, err)
			}
			if uint32(len(decoded)) != uncompressed {
				return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
			}
			data = decoded
		default:
			return nil, fmt.Errorf("%w: compressed block in %s stream", ErrCorrupt, c)
		}
	}
	if crc32.Checksum(data, castagnoli) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	return data, nil
}

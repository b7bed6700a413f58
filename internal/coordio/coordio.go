// Package coordio reads and writes coordinate dataset files: interleaved
// lng,lat float64 buffers stored as independently compressed blocks, the
// exchange format between dataset producers and the clustering engine.
//
// File layout: a fixed header (magic, version, compression algorithm, row
// count) followed by blocks of up to BlockRows rows. Each block carries a
// [rawSize uint32][compressedSize uint32] prefix; a compressedSize of 0
// marks a raw block, which the writer falls back to whenever compression
// fails to shrink the payload.
package coordio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/StoneTapeStudios/arrow-supercluster/internal/mmap"
)

// Compression selects the block compression algorithm.
type Compression uint8

const (
	// None stores blocks uncompressed.
	None Compression = 0
	// LZ4 favors speed over ratio.
	LZ4 Compression = 1
	// ZSTD favors ratio over speed.
	ZSTD Compression = 2
)

// BlockRows is the number of coordinate rows per block: 64Ki rows, 1MiB
// of raw payload.
const BlockRows = 1 << 16

const (
	headerSize      = 16
	blockHeaderSize = 8
	version         = 1
)

var magic = [4]byte{'G', 'C', 'R', 'D'}

var (
	// ErrBadMagic is returned when the input is not a coordinate file.
	ErrBadMagic = errors.New("coordio: bad magic")
	// ErrCorrupt is returned for truncated or inconsistent block data.
	ErrCorrupt = errors.New("coordio: corrupt data")
)

var (
	zstdEncoderPool = sync.Pool{New: func() any {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		return enc
	}}
	zstdDecoderPool = sync.Pool{New: func() any {
		dec, _ := zstd.NewReader(nil)
		return dec
	}}
)

// Encode serializes an interleaved lng,lat buffer. The buffer must hold
// complete pairs.
func Encode(coords []float64, c Compression) ([]byte, error) {
	if len(coords)%2 != 0 {
		return nil, errors.New("coordio: coordinate buffer length must be even")
	}
	switch c {
	case None, LZ4, ZSTD:
	default:
		return nil, fmt.Errorf("coordio: unknown compression %d", c)
	}

	rows := len(coords) / 2

	out := make([]byte, headerSize)
	copy(out, magic[:])
	out[4] = version
	out[5] = byte(c)
	binary.LittleEndian.PutUint64(out[8:], uint64(rows))

	raw := make([]byte, 0, 16*BlockRows)
	for start := 0; start < rows; start += BlockRows {
		end := min(start+BlockRows, rows)

		raw = raw[:0]
		for _, v := range coords[2*start : 2*end] {
			raw = binary.LittleEndian.AppendUint64(raw, math.Float64bits(v))
		}

		compressed, err := compressBlock(raw, c)
		if err != nil {
			return nil, err
		}

		var hdr [blockHeaderSize]byte
		binary.LittleEndian.PutUint32(hdr[0:], uint32(len(raw)))
		if compressed == nil {
			// Incompressible, store raw.
			binary.LittleEndian.PutUint32(hdr[4:], 0)
			out = append(out, hdr[:]...)
			out = append(out, raw...)
			continue
		}
		binary.LittleEndian.PutUint32(hdr[4:], uint32(len(compressed)))
		out = append(out, hdr[:]...)
		out = append(out, compressed...)
	}

	return out, nil
}

// compressBlock returns the compressed payload, or nil when the block
// should be stored raw.
func compressBlock(raw []byte, c Compression) ([]byte, error) {
	var compressed []byte
	switch c {
	case None:
		return nil, nil
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("coordio: lz4 compress: %w", err)
		}
		if n == 0 {
			return nil, nil // incompressible
		}
		compressed = buf[:n]
	case ZSTD:
		enc := zstdEncoderPool.Get().(*zstd.Encoder)
		compressed = enc.EncodeAll(raw, nil)
		zstdEncoderPool.Put(enc)
	}

	if len(compressed) >= len(raw) {
		return nil, nil
	}
	return compressed, nil
}

// Decode parses a serialized coordinate file back into an interleaved
// buffer. The input is only read, so it may alias a memory mapping.
func Decode(data []byte) ([]float64, error) {
	if len(data) < headerSize {
		return nil, ErrBadMagic
	}
	if [4]byte(data[:4]) != magic {
		return nil, ErrBadMagic
	}
	if data[4] != version {
		return nil, fmt.Errorf("coordio: unsupported version %d", data[4])
	}
	c := Compression(data[5])
	switch c {
	case None, LZ4, ZSTD:
	default:
		return nil, fmt.Errorf("coordio: unknown compression %d", data[5])
	}
	rows := binary.LittleEndian.Uint64(data[8:])
	if rows > math.MaxInt64/16 {
		return nil, ErrCorrupt
	}

	coords := make([]float64, 0, 2*rows)
	var scratch []byte

	rest := data[headerSize:]
	for len(coords) < int(2*rows) {
		if len(rest) < blockHeaderSize {
			return nil, ErrCorrupt
		}
		rawSize := binary.LittleEndian.Uint32(rest[0:])
		compSize := binary.LittleEndian.Uint32(rest[4:])
		rest = rest[blockHeaderSize:]

		if rawSize%8 != 0 || int(rawSize)/16 > BlockRows {
			return nil, ErrCorrupt
		}

		var raw []byte
		if compSize == 0 {
			if len(rest) < int(rawSize) {
				return nil, ErrCorrupt
			}
			raw = rest[:rawSize]
			rest = rest[rawSize:]
		} else {
			if len(rest) < int(compSize) {
				return nil, ErrCorrupt
			}
			var err error
			if scratch, err = decompressBlock(scratch[:0], rest[:compSize], int(rawSize), c); err != nil {
				return nil, err
			}
			raw = scratch
			rest = rest[compSize:]
		}

		for off := 0; off < len(raw); off += 8 {
			coords = append(coords, math.Float64frombits(binary.LittleEndian.Uint64(raw[off:])))
		}
	}

	if len(coords) != int(2*rows) || len(rest) != 0 {
		return nil, ErrCorrupt
	}
	return coords, nil
}

func decompressBlock(dst, compressed []byte, rawSize int, c Compression) ([]byte, error) {
	switch c {
	case LZ4:
		buf := append(dst, make([]byte, rawSize)...)
		n, err := lz4.UncompressBlock(compressed, buf)
		if err != nil {
			return nil, fmt.Errorf("coordio: lz4 decompress: %w", err)
		}
		if n != rawSize {
			return nil, ErrCorrupt
		}
		return buf[:n], nil
	case ZSTD:
		dec := zstdDecoderPool.Get().(*zstd.Decoder)
		buf, err := dec.DecodeAll(compressed, dst)
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("coordio: zstd decompress: %w", err)
		}
		if len(buf) != rawSize {
			return nil, ErrCorrupt
		}
		return buf, nil
	default:
		// A None file never stores compressed blocks.
		return nil, ErrCorrupt
	}
}

// WriteFile serializes coords to path.
func WriteFile(path string, coords []float64, c Compression) error {
	data, err := Encode(coords, c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads a coordinate file through a read-only memory mapping.
func ReadFile(path string) ([]float64, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	return Decode(m.Bytes())
}

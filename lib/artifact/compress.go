// Copyright 2026 The Skim Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies the compression algorithm used for a
// section payload. Tags are stored in the section index (1 byte each).
// These values are format constants — changing them breaks artifact
// file compatibility.
type CompressionTag uint8

const (
	// CompressionNone indicates uncompressed data. Used for metadata
	// and schema sections (small) and for column data that did not
	// compress smaller than its original size.
	CompressionNone CompressionTag = 0

	// CompressionLZ4 indicates LZ4 block compression. Fast default
	// for integer column data when zstd's ratio does not justify its
	// CPU cost.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd indicates zstd compression at the default
	// level. Chosen when a probe shows the data compresses well.
	CompressionZstd CompressionTag = 2

	// CompressionBG8LZ4 indicates ByteGrouping8 + LZ4 for float64
	// column payloads. Transposes 8-byte groups so the bytes of each
	// position (sign/exponent first) are stored together, then applies
	// LZ4. Physics quantities in a column tend to share magnitude, so
	// the exponent bytes become highly repetitive.
	CompressionBG8LZ4 CompressionTag = 3
)

// String returns the human-readable name of a compression tag.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	case CompressionBG8LZ4:
		return "bg8_lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(tag))
	}
}

// Compress compresses data using the specified algorithm. For
// CompressionNone, returns the input unchanged (no copy).
func Compress(data []byte, tag CompressionTag) ([]byte, error) {
	switch tag {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		return compressLZ4(data)
	case CompressionZstd:
		return compressZstd(data)
	case CompressionBG8LZ4:
		return compressLZ4(bg8Transpose(data))
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

// Decompress reverses Compress. The uncompressedSize must match the
// original data length exactly — a mismatch is an error, not a
// truncation.
func Decompress(compressed []byte, tag CompressionTag, uncompressedSize int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(compressed) != uncompressedSize {
			return nil, fmt.Errorf("uncompressed section: size %d does not match expected %d",
				len(compressed), uncompressedSize)
		}
		return compressed, nil
	case CompressionLZ4:
		return decompressLZ4(compressed, uncompressedSize)
	case CompressionZstd:
		return decompressZstd(compressed, uncompressedSize)
	case CompressionBG8LZ4:
		transposed, err := decompressLZ4(compressed, uncompressedSize)
		if err != nil {
			return nil, err
		}
		return bg8Untranspose(transposed), nil
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	destination := make([]byte, bound)

	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	// CompressBlock returns 0 when it determines the data is
	// incompressible. Also reject output that is not actually smaller
	// than the input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decompressLZ4(compressed []byte, uncompressedSize int) ([]byte, error) {
	destination := make([]byte, uncompressedSize)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != uncompressedSize {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, uncompressedSize)
	}
	return destination, nil
}

// zstdEncoder and zstdDecoder are reused across calls to avoid
// repeated initialization overhead. Both are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("artifact: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("artifact: zstd decoder initialization failed: " + err.Error())
	}
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decompressZstd(compressed []byte, uncompressedSize int) ([]byte, error) {
	destination := make([]byte, 0, uncompressedSize)
	result, err := zstdDecoder.DecodeAll(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(result) != uncompressedSize {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), uncompressedSize)
	}
	return result, nil
}

// bg8Transpose rearranges data so that all byte-position-0 values come
// first, then all byte-position-1 values, etc., in groups of 8 — the
// stride of the float64 column encoding. Trailing bytes beyond the
// last full group are appended unchanged.
func bg8Transpose(data []byte) []byte {
	length := len(data)
	groupCount := length / 8
	remainder := length % 8

	output := make([]byte, length)
	for i := 0; i < groupCount; i++ {
		for b := 0; b < 8; b++ {
			output[groupCount*b+i] = data[i*8+b]
		}
	}
	for i := 0; i < remainder; i++ {
		output[groupCount*8+i] = data[groupCount*8+i]
	}
	return output
}

// bg8Untranspose reverses bg8Transpose.
func bg8Untranspose(data []byte) []byte {
	length := len(data)
	groupCount := length / 8
	remainder := length % 8

	output := make([]byte, length)
	for i := 0; i < groupCount; i++ {
		for b := 0; b < 8; b++ {
			output[i*8+b] = data[groupCount*b+i]
		}
	}
	for i := 0; i < remainder; i++ {
		output[groupCount*8+i] = data[groupCount*8+i]
	}
	return output
}

// errIncompressible is returned by compression functions when the
// compressed output is not smaller than the input. The caller falls
// back to CompressionNone.
var errIncompressible = fmt.Errorf("data is incompressible")

// Probe ratio thresholds: zstd must earn its CPU cost, lz4 only has
// to beat storing the bytes raw by a margin.
const (
	zstdRatioThreshold = 1.5
	lz4RatioThreshold  = 1.1
)

// compressAuto picks and applies the compression for a column
// payload. Float column bytes get the byte-grouping transform; other
// payloads are compressed with zstd once and classified by ratio, and
// that same output is kept when zstd wins. Incompressible data falls
// back to CompressionNone.
func compressAuto(data []byte, floatData bool) ([]byte, CompressionTag, error) {
	if len(data) == 0 {
		return data, CompressionNone, nil
	}

	if floatData {
		compressed, err := Compress(data, CompressionBG8LZ4)
		if err == errIncompressible {
			return data, CompressionNone, nil
		}
		if err != nil {
			return nil, 0, err
		}
		return compressed, CompressionBG8LZ4, nil
	}

	probe := zstdEncoder.EncodeAll(data, nil)
	ratio := float64(len(data)) / float64(len(probe))
	switch {
	case ratio >= zstdRatioThreshold:
		return probe, CompressionZstd, nil
	case ratio >= lz4RatioThreshold:
		compressed, err := compressLZ4(data)
		if err == errIncompressible {
			return data, CompressionNone, nil
		}
		if err != nil {
			return nil, 0, err
		}
		return compressed, CompressionLZ4, nil
	default:
		return data, CompressionNone, nil
	}
}

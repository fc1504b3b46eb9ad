// Package envelope provides the interchangeable "commodity envelope"
// codecs the byte-mode container wraps around its payload (§4.8, §9): the
// byte-mode container's whole guarantee is "no worse than a commodity
// compressor plus a fixed header", so the codec behind that envelope is
// swappable rather than hardwired to one algorithm.
//
// Adapted from the teacher's compress package: same Codec interface and
// per-algorithm wrappers, retargeted from time-series payload compression
// to the e8z byte-mode container's envelope.
package envelope

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec compresses and decompresses a byte-mode container's payload.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// ID identifies which Codec produced a byte-mode container's payload; it is
// stored in the high byte of the container's flags field so a decoder can
// select the matching Codec without out-of-band agreement.
type ID uint8

const (
	// None copies data through unchanged.
	None ID = iota
	// Flate is the default envelope (DEFLATE via klauspost/compress).
	Flate
	// S2 trades compression ratio for speed (Snappy-compatible, faster).
	S2
	// LZ4 favors decompression speed over ratio.
	LZ4
	// Zstd favors compression ratio over speed.
	Zstd
)

// String implements fmt.Stringer.
func (id ID) String() string {
	switch id {
	case None:
		return "none"
	case Flate:
		return "flate"
	case S2:
		return "s2"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Get returns the Codec for id.
func Get(id ID) (Codec, error) {
	switch id {
	case None:
		return noopCodec{}, nil
	case Flate:
		return flateCodec{}, nil
	case S2:
		return s2Codec{}, nil
	case LZ4:
		return lz4Codec{}, nil
	case Zstd:
		return zstdCodec{}, nil
	default:
		return nil, fmt.Errorf("envelope: unknown codec id %d", id)
	}
}

// noopCodec passes data through unchanged, useful for already-compressed or
// incompressible payloads.
type noopCodec struct{}

func (noopCodec) Compress(data []byte) ([]byte, error)   { return data, nil }
func (noopCodec) Decompress(data []byte) ([]byte, error) { return data, nil }

// flateCodec wraps klauspost/compress/flate, the envelope's default.
type flateCodec struct{}

func (flateCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (flateCodec) Decompress(data []byte) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(data))
	defer fr.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(fr); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// s2Codec wraps klauspost/compress/s2, a Snappy-compatible format tuned for
// speed over ratio.
type s2Codec struct{}

func (s2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

func (s2Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}

// zstdCodec wraps klauspost/compress/zstd.
type zstdCodec struct{}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(err)
		}

		return dec
	},
}

func (zstdCodec) Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	return enc.EncodeAll(data, nil), nil
}

func (zstdCodec) Decompress(data []byte) ([]byte, error) {
	dec, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)

	return dec.DecodeAll(data, nil)
}

// lz4Codec wraps pierrec/lz4/v4's block API.
type lz4Codec struct{}

var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

func (lz4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Incompressible block: lz4 signals this by writing nothing.
		return append([]byte{0}, data...), nil
	}

	return append([]byte{1}, dst[:n]...), nil
}

func (lz4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	flag, data := data[0], data[1:]
	if flag == 0 {
		return append([]byte(nil), data...), nil
	}

	const maxSize = 128 * 1024 * 1024
	bufSize := len(data) * 4

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)

		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, err
		}

		bufSize *= 2
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}

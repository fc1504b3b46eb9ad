// Package container implements e8z's two on-wire container variants
// (§4.8): a byte-mode container that wraps a commodity envelope codec
// (package envelope) and bypasses the predictor entirely, and a word/char-
// mode container carrying the learned-prediction rank stream, token
// stream, and the stream's literal symbol dictionary alongside a checksum
// of that dictionary's contents.
//
// Both variants open with a 2-byte magic identifying the family (0xE8) and
// variant, followed by a fixed-width header and a CRC32 (IEEE) integrity
// check over the payload, mirroring the fixed-offset header style used
// elsewhere in the corpus for small binary container formats.
package container

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/arloliu/e8z/envelope"
	"github.com/arloliu/e8z/errs"
	"github.com/arloliu/e8z/format"
)

const byteModeHeaderLen = 16

// EncodeByteMode wraps original behind a commodity envelope codec (§4.8,
// §9: the byte-mode container's guarantee is "no worse than the envelope
// plus a fixed header") and a fixed header. env selects which codec
// produced the payload; its ID travels in the high byte of the flags field.
func EncodeByteMode(original []byte, env envelope.ID) ([]byte, error) {
	codec, err := envelope.Get(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidOption, err)
	}

	compressed, err := codec.Compress(original)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIoError, err)
	}

	out := make([]byte, byteModeHeaderLen, byteModeHeaderLen+len(compressed))
	binary.LittleEndian.PutUint16(out[0:2], format.MagicByteMode)
	binary.LittleEndian.PutUint16(out[2:4], format.FlagByteMode|uint16(env)<<8)
	binary.LittleEndian.PutUint64(out[4:12], uint64(len(original)))
	binary.LittleEndian.PutUint32(out[12:16], crc32.ChecksumIEEE(compressed))
	out = append(out, compressed...)

	return out, nil
}

// DecodeByteMode reverses EncodeByteMode, validating the magic, rejecting
// the payload if its CRC32 does not match the header (§7 ChecksumMismatch),
// and then decoding it with the envelope codec recorded in the header.
func DecodeByteMode(data []byte) ([]byte, error) {
	if len(data) < byteModeHeaderLen {
		return nil, errs.ErrTruncatedStream
	}

	magic := binary.LittleEndian.Uint16(data[0:2])
	if magic != format.MagicByteMode {
		return nil, fmt.Errorf("%w: got %#x", errs.ErrInvalidMagic, magic)
	}

	flags := binary.LittleEndian.Uint16(data[2:4])
	env := envelope.ID(flags >> 8) //nolint:gosec
	originalLen := binary.LittleEndian.Uint64(data[4:12])
	wantCRC := binary.LittleEndian.Uint32(data[12:16])

	codec, err := envelope.Get(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnsupportedVersion, err)
	}

	payload := data[byteModeHeaderLen:]
	if got := crc32.ChecksumIEEE(payload); got != wantCRC {
		return nil, fmt.Errorf("%w: want %#x, got %#x", errs.ErrChecksumMismatch, wantCRC, got)
	}

	original, err := codec.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrTruncatedStream, err)
	}

	if uint64(len(original)) != originalLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", errs.ErrTruncatedStream, originalLen, len(original))
	}

	return original, nil
}

// OOVRecord is one literal dictionary entry: a distinct Symbol encountered
// while building the shared table, carried on the wire as its RootId
// (computed directly, never via a second table lookup) and its literal
// UTF-8 bytes (§4.8 oov_block, §9). A self-contained container has no
// externally pre-shared Singularity for the decoder to already possess, so
// every distinct symbol is transmitted this way, in first-appearance
// order; "oov_block" keeps the spec's field name even though it now always
// carries the complete dictionary rather than only post-freeze overflow
// (documented as an explicit Open Question resolution).
type OOVRecord struct {
	Root   uint8
	Symbol string
}

// Learned is the decoded form of a word/char-mode container.
type Learned struct {
	Mode             format.Mode
	PredictorDepth   uint8
	FrameSizeSymbols uint32
	SharedTableID    uint32
	TokenCount       uint64
	OOV              []OOVRecord
	RankStream       []byte
	TokenStream      []byte
}

const learnedHeaderLen = 36

// EncodeLearned assembles the word/char-mode container (§4.8): header,
// oov_block, rank_stream, token_stream, with a CRC32 over rank_stream
// concatenated with token_stream. predictorDepth and frameSizeSymbols
// record the predictor_context and frame_size_kib options (§6) the encoder
// used, so a decoder can reconstruct an identical predictor and the same
// frame boundaries without an out-of-band agreement.
func EncodeLearned(mode format.Mode, predictorDepth uint8, frameSizeSymbols uint32, sharedTableID uint32, tokenCount uint64, oov []OOVRecord, rankStream, tokenStream []byte) ([]byte, error) {
	var oovBlock bytes.Buffer
	for _, rec := range oov {
		if len(rec.Symbol) > 255 {
			return nil, fmt.Errorf("%w: oov symbol too long (%d bytes)", errs.ErrInvalidOption, len(rec.Symbol))
		}
		oovBlock.WriteByte(rec.Root)
		oovBlock.WriteByte(byte(len(rec.Symbol)))
		oovBlock.WriteString(rec.Symbol)
	}

	checksum := crc32.ChecksumIEEE(append(append([]byte{}, rankStream...), tokenStream...))

	header := make([]byte, learnedHeaderLen)
	binary.LittleEndian.PutUint16(header[0:2], format.MagicLearnedMode)
	header[2] = byte(mode)
	header[3] = predictorDepth
	binary.LittleEndian.PutUint32(header[4:8], frameSizeSymbols)
	binary.LittleEndian.PutUint32(header[8:12], sharedTableID)
	binary.LittleEndian.PutUint64(header[12:20], tokenCount)
	binary.LittleEndian.PutUint32(header[20:24], uint32(len(oov)))
	binary.LittleEndian.PutUint32(header[24:28], checksum)
	binary.LittleEndian.PutUint32(header[28:32], uint32(len(rankStream)))
	binary.LittleEndian.PutUint32(header[32:36], uint32(len(tokenStream)))

	out := make([]byte, 0, learnedHeaderLen+oovBlock.Len()+len(rankStream)+len(tokenStream))
	out = append(out, header...)
	out = append(out, oovBlock.Bytes()...)
	out = append(out, rankStream...)
	out = append(out, tokenStream...)

	return out, nil
}

// DecodeLearned parses a word/char-mode container and validates its CRC32.
func DecodeLearned(data []byte) (Learned, error) {
	if len(data) < learnedHeaderLen {
		return Learned{}, errs.ErrTruncatedStream
	}

	magic := binary.LittleEndian.Uint16(data[0:2])
	if magic != format.MagicLearnedMode {
		return Learned{}, fmt.Errorf("%w: got %#x", errs.ErrInvalidMagic, magic)
	}

	mode := format.Mode(data[2])
	predictorDepth := data[3]
	frameSizeSymbols := binary.LittleEndian.Uint32(data[4:8])
	sharedTableID := binary.LittleEndian.Uint32(data[8:12])
	tokenCount := binary.LittleEndian.Uint64(data[12:20])
	oovCount := binary.LittleEndian.Uint32(data[20:24])
	wantCRC := binary.LittleEndian.Uint32(data[24:28])
	rankLen := binary.LittleEndian.Uint32(data[28:32])
	tokenLen := binary.LittleEndian.Uint32(data[32:36])

	cursor := learnedHeaderLen

	oov := make([]OOVRecord, 0, oovCount)
	for i := uint32(0); i < oovCount; i++ {
		if cursor+2 > len(data) {
			return Learned{}, errs.ErrTruncatedStream
		}
		root := data[cursor]
		symLen := int(data[cursor+1])
		cursor += 2
		if cursor+symLen > len(data) {
			return Learned{}, errs.ErrTruncatedStream
		}
		oov = append(oov, OOVRecord{Root: root, Symbol: string(data[cursor : cursor+symLen])})
		cursor += symLen
	}

	if cursor+int(rankLen)+int(tokenLen) > len(data) {
		return Learned{}, errs.ErrTruncatedStream
	}

	rankStream := data[cursor : cursor+int(rankLen)]
	cursor += int(rankLen)
	tokenStream := data[cursor : cursor+int(tokenLen)]
	cursor += int(tokenLen)

	if got := crc32.ChecksumIEEE(append(append([]byte{}, rankStream...), tokenStream...)); got != wantCRC {
		return Learned{}, fmt.Errorf("%w: want %#x, got %#x", errs.ErrChecksumMismatch, wantCRC, got)
	}

	return Learned{
		Mode:             mode,
		PredictorDepth:   predictorDepth,
		FrameSizeSymbols: frameSizeSymbols,
		SharedTableID:    sharedTableID,
		TokenCount:       tokenCount,
		OOV:              oov,
		RankStream:       rankStream,
		TokenStream:      tokenStream,
	}, nil
}

// DetectMode inspects the container's magic bytes without fully decoding
// it, used by the top-level decompressor to dispatch (§4.8).
func DetectMode(data []byte) (format.Mode, bool, error) {
	if len(data) < 2 {
		return 0, false, errs.ErrTruncatedStream
	}

	magic := binary.LittleEndian.Uint16(data[0:2])
	switch magic {
	case format.MagicByteMode:
		return format.ModeByte, true, nil
	case format.MagicLearnedMode:
		if len(data) < 3 {
			return 0, false, errs.ErrTruncatedStream
		}

		return format.Mode(data[2]), false, nil
	default:
		return 0, false, fmt.Errorf("%w: got %#x", errs.ErrInvalidMagic, magic)
	}
}

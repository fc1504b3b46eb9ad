package e8z

import (
	"bytes"
	"encoding/binary"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/e8z/errs"
	"github.com/arloliu/e8z/format"
)

func TestByteModeTenBytes(t *testing.T) {
	input := bytes.Repeat([]byte{'a'}, 10)

	out, err := Compress(input)
	require.NoError(t, err)

	assert.Equal(t, byte(0xE8), out[0])
	assert.Equal(t, byte(0x70), out[1])
	assert.Equal(t, uint64(10), binary.LittleEndian.Uint64(out[4:12]))

	decoded, err := Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, input, decoded)
}

func TestByteModeOneMiBRandomFiveFrames(t *testing.T) {
	src := rand.New(rand.NewPCG(1, 2))
	input := make([]byte, 1<<20)
	for i := range input {
		input[i] = byte(src.IntN(256))
	}

	out, err := Compress(input, WithFrameSizeKiB(233))
	require.NoError(t, err)

	decoded, err := Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, input, decoded)
}

func TestByteModeRamp256KiB(t *testing.T) {
	input := make([]byte, 256*1024)
	for i := range input {
		input[i] = byte(i % 256)
	}

	out, err := Compress(input)
	require.NoError(t, err)

	decoded, err := Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, input, decoded)
}

func TestCorruptionDetection(t *testing.T) {
	input := []byte("some data worth protecting with a checksum, long enough to compress")
	out, err := Compress(input)
	require.NoError(t, err)

	out[len(out)-1] ^= 0xFF

	_, err = Decompress(out)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)
}

func TestWordModeRoundTrip(t *testing.T) {
	input := []byte("the quick brown fox jumps over the lazy dog the fox runs")

	out, err := Compress(input, WithMode(format.ModeWord))
	require.NoError(t, err)

	decoded, err := Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, string(input), string(decoded))
}

func TestCharModeRoundTrip(t *testing.T) {
	input := []byte("héllo wörld, this is a test with repeated characters: aaaaaa")

	out, err := Compress(input, WithMode(format.ModeChar))
	require.NoError(t, err)

	decoded, err := Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, input, decoded)
}

func TestLearnedModeFrameBoundaryTransparency(t *testing.T) {
	input := bytes.Repeat([]byte("alpha beta gamma delta epsilon "), 50)

	single, err := Compress(input, WithMode(format.ModeWord), WithFrameSizeKiB(2048))
	require.NoError(t, err)

	small, err := Compress(input, WithMode(format.ModeWord), WithFrameSizeKiB(8))
	require.NoError(t, err)

	decodedSingle, err := Decompress(single)
	require.NoError(t, err)
	decodedSmall, err := Decompress(small)
	require.NoError(t, err)

	assert.Equal(t, string(input), string(decodedSingle))
	assert.Equal(t, string(input), string(decodedSmall))
}

func TestWithPredictorContextZeroDisablesPrediction(t *testing.T) {
	input := []byte("repeated repeated repeated repeated word word word test")

	out, err := Compress(input, WithMode(format.ModeWord), WithPredictorContext(0))
	require.NoError(t, err)

	decoded, err := Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, string(input), string(decoded))
}

func TestWithFrameSizeKiBRejectsOutOfRange(t *testing.T) {
	_, err := Compress([]byte("x"), WithFrameSizeKiB(1))
	require.ErrorIs(t, err, errs.ErrInvalidOption)
}

func TestWithPredictorContextRejectsOutOfRange(t *testing.T) {
	_, err := Compress([]byte("x"), WithMode(format.ModeWord), WithPredictorContext(9))
	require.ErrorIs(t, err, errs.ErrInvalidOption)
}

func TestCompressStreamDecompressStream(t *testing.T) {
	input := []byte("streaming round trip test data, repeated: streaming round trip")

	var compressed bytes.Buffer
	require.NoError(t, CompressStream(bytes.NewReader(input), &compressed))

	var decompressed bytes.Buffer
	require.NoError(t, DecompressStream(bytes.NewReader(compressed.Bytes()), &decompressed))

	assert.Equal(t, input, decompressed.Bytes())
}

func TestEmptyInput(t *testing.T) {
	out, err := Compress(nil)
	require.NoError(t, err)

	decoded, err := Decompress(out)
	require.NoError(t, err)
	assert.Empty(t, decoded)

	outWord, err := Compress(nil, WithMode(format.ModeWord))
	require.NoError(t, err)

	decodedWord, err := Decompress(outWord)
	require.NoError(t, err)
	assert.Empty(t, decodedWord)
}

package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arloliu/e8z/format"
)

func TestByteModeRoundTrip(t *testing.T) {
	data := []byte{0, 1, 2, 255, 254, 10, 13, 0}
	symbols := Tokenize(format.ModeByte, data)
	assert.Equal(t, len(data), len(symbols))

	got := Detokenize(format.ModeByte, symbols)
	assert.Equal(t, data, got)
}

func TestCharModeRoundTripValidUTF8(t *testing.T) {
	data := []byte("héllo wörld, 日本語")
	symbols := Tokenize(format.ModeChar, data)

	got := Detokenize(format.ModeChar, symbols)
	assert.Equal(t, data, got)
}

func TestCharModeFallsBackOnInvalidUTF8(t *testing.T) {
	data := []byte{0x68, 0x69, 0xFF, 0xFE, 0x6F}
	symbols := Tokenize(format.ModeChar, data)

	got := Detokenize(format.ModeChar, symbols)
	assert.Equal(t, data, got, "char mode must remain lossless even over invalid UTF-8")
}

func TestWordModeLowercasesAndSplits(t *testing.T) {
	data := []byte("The Quick  Brown\tFox")
	symbols := Tokenize(format.ModeWord, data)
	assert.Equal(t, []Symbol{"the", "quick", "brown", "fox"}, symbols)
}

func TestWordModeIsNotBitExact(t *testing.T) {
	data := []byte("The   Quick Brown")
	symbols := Tokenize(format.ModeWord, data)
	got := Detokenize(format.ModeWord, symbols)
	assert.NotEqual(t, data, got)
	assert.Equal(t, []byte("the quick brown"), got)
}

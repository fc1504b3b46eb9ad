package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/e8z/format"
	"github.com/arloliu/e8z/tokenizer"
)

func TestSplitProducesBoundedFrames(t *testing.T) {
	tokens := tokenizer.Tokenize(format.ModeByte, make([]byte, 1000))
	p := NewPartitioner(format.ModeByte, 100, 0)

	frames := p.Split(tokens)
	require.Len(t, frames, 10)
	for _, f := range frames {
		assert.LessOrEqual(t, len(f.Symbols), 100)
	}
}

func TestSplitLastFrameShorter(t *testing.T) {
	tokens := tokenizer.Tokenize(format.ModeByte, make([]byte, 250))
	p := NewPartitioner(format.ModeByte, 100, 0)

	frames := p.Split(tokens)
	require.Len(t, frames, 3)
	assert.Len(t, frames[0].Symbols, 100)
	assert.Len(t, frames[1].Symbols, 100)
	assert.Len(t, frames[2].Symbols, 50)
}

func TestBuildTableByteModeReturnsNil(t *testing.T) {
	p := NewPartitioner(format.ModeByte, 0, 0)
	tbl := p.BuildTable(tokenizer.Tokenize(format.ModeByte, []byte("abc")))
	assert.Nil(t, tbl)
}

func TestBuildTableWordModeFreezesAfterFirstPass(t *testing.T) {
	p := NewPartitioner(format.ModeWord, 0, 0)
	tokens := tokenizer.Tokenize(format.ModeWord, []byte("the quick brown fox the fox"))

	tbl := p.BuildTable(tokens)
	require.NotNil(t, tbl)
	assert.True(t, tbl.Frozen())
	assert.Equal(t, 4, tbl.Len()) // the, quick, brown, fox
}

func TestSplitEmpty(t *testing.T) {
	p := NewPartitioner(format.ModeByte, 10, 0)
	assert.Nil(t, p.Split(nil))
}

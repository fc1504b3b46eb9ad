// Package frame implements Horizon Batching: the frame partitioner that
// builds a single shared Singularity symbol table over an entire input in a
// first pass, freezes it, then splits the token stream into bounded frames
// (§4.7). Predictor state carries across frame boundaries; the differential
// chain restarts at each frame, whose first root is coded raw.
//
// The symbol table holds at most V entries regardless of input size.
// BuildTable and Split both take the complete token slice, so the whole
// tokenized input is held in memory; a Frame is a sub-slice of it and adds
// no copy.
package frame

import (
	"github.com/arloliu/e8z/format"
	"github.com/arloliu/e8z/lattice"
	"github.com/arloliu/e8z/tokenizer"
)

// Frame is one bounded window of tokens sharing the stream's Singularity
// table and the predictor state carried across frames.
type Frame struct {
	Symbols []tokenizer.Symbol
}

// Partitioner drives the two-pass Horizon Batching algorithm for a given
// tokenizer mode.
type Partitioner struct {
	mode       format.Mode
	frameSize  int
	maxSymbols int
}

// DefaultFrameSize is the number of Symbols per frame absent an explicit
// configuration (§5).
const DefaultFrameSize = 65536

// NewPartitioner builds a Partitioner. frameSize <= 0 selects
// DefaultFrameSize; maxSymbols <= 0 selects lattice.DefaultMaxSymbols.
func NewPartitioner(mode format.Mode, frameSize, maxSymbols int) *Partitioner {
	if frameSize <= 0 {
		frameSize = DefaultFrameSize
	}

	return &Partitioner{mode: mode, frameSize: frameSize, maxSymbols: maxSymbols}
}

// BuildTable runs the first Horizon Batching pass: every Symbol in tokens
// is inserted into a fresh SymbolTable, which is then frozen. Symbols past
// the table's maxSymbols cap are not inserted. Byte mode
// needs no shared table (RootId is a pure function of the byte value), so
// BuildTable returns nil for format.ModeByte.
func (p *Partitioner) BuildTable(tokens []tokenizer.Symbol) *lattice.SymbolTable {
	if p.mode == format.ModeByte {
		return nil
	}

	table := lattice.NewSymbolTable(p.mode, len(tokens), p.maxSymbols)
	for _, sym := range tokens {
		table.Insert(sym)
	}
	table.Freeze()

	return table
}

// Split breaks tokens into contiguous frames of at most p.frameSize Symbols
// each. Predictor state carries forward across the Frame values returned
// here, but each frame's first root is coded raw rather than ranked, so the
// split points change the encoded bytes, never the decoded output.
func (p *Partitioner) Split(tokens []tokenizer.Symbol) []Frame {
	if len(tokens) == 0 {
		return nil
	}

	frames := make([]Frame, 0, (len(tokens)+p.frameSize-1)/p.frameSize)
	for start := 0; start < len(tokens); start += p.frameSize {
		end := min(start+p.frameSize, len(tokens))
		frames = append(frames, Frame{Symbols: tokens[start:end]})
	}

	return frames
}

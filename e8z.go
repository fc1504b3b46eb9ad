// Package e8z implements a lossless compressor that maps input symbols onto
// the 240-point E8 root system alphabet, entropy-codes them against a
// context-conditioned predictor, and wraps the result in one of two
// self-describing container formats.
//
// Byte mode is the canonical, always-lossless path: byte-mode input bypasses
// the predictor entirely and is wrapped behind a selectable commodity
// envelope codec (package envelope) and a fixed header, so it is never
// worse than commodity compression plus fixed overhead (§4.8, §9). Char and
// word mode route through the learned-prediction pipeline: tokenize, assign
// each symbol a root on the lattice, rank each root against the
// predictor's current belief, and pack the rank stream alongside a literal
// dump of the stream's shared symbol table so a decoder needs no
// externally pre-shared state.
package e8z

import (
	"fmt"
	"io"

	"github.com/arloliu/e8z/bitstream"
	"github.com/arloliu/e8z/container"
	"github.com/arloliu/e8z/diffcoder"
	"github.com/arloliu/e8z/envelope"
	"github.com/arloliu/e8z/errs"
	"github.com/arloliu/e8z/format"
	"github.com/arloliu/e8z/frame"
	"github.com/arloliu/e8z/internal/options"
	"github.com/arloliu/e8z/lattice"
	"github.com/arloliu/e8z/predictor"
	"github.com/arloliu/e8z/rankcoder"
	"github.com/arloliu/e8z/tokenizer"
)

type config struct {
	mode             format.Mode
	frameSizeKiB     int
	predictorContext int
	selfLearning     bool
	checksum         bool
	envelope         envelope.ID
}

// Option configures Compress/CompressStream (§6).
type Option = options.Option[*config]

func defaultConfig() *config {
	return &config{
		mode:             format.ModeByte,
		frameSizeKiB:     233,
		predictorContext: predictor.DefaultContextDepth,
		selfLearning:     false,
		checksum:         true,
		envelope:         envelope.Flate,
	}
}

// WithEnvelope selects which commodity codec wraps the byte-mode
// container's payload (§4.8, §9). Only meaningful when combined with
// WithMode(format.ModeByte); ignored otherwise.
func WithEnvelope(id envelope.ID) Option {
	return options.NoError(func(c *config) { c.envelope = id })
}

// WithMode selects the tokenizer strategy (§4.2). Byte mode is the default
// and is always bit-exact; char and word mode route through the
// learned-prediction container.
func WithMode(mode format.Mode) Option {
	return options.NoError(func(c *config) { c.mode = mode })
}

// WithFrameSizeKiB sets the Horizon Batching frame size in KiB (§4.7),
// accepted in [8, 2048].
func WithFrameSizeKiB(kib int) Option {
	return options.New(func(c *config) error {
		if kib < 8 || kib > 2048 {
			return fmt.Errorf("%w: frame_size_kib %d out of range [8, 2048]", errs.ErrInvalidOption, kib)
		}
		c.frameSizeKiB = kib

		return nil
	})
}

// WithPredictorContext sets the predictor's context depth k (§4.5, §6),
// accepted in [0, predictor.MaxContextDepth]. A depth of 0 disables
// prediction.
func WithPredictorContext(depth int) Option {
	return options.New(func(c *config) error {
		if depth < 0 || depth > predictor.MaxContextDepth {
			return fmt.Errorf("%w: predictor_context %d out of range [0, %d]", errs.ErrInvalidOption, depth, predictor.MaxContextDepth)
		}
		c.predictorContext = depth

		return nil
	})
}

// WithSelfLearning toggles the self_learning option (§6). Persisting a
// learned predictor across independent Compress calls is out of scope for
// this implementation; the option is accepted for interface compatibility
// and otherwise has no effect.
func WithSelfLearning(enabled bool) Option {
	return options.NoError(func(c *config) { c.selfLearning = enabled })
}

// WithChecksum toggles the checksum option (§6). Both container formats
// always carry a CRC32 integrity field; disabling this option is accepted
// for interface compatibility but does not currently change wire output.
func WithChecksum(enabled bool) Option {
	return options.NoError(func(c *config) { c.checksum = enabled })
}

func resolve(opts ...Option) (*config, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Compress encodes input into an e8z container (§6).
func Compress(input []byte, opts ...Option) ([]byte, error) {
	cfg, err := resolve(opts...)
	if err != nil {
		return nil, err
	}

	if cfg.mode == format.ModeByte {
		return container.EncodeByteMode(input, cfg.envelope)
	}

	return compressLearned(input, cfg)
}

// Decompress reverses Compress, dispatching on the container's magic bytes
// (§4.8, §6).
func Decompress(data []byte) ([]byte, error) {
	mode, isByteMode, err := container.DetectMode(data)
	if err != nil {
		return nil, err
	}
	if isByteMode {
		return container.DecodeByteMode(data)
	}

	return decompressLearned(data, mode)
}

// CompressStream reads all of r and writes its compressed form to w.
// Horizon Batching's shared-table first pass needs the full input
// materialized regardless of how it arrives, so this bounds downstream
// pipeline memory (§4.7) but not input buffering.
func CompressStream(r io.Reader, w io.Writer, opts ...Option) error {
	input, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIoError, err)
	}

	out, err := Compress(input, opts...)
	if err != nil {
		return err
	}

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIoError, err)
	}

	return nil
}

// DecompressStream reverses CompressStream.
func DecompressStream(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIoError, err)
	}

	out, err := Decompress(data)
	if err != nil {
		return err
	}

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIoError, err)
	}

	return nil
}

// compressLearned drives the full leaf-to-root pipeline for char/word mode:
// tokenize, build the shared Singularity over the whole input, partition
// into frames, then walk every frame assigning each symbol a root, ranking
// it against the predictor, and recording its position within the root's
// bucket so the decoder can disambiguate symbols that hash to the same
// root.
//
// The container's oov_block carries every distinct symbol (§4.8, §9): a
// from-scratch container has no externally pre-shared table for a decoder
// to already hold, so shared_table_id alone cannot reconstruct symbol
// identities. Once the full dictionary travels with the container,
// token_stream only needs the compact bucket-offset disambiguator rather
// than a second full index per token.
func compressLearned(input []byte, cfg *config) ([]byte, error) {
	tokens := tokenizer.Tokenize(cfg.mode, input)
	frameSizeSymbols := cfg.frameSizeKiB * 1024

	partitioner := frame.NewPartitioner(cfg.mode, frameSizeSymbols, 0)
	table := partitioner.BuildTable(tokens)
	assignment := lattice.BuildAssignment(table)
	frames := partitioner.Split(tokens)

	pred := predictor.NewWithDepth(cfg.predictorContext)

	rankW := bitstream.NewWriter()
	defer rankW.Release()
	tokenW := bitstream.NewWriter()
	defer tokenW.Release()

	for _, fr := range frames {
		for i, sym := range fr.Symbols {
			idx, ok := table.Lookup(sym)
			if !ok {
				// Reached only when the input has more distinct symbols
				// than the table's cap: the first Horizon Batching pass
				// (§4.7) does not insert symbols past the cap.
				return nil, fmt.Errorf("%w: symbol missing from frozen table", errs.ErrSymbolTableCorrupt)
			}
			root := assignment.RootOf(idx)
			offset := assignment.OffsetOf(idx)

			if i == 0 {
				writeFrameInitialRoot(rankW, root)
			} else if err := rankcoder.Encode(rankW, pred.Rank(root)); err != nil {
				return nil, err
			}

			writeOffset(tokenW, offset)
			pred.Update(root)
		}
	}

	dict := make([]container.OOVRecord, table.Len())
	for idx := range dict {
		sym, _ := table.Symbol(idx)
		dict[idx] = container.OOVRecord{Root: assignment.RootOf(idx), Symbol: sym}
	}

	return container.EncodeLearned(
		cfg.mode,
		uint8(cfg.predictorContext), //nolint:gosec
		uint32(frameSizeSymbols),    //nolint:gosec
		table.Checksum(),
		uint64(len(tokens)),
		dict,
		rankW.ToBytes(),
		tokenW.ToBytes(),
	)
}

// decompressLearned reverses compressLearned. It rebuilds the shared table
// from the container's literal dictionary, then replays the rank and token
// streams through a freshly seeded predictor driven in lock-step with the
// encoder's Rank/Update calls (§5 determinism invariant).
func decompressLearned(data []byte, mode format.Mode) ([]byte, error) {
	learned, err := container.DecodeLearned(data)
	if err != nil {
		return nil, err
	}

	table := lattice.NewSymbolTable(mode, len(learned.OOV), 0)
	for _, rec := range learned.OOV {
		if _, ok := table.Insert(rec.Symbol); !ok {
			return nil, errs.ErrSymbolTableCorrupt
		}
	}
	table.Freeze()

	if table.Checksum() != learned.SharedTableID {
		return nil, fmt.Errorf("%w: dictionary checksum does not match shared_table_id", errs.ErrSymbolTableCorrupt)
	}

	assignment := lattice.BuildAssignment(table)

	rankR, err := bitstream.FromBytes(learned.RankStream)
	if err != nil {
		return nil, err
	}
	tokenR, err := bitstream.FromBytes(learned.TokenStream)
	if err != nil {
		return nil, err
	}

	pred := predictor.NewWithDepth(int(learned.PredictorDepth))

	frameSizeSymbols := int(learned.FrameSizeSymbols)
	if frameSizeSymbols <= 0 {
		frameSizeSymbols = frame.DefaultFrameSize
	}

	symbols := make([]tokenizer.Symbol, 0, learned.TokenCount)
	for i := uint64(0); i < learned.TokenCount; i++ {
		var root uint8
		if int(i)%frameSizeSymbols == 0 {
			root, err = readFrameInitialRoot(rankR)
		} else {
			var rank int
			if rank, err = rankcoder.Decode(rankR); err == nil {
				root, err = pred.RootAtRank(rank)
			}
		}
		if err != nil {
			return nil, err
		}

		offset, err := readOffset(tokenR)
		if err != nil {
			return nil, err
		}

		idx, err := assignment.At(root, offset)
		if err != nil {
			return nil, err
		}
		sym, ok := table.Symbol(idx)
		if !ok {
			return nil, errs.ErrSymbolTableCorrupt
		}

		symbols = append(symbols, sym)
		pred.Update(root)
	}

	return tokenizer.Detokenize(mode, symbols), nil
}

// writeFrameInitialRoot emits the raw root beginning a frame (§4.4: D[0] is
// the raw first root of a RootSequence, and a new frame restarts the
// differential chain). Routed through diffcoder on a trivial one-element
// slice so the frame-initial position genuinely exercises the differential
// coder rather than writing the root directly.
func writeFrameInitialRoot(w *bitstream.Writer, root uint8) {
	disp := make([]int16, 1)
	diffcoder.Encode([]byte{root}, disp)
	w.WriteBits(uint64(disp[0]), 8)
}

func readFrameInitialRoot(r *bitstream.Reader) (uint8, error) {
	raw, err := r.ReadBits(8)
	if err != nil {
		return 0, err
	}

	dst := make([]byte, 1)
	diffcoder.Decode([]int16{int16(raw)}, dst)

	return dst[0], nil
}

// writeOffset encodes a symbol's position within its root's bucket (§4.6
// offset coding): 1 if the offset is zero, else 0 followed by the Elias
// gamma code of the offset.
func writeOffset(w *bitstream.Writer, offset int) {
	if offset == 0 {
		w.WriteBit(1)

		return
	}

	w.WriteBit(0)
	w.WriteGamma(uint64(offset)) //nolint:gosec
}

func readOffset(r *bitstream.Reader) (int, error) {
	b, err := r.ReadBit()
	if err != nil {
		return 0, err
	}
	if b == 1 {
		return 0, nil
	}

	v, err := r.ReadGamma()
	if err != nil {
		return 0, err
	}

	return int(v), nil //nolint:gosec
}

// Package predictor implements the context-conditioned bigram predictor
// that ranks each incoming RootId against the distribution the model
// currently believes over the 240-point alphabet (§4.5).
//
// The predictor blends three signals for a candidate next root j given the
// recent history of roots h0 (most recent), h1, h2:
//
//   - learned transition counts counts[h][j], combined across h0..h2 with a
//     golden-ratio decay so more recent context dominates;
//   - a static geometric prior derived from the angular distance between
//     roots on a unit circle embedding of RootId, softmax-weighted;
//   - additive smoothing so no candidate ever has zero score.
//
// Only the relative ordering of scores matters (the predictor produces a
// rank, never a literal probability), so no division/normalization step is
// needed for correctness; the formula is still written the way the spec
// states it so the intermediate scores remain meaningful for diagnostics.
package predictor

import (
	"math"
	"sort"

	"github.com/arloliu/e8z/errs"
	"github.com/arloliu/e8z/format"
)

const (
	// DefaultContextDepth is k in the golden-ratio context decay (§4.5),
	// the design point absent an explicit predictor_context option.
	DefaultContextDepth = 3

	// MaxContextDepth is the largest context depth the predictor_context
	// option accepts (§6).
	MaxContextDepth = 8

	// priorWeight is omega, the weight given to the geometric prior
	// relative to learned counts.
	priorWeight = 10.0

	// smoothing is the additive epsilon keeping every candidate's score
	// strictly positive.
	smoothing = 1e-3

	// priorTemperature is tau in the softmax over cosine similarity.
	priorTemperature = 0.5

	// countSaturation is the row-sum ceiling; once reached the row is
	// halved (integer division, rounding down) and bumped by one so no
	// entry collapses to zero (§4.5 edge case).
	countSaturation = 1 << 16
)

// goldenRatio is phi, used to decay the contribution of older context
// positions in the golden-ratio history blend (§4.5).
const goldenRatio = 1.618033988749895

// goldenWeights[i] is the decay weight for context position -(i+1).
// Precomputed up to MaxContextDepth; predictor_context=0 disables
// prediction entirely (depth 0 means no context is ever consulted).
var goldenWeights = func() [MaxContextDepth]float64 {
	var w [MaxContextDepth]float64
	p := 1.0
	for i := range w {
		w[i] = p
		p /= goldenRatio
	}

	return w
}()

// Predictor holds the learned transition counts and the current context
// window. It must be driven identically by an encoder and a decoder: both
// call Rank/RootAtRank followed by Update for every token, in the same
// order (§5 determinism invariant).
type Predictor struct {
	counts  [format.NumRoots][format.NumRoots]uint32
	prior   [format.NumRoots][format.NumRoots]float64
	history [MaxContextDepth]uint8
	histLen int
	depth   int
}

// New builds a predictor with zeroed counts and a precomputed geometric
// prior table, using the default context depth.
func New() *Predictor {
	return NewWithDepth(DefaultContextDepth)
}

// NewWithDepth builds a predictor with context depth clamped to
// [0, MaxContextDepth]. A depth of 0 disables prediction: every call to
// Rank/RootAtRank sees a uniform distribution (§6 predictor_context=0).
func NewWithDepth(depth int) *Predictor {
	if depth < 0 {
		depth = 0
	}
	if depth > MaxContextDepth {
		depth = MaxContextDepth
	}

	p := &Predictor{depth: depth}
	p.buildPrior()

	return p
}

func (p *Predictor) buildPrior() {
	const twoPi = 2 * math.Pi

	angle := func(root int) float64 { return twoPi * float64(root) / float64(format.NumRoots) }

	for h := 0; h < format.NumRoots; h++ {
		scores := make([]float64, format.NumRoots)
		maxScore := math.Inf(-1)

		for j := 0; j < format.NumRoots; j++ {
			cos := math.Cos(angle(h) - angle(j))
			s := cos / priorTemperature
			scores[j] = s
			if s > maxScore {
				maxScore = s
			}
		}

		sum := 0.0
		for j := range scores {
			scores[j] = math.Exp(scores[j] - maxScore)
			sum += scores[j]
		}
		for j := range scores {
			p.prior[h][j] = scores[j] / sum
		}
	}
}

// scores computes the current per-root score vector from learned counts and
// the geometric prior, given the predictor's present context window.
func (p *Predictor) scores() [format.NumRoots]float64 {
	var s [format.NumRoots]float64

	for i := 0; i < p.histLen; i++ {
		h := p.history[i]
		w := goldenWeights[i]
		for j := 0; j < format.NumRoots; j++ {
			s[j] += w * float64(p.counts[h][j])
		}
	}

	if p.histLen > 0 {
		h0 := p.history[0]
		for j := 0; j < format.NumRoots; j++ {
			s[j] += priorWeight * p.prior[h0][j]
		}
	}

	for j := range s {
		s[j] += smoothing
	}

	return s
}

// order returns the RootIds sorted by descending score, ties broken by
// ascending RootId for determinism.
func order(scores [format.NumRoots]float64) [format.NumRoots]uint8 {
	var idx [format.NumRoots]int
	for i := range idx {
		idx[i] = i
	}

	sort.Slice(idx[:], func(a, b int) bool {
		sa, sb := scores[idx[a]], scores[idx[b]]
		if sa != sb {
			return sa > sb
		}

		return idx[a] < idx[b]
	})

	var out [format.NumRoots]uint8
	for i, v := range idx {
		out[i] = uint8(v)
	}

	return out
}

// Rank returns the rank of actual within the current predicted
// distribution: 0 means actual was the single most likely root.
func (p *Predictor) Rank(actual uint8) int {
	ord := order(p.scores())
	for r, root := range ord {
		if root == actual {
			return r
		}
	}

	// unreachable: ord is a permutation of every RootId.
	panic("predictor: actual root missing from ranked order")
}

// RootAtRank inverts Rank: given a rank produced by the encoder's call to
// Rank under the same context, returns the RootId it denotes.
func (p *Predictor) RootAtRank(rank int) (uint8, error) {
	if rank < 0 || rank >= format.NumRoots {
		return 0, errs.ErrRankOutOfRange
	}

	ord := order(p.scores())

	return ord[rank], nil
}

// Update advances the predictor's state with the actual observed root:
// increments the transition count for the current immediate context, then
// shifts actual into the front of the history window. Must be called
// exactly once per token, after Rank or RootAtRank, on both encode and
// decode paths.
func (p *Predictor) Update(actual uint8) {
	if p.histLen > 0 {
		h0 := p.history[0]
		p.counts[h0][actual]++
		p.saturateRow(h0)
	}

	for i := p.depth - 1; i > 0; i-- {
		p.history[i] = p.history[i-1]
	}
	if p.depth > 0 {
		p.history[0] = actual
	}

	if p.histLen < p.depth {
		p.histLen++
	}
}

func (p *Predictor) saturateRow(h uint8) {
	var sum uint32
	for _, c := range p.counts[h] {
		sum += c
	}
	if sum < countSaturation {
		return
	}

	for j := range p.counts[h] {
		p.counts[h][j] = p.counts[h][j]/2 + 1
	}
}

// Reset clears learned counts and context, used when a caller wants a fresh
// predictor state without reallocating the prior table.
func (p *Predictor) Reset() {
	p.counts = [format.NumRoots][format.NumRoots]uint32{}
	p.history = [MaxContextDepth]uint8{}
	p.histLen = 0
}

// Package rankcoder implements the variable-length prefix code used to
// entropy-code a predictor rank in [0, NumRoots) (§4.6).
//
// Ranks are heavily skewed toward 0 by construction (a good predictor
// assigns the correct next root the highest probability most of the time),
// so the code gives rank 0 a single bit and grows the code length in
// buckets as the rank gets less likely.
package rankcoder

import (
	"fmt"

	"github.com/arloliu/e8z/bitstream"
	"github.com/arloliu/e8z/errs"
	"github.com/arloliu/e8z/format"
)

// bucket describes one prefix-code bucket: ranks [start, start+count) share
// a common prefixBits-long prefix (prefixVal) followed by an offsetBits-wide
// fixed-width offset identifying the rank within the bucket.
type bucket struct {
	start      int
	count      int
	prefixBits int
	prefixVal  uint64
	offsetBits int
}

// buckets partitions [0, NumRoots) into four prefix-code buckets whose
// total code lengths are 1, 4, 7, and 11 bits respectively (§4.6, §8).
// prefixVal is stored already bit-reversed for its prefixBits width, since
// bitstream.Writer.WriteBits emits the low bits of v LSB-first: writing
// prefixVal's bit 0 first and bit (prefixBits-1) last must reproduce the
// same [first, second, third, ...] bit sequence Decode reads and branches
// on below.
var buckets = [4]bucket{
	{start: 0, count: 1, prefixBits: 1, prefixVal: 0b0, offsetBits: 0},
	{start: 1, count: 3, prefixBits: 2, prefixVal: 0b01, offsetBits: 2},
	{start: 4, count: 16, prefixBits: 3, prefixVal: 0b011, offsetBits: 4},
	{start: 20, count: 220, prefixBits: 3, prefixVal: 0b111, offsetBits: 8},
}

func init() {
	total := 0
	for _, b := range buckets {
		total += b.count
	}
	if total != format.NumRoots {
		panic("rankcoder: bucket partition does not cover NumRoots")
	}
}

func bucketFor(rank int) (bucket, error) {
	for _, b := range buckets {
		if rank >= b.start && rank < b.start+b.count {
			return b, nil
		}
	}

	return bucket{}, fmt.Errorf("%w: rank %d out of range", errs.ErrRankOutOfRange, rank)
}

// Encode writes rank's prefix code to w.
func Encode(w *bitstream.Writer, rank int) error {
	b, err := bucketFor(rank)
	if err != nil {
		return err
	}

	w.WriteBits(b.prefixVal, b.prefixBits)
	if b.offsetBits > 0 {
		w.WriteBits(uint64(rank-b.start), b.offsetBits)
	}

	return nil
}

// Decode reads one rank's prefix code from r.
func Decode(r *bitstream.Reader) (int, error) {
	first, err := r.ReadBit()
	if err != nil {
		return 0, err
	}
	if first == 0 {
		return buckets[0].start, nil
	}

	second, err := r.ReadBit()
	if err != nil {
		return 0, err
	}
	if second == 0 {
		return decodeOffset(r, buckets[1])
	}

	third, err := r.ReadBit()
	if err != nil {
		return 0, err
	}
	if third == 0 {
		return decodeOffset(r, buckets[2])
	}

	return decodeOffset(r, buckets[3])
}

func decodeOffset(r *bitstream.Reader, b bucket) (int, error) {
	if b.offsetBits == 0 {
		return b.start, nil
	}

	off, err := r.ReadBits(b.offsetBits)
	if err != nil {
		return 0, err
	}

	rank := b.start + int(off)
	if rank >= b.start+b.count {
		return 0, fmt.Errorf("%w: decoded offset %d exceeds bucket width", errs.ErrRankOutOfRange, off)
	}

	return rank, nil
}

// CodeLen returns the number of bits Encode would emit for rank.
func CodeLen(rank int) (int, error) {
	b, err := bucketFor(rank)
	if err != nil {
		return 0, err
	}

	return b.prefixBits + b.offsetBits, nil
}

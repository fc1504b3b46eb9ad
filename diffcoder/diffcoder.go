// Package diffcoder implements the differential angular displacement
// coding between consecutive RootIds in a RootSequence (§4.4).
//
// The first root of a sequence is stored raw; every subsequent root is
// stored as the signed displacement from its predecessor, wrapped into
// [-120, 119] so that roots near the 0/239 boundary of the alphabet still
// produce small-magnitude displacements.
package diffcoder

import "github.com/arloliu/e8z/format"

const (
	half = format.NumRoots / 2 // 120
)

// Encode converts a RootSequence into its DisplacementSequence. dst must
// have the same length as roots; dst[0] is the raw first root (as int16),
// dst[i] for i>0 is the wrapped displacement from roots[i-1] to roots[i].
func Encode(roots []byte, dst []int16) {
	if len(roots) == 0 {
		return
	}

	dst[0] = int16(roots[0])
	for i := 1; i < len(roots); i++ {
		dst[i] = displacement(roots[i-1], roots[i])
	}
}

// displacement computes ((to - from + half) mod NumRoots) - half, the
// signed wrapped step from `from` to `to` (§4.4).
func displacement(from, to byte) int16 {
	d := (int(to) - int(from) + half) % format.NumRoots
	if d < 0 {
		d += format.NumRoots
	}

	return int16(d - half)
}

// Decode reconstructs a RootSequence from a DisplacementSequence. dst must
// have the same length as disp.
func Decode(disp []int16, dst []byte) {
	if len(disp) == 0 {
		return
	}

	dst[0] = byte(disp[0])
	prev := int(dst[0])
	for i := 1; i < len(disp); i++ {
		next := (prev + int(disp[i])) % format.NumRoots
		if next < 0 {
			next += format.NumRoots
		}
		dst[i] = byte(next)
		prev = next
	}
}

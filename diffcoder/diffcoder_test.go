package diffcoder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arloliu/e8z/format"
)

func TestRoundTripSimple(t *testing.T) {
	roots := []byte{0, 1, 2, 239, 0, 120, 119, 121}
	disp := make([]int16, len(roots))
	Encode(roots, disp)

	for _, d := range disp[1:] {
		assert.GreaterOrEqual(t, d, int16(-120))
		assert.Less(t, d, int16(120))
	}

	got := make([]byte, len(roots))
	Decode(disp, got)
	assert.Equal(t, roots, got)
}

func TestWrapBoundaryEdgeCase(t *testing.T) {
	roots := []byte{0, 239, 0, 239, 0, 239}
	disp := make([]int16, len(roots))
	Encode(roots, disp)

	got := make([]byte, len(roots))
	Decode(disp, got)
	assert.Equal(t, roots, got)
}

func TestDisplacementMagnitudeBounded(t *testing.T) {
	for from := 0; from < format.NumRoots; from++ {
		for to := 0; to < format.NumRoots; to++ {
			d := displacement(byte(from), byte(to))
			assert.GreaterOrEqual(t, d, int16(-120))
			assert.Less(t, d, int16(120))
		}
	}
}

func TestFirstElementRaw(t *testing.T) {
	roots := []byte{200}
	disp := make([]int16, 1)
	Encode(roots, disp)
	assert.Equal(t, int16(200), disp[0])

	got := make([]byte, 1)
	Decode(disp, got)
	assert.Equal(t, roots, got)
}

func TestEmpty(t *testing.T) {
	var roots []byte
	disp := make([]int16, 0)
	Encode(roots, disp)
	got := make([]byte, 0)
	Decode(disp, got)
	assert.Empty(t, got)
}

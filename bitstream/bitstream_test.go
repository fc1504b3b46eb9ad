package bitstream

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadBit(t *testing.T) {
	w := NewWriter()
	defer w.Release()

	bits := []uint8{1, 0, 1, 1, 0, 0, 0, 1, 1, 0}
	for _, b := range bits {
		w.WriteBit(b)
	}

	r, err := FromBytes(w.ToBytes())
	require.NoError(t, err)

	for _, want := range bits {
		got, err := r.ReadBit()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestWriteReadBits(t *testing.T) {
	w := NewWriter()
	defer w.Release()

	values := []struct {
		v uint64
		n int
	}{
		{0, 1}, {1, 1}, {5, 3}, {255, 8}, {12345, 16}, {0x1FFFFFFFF, 33},
	}
	for _, vv := range values {
		w.WriteBits(vv.v, vv.n)
	}

	r, err := FromBytes(w.ToBytes())
	require.NoError(t, err)

	for _, vv := range values {
		got, err := r.ReadBits(vv.n)
		require.NoError(t, err)
		mask := uint64(1)<<vv.n - 1
		assert.Equal(t, vv.v&mask, got)
	}
}

func TestWriteReadUnary(t *testing.T) {
	w := NewWriter()
	defer w.Release()

	ns := []int{0, 1, 2, 5, 20}
	for _, n := range ns {
		w.WriteUnary(n)
	}

	r, err := FromBytes(w.ToBytes())
	require.NoError(t, err)

	for _, n := range ns {
		got, err := r.ReadUnary()
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestGammaRoundTrip(t *testing.T) {
	w := NewWriter()
	defer w.Release()

	ns := []uint64{1, 2, 3, 4, 7, 8, 15, 16, 1023, 1024, 1 << 20}
	for _, n := range ns {
		w.WriteGamma(n)
	}

	r, err := FromBytes(w.ToBytes())
	require.NoError(t, err)

	for _, n := range ns {
		got, err := r.ReadGamma()
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestGammaCodeLength(t *testing.T) {
	for n := uint64(1); n < 1<<16; n *= 3 {
		w := NewWriter()
		w.WriteGamma(n)
		wantBits := 2*floorLog2(n) + 1
		assert.Equal(t, wantBits, w.NumBits(), "n=%d", n)
		w.Release()
	}
}

func floorLog2(n uint64) int {
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}

	return l
}

func TestToBytesFromBytesIdentity(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	w := NewWriter()
	defer w.Release()

	var ops []func()
	var want []any

	for range 500 {
		switch rng.IntN(3) {
		case 0:
			b := uint8(rng.IntN(2))
			w.WriteBit(b)
			want = append(want, b)
		case 1:
			n := rng.IntN(33)
			v := rng.Uint64() & (uint64(1)<<n - 1)
			if n == 0 {
				v = 0
			}
			w.WriteBits(v, n)
			want = append(want, [2]uint64{v, uint64(n)})
		case 2:
			n := uint64(rng.IntN(1000) + 1)
			w.WriteGamma(n)
			want = append(want, n)
		}
	}
	_ = ops

	encoded := w.ToBytes()
	r, err := FromBytes(encoded)
	require.NoError(t, err)

	for _, item := range want {
		switch v := item.(type) {
		case uint8:
			got, err := r.ReadBit()
			require.NoError(t, err)
			assert.Equal(t, v, got)
		case [2]uint64:
			got, err := r.ReadBits(int(v[1]))
			require.NoError(t, err)
			assert.Equal(t, v[0], got)
		case uint64:
			got, err := r.ReadGamma()
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	}
}

func TestFromBytesTruncated(t *testing.T) {
	_, err := FromBytes([]byte{1, 2})
	require.Error(t, err)

	w := NewWriter()
	w.WriteBits(0xFF, 8)
	enc := w.ToBytes()
	w.Release()

	_, err = FromBytes(enc[:len(enc)-1])
	require.Error(t, err)
}

func TestReadPastEndErrors(t *testing.T) {
	w := NewWriter()
	w.WriteBit(1)
	enc := w.ToBytes()
	w.Release()

	r, err := FromBytes(enc)
	require.NoError(t, err)

	_, err = r.ReadBit()
	require.NoError(t, err)

	_, err = r.ReadBit()
	require.Error(t, err)
}

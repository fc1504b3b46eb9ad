package pool

import "sync"

// Slice pools for fixed-width per-token slices (one RootId or displacement
// per token), reusable across frames. The encode and decode paths in
// package e8z do not draw from these pools.
var (
	byteSlicePool = sync.Pool{
		New: func() any { return &[]byte{} },
	}
	int16SlicePool = sync.Pool{
		New: func() any { return &[]int16{} },
	}
)

// GetByteSlice retrieves and resizes a byte slice from the pool.
//
// The returned slice has length equal to size. The caller must call the
// returned cleanup function (typically via defer) to return it to the pool.
func GetByteSlice(size int) ([]byte, func()) {
	ptr, _ := byteSlicePool.Get().(*[]byte)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]byte, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { byteSlicePool.Put(ptr) }
}

// GetInt16Slice retrieves and resizes an int16 slice from the pool, used for
// displacement sequences (values fit in [-120, 119]).
func GetInt16Slice(size int) ([]int16, func()) {
	ptr, _ := int16SlicePool.Get().(*[]int16)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]int16, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { int16SlicePool.Put(ptr) }
}

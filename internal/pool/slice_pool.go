package pool

import "sync"

// Slice pools for efficient reuse of typed scratch slices of uint64 and
// uint32 values.
var (
	uint64SlicePool = sync.Pool{
		New: func() any { return &[]uint64{} },
	}
	uint32SlicePool = sync.Pool{
		New: func() any { return &[]uint32{} },
	}
)

// GetUint64Slice retrieves and resizes a uint64 scratch slice from the
// pool, sized to hold one stream offset per indexed edit unit.
//
// The returned slice has length equal to size. The caller must call the
// returned cleanup function (typically via defer) to return it.
func GetUint64Slice(size int) ([]uint64, func()) {
	ptr, _ := uint64SlicePool.Get().(*[]uint64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint64, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { uint64SlicePool.Put(ptr) }
}

// GetUint32Slice retrieves and resizes a uint32 scratch slice from the
// pool, sized to hold one flags/temporal-offset word per indexed edit
// unit.
func GetUint32Slice(size int) ([]uint32, func()) {
	ptr, _ := uint32SlicePool.Get().(*[]uint32)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint32, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { uint32SlicePool.Put(ptr) }
}

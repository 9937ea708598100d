package slabpool

import (
	"runtime"
	"unsafe"
)

// Alloc returns a pointer to a zeroed T stored in a pool block.
// T must not contain Go pointers: pool memory is not scanned by the garbage
// collector. Returns nil for zero-sized types.
func Alloc[T any](p *Pool) *T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	b := p.Allocate(size)
	if len(b) == 0 {
		return nil
	}
	clear(b)
	return (*T)(unsafe.Pointer(&b[0]))
}

// Free returns the block behind t, obtained from Alloc[T], to the pool.
func Free[T any](p *Pool, t *T) {
	if t == nil {
		return
	}
	size := int(unsafe.Sizeof(*t))
	p.Deallocate(unsafe.Slice((*byte)(unsafe.Pointer(t)), NextPowerOfTwo(size))[:size], size)
}

// AllocSlice allocates a zeroed slice of n elements of type T from the pool.
// The same restriction on Go pointers as Alloc applies. Returns nil if n <= 0.
func AllocSlice[T any](p *Pool, n int) []T {
	if n <= 0 {
		return nil
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	b := p.Allocate(elemSize * n)
	if len(b) == 0 {
		return nil
	}
	clear(b)
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}

// FreeSlice returns s, obtained from AllocSlice, to the pool. s must have
// the length it was allocated with.
func FreeSlice[T any](p *Pool, s []T) {
	if len(s) == 0 {
		return
	}
	var zero T
	size := int(unsafe.Sizeof(zero)) * len(s)
	b := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), NextPowerOfTwo(size))
	p.Deallocate(b[:size], size)
}

// PtrAndKeepAlive returns t and calls runtime.KeepAlive on the pool.
// This keeps the pool, and with it the block's backing memory, reachable
// while t is used in unsafe code.
func PtrAndKeepAlive[T any](p *Pool, t *T) *T {
	runtime.KeepAlive(p)
	return t
}

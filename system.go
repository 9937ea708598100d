package slabpool

import "unsafe"

// SystemAllocator is the raw memory source a pool falls back to. It backs the
// size-class arenas and serves requests the pool cannot satisfy itself.
//
// Malloc must return a buffer of at least size bytes. Free receives buffers
// previously returned by Malloc, possibly resliced.
type SystemAllocator interface {
	Malloc(size int) []byte
	Free(b []byte)
}

// HeapAllocator allocates from the Go heap. Free is a no-op; the garbage
// collector reclaims buffers once they become unreachable.
type HeapAllocator struct{}

// Malloc returns a zeroed buffer of size bytes.
func (HeapAllocator) Malloc(size int) []byte {
	return make([]byte, size)
}

// Free does nothing.
func (HeapAllocator) Free([]byte) {}

// CountingAllocator wraps another SystemAllocator and tracks every
// outstanding buffer by address. It is used to check that a pool returns each
// buffer it obtained exactly once. Not goroutine-safe.
type CountingAllocator struct {
	parent       SystemAllocator
	live         map[unsafe.Pointer]int
	liveBytes    int
	mallocs      int
	frees        int
	unknownFrees int
}

// NewCountingAllocator wraps parent. A nil parent uses HeapAllocator.
func NewCountingAllocator(parent SystemAllocator) *CountingAllocator {
	if parent == nil {
		parent = HeapAllocator{}
	}
	return &CountingAllocator{
		parent: parent,
		live:   make(map[unsafe.Pointer]int),
	}
}

// Malloc allocates from the parent and records the buffer.
func (c *CountingAllocator) Malloc(size int) []byte {
	b := c.parent.Malloc(size)
	if len(b) == 0 {
		return b
	}
	c.live[addr(b)] = size
	c.liveBytes += size
	c.mallocs++
	return b
}

// Free forgets the buffer and passes it to the parent. Buffers this allocator
// never produced are counted as unknown and not forwarded.
func (c *CountingAllocator) Free(b []byte) {
	if cap(b) == 0 {
		c.unknownFrees++
		return
	}
	p := addr(b)
	size, ok := c.live[p]
	if !ok {
		c.unknownFrees++
		return
	}
	delete(c.live, p)
	c.liveBytes -= size
	c.frees++
	c.parent.Free(b)
}

// Outstanding returns the number of buffers allocated but not yet freed.
func (c *CountingAllocator) Outstanding() int { return len(c.live) }

// OutstandingBytes returns the bytes held by outstanding buffers.
func (c *CountingAllocator) OutstandingBytes() int { return c.liveBytes }

// Mallocs returns the total number of successful Malloc calls.
func (c *CountingAllocator) Mallocs() int { return c.mallocs }

// Frees returns the number of Free calls that matched a live buffer.
func (c *CountingAllocator) Frees() int { return c.frees }

// UnknownFrees returns the number of Free calls for untracked buffers.
func (c *CountingAllocator) UnknownFrees() int { return c.unknownFrees }

// addr returns the address of the first byte of b's backing array.
func addr(b []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(b[:cap(b)]))
}

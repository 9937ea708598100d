//go:build unix

package slabpool

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// MmapAllocator serves each Malloc with an anonymous private mapping and
// unmaps it on Free. Mapping lengths are remembered by address so a
// resliced buffer still releases its whole region. Not goroutine-safe.
type MmapAllocator struct {
	mappings map[unsafe.Pointer][]byte
}

// NewMmapAllocator returns an allocator backed by anonymous mappings.
func NewMmapAllocator() *MmapAllocator {
	return &MmapAllocator{mappings: make(map[unsafe.Pointer][]byte)}
}

// Malloc maps size bytes of zeroed memory. It returns nil if the kernel
// refuses the mapping.
func (m *MmapAllocator) Malloc(size int) []byte {
	if size <= 0 {
		return nil
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil
	}
	m.mappings[addr(data)] = data
	return data
}

// Free unmaps the region b starts. Unknown buffers are ignored.
func (m *MmapAllocator) Free(b []byte) {
	if cap(b) == 0 {
		return
	}
	p := addr(b)
	data, ok := m.mappings[p]
	if !ok {
		return
	}
	delete(m.mappings, p)
	_ = unix.Munmap(data)
}

// Mapped returns the number of live mappings.
func (m *MmapAllocator) Mapped() int { return len(m.mappings) }

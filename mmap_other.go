//go:build !unix

package slabpool

// MmapAllocator falls back to the Go heap where anonymous mappings are not
// available.
type MmapAllocator struct {
	CountingAllocator
}

// NewMmapAllocator returns a heap-backed allocator.
func NewMmapAllocator() *MmapAllocator {
	return &MmapAllocator{CountingAllocator: *NewCountingAllocator(nil)}
}

// Mapped returns the number of live buffers.
func (m *MmapAllocator) Mapped() int { return m.Outstanding() }

package slabpool

import (
	"io"
	"sync"
)

// SafePool is a mutex-protected wrapper around Pool for concurrent access.
// All operations are serialised, so allocation cost includes lock contention.
type SafePool struct {
	mu sync.Mutex
	p  *Pool
}

// NewSafePool creates a new thread-safe pool. Arguments are as for NewPool.
func NewSafePool(maxPoolSize int, opts ...Option) *SafePool {
	return &SafePool{p: NewPool(maxPoolSize, opts...)}
}

// Allocate thread-safely allocates size bytes. Returns nil if size <= 0.
func (s *SafePool) Allocate(size int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Allocate(size)
}

// Deallocate thread-safely returns b, obtained from Allocate(size).
func (s *SafePool) Deallocate(b []byte, size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Deallocate(b, size)
}

// TryAllocate thread-safely allocates size bytes, reporting failures as errors.
func (s *SafePool) TryAllocate(size int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.TryAllocate(size)
}

// TryDeallocate thread-safely returns b, reporting anomalies as errors.
func (s *SafePool) TryDeallocate(b []byte, size int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.TryDeallocate(b, size)
}

// Release thread-safely frees every size class.
func (s *SafePool) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Release()
}

// FreeMemorySize thread-safely returns the remaining budget.
func (s *SafePool) FreeMemorySize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.FreeMemorySize()
}

// CurrentStorage thread-safely returns the bytes idle on free lists.
func (s *SafePool) CurrentStorage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.CurrentStorage()
}

// PoolSize returns the nominal budget.
func (s *SafePool) PoolSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.PoolSize()
}

// Metrics thread-safely returns a snapshot of pool statistics.
func (s *SafePool) Metrics() PoolMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Metrics()
}

// WriteStatus thread-safely renders the status table.
func (s *SafePool) WriteStatus(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.WriteStatus(w)
}

// Generic allocation functions for SafePool

// SafeAlloc thread-safely returns a pointer to a zeroed T from the pool.
func SafeAlloc[T any](s *SafePool) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Alloc[T](s.p)
}

// SafeFree thread-safely returns t, obtained from SafeAlloc, to the pool.
func SafeFree[T any](s *SafePool, t *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	Free(s.p, t)
}

// SafeAllocSlice thread-safely allocates a zeroed slice of n elements.
func SafeAllocSlice[T any](s *SafePool, n int) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AllocSlice[T](s.p, n)
}

// SafeFreeSlice thread-safely returns s, obtained from SafeAllocSlice.
func SafeFreeSlice[T any](sp *SafePool, s []T) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	FreeSlice(sp.p, s)
}

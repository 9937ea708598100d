package slabpool

// FreeMemorySize returns the remaining budget in bytes.
func (p *Pool) FreeMemorySize() int {
	return p.freeSize
}

// CurrentStorage returns the bytes idle on all size-class free lists.
func (p *Pool) CurrentStorage() int {
	sum := 0
	for _, c := range p.classes {
		if c != nil {
			sum += c.IdleBytes()
		}
	}
	return sum
}

// PoolSize returns the nominal budget, a power of two.
func (p *Pool) PoolSize() int {
	return p.poolSize
}

// MaxNumDataBlocks returns the bytes of blocks granted at construction,
// counted once per preallocated class.
func (p *Pool) MaxNumDataBlocks() int {
	return p.maxNumDataBlocks
}

// MinBlockSize returns the smallest eagerly preallocated block size.
func (p *Pool) MinBlockSize() int {
	return p.minBlockSize
}

// MaxBlockSize returns the largest eagerly preallocated block size. With
// legacy accounting it also grows by every budgeted fallback allocation.
func (p *Pool) MaxBlockSize() int {
	return p.maxBlockSize
}

// FallbackGranted returns the budget debited by fallback allocations.
// Always zero with legacy accounting.
func (p *Pool) FallbackGranted() int {
	return p.fallbackGranted
}

// NumClasses returns the length of the size-class table.
func (p *Pool) NumClasses() int {
	return len(p.classes)
}

// Class returns the size class for blocks of 2^index bytes, or nil if it
// has not been created.
func (p *Pool) Class(index int) *SizeClass {
	if index < 0 || index >= len(p.classes) {
		return nil
	}
	return p.classes[index]
}

// ClassFor returns metrics for the size class a request of size bytes maps
// to. ok is false when that class does not exist yet.
func (p *Pool) ClassFor(size int) (m ClassMetrics, ok bool) {
	_, index := classIndex(size)
	c := p.Class(index)
	if c == nil {
		return ClassMetrics{}, false
	}
	return c.Metrics(), true
}

// Metrics returns a snapshot of pool statistics.
func (p *Pool) Metrics() PoolMetrics {
	m := PoolMetrics{
		PoolSize:         p.poolSize,
		FreeMemorySize:   p.freeSize,
		CurrentStorage:   p.CurrentStorage(),
		MaxNumDataBlocks: p.maxNumDataBlocks,
		MinBlockSize:     p.minBlockSize,
		MaxBlockSize:     p.maxBlockSize,
		FallbackGranted:  p.fallbackGranted,
		Fallbacks:        p.fallbacks,
		SystemFrees:      p.systemFrees,
		IgnoredFrees:     p.ignoredFrees,
		DoubleFrees:      p.doubleFrees,
	}
	for _, c := range p.classes {
		if c != nil {
			m.Classes = append(m.Classes, c.Metrics())
		}
	}
	return m
}

// Metrics returns a snapshot of size class statistics.
func (c *SizeClass) Metrics() ClassMetrics {
	return ClassMetrics{
		BlockSize:       c.size,
		FreeBlocks:      c.freeCount,
		AllocatedBlocks: c.allocatedCount,
		IdleBytes:       c.IdleBytes(),
		Adopted:         c.adopted,
		Rejected:        c.rejected,
		DoubleFrees:     c.doubleFrees,
	}
}

// PoolMetrics contains statistical information about a pool.
type PoolMetrics struct {
	PoolSize         int // Nominal budget in bytes
	FreeMemorySize   int // Remaining budget in bytes
	CurrentStorage   int // Bytes idle on free lists
	MaxNumDataBlocks int // Bytes of blocks preallocated at construction
	MinBlockSize     int
	MaxBlockSize     int
	FallbackGranted  int // Budget debited by fallback allocations
	Fallbacks        int // Allocations served by the system allocator
	SystemFrees      int // Deallocations passed to the system allocator
	IgnoredFrees     int // Nil and double deallocations
	DoubleFrees      int
	Classes          []ClassMetrics // Existing classes, smallest first
}

// ClassMetrics contains statistical information about a size class.
type ClassMetrics struct {
	BlockSize       int
	FreeBlocks      int
	AllocatedBlocks int
	IdleBytes       int // BlockSize * FreeBlocks
	Adopted         int // Foreign buffers taken onto the free list
	Rejected        int // Foreign buffers too small to adopt
	DoubleFrees     int
}

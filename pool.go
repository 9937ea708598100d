package slabpool

import (
	"log/slog"
	"unsafe"
)

// DefaultPoolSize is the budget used when NewPool is given a non-positive size (64 KiB).
const DefaultPoolSize = 1 << 16

// Pool routes allocations to power-of-two size classes. Requests it cannot
// serve from a class go to the system allocator. Not goroutine-safe; use
// SafePool for concurrent access.
//
// Deallocate must be called with the same size that was passed to Allocate.
// The pool stores no per-allocation header, so a different size selects a
// different class.
type Pool struct {
	poolSize         int
	freeSize         int
	minBlockSize     int
	maxBlockSize     int
	maxNumDataBlocks int
	fallbackGranted  int

	classes []*SizeClass
	// fallbackLive holds outstanding buffers served by the system allocator,
	// mapped to the bytes debited from the budget for them.
	fallbackLive map[unsafe.Pointer]int
	cfg          config
	logger       *slog.Logger

	fallbacks    int
	systemFrees  int
	ignoredFrees int
	doubleFrees  int
	released     bool
}

// NewPool creates a pool with a nominal budget of maxPoolSize bytes, rounded
// up to a power of two. If maxPoolSize <= 0, DefaultPoolSize is used; budgets
// above MaxPowerOfTwo are capped to it.
//
// A band of size classes is preallocated eagerly: 32..256 byte blocks for
// budgets above 4 KiB, 1..2 byte blocks for budgets of 32 bytes or less,
// and poolSize/128..poolSize/32 otherwise. Other classes are created on
// first use.
func NewPool(maxPoolSize int, opts ...Option) *Pool {
	if maxPoolSize <= 0 {
		maxPoolSize = DefaultPoolSize
	}
	maxPoolSize = min(maxPoolSize, MaxPowerOfTwo)
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	poolSize := NextPowerOfTwo(maxPoolSize)
	p := &Pool{
		poolSize:     poolSize,
		freeSize:     poolSize,
		fallbackLive: make(map[unsafe.Pointer]int),
		cfg:          cfg,
		logger:       cfg.logger,
	}

	amount := poolSize / 8
	switch {
	case poolSize > 4096:
		p.minBlockSize = 32
		p.maxBlockSize = 256
		amount = 1024
	case poolSize <= 32:
		p.minBlockSize = 1
		p.maxBlockSize = 1
		if poolSize > 16 {
			p.maxBlockSize = 2
		}
	default:
		p.maxBlockSize = poolSize / 32
		p.minBlockSize = poolSize / 128
	}

	lo := Log2ExactPowerOfTwo(p.minBlockSize)
	hi := Log2ExactPowerOfTwo(p.maxBlockSize)
	// One class per power of two up to and including the whole budget.
	p.classes = make([]*SizeClass, Log2ExactPowerOfTwo(poolSize)+1)
	for i := lo; i <= hi; i++ {
		blockSize := PowerOfTwo(i)
		p.classes[i] = newSizeClass(blockSize, amount/blockSize, &p.cfg)
		p.maxNumDataBlocks += amount
	}
	return p
}

// Allocate returns a buffer with len size and cap NextPowerOfTwo(size).
// Returns nil if size <= 0. Sizes larger than PoolSize have no size class
// and panic.
//
// The block comes from its size class when the class has a free block and
// the budget covers it; otherwise it comes straight from the system
// allocator and the budget is debited only if it can cover the request.
func (p *Pool) Allocate(size int) []byte {
	p.panicIfReleased()
	if size <= 0 {
		return nil
	}
	memorySize, index := classIndex(size)
	if index >= len(p.classes) {
		p.logger.Error("slabpool: size class index out of range",
			"size", size, "index", index, "classes", len(p.classes))
		panic("slabpool: size exceeds largest size class")
	}

	class := p.classes[index]
	if class == nil {
		class = newSizeClass(memorySize, 1, &p.cfg)
		p.classes[index] = class
	}

	if class.IsEmpty() || p.freeSize < memorySize {
		b := p.cfg.sys.Malloc(memorySize)
		if len(b) < memorySize {
			panic("slabpool: system allocator returned a short buffer")
		}
		p.fallbacks++
		debited := 0
		if p.freeSize >= memorySize {
			debited = memorySize
			p.freeSize -= memorySize
			if p.cfg.legacy {
				p.maxBlockSize += memorySize
			} else {
				p.fallbackGranted += memorySize
			}
		}
		p.fallbackLive[addr(b)] = debited
		return b[:size:memorySize]
	}

	p.freeSize -= memorySize
	return class.Get()[:size]
}

// Deallocate returns b, obtained from Allocate(size), to the pool.
//
// Nothing is reported to the caller. Nil buffers and buffers already on
// their class's free list are logged and ignored. Buffers with no class, or
// returned while the pool's budget is entirely free, go back to the system
// allocator unless their class tracks them. A fallback buffer is credited
// back only if its allocation was debited.
func (p *Pool) Deallocate(b []byte, size int) {
	p.panicIfReleased()
	if cap(b) == 0 {
		p.ignoredFrees++
		p.logger.Debug("slabpool: deallocate of nil buffer", "size", size)
		return
	}
	debited, fallback := p.fallbackLive[addr(b)]
	delete(p.fallbackLive, addr(b))
	memorySize, index := classIndex(size)
	if index >= len(p.classes) {
		p.logger.Warn("slabpool: size class index out of range, freeing to system",
			"size", size, "index", index)
		p.systemFree(b)
		return
	}
	if cap(b) < memorySize {
		p.logger.Warn("slabpool: buffer smaller than its size class, freeing to system",
			"size", size, "cap", cap(b))
		p.systemFree(b)
		return
	}

	class := p.classes[index]
	if class != nil && class.HasItem(b) {
		p.ignoredFrees++
		p.doubleFrees++
		class.noteDoubleFree(b)
		return
	}

	if class == nil || (p.fullyFree() && !class.Owns(b)) {
		p.logger.Debug("slabpool: size class cannot hold buffer, freeing to system",
			"size", size, "index", index)
		p.systemFree(b)
		return
	}

	class.Return(b)
	if fallback && debited == 0 && !p.cfg.legacy {
		// Served while the budget was spent; nothing to give back.
		return
	}
	p.freeSize += memorySize
}

func (p *Pool) fullyFree() bool {
	return p.freeSize == p.poolSize && p.freeSize > 0
}

func (p *Pool) systemFree(b []byte) {
	p.systemFrees++
	p.cfg.sys.Free(b)
}

// Release frees every size class. Any subsequent operation panics.
func (p *Pool) Release() {
	if p.released {
		return
	}
	p.logStatus()
	for i, c := range p.classes {
		if c != nil {
			c.Release()
			p.classes[i] = nil
		}
	}
	if n := len(p.fallbackLive); n > 0 {
		p.logger.Warn("slabpool: pool released with outstanding fallback buffers", "count", n)
	}
	p.classes = nil
	p.fallbackLive = nil
	p.released = true
}

func (p *Pool) panicIfReleased() {
	if p.released {
		panic("slabpool: use after Release()")
	}
}

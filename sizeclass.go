package slabpool

import (
	"log/slog"
	"unsafe"
)

const nilSlot = int32(-1)

type slotState uint8

const (
	slotFree slotState = iota
	slotAllocated
)

// slot is one fixed-size block. Free slots are linked by index through next.
type slot struct {
	buf     []byte
	next    int32
	state   slotState
	adopted bool // buf came from Return, not from this class's arena
}

// SizeClass manages blocks of one fixed size. Blocks are carved from a
// single arena allocated at construction; blocks returned from elsewhere are
// adopted onto the free list. Not goroutine-safe.
type SizeClass struct {
	size   int
	sys    SystemAllocator
	logger *slog.Logger
	hook   DoubleFreeFunc

	chunks   [][]byte
	slots    []slot
	index    map[unsafe.Pointer]int32
	freeHead int32

	freeCount      int
	allocatedCount int
	doubleFrees    int
	adopted        int
	rejected       int
	released       bool
}

// NewSizeClass creates a size class serving blocks of size bytes, with
// initialCount blocks preallocated on the free list. Only the system
// allocator, logger and double-free hook options apply.
func NewSizeClass(size, initialCount int, opts ...Option) *SizeClass {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newSizeClass(size, initialCount, &cfg)
}

func newSizeClass(size, initialCount int, cfg *config) *SizeClass {
	if size <= 0 {
		panic("slabpool: size class block size must be positive")
	}
	if initialCount < 0 {
		panic("slabpool: negative initial block count")
	}
	c := &SizeClass{
		size:     size,
		sys:      cfg.sys,
		logger:   cfg.logger,
		hook:     cfg.onDoubleFree,
		slots:    make([]slot, 0, initialCount),
		index:    make(map[unsafe.Pointer]int32, initialCount),
		freeHead: nilSlot,
	}
	if initialCount == 0 {
		return c
	}

	total := size * initialCount
	chunk := c.sys.Malloc(total)
	if len(chunk) < total {
		panic("slabpool: system allocator returned a short buffer")
	}
	c.chunks = append(c.chunks, chunk)
	// Push in reverse so the lowest address is handed out first.
	for i := initialCount - 1; i >= 0; i-- {
		off := i * size
		c.push(chunk[off:off+size:off+size], false)
	}
	return c
}

// push adds a new slot for buf to the head of the free list.
func (c *SizeClass) push(buf []byte, adopted bool) {
	i := int32(len(c.slots))
	c.slots = append(c.slots, slot{buf: buf, next: c.freeHead, adopted: adopted})
	c.index[addr(buf)] = i
	c.freeHead = i
	c.freeCount++
}

// IsEmpty reports whether the free list is empty.
func (c *SizeClass) IsEmpty() bool {
	return c.freeHead == nilSlot
}

// HasItem reports whether b is currently on the free list.
func (c *SizeClass) HasItem(b []byte) bool {
	if cap(b) == 0 || c.released {
		return false
	}
	i, ok := c.index[addr(b)]
	return ok && c.slots[i].state == slotFree
}

// Owns reports whether b is tracked by this class, free or allocated.
func (c *SizeClass) Owns(b []byte) bool {
	if cap(b) == 0 || c.released {
		return false
	}
	_, ok := c.index[addr(b)]
	return ok
}

// Get pops a block off the free list. The caller must check IsEmpty first;
// Get panics on an empty class.
func (c *SizeClass) Get() []byte {
	c.panicIfReleased()
	if c.freeHead == nilSlot {
		panic("slabpool: Get on empty size class")
	}
	s := &c.slots[c.freeHead]
	c.freeHead = s.next
	s.next = nilSlot
	s.state = slotAllocated
	c.freeCount--
	c.allocatedCount++
	return s.buf
}

// Return puts b back on the free list.
//
// A block handed out by Get moves back to the free list. A block that is
// already free is left alone and counted as a double free. Any other buffer
// is adopted as a new free block; buffers too small for this class are
// freed to the system allocator instead.
func (c *SizeClass) Return(b []byte) {
	c.panicIfReleased()
	if cap(b) == 0 {
		panic("slabpool: Return of nil buffer")
	}
	i, ok := c.index[addr(b)]
	if !ok {
		c.adopt(b)
		return
	}
	s := &c.slots[i]
	if s.state == slotFree {
		c.noteDoubleFree(b)
		return
	}
	s.state = slotFree
	s.next = c.freeHead
	c.freeHead = i
	c.allocatedCount--
	c.freeCount++
}

func (c *SizeClass) adopt(b []byte) {
	if cap(b) < c.size {
		c.rejected++
		c.logger.Warn("slabpool: buffer too small for size class, freeing to system",
			"size", c.size, "cap", cap(b))
		c.sys.Free(b)
		return
	}
	c.adopted++
	c.push(b[:c.size:c.size], true)
}

func (c *SizeClass) noteDoubleFree(b []byte) {
	c.doubleFrees++
	c.logger.Warn("slabpool: double free ignored", "size", c.size)
	if c.hook != nil {
		c.hook(b, c.size)
	}
}

// Size returns the block size in bytes.
func (c *SizeClass) Size() int { return c.size }

// FreeCount returns the number of blocks on the free list.
func (c *SizeClass) FreeCount() int { return c.freeCount }

// AllocatedCount returns the number of blocks handed out.
func (c *SizeClass) AllocatedCount() int { return c.allocatedCount }

// IdleBytes returns the bytes sitting on the free list.
func (c *SizeClass) IdleBytes() int { return c.size * c.freeCount }

// DoubleFrees returns how many already-free blocks were returned.
func (c *SizeClass) DoubleFrees() int { return c.doubleFrees }

// Release frees the arena and every adopted free block to the system
// allocator. Blocks still handed out are reported; with the slabpooldebug
// build tag they cause a panic. Release is idempotent.
func (c *SizeClass) Release() {
	if c.released {
		return
	}
	if c.allocatedCount > 0 {
		if debugAsserts {
			panic("slabpool: size class released with allocated blocks")
		}
		c.logger.Warn("slabpool: size class released with allocated blocks",
			"size", c.size, "allocated", c.allocatedCount)
	}
	for i := range c.slots {
		s := &c.slots[i]
		if s.adopted && s.state == slotFree {
			c.sys.Free(s.buf)
		}
	}
	for _, chunk := range c.chunks {
		c.sys.Free(chunk)
	}
	c.chunks = nil
	c.slots = nil
	c.index = nil
	c.freeHead = nilSlot
	c.freeCount = 0
	c.released = true
}

func (c *SizeClass) panicIfReleased() {
	if c.released {
		panic("slabpool: use after Release()")
	}
}

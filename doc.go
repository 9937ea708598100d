// Package slabpool implements a size-class segregated pool allocator.
//
// # Overview
//
// A Pool is configured with a nominal byte budget. Requests are rounded up
// to the next power of two and served from the size class for that power.
// Each size class keeps a free list of fixed-size blocks carved from a
// single preallocated arena. When a class has no free block, or the budget
// is spent, the request is served directly by the system allocator instead
// of failing.
//
// # Basic Usage
//
//	pool := slabpool.NewPool(1024)
//	defer pool.Release()
//
//	buf := pool.Allocate(10) // len 10, cap 16, from the 16 byte class
//	pool.Deallocate(buf, 10) // same size as Allocate
//
//	// Typed values (T must not contain Go pointers)
//	v := slabpool.Alloc[Vec3](pool)
//	slabpool.Free(pool, v)
//
// # Size Classes
//
// Classes are indexed by the base-2 exponent of their block size. At
// construction a band of classes is preallocated:
//
//   - budget > 4 KiB: 32 to 256 byte blocks, 1 KiB of blocks per class
//   - budget <= 32 bytes: 1 byte blocks, plus 2 byte blocks above 16 bytes
//   - otherwise: budget/128 to budget/32 byte blocks, budget/8 bytes per class
//
// Any other class is created with a single block the first time it is used.
//
// # Tolerant Deallocation
//
// Deallocate never fails. Nil buffers and buffers already free are logged
// and ignored; double frees are counted and reported to the hook set with
// WithDoubleFreeHook. Buffers the pool never handed out are adopted onto
// their class's free list. TryAllocate and TryDeallocate report the same
// conditions as errors for callers who want them.
//
// # Thread Safety
//
// Pool and SizeClass are not thread-safe. For concurrent access, use SafePool:
//
//	pool := slabpool.NewSafePool(1 << 20)
//	defer pool.Release()
//
//	buf := pool.Allocate(64)
//	pool.Deallocate(buf, 64)
//
// # System Allocator
//
// Arenas and fallback requests come from a SystemAllocator. HeapAllocator
// uses the Go heap, MmapAllocator uses anonymous mappings, and
// CountingAllocator wraps either to verify every buffer is freed exactly
// once:
//
//	sys := slabpool.NewCountingAllocator(nil)
//	pool := slabpool.NewPool(4096, slabpool.WithSystemAllocator(sys))
//	// ...
//	pool.Release()
//	fmt.Println(sys.Outstanding()) // 0 after balanced use
//
// Building with -tags slabpooldebug turns blocks still allocated at Release
// into a panic.
package slabpool

package slabpool

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidSize indicates a request for zero or a negative number of bytes.
	ErrInvalidSize = errors.New("slabpool: size must be positive")

	// ErrSizeTooLarge indicates a size whose class index is beyond the pool's class table.
	ErrSizeTooLarge = errors.New("slabpool: size exceeds largest size class")

	// ErrNilBuffer indicates a nil or zero-capacity buffer was deallocated.
	ErrNilBuffer = errors.New("slabpool: nil buffer")

	// ErrDoubleFree indicates a buffer that is already on its class's free list.
	ErrDoubleFree = errors.New("slabpool: buffer already free")

	// ErrNotOwned indicates a buffer the size class never handed out.
	ErrNotOwned = errors.New("slabpool: buffer not owned by size class")

	// ErrReleased indicates use of a pool after Release.
	ErrReleased = errors.New("slabpool: use after Release()")
)

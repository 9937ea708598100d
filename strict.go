package slabpool

import "github.com/cockroachdb/errors"

// TryAllocate is Allocate with errors instead of nil results and panics.
func (p *Pool) TryAllocate(size int) ([]byte, error) {
	if p.released {
		return nil, ErrReleased
	}
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "allocate %d bytes", size)
	}
	if _, index := classIndex(size); index >= len(p.classes) {
		return nil, errors.Wrapf(ErrSizeTooLarge, "allocate %d bytes from %d byte pool", size, p.poolSize)
	}
	return p.Allocate(size), nil
}

// TryDeallocate is Deallocate that reports what the tolerant path would
// silently absorb. The buffer is always handed to Deallocate; ErrNotOwned
// means it was neither a size-class block nor an outstanding fallback
// allocation of this pool.
func (p *Pool) TryDeallocate(b []byte, size int) error {
	if p.released {
		return ErrReleased
	}
	if cap(b) == 0 {
		return ErrNilBuffer
	}
	memorySize, index := classIndex(size)
	if index >= len(p.classes) {
		return errors.Wrapf(ErrSizeTooLarge, "deallocate %d bytes from %d byte pool", size, p.poolSize)
	}
	class := p.classes[index]
	if class != nil && class.HasItem(b) {
		p.Deallocate(b, size)
		return errors.Wrapf(ErrDoubleFree, "%d byte class", memorySize)
	}
	_, fallback := p.fallbackLive[addr(b)]
	owned := fallback || (class != nil && class.Owns(b))
	p.Deallocate(b, size)
	if !owned {
		return errors.Wrapf(ErrNotOwned, "%d byte class", memorySize)
	}
	return nil
}

package slabpool

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAllocate(t *testing.T) {
	p := NewPool(1024, quiet)
	defer p.Release()

	b, err := p.TryAllocate(10)
	require.NoError(t, err)
	assert.Len(t, b, 10)

	_, err = p.TryAllocate(0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = p.TryAllocate(1025)
	assert.ErrorIs(t, err, ErrSizeTooLarge)
	assert.Contains(t, err.Error(), "1025")

	require.NoError(t, p.TryDeallocate(b, 10))
}

func TestTryAllocateHugeSizes(t *testing.T) {
	tests := []struct {
		poolSize int
		size     int
	}{
		{1024, math.MaxInt},
		{1 << 16, MaxPowerOfTwo + 1},
		{1 << 16, MaxPowerOfTwo},
		{math.MaxInt, math.MaxInt},
	}

	for _, tt := range tests {
		p := NewPool(tt.poolSize, quiet)
		var err error
		require.NotPanics(t, func() { _, err = p.TryAllocate(tt.size) }, "pool %d size %d", tt.poolSize, tt.size)
		assert.ErrorIs(t, err, ErrSizeTooLarge, "pool %d size %d", tt.poolSize, tt.size)
		assert.Equal(t, p.PoolSize(), p.FreeMemorySize())
		assert.ErrorIs(t, p.TryDeallocate(make([]byte, 8), tt.size), ErrSizeTooLarge)
		p.Release()
	}
}

func TestTryDeallocate(t *testing.T) {
	p := NewPool(1024, quiet)
	defer p.Release()

	t.Run("nil", func(t *testing.T) {
		assert.ErrorIs(t, p.TryDeallocate(nil, 10), ErrNilBuffer)
	})

	t.Run("double free", func(t *testing.T) {
		b, err := p.TryAllocate(10)
		require.NoError(t, err)
		require.NoError(t, p.TryDeallocate(b, 10))
		assert.ErrorIs(t, p.TryDeallocate(b, 10), ErrDoubleFree)
	})

	t.Run("fallback buffer", func(t *testing.T) {
		a, err := p.TryAllocate(512)
		require.NoError(t, err)
		b, err := p.TryAllocate(512) // the 512 byte class holds a single block
		require.NoError(t, err)

		assert.NoError(t, p.TryDeallocate(b, 512))
		assert.NoError(t, p.TryDeallocate(a, 512))
	})

	t.Run("foreign buffer with whole budget", func(t *testing.T) {
		before := p.Metrics().SystemFrees
		assert.ErrorIs(t, p.TryDeallocate(make([]byte, 32), 32), ErrNotOwned)
		assert.Equal(t, before+1, p.Metrics().SystemFrees)
	})

	t.Run("foreign buffer", func(t *testing.T) {
		// Keep the budget in use so the buffer is not sent to the system.
		held := p.Allocate(100)
		defer p.Deallocate(held, 100)

		err := p.TryDeallocate(make([]byte, 16), 16)
		assert.ErrorIs(t, err, ErrNotOwned)

		// Still adopted, as with Deallocate.
		m, ok := p.ClassFor(16)
		require.True(t, ok)
		assert.Equal(t, 1, m.Adopted)
	})

	t.Run("too large", func(t *testing.T) {
		assert.ErrorIs(t, p.TryDeallocate(make([]byte, 2048), 2048), ErrSizeTooLarge)
	})
}

func TestTryAfterRelease(t *testing.T) {
	p := NewPool(1024, quiet)
	b := p.Allocate(10)
	p.Deallocate(b, 10)
	p.Release()

	_, err := p.TryAllocate(10)
	assert.ErrorIs(t, err, ErrReleased)
	assert.ErrorIs(t, p.TryDeallocate(b, 10), ErrReleased)
}

package slabpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolMetrics(t *testing.T) {
	p := NewPool(1024, quiet)
	defer p.Release()

	m := p.Metrics()
	assert.Equal(t, 1024, m.PoolSize)
	assert.Equal(t, 1024, m.FreeMemorySize)
	assert.Equal(t, 384, m.CurrentStorage)
	assert.Equal(t, 384, m.MaxNumDataBlocks)
	assert.Equal(t, 8, m.MinBlockSize)
	assert.Equal(t, 32, m.MaxBlockSize)
	require.Len(t, m.Classes, 3)
	for i, size := range []int{8, 16, 32} {
		assert.Equal(t, size, m.Classes[i].BlockSize)
		assert.Equal(t, 128, m.Classes[i].IdleBytes)
	}

	b := p.Allocate(10)
	m = p.Metrics()
	assert.Equal(t, 1008, m.FreeMemorySize)
	assert.Equal(t, 368, m.CurrentStorage)
	assert.Equal(t, ClassMetrics{BlockSize: 16, FreeBlocks: 7, AllocatedBlocks: 1, IdleBytes: 112}, m.Classes[1])
	p.Deallocate(b, 10)
}

func TestPoolMetricsLazyClass(t *testing.T) {
	p := NewPool(1024, quiet)
	defer p.Release()

	_, ok := p.ClassFor(100)
	assert.False(t, ok)

	b := p.Allocate(100)
	m, ok := p.ClassFor(100)
	require.True(t, ok)
	assert.Equal(t, 128, m.BlockSize)
	assert.Len(t, p.Metrics().Classes, 4)
	p.Deallocate(b, 100)
}

func TestPoolClass(t *testing.T) {
	p := NewPool(1024, quiet)
	defer p.Release()

	assert.NotNil(t, p.Class(4))
	assert.Nil(t, p.Class(6), "64 byte class is not preallocated for 1 KiB")
	assert.Nil(t, p.Class(-1))
	assert.Nil(t, p.Class(99))
}

func TestPoolCurrentStorageAfterRelease(t *testing.T) {
	p := NewPool(1024, quiet)
	p.Release()
	assert.Zero(t, p.CurrentStorage())
}

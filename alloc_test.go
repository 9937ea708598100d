package slabpool

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	a int64
	b int32
	c int16
	d int8
}

func TestAlloc(t *testing.T) {
	p := NewPool(1024, quiet)
	defer p.Release()

	ptr := Alloc[int](p)
	require.NotNil(t, ptr)
	assert.Zero(t, *ptr)

	s := Alloc[testStruct](p)
	require.NotNil(t, s)
	assert.Equal(t, testStruct{}, *s)

	*ptr = 42
	s.a = 100
	assert.Equal(t, 42, *ptr)
	assert.Equal(t, int64(100), s.a)

	Free(p, s)
	Free(p, ptr)
}

func TestAllocReusesAndZeroes(t *testing.T) {
	p := NewPool(1024, quiet)
	defer p.Release()

	v := Alloc[int64](p)
	*v = -1
	Free(p, v)

	again := Alloc[int64](p)
	assert.Equal(t, unsafe.Pointer(v), unsafe.Pointer(again), "freed block should be reused")
	assert.Zero(t, *again, "reused block must be zeroed")
	Free(p, again)

	assert.Equal(t, 1024, p.FreeMemorySize())
}

func TestAllocZeroSized(t *testing.T) {
	p := NewPool(1024, quiet)
	defer p.Release()

	assert.Nil(t, Alloc[struct{}](p))
	assert.NotPanics(t, func() { Free[int](p, nil) })
}

func TestAllocSlice(t *testing.T) {
	p := NewPool(1024, quiet)
	defer p.Release()

	s := AllocSlice[int32](p, 10)
	require.Len(t, s, 10)
	for i, v := range s {
		assert.Zero(t, v, "element %d", i)
		s[i] = int32(i * 2)
	}
	assert.Equal(t, int32(18), s[9])
	assert.Equal(t, 1024-64, p.FreeMemorySize(), "40 bytes round up to the 64 byte class")

	FreeSlice(p, s)
	assert.Equal(t, 1024, p.FreeMemorySize())

	again := AllocSlice[int32](p, 10)
	assert.Equal(t, unsafe.SliceData(s), unsafe.SliceData(again))
	FreeSlice(p, again)
}

func TestAllocSliceEmpty(t *testing.T) {
	p := NewPool(1024, quiet)
	defer p.Release()

	assert.Nil(t, AllocSlice[int](p, 0))
	assert.Nil(t, AllocSlice[int](p, -1))
	assert.NotPanics(t, func() { FreeSlice[int](p, nil) })
}

func TestPtrAndKeepAlive(t *testing.T) {
	p := NewPool(1024, quiet)
	defer p.Release()

	v := Alloc[int](p)
	*v = 7
	assert.Equal(t, 7, *PtrAndKeepAlive(p, v))
	Free(p, v)
}

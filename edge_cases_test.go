package slabpool_test

import (
	"log/slog"
	"math/rand/v2"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/slabpool"
)

var quiet = slabpool.WithLogger(slog.New(slog.DiscardHandler))

// TestEdgeCases covers budgets and request patterns at the limits of the
// size-class table.
func TestEdgeCases(t *testing.T) {
	t.Run("WholeBudgetInOneRequest", func(t *testing.T) {
		for _, size := range []int{1, 2, 16, 64, 1024, 8192} {
			p := slabpool.NewPool(size, quiet)
			b := p.Allocate(size)
			require.Len(t, b, size)
			assert.Zero(t, p.FreeMemorySize(), "pool %d", size)
			p.Deallocate(b, size)
			assert.Equal(t, size, p.FreeMemorySize(), "pool %d", size)
			p.Release()
		}
	})

	t.Run("OneOverBudgetPanics", func(t *testing.T) {
		for _, size := range []int{1, 16, 1024} {
			p := slabpool.NewPool(size, quiet)
			assert.Panics(t, func() { p.Allocate(size + 1) }, "pool %d", size)
			p.Release()
		}
	})

	t.Run("ManySingleBytes", func(t *testing.T) {
		p := slabpool.NewPool(32, quiet)
		defer p.Release()

		live := make([][]byte, 0, 100)
		for i := 0; i < 100; i++ {
			live = append(live, p.Allocate(1))
		}
		assert.Zero(t, p.FreeMemorySize())
		for _, b := range live {
			p.Deallocate(b, 1)
		}
		assert.GreaterOrEqual(t, p.FreeMemorySize(), 32)
	})

	t.Run("LargeBudget", func(t *testing.T) {
		p := slabpool.NewPool(1<<24, quiet)
		defer p.Release()

		b := p.Allocate(1 << 20)
		require.Len(t, b, 1<<20)
		b[len(b)-1] = 1
		p.Deallocate(b, 1<<20)
		assert.Equal(t, 1<<24, p.FreeMemorySize())
	})

	t.Run("BufferIsolation", func(t *testing.T) {
		p := slabpool.NewPool(4096, quiet)
		defer p.Release()

		a := p.Allocate(32)
		b := p.Allocate(32)
		for i := range a {
			a[i] = 0xFF
		}
		for i := range b {
			b[i] = 0x00
		}
		for i := range a {
			require.Equal(t, byte(0xFF), a[i], "byte %d overwritten", i)
		}
		p.Deallocate(a, 32)
		p.Deallocate(b, 32)
	})

	t.Run("CannotAppendIntoNeighbour", func(t *testing.T) {
		p := slabpool.NewPool(4096, quiet)
		defer p.Release()

		a := p.Allocate(32)
		b := p.Allocate(32)
		grown := append(a, 1)
		assert.NotSame(t, unsafe.SliceData(a), unsafe.SliceData(grown), "append must reallocate")
		assert.Equal(t, byte(0), b[0])
		p.Deallocate(a, 32)
		p.Deallocate(b, 32)
	})
}

// TestRandomBalancedChurn drives random allocate/deallocate sequences and
// checks that live blocks never alias and that everything is returned.
func TestRandomBalancedChurn(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		sys := slabpool.NewCountingAllocator(nil)
		p := slabpool.NewPool(2048, slabpool.WithSystemAllocator(sys), quiet)
		rng := rand.New(rand.NewPCG(seed, seed))

		type alloc struct {
			b    []byte
			size int
		}
		var live []alloc
		owner := make(map[unsafe.Pointer]int)

		for i := 0; i < 2000; i++ {
			if len(live) > 0 && rng.IntN(2) == 0 {
				j := rng.IntN(len(live))
				a := live[j]
				delete(owner, unsafe.Pointer(unsafe.SliceData(a.b)))
				p.Deallocate(a.b, a.size)
				live[j] = live[len(live)-1]
				live = live[:len(live)-1]
				continue
			}
			size := 1 + rng.IntN(2048)
			b := p.Allocate(size)
			ptr := unsafe.Pointer(unsafe.SliceData(b))
			if prev, ok := owner[ptr]; ok {
				t.Fatalf("seed %d: op %d returned a block still live since op %d", seed, i, prev)
			}
			owner[ptr] = i
			live = append(live, alloc{b: b, size: size})
			require.GreaterOrEqual(t, p.FreeMemorySize(), 0)
		}
		for _, a := range live {
			p.Deallocate(a.b, a.size)
		}
		for _, m := range p.Metrics().Classes {
			require.Zero(t, m.AllocatedBlocks, "seed %d class %d", seed, m.BlockSize)
		}
		assert.Zero(t, p.Metrics().DoubleFrees)

		p.Release()
		assert.Zero(t, sys.Outstanding(), "seed %d", seed)
		assert.Zero(t, sys.UnknownFrees(), "seed %d", seed)
	}
}

package workload

import (
	"context"
	"math/rand/v2"
	"strconv"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// Allocator is the pool surface a trace drives. *slabpool.Pool and
// *slabpool.SafePool implement it.
type Allocator interface {
	TryAllocate(size int) ([]byte, error)
	Deallocate(b []byte, size int)
}

// Result summarises a replay.
type Result struct {
	Allocs        int
	Frees         int
	Reused        int // allocations that got back a previously freed block
	Live          int // ids still allocated at the end
	PeakLiveBytes int
}

type liveBuf struct {
	buf  []byte
	size int
}

// Run replays w against a. Context cancellation is checked between ops;
// buffers still live when Run stops are left to the caller's pool.
func Run(ctx context.Context, a Allocator, w *Workload) (Result, error) {
	var res Result
	live := make(map[string]liveBuf)
	freed := make(map[unsafe.Pointer]struct{})
	liveBytes := 0

	for i, op := range w.Ops {
		if err := ctx.Err(); err != nil {
			res.Live = len(live)
			return res, errors.Wrapf(err, "op %d", i)
		}
		switch op.Kind {
		case KindAlloc:
			if op.Size <= 0 {
				return res, errors.Wrapf(ErrBadSize, "op %d (%s)", i, op.ID)
			}
			if _, ok := live[op.ID]; ok {
				return res, errors.Wrapf(ErrDuplicateID, "op %d (%s)", i, op.ID)
			}
			b, err := a.TryAllocate(op.Size)
			if err != nil {
				res.Live = len(live)
				return res, errors.Wrapf(err, "op %d (%s)", i, op.ID)
			}
			p := unsafe.Pointer(unsafe.SliceData(b))
			if _, ok := freed[p]; ok {
				res.Reused++
				delete(freed, p)
			}
			live[op.ID] = liveBuf{buf: b, size: op.Size}
			res.Allocs++
			liveBytes += op.Size
			res.PeakLiveBytes = max(res.PeakLiveBytes, liveBytes)
		case KindFree:
			lb, ok := live[op.ID]
			if !ok {
				return res, errors.Wrapf(ErrUnknownID, "op %d (%s)", i, op.ID)
			}
			delete(live, op.ID)
			freed[unsafe.Pointer(unsafe.SliceData(lb.buf))] = struct{}{}
			a.Deallocate(lb.buf, lb.size)
			res.Frees++
			liveBytes -= lb.size
		default:
			return res, errors.Wrapf(ErrUnknownKind, "op %d: %q", i, op.Kind)
		}
	}
	res.Live = len(live)
	return res, nil
}

// Generate builds a random trace of about n ops with sizes in [1, maxSize].
// Every allocation is freed by the end of the trace.
func Generate(seed uint64, n, maxSize, poolSize int) *Workload {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	w := &Workload{PoolSize: poolSize, Allocator: AllocatorHeap}
	if maxSize <= 0 {
		maxSize = 1
	}
	var live []Op
	next := 0
	for len(w.Ops) < n {
		if len(live) == 0 || rng.IntN(3) > 0 {
			op := Op{Kind: KindAlloc, ID: "b" + strconv.Itoa(next), Size: 1 + rng.IntN(maxSize)}
			next++
			live = append(live, op)
			w.Ops = append(w.Ops, op)
			continue
		}
		j := rng.IntN(len(live))
		w.Ops = append(w.Ops, Op{Kind: KindFree, ID: live[j].ID})
		live[j] = live[len(live)-1]
		live = live[:len(live)-1]
	}
	for _, op := range live {
		w.Ops = append(w.Ops, Op{Kind: KindFree, ID: op.ID})
	}
	return w
}

// Package workload replays allocation traces against a pool.
//
// A trace is a TOML document:
//
//	pool_size = 1024
//	allocator = "heap"
//
//	[[op]]
//	kind = "alloc"
//	id = "a"
//	size = 10
//
//	[[op]]
//	kind = "free"
//	id = "a"
package workload

import (
	"bytes"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/pavanmanishd/slabpool"
)

// Op kinds.
const (
	KindAlloc = "alloc"
	KindFree  = "free"
)

// Allocator names accepted in a trace.
const (
	AllocatorHeap = "heap"
	AllocatorMmap = "mmap"
)

var (
	ErrUnknownKind      = errors.New("workload: unknown op kind")
	ErrUnknownAllocator = errors.New("workload: unknown allocator")
	ErrUnknownID        = errors.New("workload: free of unknown id")
	ErrDuplicateID      = errors.New("workload: id already live")
	ErrBadSize          = errors.New("workload: alloc size must be positive and fit the pool")
)

// Op is one step of a trace. Size is only used by alloc; a free uses the
// size its id was allocated with.
type Op struct {
	Kind string `toml:"kind"`
	ID   string `toml:"id"`
	Size int    `toml:"size,omitempty"`
}

// Workload is a pool configuration plus a trace.
type Workload struct {
	PoolSize         int    `toml:"pool_size"`
	LegacyAccounting bool   `toml:"legacy_accounting,omitempty"`
	Allocator        string `toml:"allocator,omitempty"`
	Ops              []Op   `toml:"op"`
}

// Load reads and validates the trace at path.
func Load(path string) (*Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read workload %s", path)
	}
	w, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "workload %s", path)
	}
	return w, nil
}

// Parse decodes and validates a TOML trace.
func Parse(data []byte) (*Workload, error) {
	var w Workload
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&w)
	if err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Newf("unknown key %q", undecoded[0].String())
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// Encode writes w as TOML.
func (w *Workload) Encode(out io.Writer) error {
	return toml.NewEncoder(out).Encode(w)
}

// Validate checks that every op is well formed, every alloc fits the pool
// and every free names a live id.
func (w *Workload) Validate() error {
	if _, err := w.Options(); err != nil {
		return err
	}
	limit := w.poolBytes()
	live := make(map[string]bool)
	for i, op := range w.Ops {
		switch op.Kind {
		case KindAlloc:
			if op.Size <= 0 || op.Size > limit {
				return errors.Wrapf(ErrBadSize, "op %d (%s): %d bytes in a %d byte pool", i, op.ID, op.Size, limit)
			}
			if live[op.ID] {
				return errors.Wrapf(ErrDuplicateID, "op %d (%s)", i, op.ID)
			}
			live[op.ID] = true
		case KindFree:
			if !live[op.ID] {
				return errors.Wrapf(ErrUnknownID, "op %d (%s)", i, op.ID)
			}
			delete(live, op.ID)
		default:
			return errors.Wrapf(ErrUnknownKind, "op %d: %q", i, op.Kind)
		}
	}
	return nil
}

// poolBytes is the budget NewPool ends up with, which is also the largest
// size it can serve.
func (w *Workload) poolBytes() int {
	size := w.PoolSize
	if size <= 0 {
		size = slabpool.DefaultPoolSize
	}
	return slabpool.NextPowerOfTwo(min(size, slabpool.MaxPowerOfTwo))
}

// Options returns the pool options the trace asks for.
func (w *Workload) Options() ([]slabpool.Option, error) {
	var opts []slabpool.Option
	switch w.Allocator {
	case "", AllocatorHeap:
	case AllocatorMmap:
		opts = append(opts, slabpool.WithSystemAllocator(slabpool.NewMmapAllocator()))
	default:
		return nil, errors.Wrapf(ErrUnknownAllocator, "%q", w.Allocator)
	}
	if w.LegacyAccounting {
		opts = append(opts, slabpool.WithLegacyAccounting())
	}
	return opts, nil
}

// NewPool builds the pool the trace describes. extra options are applied
// after the trace's own.
func (w *Workload) NewPool(extra ...slabpool.Option) (*slabpool.Pool, error) {
	opts, err := w.Options()
	if err != nil {
		return nil, err
	}
	return slabpool.NewPool(w.PoolSize, append(opts, extra...)...), nil
}

package slabpool

import "log/slog"

// DoubleFreeFunc is called when a buffer that is already free is returned.
// blockSize is the size class the buffer was returned to.
type DoubleFreeFunc func(b []byte, blockSize int)

type config struct {
	sys          SystemAllocator
	logger       *slog.Logger
	legacy       bool
	onDoubleFree DoubleFreeFunc
}

func defaultConfig() config {
	return config{
		sys:    HeapAllocator{},
		logger: slog.Default(),
	}
}

// Option configures a Pool.
type Option func(*config)

// WithSystemAllocator sets the allocator backing size classes and fallback
// requests. Defaults to HeapAllocator.
func WithSystemAllocator(sys SystemAllocator) Option {
	return func(c *config) {
		if sys != nil {
			c.sys = sys
		}
	}
}

// WithLogger sets the diagnostic sink. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLegacyAccounting reproduces the historical bookkeeping in which bytes
// granted on the fallback path are added to MaxBlockSize instead of
// FallbackGranted, and a fallback buffer served after the budget ran out is
// still credited to the budget when it is deallocated.
func WithLegacyAccounting() Option {
	return func(c *config) { c.legacy = true }
}

// WithDoubleFreeHook registers fn to observe double frees. Double frees are
// never fatal; the buffer is left where it is.
func WithDoubleFreeHook(fn DoubleFreeFunc) Option {
	return func(c *config) { c.onDoubleFree = fn }
}

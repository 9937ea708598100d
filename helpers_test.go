package slabpool

import (
	"log/slog"
	"unsafe"
)

var quiet = WithLogger(slog.New(slog.DiscardHandler))

func samePtr(a, b []byte) bool {
	return unsafe.SliceData(a[:cap(a)]) == unsafe.SliceData(b[:cap(b)])
}

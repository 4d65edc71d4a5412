package spscring

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/ringware/spscring/internal/ringmath"
)

// maxAlign bounds the alignment DefaultAllocator will honour. Anything
// beyond this is almost certainly a caller composing alignments incorrectly
// rather than a genuine requirement, and would otherwise blow up the
// over-allocation in Allocate.
const maxAlign = uintptr(1) << 20

// ErrAllocationFailed is wrapped by any error an [Allocator] returns when it
// cannot satisfy a request. Callers should check against it with [errors.Is]
// rather than comparing allocator-specific error values directly.
var ErrAllocationFailed = errors.New("spscring: allocation failed")

// Allocator is the storage-lifecycle contract a [Ring] consumes. The Ring
// owns no allocation machinery of its own; it calls out to an Allocator for
// the raw bytes backing its slots and returns them on [Ring.Free].
//
// Allocate must return a pointer to at least size bytes, aligned to align
// (a power of 2), or an error wrapping [ErrAllocationFailed]. Free must
// tolerate the exact pointer a prior Allocate call returned and release the
// associated storage; it is never called with any other pointer value.
type Allocator interface {
	Allocate(size, align uintptr) (unsafe.Pointer, error)
	Free(ptr unsafe.Pointer)
}

// DefaultAllocator is the Go-native realisation of [Allocator]: it backs
// every request with a plain heap slice and hands back an aligned interior
// pointer. Go's garbage collector does not move live objects, so the
// interior pointer remains valid for as long as the backing slice is
// reachable; DefaultAllocator keeps that slice reachable by retaining it in
// an internal table keyed by the returned pointer until Free is called.
type DefaultAllocator struct {
	mu    sync.Mutex
	slabs map[unsafe.Pointer][]byte
}

// NewDefaultAllocator constructs a ready-to-use [DefaultAllocator].
func NewDefaultAllocator() *DefaultAllocator {
	return &DefaultAllocator{slabs: make(map[unsafe.Pointer][]byte)}
}

// Allocate implements [Allocator] by over-allocating a byte slice and
// slicing into it at the first offset satisfying align. A non-power-of-2
// align is rounded up rather than rejected, since alignment requests
// derived from alignof(T) for odd-sized T are always themselves a power of
// 2 in practice, but callers composing alignments (e.g. max of two
// requirements) may not produce one.
func (a *DefaultAllocator) Allocate(size, align uintptr) (unsafe.Pointer, error) {
	align = ringmath.Clamp(align, 1, maxAlign)
	if align&(align-1) != 0 {
		align = ringmath.NextPow2(align)
	}

	slab := make([]byte, size+align)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(slab)))
	aligned := (base + align - 1) &^ (align - 1)
	ptr := unsafe.Pointer(aligned)

	a.mu.Lock()
	a.slabs[ptr] = slab
	a.mu.Unlock()

	return ptr, nil
}

// Free releases the slab backing ptr. Freeing an unknown pointer, or a
// nil pointer, is a no-op.
func (a *DefaultAllocator) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	a.mu.Lock()
	delete(a.slabs, ptr)
	a.mu.Unlock()
}

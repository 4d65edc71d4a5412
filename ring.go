package spscring

import (
	"math"
	"sync"
	"sync/atomic"
	"unsafe"
)

// terminalFlag occupies the high bit of the size counter: when set, the
// producer has declared the pop side closed via EndPopWaiting.
const terminalFlag = int32(math.MinInt32)

// countMask isolates the low 31 bits of the size counter, the live element
// count.
const countMask = int32(math.MaxInt32)

// cacheLineSize is the padding stride between pushIndex, popIndex, and size
// below. 128 rather than the more common 64 covers the wider prefetch
// behavior some ARM64 cores exhibit, at the cost of a few hundred bytes per
// Ring; see align_test.go for the offset assertions this depends on.
const cacheLineSize = 128

// sizeOfAtomicInt32 is unsafe.Sizeof(atomic.Int32{}), used to size the
// padding fields below without pulling unsafe into a const expression.
const sizeOfAtomicInt32 = 4

// Ring is a bounded, lock-free, single-producer/single-consumer circular
// buffer of T. The zero value is an unallocated Ring; use [NewRing] to also
// attach options such as a [Logger].
//
// pushIndex, popIndex, and size are deliberately laid out on independent
// cache lines (padded to [cacheLineSize]) so that the producer's writes to
// pushIndex never invalidate the consumer's cache line holding popIndex, and
// vice versa; see align_test.go.
type Ring[T any] struct { //nolint:govet // intentional padding, not a field-ordering bug
	_         [cacheLineSize]byte
	pushIndex atomic.Int32
	_         [cacheLineSize - sizeOfAtomicInt32]byte
	popIndex  atomic.Int32
	_         [cacheLineSize - sizeOfAtomicInt32]byte
	size      atomic.Int32
	_         [cacheLineSize - sizeOfAtomicInt32]byte

	waitMu   sync.Mutex
	condOnce sync.Once
	cond     *sync.Cond

	storage  unsafe.Pointer
	elemSize uintptr
	capacity int32
	indexEnd int32

	logger Logger
}

// NewRing constructs a Ring, applying the given options. The returned Ring
// is unallocated; call [Ring.Allocate] before pushing or popping.
func NewRing[T any](opts ...RingOption) *Ring[T] {
	cfg := resolveRingOptions(opts)
	return &Ring[T]{logger: cfg.logger}
}

// initCond lazily constructs the Cond backing the wait/notify protocol the
// first time a waiting operation or a notify-on-edge broadcast from
// addSizeAndNotify needs it, so a Ring that is never pushed to or waited on
// never pays for it.
func (r *Ring[T]) initCond() *sync.Cond {
	r.condOnce.Do(func() {
		r.cond = sync.NewCond(&r.waitMu)
	})
	return r.cond
}

// Allocate transitions the Ring from unallocated to allocated, requesting
// capacity*sizeof(T) bytes from alloc aligned to max(cacheLineSize,
// alignof(T)).
//
// Precondition: the Ring is not already allocated, capacity >= 1, and
// MaxInt32/capacity >= 2 (at least two index wraps are available). Violating
// any of these is a programmer error: Allocate logs the violated
// precondition and panics with a [ContractViolation].
func (r *Ring[T]) Allocate(alloc Allocator, capacity int) error {
	const op = "Allocate"
	if r.storage != nil {
		r.abort(op, "already allocated")
	}
	if capacity < 1 {
		r.abort(op, "capacity must be >= 1")
	}
	if capacity > math.MaxInt32/2 {
		r.abort(op, "capacity exceeds MaxInt32/2")
	}
	k := math.MaxInt32 / capacity
	if k < 2 {
		r.abort(op, "capacity too large: fewer than 2 index wraps available")
	}

	var zero T
	elemSize := unsafe.Sizeof(zero)
	align := uintptr(cacheLineSize)
	if a := unsafe.Alignof(zero); uintptr(a) > align {
		align = uintptr(a)
	}

	ptr, err := alloc.Allocate(uintptr(capacity)*elemSize, align)
	if err != nil {
		if r.logger != nil {
			r.logger.Log(LogEntry{Level: LevelDebug, Category: "allocator", Op: op, Message: "allocate failed", Err: err})
		}
		return wrapAllocErr(op, err)
	}

	r.storage = ptr
	r.elemSize = elemSize
	r.capacity = int32(capacity)
	r.indexEnd = int32(capacity * k)
	r.pushIndex.Store(0)
	r.popIndex.Store(0)
	r.size.Store(0)
	return nil
}

// Free transitions an empty, allocated Ring back to unallocated, returning
// its storage to alloc.
//
// Precondition: the Ring is allocated and empty. Violating this is a
// programmer error: Free logs the violated precondition and panics with a
// [ContractViolation].
func (r *Ring[T]) Free(alloc Allocator) error {
	const op = "Free"
	if r.storage == nil {
		r.abort(op, "not allocated")
	}
	if !r.Empty() {
		r.abort(op, "ring is not empty")
	}
	alloc.Free(r.storage)
	r.storage = nil
	r.elemSize = 0
	r.capacity = 0
	r.indexEnd = 0
	return nil
}

// IsAllocated reports whether the Ring currently owns storage. Like the
// original, this is a plain observation with no cross-goroutine ordering
// guarantee: it is meant to be read by the same goroutine that calls
// Allocate/Free around the non-concurrent setup/teardown window, not raced
// against push/pop from another goroutine.
func (r *Ring[T]) IsAllocated() bool {
	return r.storage != nil
}

// Size returns the number of live elements currently held by the Ring.
func (r *Ring[T]) Size() int {
	return int(r.size.Load() & countMask)
}

// Empty reports whether the Ring currently holds no elements.
func (r *Ring[T]) Empty() bool {
	return r.Size() == 0
}

func (r *Ring[T]) abort(op, precondition string) {
	if r.logger != nil {
		r.logger.Log(LogEntry{Level: LevelError, Category: "contract", Op: op, Message: precondition})
	}
	violate(op, precondition)
}

// slotPtr maps a raw index cursor (ranging over [0, indexEnd)) to the
// backing slot it currently denotes.
func (r *Ring[T]) slotPtr(idx int32) *T {
	slot := idx % r.capacity
	return (*T)(unsafe.Add(r.storage, uintptr(slot)*r.elemSize))
}

func (r *Ring[T]) advance(idx int32) int32 {
	idx++
	if idx == r.indexEnd {
		idx = 0
	}
	return idx
}

// addSizeAndNotify applies delta (positive for push, negative for pop) to
// the size counter and, on the 0->n (pop-side wake) or capacity->capacity-n
// (push-side wake) edge, wakes any waiter blocked on the opposite condition.
// It is always performed, regardless of whether the Ring is ever used
// through a waiting policy wrapper: broadcasting to an empty waiter list is
// cheap, and it keeps TryPush/TryPop/PushMany/PopMany free of policy
// branching.
func (r *Ring[T]) addSizeAndNotify(delta int32) {
	prev := r.size.Add(delta) - delta
	if delta > 0 && prev&countMask == 0 {
		r.broadcast()
	} else if delta < 0 && prev&countMask == r.capacity {
		r.broadcast()
	}
}

func (r *Ring[T]) broadcast() {
	cond := r.initCond()
	r.waitMu.Lock()
	cond.Broadcast()
	r.waitMu.Unlock()
}

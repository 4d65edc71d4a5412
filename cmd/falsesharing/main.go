// Command falsesharing demonstrates the effect padding pushIndex, popIndex,
// and size onto independent cache lines has on single-element throughput.
// It runs the same producer/consumer workload twice: once against the
// padded [spscring.Ring], and once against an unpadded stand-in with the
// three index fields packed into consecutive words, and reports
// elements/sec for both.
//
// This binary is a demonstration program, not part of the spscring package
// itself: it exercises the Ring's layout and correctness but nothing in the
// package depends on it.
package main

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ringware/spscring"
)

const (
	ringCapacity = 4096
	workItems    = 20_000_000
)

func main() {
	fmt.Printf("padded:   %.0f elements/sec\n", float64(workItems)/runPadded().Seconds())
	fmt.Printf("unpadded: %.0f elements/sec\n", float64(workItems)/runUnpadded().Seconds())
}

func runPadded() time.Duration {
	alloc := spscring.NewDefaultAllocator()
	r := spscring.NewRing[int]()
	if err := r.Allocate(alloc, ringCapacity); err != nil {
		panic(err)
	}
	defer drainAndFree(r, alloc)

	w := spscring.AsBothWaiter(r)
	return race(func(i int) {
		_ = w.PushWait(context.Background(), i)
	}, func() {
		_, _, _ = w.PopWait(context.Background())
	})
}

// unpaddedRing packs the three hot atomics into consecutive words on
// purpose, to make the false-sharing effect visible for comparison.
type unpaddedRing struct {
	pushIndex atomic.Int32
	popIndex  atomic.Int32
	size      atomic.Int32

	buf  [ringCapacity]int
	cond *sync.Cond
	mu   sync.Mutex
}

func newUnpaddedRing() *unpaddedRing {
	r := &unpaddedRing{}
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *unpaddedRing) tryPush(v int) bool {
	push := r.pushIndex.Load()
	pop := r.popIndex.Load()
	if push-pop == ringCapacity {
		return false
	}
	r.buf[push%ringCapacity] = v
	r.pushIndex.Store(push + 1)
	if r.size.Add(1) == 1 {
		r.mu.Lock()
		r.cond.Broadcast()
		r.mu.Unlock()
	}
	return true
}

func (r *unpaddedRing) tryPop() (int, bool) {
	push := r.pushIndex.Load()
	pop := r.popIndex.Load()
	if push == pop {
		return 0, false
	}
	v := r.buf[pop%ringCapacity]
	r.popIndex.Store(pop + 1)
	if r.size.Add(-1) == ringCapacity-1 {
		r.mu.Lock()
		r.cond.Broadcast()
		r.mu.Unlock()
	}
	return v, true
}

func (r *unpaddedRing) pushWait(v int) {
	for !r.tryPush(v) {
		r.mu.Lock()
		for r.size.Load() == ringCapacity {
			r.cond.Wait()
		}
		r.mu.Unlock()
	}
}

func (r *unpaddedRing) popWait() int {
	for {
		if v, ok := r.tryPop(); ok {
			return v
		}
		r.mu.Lock()
		for r.size.Load() == 0 {
			r.cond.Wait()
		}
		r.mu.Unlock()
	}
}

func runUnpadded() time.Duration {
	r := newUnpaddedRing()
	return race(func(i int) {
		r.pushWait(i)
	}, func() {
		r.popWait()
	})
}

// race runs push against pop, each pinned to its own CPU when possible, and
// returns the wall-clock duration to move workItems elements.
func race(push func(int), pop func()) time.Duration {
	var wg sync.WaitGroup
	wg.Add(2)

	start := time.Now()

	go func() {
		defer wg.Done()
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		_ = pinToCPU(0)
		for i := 0; i < workItems; i++ {
			push(i)
		}
	}()

	go func() {
		defer wg.Done()
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		_ = pinToCPU(1)
		for i := 0; i < workItems; i++ {
			pop()
		}
	}()

	wg.Wait()
	return time.Since(start)
}

func drainAndFree(r *spscring.Ring[int], alloc spscring.Allocator) {
	var buf [ringCapacity]int
	for !r.Empty() {
		r.PopMany(buf[:])
	}
	_ = r.Free(alloc)
}

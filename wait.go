package spscring

import "context"

// PushWaiter narrows a Ring to the operations available under the
// PushWait policy: the non-blocking family plus [PushWaiter.PushWait] and
// [PushWaiter.PushManyWait]. PopWait and the shutdown protocol are
// statically unavailable on this type.
type PushWaiter[T any] struct{ *Ring[T] }

// AsPushWaiter wraps r for producer-side blocking pushes.
func AsPushWaiter[T any](r *Ring[T]) PushWaiter[T] { return PushWaiter[T]{r} }

// PushWait retries TryPush until it succeeds or ctx is done.
func (w PushWaiter[T]) PushWait(ctx context.Context, v T) error {
	return pushWait(w.Ring, ctx, v)
}

// PushManyWait retries PushMany on the unconsumed remainder until every
// element of items has been pushed, or ctx is done.
func (w PushWaiter[T]) PushManyWait(ctx context.Context, items []T) error {
	return pushManyWait(w.Ring, ctx, items)
}

// PopWaiter narrows a Ring to the operations available under the PopWait
// policy: the non-blocking family plus [PopWaiter.PopWait],
// [PopWaiter.PopManyWait], and the shutdown protocol. PushWait is statically
// unavailable on this type.
type PopWaiter[T any] struct{ *Ring[T] }

// AsPopWaiter wraps r for consumer-side blocking pops and producer-side
// shutdown signalling.
func AsPopWaiter[T any](r *Ring[T]) PopWaiter[T] { return PopWaiter[T]{r} }

// PopWait retries TryPop until it succeeds, the pop side is closed and
// drained (returns false, nil), or ctx is done (returns false, ctx.Err()).
func (w PopWaiter[T]) PopWait(ctx context.Context) (v T, ok bool, err error) {
	return popWait(w.Ring, ctx)
}

// PopManyWait retries PopMany until dst is filled, the pop side is closed
// and drains empty (returns a short count, nil), or ctx is done.
func (w PopWaiter[T]) PopManyWait(ctx context.Context, dst []T) (int, error) {
	return popManyWait(w.Ring, ctx, dst)
}

// EndPopWaiting declares the stream closed: the ring drains normally, but
// once empty every blocked or future PopWait returns false. Producer-side
// only.
func (w PopWaiter[T]) EndPopWaiting() { endPopWaiting(w.Ring) }

// ResetPopWaiting clears the terminal flag set by EndPopWaiting, restoring
// indefinite PopWait blocking. Producer-side only.
func (w PopWaiter[T]) ResetPopWaiting() { resetPopWaiting(w.Ring) }

// BothWaiter narrows a Ring to the full operation set: both blocking push
// and blocking pop, plus the shutdown protocol.
type BothWaiter[T any] struct{ *Ring[T] }

// AsBothWaiter wraps r for both producer- and consumer-side blocking.
func AsBothWaiter[T any](r *Ring[T]) BothWaiter[T] { return BothWaiter[T]{r} }

func (w BothWaiter[T]) PushWait(ctx context.Context, v T) error {
	return pushWait(w.Ring, ctx, v)
}

func (w BothWaiter[T]) PushManyWait(ctx context.Context, items []T) error {
	return pushManyWait(w.Ring, ctx, items)
}

func (w BothWaiter[T]) PopWait(ctx context.Context) (v T, ok bool, err error) {
	return popWait(w.Ring, ctx)
}

func (w BothWaiter[T]) PopManyWait(ctx context.Context, dst []T) (int, error) {
	return popManyWait(w.Ring, ctx, dst)
}

func (w BothWaiter[T]) EndPopWaiting() { endPopWaiting(w.Ring) }

func (w BothWaiter[T]) ResetPopWaiting() { resetPopWaiting(w.Ring) }

func pushWait[T any](r *Ring[T], ctx context.Context, v T) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	for {
		if r.TryPush(v) {
			return nil
		}
		if err := r.waitWhile(ctx, func(size int32) bool {
			return size&countMask == r.capacity
		}); err != nil {
			return err
		}
	}
}

func pushManyWait[T any](r *Ring[T], ctx context.Context, items []T) error {
	if ctx != nil && len(items) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	for len(items) > 0 {
		items = r.PushMany(items)
		if len(items) == 0 {
			return nil
		}
		if err := r.waitWhile(ctx, func(size int32) bool {
			return size&countMask == r.capacity
		}); err != nil {
			return err
		}
	}
	return nil
}

func popWait[T any](r *Ring[T], ctx context.Context) (v T, ok bool, err error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return v, false, err
		}
	}
	for {
		if v, ok = r.TryPop(); ok {
			return v, true, nil
		}
		if r.size.Load()&terminalFlag != 0 {
			// The flag is set after every push that preceded EndPopWaiting,
			// so one more attempt sees any element the first one missed.
			if v, ok = r.TryPop(); ok {
				return v, true, nil
			}
			return v, false, nil
		}
		if werr := r.waitWhile(ctx, func(size int32) bool {
			return size&countMask == 0 && size&terminalFlag == 0
		}); werr != nil {
			return v, false, werr
		}
	}
}

func popManyWait[T any](r *Ring[T], ctx context.Context, dst []T) (n int, err error) {
	if ctx != nil && len(dst) > 0 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}
	for n < len(dst) {
		got := r.PopMany(dst[n:])
		n += got
		if n == len(dst) {
			return n, nil
		}
		if got > 0 {
			continue // progress was made; try again before waiting
		}
		if r.size.Load()&terminalFlag != 0 {
			return n + r.PopMany(dst[n:]), nil
		}
		if werr := r.waitWhile(ctx, func(size int32) bool {
			return size&countMask == 0 && size&terminalFlag == 0
		}); werr != nil {
			return n, werr
		}
	}
	return n, nil
}

func endPopWaiting[T any](r *Ring[T]) {
	for {
		prev := r.size.Load()
		if prev&terminalFlag != 0 {
			return
		}
		if r.size.CompareAndSwap(prev, prev|terminalFlag) {
			if prev&countMask == 0 {
				r.broadcast()
			}
			return
		}
	}
}

func resetPopWaiting[T any](r *Ring[T]) {
	for {
		prev := r.size.Load()
		if prev&terminalFlag == 0 {
			return
		}
		if r.size.CompareAndSwap(prev, prev&countMask) {
			return
		}
	}
}

// waitWhile blocks the calling goroutine while blocking(size) holds, waking
// on every notify-on-edge broadcast from addSizeAndNotify/endPopWaiting, or
// when ctx is done.
//
// The size word the predicate inspects is not itself guarded by waitMu; the
// mutex exists purely to coordinate the Cond's wait/notify protocol. This is
// safe because every Broadcast is also issued under waitMu (see
// Ring.broadcast): a broadcaster cannot acquire the lock while a waiter is
// between its predicate recheck and Cond.Wait's atomic unlock-and-park, so
// no wake-up issued after the waiter last observed the blocking condition
// can be missed.
func (r *Ring[T]) waitWhile(ctx context.Context, blocking func(size int32) bool) error {
	cond := r.initCond()

	if ctx != nil && ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() {
			r.waitMu.Lock()
			cond.Broadcast()
			r.waitMu.Unlock()
		})
		defer stop()
	}

	r.waitMu.Lock()
	defer r.waitMu.Unlock()
	for blocking(r.size.Load()) {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		cond.Wait()
	}
	return nil
}

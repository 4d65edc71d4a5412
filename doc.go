// Package spscring provides a bounded, lock-free, wait-capable
// single-producer/single-consumer ring buffer.
//
// # Architecture
//
// [Ring] is the core data structure: a fixed-capacity circular buffer with
// independent, cache-line-padded producer and consumer index cursors and a
// single atomic size counter that doubles as the wait/notify rendezvous and
// the carrier of the terminal (shutdown) flag.
//
// Three policy wrapper types narrow which blocking operations are available:
// [PushWaiter] exposes [PushWaiter.PushWait], [PopWaiter] exposes
// [PopWaiter.PopWait] plus the shutdown protocol, and [BothWaiter] exposes
// all of the above. A bare [Ring] exposes only the non-blocking
// [Ring.TryPush]/[Ring.TryPop]/[Ring.PushMany]/[Ring.PopMany] family.
//
// # Thread Safety
//
// A Ring is safe for concurrent use by exactly one producer goroutine and
// one consumer goroutine. [Ring.Allocate] and [Ring.Free] are not
// concurrency-safe with each other or with any push/pop operation; they are
// expected to run on an owning goroutine before the producer/consumer pair
// starts and after it has fully stopped, respectively.
//
// # Memory Model
//
// Slot storage is raw memory obtained from an [Allocator]. Publication of a
// pushed element to the consumer, and of a freed slot back to the producer,
// is established by release stores paired with acquire loads on the index
// cursors, per the Go memory model's documented guarantee for
// [sync/atomic] operations.
package spscring

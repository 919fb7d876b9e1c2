package audio

import (
	"sync/atomic"

	"mityguitar/music"
)

// DefaultRingCapacity is sized so a full TUI frame of chord changes
// never comes close to filling it.
const DefaultRingCapacity = 1024

// EventRing is a bounded single-producer single-consumer queue carrying
// events from the control goroutine into the render callback. Neither
// side blocks or allocates: the producer drops when full and counts the
// drop, the consumer returns false when empty.
//
// head is advanced only by the consumer, tail only by the producer, so
// a Load on the opposite index plus an atomic Store on your own is
// enough for correctness on both sides.
type EventRing struct {
	buf      []music.Event
	mask     uint64
	head     atomic.Uint64 // next slot to read
	tail     atomic.Uint64 // next slot to write
	overflow atomic.Uint64
}

// NewEventRing creates a ring with the given capacity, rounded up to
// the next power of two.
func NewEventRing(capacity int) *EventRing {
	if capacity < 2 {
		capacity = 2
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &EventRing{
		buf:  make([]music.Event, size),
		mask: uint64(size - 1),
	}
}

// TrySend enqueues one event. Returns false without blocking if the
// ring is full; the overflow counter records the drop.
func (r *EventRing) TrySend(ev music.Event) bool {
	tail := r.tail.Load()
	head := r.head.Load()
	if tail-head >= uint64(len(r.buf)) {
		r.overflow.Add(1)
		return false
	}
	r.buf[tail&r.mask] = ev
	r.tail.Store(tail + 1)
	return true
}

// TryRecv dequeues one event. Returns false if the ring is empty.
func (r *EventRing) TryRecv() (music.Event, bool) {
	head := r.head.Load()
	if head == r.tail.Load() {
		return music.Event{}, false
	}
	ev := r.buf[head&r.mask]
	r.head.Store(head + 1)
	return ev, true
}

// Len reports the number of queued events. Racy by nature; useful for
// diagnostics only.
func (r *EventRing) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Cap returns the ring's capacity.
func (r *EventRing) Cap() int {
	return len(r.buf)
}

// Overflows returns the number of events dropped because the ring was
// full.
func (r *EventRing) Overflows() uint64 {
	return r.overflow.Load()
}

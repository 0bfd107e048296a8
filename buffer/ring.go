// Package buffer implements the fixed-capacity byte ring shared between a
// receive goroutine and the foreground code of a serial transport.
package buffer

import (
	"sync"
	"sync/atomic"
)

// Ring is a fixed-capacity circular byte buffer. It never overwrites unread
// data: writes into a full ring are rejected and reported through the
// returned count.
//
// Ring is safe for exactly one producer goroutine (PutByte, Write) running
// concurrently with one consumer goroutine (GetByte, Read, Clear). The
// producer owns the write counter and the consumer owns the read counter;
// each side only loads the other's counter, so occupancy can never be torn.
// Any other sharing needs external synchronization.
type Ring struct {
	data []byte
	size uint64

	// head counts every byte ever written, tail every byte ever read or
	// discarded. head-tail is the occupancy.
	head atomic.Uint64
	tail atomic.Uint64

	hasThreshold atomic.Bool
	mu           sync.Mutex
	threshold    *threshold
}

// New returns an empty ring holding up to capacity bytes. Capacities below
// one are raised to one.
func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{
		data: make([]byte, capacity),
		size: uint64(capacity),
	}
}

// Capacity returns the fixed number of bytes the ring can hold.
func (r *Ring) Capacity() int {
	return int(r.size)
}

// Size returns the number of unread bytes.
func (r *Ring) Size() int {
	// tail first: it can only grow afterwards, so the difference never
	// underflows. A concurrent read may make it overshoot, hence the clamp.
	t := r.tail.Load()
	h := r.head.Load()
	if h-t > r.size {
		return int(r.size)
	}
	return int(h - t)
}

// Remaining returns the number of bytes that can be written before the ring
// is full.
func (r *Ring) Remaining() int {
	return int(r.size) - r.Size()
}

func (r *Ring) IsFull() bool {
	return r.Size() == int(r.size)
}

func (r *Ring) IsEmpty() bool {
	return r.Size() == 0
}

// PutByte stores b and returns 1, or returns 0 if the ring is full.
func (r *Ring) PutByte(b byte) int {
	h := r.head.Load()
	if h-r.tail.Load() >= r.size {
		return 0
	}
	r.data[h%r.size] = b
	r.head.Store(h + 1)
	r.evaluate()
	return 1
}

// Write stores as many leading bytes of p as fit and returns how many were
// accepted. It never blocks.
func (r *Ring) Write(p []byte) int {
	n := 0
	for _, b := range p {
		if r.PutByte(b) == 0 {
			break
		}
		n++
	}
	return n
}

// GetByte removes the oldest byte. The count is 0 when the ring is empty.
func (r *Ring) GetByte() (byte, int) {
	t := r.tail.Load()
	if r.head.Load() == t {
		return 0, 0
	}
	b := r.data[t%r.size]
	r.tail.Store(t + 1)
	r.evaluate()
	return b, 1
}

// Read moves up to len(p) bytes into p and returns the count. It returns 0
// immediately when the ring is empty.
func (r *Ring) Read(p []byte) int {
	n := 0
	for n < len(p) {
		b, ok := r.GetByte()
		if ok == 0 {
			break
		}
		p[n] = b
		n++
	}
	return n
}

// Clear discards every unread byte. It is a consumer operation: bytes a
// concurrent producer stores after the call survive it.
func (r *Ring) Clear() {
	r.tail.Store(r.head.Load())
	r.rearm()
}

// AttachThreshold registers fn to run whenever the occupancy moves into the
// region where op.Compare(occupancy, level) holds. It replaces any earlier
// threshold. fn does not run for the current occupancy, only for later
// transitions, and it runs once per transition rather than once per byte.
//
// fn runs synchronously on the goroutine whose PutByte, Write, GetByte or
// Read caused the crossing. It may call Size or Remaining but must not read,
// write, clear or attach on the same ring: doing so re-enters the operation
// that is still in progress.
func (r *Ring) AttachThreshold(fn func(), level int, op RelationalOperator) {
	if fn == nil {
		r.DetachThreshold()
		return
	}
	r.mu.Lock()
	r.threshold = &threshold{
		fn:        fn,
		level:     level,
		op:        op,
		satisfied: op.Compare(r.Size(), level),
	}
	r.mu.Unlock()
	r.hasThreshold.Store(true)
}

// DetachThreshold removes the attached threshold, if any.
func (r *Ring) DetachThreshold() {
	r.hasThreshold.Store(false)
	r.mu.Lock()
	r.threshold = nil
	r.mu.Unlock()
}

func (r *Ring) evaluate() {
	if !r.hasThreshold.Load() {
		return
	}
	r.mu.Lock()
	t := r.threshold
	if t == nil {
		r.mu.Unlock()
		return
	}
	sat := t.op.Compare(r.Size(), t.level)
	fire := sat && !t.satisfied
	t.satisfied = sat
	fn := t.fn
	r.mu.Unlock()

	if fire {
		fn()
	}
}

// rearm recomputes the threshold state after a clear without notifying.
func (r *Ring) rearm() {
	if !r.hasThreshold.Load() {
		return
	}
	r.mu.Lock()
	if t := r.threshold; t != nil {
		t.satisfied = t.op.Compare(r.Size(), t.level)
	}
	r.mu.Unlock()
}

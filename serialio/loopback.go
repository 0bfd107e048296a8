package serialio

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"i4.energy/across/socketmodem/buffer"
)

// Loopback is an in-memory line usable as both Hardware and Handshake.
// Drained bytes are recorded and handed to the peer function; bytes passed
// to Inject come back through Fill. It stands in for a radio in tests and
// simulators.
//
// The simulated peer honors RTS: while RTS is deasserted Fill holds back
// injected bytes.
type Loopback struct {
	mu      sync.Mutex
	peer    func(p []byte)
	written []byte
	rts     []bool

	inbound   chan []byte
	pending   []byte
	maxChunk  atomic.Int64
	ready     atomic.Bool
	cts       atomic.Bool
	closed    chan struct{}
	closeOnce sync.Once
	slice     time.Duration
}

// NewLoopback returns an open loopback with CTS asserted.
func NewLoopback() *Loopback {
	l := &Loopback{
		inbound: make(chan []byte, 1024),
		closed:  make(chan struct{}),
		slice:   DefaultPollSlice,
	}
	l.ready.Store(true)
	l.cts.Store(true)
	return l
}

// SetPeer installs fn to receive every drained chunk. fn runs on the
// writer's goroutine and may call Inject.
func (l *Loopback) SetPeer(fn func(p []byte)) {
	l.mu.Lock()
	l.peer = fn
	l.mu.Unlock()
}

// SetMaxChunk limits how many bytes a single Fill delivers. Zero means no
// limit.
func (l *Loopback) SetMaxChunk(n int) {
	l.maxChunk.Store(int64(n))
}

// Inject queues bytes for the receive side.
func (l *Loopback) Inject(p []byte) {
	if len(p) == 0 {
		return
	}
	select {
	case <-l.closed:
	case l.inbound <- append([]byte(nil), p...):
	}
}

// Written returns a copy of every byte drained so far.
func (l *Loopback) Written() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]byte(nil), l.written...)
}

// ResetWritten forgets the drained bytes recorded so far.
func (l *Loopback) ResetWritten() {
	l.mu.Lock()
	l.written = nil
	l.mu.Unlock()
}

// SetClearToSend sets the CTS level the peer presents.
func (l *Loopback) SetClearToSend(cts bool) {
	l.cts.Store(cts)
}

// RTSHistory returns every RTS level written, oldest first.
func (l *Loopback) RTSHistory() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]bool(nil), l.rts...)
}

func (l *Loopback) Drain(tx *buffer.Ring) error {
	select {
	case <-l.closed:
		return ErrClosed
	default:
	}
	p := make([]byte, tx.Size())
	n := tx.Read(p)
	if n == 0 {
		return nil
	}
	l.mu.Lock()
	l.written = append(l.written, p[:n]...)
	peer := l.peer
	l.mu.Unlock()
	if peer != nil {
		peer(p[:n])
	}
	return nil
}

func (l *Loopback) Fill(p []byte) (int, error) {
	if len(l.pending) == 0 || !l.ready.Load() {
		timer := time.NewTimer(l.slice)
		defer timer.Stop()
		if len(l.pending) == 0 {
			select {
			case data := <-l.inbound:
				l.pending = data
			case <-l.closed:
				return 0, io.EOF
			case <-timer.C:
				return 0, nil
			}
		} else {
			select {
			case <-l.closed:
				return 0, io.EOF
			case <-timer.C:
			}
		}
		if !l.ready.Load() {
			return 0, nil
		}
	}

	limit := len(p)
	if m := int(l.maxChunk.Load()); m > 0 && m < limit {
		limit = m
	}
	n := copy(p[:limit], l.pending)
	l.pending = l.pending[n:]
	return n, nil
}

func (l *Loopback) Close() error {
	l.closeOnce.Do(func() {
		close(l.closed)
	})
	return nil
}

func (l *Loopback) SetReady(ready bool) error {
	l.ready.Store(ready)
	l.mu.Lock()
	l.rts = append(l.rts, ready)
	l.mu.Unlock()
	return nil
}

func (l *Loopback) ClearToSend() (bool, error) {
	return l.cts.Load(), nil
}

var (
	_ Hardware  = (*Loopback)(nil)
	_ Handshake = (*Loopback)(nil)
)

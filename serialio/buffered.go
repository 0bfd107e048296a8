package serialio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"i4.energy/across/socketmodem/buffer"
)

const (
	DefaultBufferSize = 256
	DefaultPollSlice  = 10 * time.Millisecond

	// corruptByte arriving while the receive ring is full is the bus
	// corruption signature.
	corruptByte = 0xFF
)

// BufferedIO owns a transmit ring drained to Hardware by foreground calls
// and a receive ring filled by its own receive goroutine.
//
// The receive goroutine is the only producer of the receive ring and the
// foreground caller its only consumer. For the transmit ring the foreground
// caller is both. BufferedIO therefore supports one foreground goroutine at
// a time.
type BufferedIO struct {
	hw     Hardware
	rx     *buffer.Ring
	tx     *buffer.Ring
	slice  time.Duration
	logger *slog.Logger
	reset  ResetFunc

	// onRxChange runs after every fill and every RxClear.
	onRxChange func()

	rxBytes atomic.Uint64
	txBytes atomic.Uint64
	dropped atomic.Uint64

	startOnce sync.Once
	closeOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
	started   atomic.Bool
	closed    atomic.Bool
}

// Option configures a BufferedIO or FlowControl.
type Option func(*options)

type options struct {
	txSize int
	rxSize int
	slice  time.Duration
	logger *slog.Logger
	reset  ResetFunc
	high   int
	low    int
}

// WithBufferSizes sets the transmit and receive ring capacities.
func WithBufferSizes(tx, rx int) Option {
	return func(o *options) {
		o.txSize = tx
		o.rxSize = rx
	}
}

// WithPollSlice sets the sleep between polls of blocking and timed calls.
func WithPollSlice(d time.Duration) Option {
	return func(o *options) {
		o.slice = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithResetter installs the fail-fast hook for receive bus corruption.
func WithResetter(fn ResetFunc) Option {
	return func(o *options) {
		o.reset = fn
	}
}

// WithWatermarks overrides the flow-control watermarks. It has no effect on
// a plain BufferedIO.
func WithWatermarks(high, low int) Option {
	return func(o *options) {
		o.high = high
		o.low = low
	}
}

func buildOptions(opts []Option) options {
	o := options{
		txSize: DefaultBufferSize,
		rxSize: DefaultBufferSize,
		slice:  DefaultPollSlice,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.slice <= 0 {
		o.slice = DefaultPollSlice
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// NewBufferedIO wraps hw. The receive goroutine does not run until Start.
func NewBufferedIO(hw Hardware, opts ...Option) *BufferedIO {
	return newBufferedIO(hw, buildOptions(opts))
}

func newBufferedIO(hw Hardware, o options) *BufferedIO {
	return &BufferedIO{
		hw:     hw,
		rx:     buffer.New(o.rxSize),
		tx:     buffer.New(o.txSize),
		slice:  o.slice,
		logger: o.logger,
		reset:  o.reset,
		done:   make(chan struct{}),
	}
}

// Start launches the receive goroutine. It stops when ctx is done or the
// transport is closed. Calling Start more than once has no effect.
func (b *BufferedIO) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		b.cancel = cancel
		b.started.Store(true)
		go b.receive(ctx)
	})
}

// Close stops the receive goroutine and closes the hardware.
func (b *BufferedIO) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		err = b.hw.Close()
		if b.started.Load() {
			b.cancel()
			<-b.done
		}
	})
	return err
}

func (b *BufferedIO) receive(ctx context.Context) {
	defer close(b.done)
	chunk := make([]byte, 64)
	for ctx.Err() == nil {
		n, err := b.hw.Fill(chunk)
		if n > 0 {
			b.handleRead(chunk[:n])
		}
		if err != nil {
			if !b.closed.Load() && ctx.Err() == nil && !errors.Is(err, io.EOF) {
				b.logger.Error("Serial receive failed", "error", err)
			}
			return
		}
	}
}

// handleRead stores incoming bytes the way the receive interrupt does:
// bytes that do not fit are dropped and counted.
func (b *BufferedIO) handleRead(p []byte) {
	for _, c := range p {
		if b.rx.PutByte(c) == 1 {
			b.rxBytes.Add(1)
		} else {
			b.dropped.Add(1)
			b.logger.Warn("Serial rx byte dropped", "byte", c)
			if c == corruptByte && b.reset != nil {
				b.reset("dropped 0xFF on a full receive buffer")
			}
		}
		if b.onRxChange != nil {
			b.onRxChange()
		}
	}
}

func (b *BufferedIO) drain() error {
	for !b.tx.IsEmpty() {
		before := b.tx.Size()
		if err := b.hw.Drain(b.tx); err != nil {
			return err
		}
		after := b.tx.Size()
		b.txBytes.Add(uint64(max(before-after, 0)))
		if after >= before {
			return nil
		}
	}
	return nil
}

func (b *BufferedIO) pause(deadline time.Time) {
	d := b.slice
	if !deadline.IsZero() {
		if left := time.Until(deadline); left < d {
			d = left
		}
	}
	if d > 0 {
		time.Sleep(d)
	}
}

// WriteTimeout queues p and drains it to the hardware until every byte is
// out or timeout elapses. It returns the number of bytes that reached the
// hardware; bytes still queued at the deadline are discarded. A negative
// timeout blocks like Write.
func (b *BufferedIO) WriteTimeout(p []byte, timeout time.Duration) int {
	if timeout < 0 {
		n, _ := b.Write(p)
		return n
	}
	deadline := time.Now().Add(timeout)
	accepted := 0
	for {
		if accepted < len(p) {
			accepted += b.tx.Write(p[accepted:])
		}
		if err := b.drain(); err != nil {
			b.logger.Error("Serial write failed", "error", err)
			break
		}
		if accepted == len(p) && b.tx.IsEmpty() {
			return accepted
		}
		if !time.Now().Before(deadline) {
			break
		}
		b.pause(deadline)
	}
	left := b.tx.Size()
	b.tx.Clear()
	return max(accepted-left, 0)
}

// Write queues p and blocks until every byte has been drained to the
// hardware. Only a hardware error ends it early.
func (b *BufferedIO) Write(p []byte) (int, error) {
	accepted := 0
	for {
		if b.closed.Load() {
			left := b.tx.Size()
			b.tx.Clear()
			return max(accepted-left, 0), ErrClosed
		}
		if accepted < len(p) {
			accepted += b.tx.Write(p[accepted:])
		}
		if err := b.drain(); err != nil {
			left := b.tx.Size()
			b.tx.Clear()
			return max(accepted-left, 0), err
		}
		if accepted == len(p) && b.tx.IsEmpty() {
			return accepted, nil
		}
		b.pause(time.Time{})
	}
}

// WriteByteTimeout writes a single byte, returning 1 on success.
func (b *BufferedIO) WriteByteTimeout(c byte, timeout time.Duration) int {
	return b.WriteTimeout([]byte{c}, timeout)
}

// WriteByte writes a single byte, blocking until it is drained.
func (b *BufferedIO) WriteByte(c byte) error {
	_, err := b.Write([]byte{c})
	return err
}

// ReadTimeout copies received bytes into p until it is full or timeout
// elapses and returns the count. A zero timeout takes whatever is buffered
// without waiting. A negative timeout blocks like ReadFull.
func (b *BufferedIO) ReadTimeout(p []byte, timeout time.Duration) int {
	if timeout < 0 {
		n, _ := b.ReadFull(p)
		return n
	}
	deadline := time.Now().Add(timeout)
	n := 0
	for {
		n += b.rx.Read(p[n:])
		if n == len(p) || !time.Now().Before(deadline) {
			return n
		}
		b.pause(deadline)
	}
}

// ReadFull blocks until len(p) bytes have been received. It returns early
// with io.EOF once the transport is closed and the receive ring is empty.
func (b *BufferedIO) ReadFull(p []byte) (int, error) {
	n := 0
	for {
		n += b.rx.Read(p[n:])
		if n == len(p) {
			return n, nil
		}
		if b.closed.Load() && b.rx.IsEmpty() {
			return n, io.EOF
		}
		b.pause(time.Time{})
	}
}

// Read implements io.Reader: it blocks until at least one byte is
// available.
func (b *BufferedIO) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		if n := b.rx.Read(p); n > 0 {
			return n, nil
		}
		if b.closed.Load() {
			return 0, io.EOF
		}
		b.pause(time.Time{})
	}
}

// ReadByteTimeout reads a single byte. The count is 0 on timeout.
func (b *BufferedIO) ReadByteTimeout(timeout time.Duration) (byte, int) {
	var c [1]byte
	n := b.ReadTimeout(c[:], timeout)
	return c[0], n
}

// ReadByte blocks until a byte is received.
func (b *BufferedIO) ReadByte() (byte, error) {
	var c [1]byte
	_, err := b.ReadFull(c[:])
	return c[0], err
}

// Readable returns the number of received bytes waiting to be read.
func (b *BufferedIO) Readable() int {
	return b.rx.Size()
}

// Writeable returns the free space in the transmit ring.
func (b *BufferedIO) Writeable() int {
	return b.tx.Remaining()
}

// RxClear discards every received byte not yet read.
func (b *BufferedIO) RxClear() {
	b.rx.Clear()
	if b.onRxChange != nil {
		b.onRxChange()
	}
}

// TxClear discards every byte still queued for transmission.
func (b *BufferedIO) TxClear() {
	b.tx.Clear()
}

func (b *BufferedIO) Stats() Stats {
	return Stats{
		RxBytes: b.rxBytes.Load(),
		TxBytes: b.txBytes.Load(),
		Dropped: b.dropped.Load(),
	}
}

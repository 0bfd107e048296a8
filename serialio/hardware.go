// Package serialio buffers a serial line between an asynchronous receive
// goroutine and foreground readers and writers.
package serialio

import (
	"errors"

	"i4.energy/across/socketmodem/buffer"
)

//go:generate go tool mockgen -source=hardware.go -destination=mock_hardware.go -package=serialio

// Hardware moves bytes between a transport's rings and the physical line.
type Hardware interface {
	// Drain pushes some or all queued transmit bytes to the line. It only
	// runs on the foreground goroutine. Returning with bytes still queued
	// is fine; the caller retries on its own schedule.
	Drain(tx *buffer.Ring) error

	// Fill waits up to one read slice for incoming bytes and copies them
	// into p. It runs on the receive goroutine. A slice without data
	// returns 0 and a nil error.
	Fill(p []byte) (int, error)

	// Close releases the line and unblocks a pending Fill.
	Close() error
}

// Handshake drives the RTS/CTS pair used for hardware flow control.
type Handshake interface {
	// SetReady asserts (true) or deasserts (false) request-to-send,
	// telling the peer whether it may keep sending.
	SetReady(ready bool) error

	// ClearToSend reports whether the peer currently allows us to send.
	ClearToSend() (bool, error)
}

// ResetFunc is the fail-fast hook run when the receive path sees a bus
// corruption signature. It typically pulses the radio's reset line and
// terminates the process.
type ResetFunc func(reason string)

// Stats are the transport's byte counters.
type Stats struct {
	RxBytes uint64 `json:"rx_bytes"`
	TxBytes uint64 `json:"tx_bytes"`
	Dropped uint64 `json:"dropped"`
}

var (
	// ErrClosed is returned by blocking operations once the transport has
	// been closed.
	ErrClosed = errors.New("serialio: transport closed")

	// ErrWatermarks is returned when a flow-controlled transport is built
	// with a high watermark not above its low watermark.
	ErrWatermarks = errors.New("serialio: high watermark must exceed low watermark")
)

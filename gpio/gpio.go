// Package gpio drives the radio's handshake and reset lines from
// Raspberry Pi GPIO pins.
package gpio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stianeikeland/go-rpio"
)

// Pin is the part of rpio.Pin the adapters use.
type Pin interface {
	Output()
	Input()
	High()
	Low()
	Read() rpio.State
}

var _ Pin = rpio.Pin(0)

// BCM returns the pin with the given BCM number. Memory must be mapped with
// Open before the pin is used.
func BCM(n int) Pin {
	return rpio.Pin(n)
}

// ErrNoPin is returned when an adapter is built without a pin.
var ErrNoPin = errors.New("gpio: pin is required")

var (
	mu    sync.Mutex
	users int
)

// Open maps the GPIO registers. Calls nest: the registers stay mapped
// until every Open has been matched by a Close.
func Open() error {
	mu.Lock()
	defer mu.Unlock()
	if users == 0 {
		if err := rpio.Open(); err != nil {
			return fmt.Errorf("gpio: open: %w", err)
		}
	}
	users++
	return nil
}

// Close unmaps the registers once the last user is gone.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if users == 0 {
		return nil
	}
	users--
	if users > 0 {
		return nil
	}
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("gpio: close: %w", err)
	}
	return nil
}

// Handshake is RTS/CTS flow control on two GPIO pins. Both lines are
// active low: a low RTS tells the radio it may send and a low CTS means the
// radio accepts data.
type Handshake struct {
	rts Pin
	cts Pin
}

// NewHandshake configures rts as an output and cts as an input.
func NewHandshake(rts, cts Pin) (*Handshake, error) {
	if rts == nil || cts == nil {
		return nil, ErrNoPin
	}
	rts.Output()
	cts.Input()
	return &Handshake{rts: rts, cts: cts}, nil
}

func (h *Handshake) SetReady(ready bool) error {
	if ready {
		h.rts.Low()
	} else {
		h.rts.High()
	}
	return nil
}

func (h *Handshake) ClearToSend() (bool, error) {
	return h.cts.Read() == rpio.Low, nil
}

// Default reset timing. The radio needs a 250ms low pulse and several
// seconds before it answers on the serial line again.
const (
	DefaultPulse  = 250 * time.Millisecond
	DefaultSettle = 5 * time.Second
)

// ResetLine pulses the radio's active-low reset input.
type ResetLine struct {
	Pin Pin

	// Pulse defaults to DefaultPulse when zero.
	Pulse time.Duration

	// Settle is the wait after release. Zero skips it and a negative value
	// selects DefaultSettle.
	Settle time.Duration
}

// Reset drives the line low for Pulse, releases it and waits Settle for the
// radio to boot. Cancelling ctx only shortens the settle wait; the line is
// always released.
func (r ResetLine) Reset(ctx context.Context) error {
	if r.Pin == nil {
		return ErrNoPin
	}
	pulse := r.Pulse
	if pulse <= 0 {
		pulse = DefaultPulse
	}
	settle := r.Settle
	if settle < 0 {
		settle = DefaultSettle
	}

	r.Pin.Output()
	r.Pin.Low()
	time.Sleep(pulse)
	r.Pin.High()

	if settle == 0 {
		return nil
	}
	timer := time.NewTimer(settle)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

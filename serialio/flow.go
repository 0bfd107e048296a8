package serialio

import (
	"fmt"
	"sync"

	"i4.energy/across/socketmodem/buffer"
)

// FlowControl is a BufferedIO that also drives RTS/CTS. RTS tells the peer
// to pause once the receive ring passes the high watermark and to resume
// once it falls below the low watermark. Transmission waits for the peer's
// CTS.
type FlowControl struct {
	*BufferedIO

	hs   Handshake
	high int
	low  int

	mu    sync.Mutex
	known bool
	ready bool
}

// DefaultWatermarks returns the watermarks used for a receive ring of the
// given capacity: high at max(capacity-10, 85%) and low at 30%.
func DefaultWatermarks(capacity int) (high, low int) {
	high = max(capacity-10, capacity*85/100)
	low = capacity * 30 / 100
	return high, low
}

// NewFlowControl wraps hw with RTS/CTS flow control on hs and asserts RTS.
func NewFlowControl(hw Hardware, hs Handshake, opts ...Option) (*FlowControl, error) {
	o := buildOptions(opts)
	if o.high == 0 && o.low == 0 {
		o.high, o.low = DefaultWatermarks(o.rxSize)
	}
	if o.high <= o.low {
		return nil, fmt.Errorf("%w: high %d, low %d", ErrWatermarks, o.high, o.low)
	}

	f := &FlowControl{
		hs:   hs,
		high: o.high,
		low:  o.low,
	}
	f.BufferedIO = newBufferedIO(gatedHardware{Hardware: hw, hs: hs}, o)
	f.BufferedIO.onRxChange = f.rebalance
	f.rx.AttachThreshold(f.rebalance, f.low, buffer.Less)

	f.setReady(true)
	return f, nil
}

// Watermarks returns the configured high and low watermarks.
func (f *FlowControl) Watermarks() (high, low int) {
	return f.high, f.low
}

// Ready reports the last RTS state written to the line.
func (f *FlowControl) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

// rebalance runs on both sides of the receive ring, so the occupancy check
// and the line write happen under mu.
func (f *FlowControl) rebalance() {
	f.mu.Lock()
	defer f.mu.Unlock()
	size := f.rx.Size()
	switch {
	case size > f.high:
		f.setReadyLocked(false)
	case size < f.low:
		f.setReadyLocked(true)
	}
}

func (f *FlowControl) setReady(ready bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setReadyLocked(ready)
}

func (f *FlowControl) setReadyLocked(ready bool) {
	if f.known && f.ready == ready {
		return
	}
	if err := f.hs.SetReady(ready); err != nil {
		f.logger.Error("Failed to write RTS", "ready", ready, "error", err)
		return
	}
	f.known = true
	f.ready = ready
	f.logger.Debug("RTS changed", "ready", ready, "rx_size", f.rx.Size())
}

// gatedHardware only drains while the peer asserts CTS.
type gatedHardware struct {
	Hardware
	hs Handshake
}

func (g gatedHardware) Drain(tx *buffer.Ring) error {
	cts, err := g.hs.ClearToSend()
	if err != nil {
		return fmt.Errorf("read CTS: %w", err)
	}
	if !cts {
		return nil
	}
	return g.Hardware.Drain(tx)
}

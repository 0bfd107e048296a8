package serialio

import (
	"fmt"
	"time"

	"go.bug.st/serial"

	"i4.energy/across/socketmodem/buffer"
)

// Port is the part of serial.Port the serial adapters use.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	SetRTS(rts bool) error
	SetDTR(dtr bool) error
	GetModemStatusBits() (*serial.ModemStatusBits, error)
	ResetInputBuffer() error
	ResetOutputBuffer() error
	Close() error
}

//go:generate go tool mockgen -source=serial.go -destination=mock_serial.go -package=serialio

var _ Port = serial.Port(nil)

const drainChunk = 64

// SerialHardware is the Hardware adapter for an open serial port.
type SerialHardware struct {
	port    Port
	scratch []byte
}

// NewSerialHardware configures port to return from reads after readSlice
// without data, flushes both directions and wraps it.
func NewSerialHardware(port Port, readSlice time.Duration) (*SerialHardware, error) {
	if readSlice <= 0 {
		readSlice = DefaultPollSlice
	}
	if err := port.SetReadTimeout(readSlice); err != nil {
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		return nil, fmt.Errorf("reset input buffer: %w", err)
	}
	if err := port.ResetOutputBuffer(); err != nil {
		return nil, fmt.Errorf("reset output buffer: %w", err)
	}
	return &SerialHardware{
		port:    port,
		scratch: make([]byte, drainChunk),
	}, nil
}

// Drain writes at most one chunk of queued bytes to the port.
func (s *SerialHardware) Drain(tx *buffer.Ring) error {
	n := tx.Read(s.scratch)
	for off := 0; off < n; {
		w, err := s.port.Write(s.scratch[off:n])
		if err != nil {
			return fmt.Errorf("serial write: %w", err)
		}
		off += w
	}
	return nil
}

func (s *SerialHardware) Fill(p []byte) (int, error) {
	n, err := s.port.Read(p)
	if err != nil {
		return n, fmt.Errorf("serial read: %w", err)
	}
	return n, nil
}

func (s *SerialHardware) Close() error {
	return s.port.Close()
}

// SerialHandshake drives flow control through the port's own modem lines.
type SerialHandshake struct {
	Port Port
}

func (h SerialHandshake) SetReady(ready bool) error {
	return h.Port.SetRTS(ready)
}

func (h SerialHandshake) ClearToSend() (bool, error) {
	bits, err := h.Port.GetModemStatusBits()
	if err != nil {
		return false, err
	}
	return bits.CTS, nil
}

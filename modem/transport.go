package modem

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.bug.st/serial"

	"i4.energy/across/socketmodem/serialio"
)

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=modem

// Transport is the buffered serial line a radio session talks through.
// serialio.BufferedIO and serialio.FlowControl implement it.
//
// Negative timeouts block. The timed forms return partial progress rather
// than failing.
type Transport interface {
	WriteTimeout(p []byte, timeout time.Duration) int
	WriteByteTimeout(c byte, timeout time.Duration) int
	Write(p []byte) (int, error)
	ReadTimeout(p []byte, timeout time.Duration) int
	Readable() int
	Writeable() int
	RxClear()
	TxClear()
	Close() error
}

var (
	_ Transport = (*serialio.BufferedIO)(nil)
	_ Transport = (*serialio.FlowControl)(nil)
)

// Dialer opens a Transport to a radio.
//
// Dialer abstracts how the radio is reached (a serial port, a simulator, a
// test double) and is only used while a session initializes.
type Dialer interface {
	// Dial creates and returns a ready Transport. It may block and should
	// respect cancellation of ctx.
	Dial(ctx context.Context) (Transport, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context) (Transport, error)

func (f DialerFunc) Dial(ctx context.Context) (Transport, error) {
	return f(ctx)
}

// SerialDialer opens a radio over a serial port using go.bug.st/serial.
type SerialDialer struct {
	PortName string
	// Mode defaults to 115200 8N1.
	Mode *serial.Mode

	// FlowControl enables RTS/CTS using the port's own modem lines unless
	// Handshake supplies other pins.
	FlowControl bool
	Handshake   serialio.Handshake

	// Options are passed to the serialio transport.
	Options []serialio.Option
	// ReadSlice is the port read timeout used by the receive goroutine.
	ReadSlice time.Duration
	Logger    *slog.Logger
}

// Dial opens the port, asserts DTR and starts the transport's receive
// goroutine. The transport outlives ctx; Close it to release the port.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if d.PortName == "" {
		return nil, ErrNoPortName
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		mode = &serial.Mode{
			BaudRate: 115200,
			Parity:   serial.NoParity,
			DataBits: 8,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", d.PortName, err)
	}

	// The radio only listens while DTR is asserted.
	if err := port.SetDTR(true); err != nil {
		port.Close()
		return nil, fmt.Errorf("assert DTR on %s: %w", d.PortName, err)
	}

	hw, err := serialio.NewSerialHardware(port, d.ReadSlice)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("configure %s: %w", d.PortName, err)
	}

	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts := append([]serialio.Option{serialio.WithLogger(logger)}, d.Options...)

	hs := d.Handshake
	if hs == nil && d.FlowControl {
		hs = serialio.SerialHandshake{Port: port}
	}

	if hs == nil {
		b := serialio.NewBufferedIO(hw, opts...)
		b.Start(context.WithoutCancel(ctx))
		return b, nil
	}

	f, err := serialio.NewFlowControl(hw, hs, opts...)
	if err != nil {
		port.Close()
		return nil, err
	}
	f.Start(context.WithoutCancel(ctx))
	return f, nil
}

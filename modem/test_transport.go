package modem

import (
	"context"

	"i4.energy/across/socketmodem/serialio"
)

// LoopbackDialer dials an in-memory line instead of a serial port. Attach
// a simulated radio to Line before the session initializes; tests and the
// bench tools use it to run real sessions without hardware.
type LoopbackDialer struct {
	Line *serialio.Loopback

	// FlowControl puts the line's RTS/CTS emulation in the path.
	FlowControl bool
	Options     []serialio.Option
}

// Dial starts a transport over the loopback line. Closing the transport
// closes the line.
func (d LoopbackDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.Line == nil {
		return nil, ErrNoLine
	}

	if d.FlowControl {
		f, err := serialio.NewFlowControl(d.Line, d.Line, d.Options...)
		if err != nil {
			return nil, err
		}
		f.Start(context.WithoutCancel(ctx))
		return f, nil
	}

	b := serialio.NewBufferedIO(d.Line, d.Options...)
	b.Start(context.WithoutCancel(ctx))
	return b, nil
}

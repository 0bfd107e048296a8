package socket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"i4.energy/across/socketmodem/modem"
)

const (
	// DefaultTimeout bounds non-blocking calls until SetBlocking is used.
	DefaultTimeout = 1500 * time.Millisecond

	// receiveGrace extends the wait of a non-blocking Receive.
	receiveGrace = 20 * time.Millisecond

	defaultSlice = 10 * time.Millisecond
)

// TCPConn is a TCP stream over the socket of an IP stack. It starts in
// blocking mode.
//
// Like the stack underneath, a TCPConn is not safe for concurrent use.
type TCPConn struct {
	stack    modem.IPStack
	remote   Endpoint
	blocking bool
	timeout  time.Duration
	slice    time.Duration
}

// NewTCPConn returns a connection that will use stack.
func NewTCPConn(stack modem.IPStack) *TCPConn {
	return &TCPConn{
		stack:    stack,
		blocking: true,
		timeout:  DefaultTimeout,
		slice:    defaultSlice,
	}
}

// SetBlocking switches between blocking calls and calls bounded by
// timeout.
func (c *TCPConn) SetBlocking(blocking bool, timeout time.Duration) {
	c.blocking = blocking
	c.timeout = timeout
}

// Connect opens a TCP socket to host:port.
func (c *TCPConn) Connect(ctx context.Context, host string, port int) error {
	var remote Endpoint
	if err := remote.SetAddress(host, port); err != nil {
		return err
	}
	if !c.stack.Open(ctx, host, port, modem.TCP) {
		return fmt.Errorf("%w: %s", ErrConnectFailed, remote)
	}
	c.remote = remote
	return nil
}

// Connected reports whether the socket is open.
func (c *TCPConn) Connected(ctx context.Context) bool {
	return c.stack.IsOpen(ctx)
}

// RemoteEndpoint returns the peer of the last successful Connect.
func (c *TCPConn) RemoteEndpoint() Endpoint {
	return c.remote
}

// Send writes whatever part of p the stack takes without waiting. In
// non-blocking mode it first waits up to the timeout for transmit space.
// It returns -1 on failure.
func (c *TCPConn) Send(p []byte) int {
	if !c.blocking {
		deadline := time.Now().Add(c.timeout)
		for c.stack.Writeable() == 0 {
			if !time.Now().Before(deadline) {
				return -1
			}
			time.Sleep(c.slice)
		}
	}
	return c.stack.Write(p, 0)
}

// SendAll writes all of p, waiting up to the timeout in non-blocking mode.
// It returns the count written, or -1 on failure.
func (c *TCPConn) SendAll(p []byte) int {
	return c.stack.Write(p, c.wait())
}

// Receive reads whatever is available once some data arrived. In
// non-blocking mode it gives up after the timeout. It returns -1 on
// failure.
func (c *TCPConn) Receive(p []byte) int {
	n, err := c.receive(p)
	if err != nil {
		return -1
	}
	return n
}

// ReceiveAll fills p, waiting up to the timeout in non-blocking mode. It
// returns the count read, or -1 on failure.
func (c *TCPConn) ReceiveAll(p []byte) int {
	return c.stack.Read(p, c.wait())
}

// Available returns the number of bytes waiting to be read.
func (c *TCPConn) Available() int {
	return c.stack.Readable()
}

// Read implements io.Reader. It returns io.EOF once the peer closed the
// socket and nothing is left to read.
func (c *TCPConn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := c.receive(p)
	if errors.Is(err, ErrNotOpen) {
		return 0, io.EOF
	}
	return n, err
}

// Write implements io.Writer.
func (c *TCPConn) Write(p []byte) (int, error) {
	n := c.SendAll(p)
	switch {
	case n < 0:
		return 0, ErrNotOpen
	case n < len(p):
		return n, fmt.Errorf("%w: wrote %d of %d bytes", ErrTimeout, n, len(p))
	}
	return n, nil
}

// Close closes the socket.
func (c *TCPConn) Close(ctx context.Context) error {
	if !c.stack.Close(ctx) {
		return ErrCloseFailed
	}
	c.remote.Reset()
	return nil
}

func (c *TCPConn) wait() time.Duration {
	if c.blocking {
		return -1
	}
	return c.timeout
}

func (c *TCPConn) receive(p []byte) (int, error) {
	var deadline time.Time
	if !c.blocking {
		deadline = time.Now().Add(c.timeout + receiveGrace)
	}
	for {
		n := c.stack.Read(p, 0)
		switch {
		case n < 0:
			return 0, ErrNotOpen
		case n > 0:
			return n, nil
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return 0, ErrTimeout
		}
		time.Sleep(c.slice)
	}
}

var _ io.ReadWriter = (*TCPConn)(nil)

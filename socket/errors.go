package socket

import "errors"

var (
	// ErrAddressTooLong is returned when a host name does not fit the
	// radio's address field.
	ErrAddressTooLong = errors.New("socket: host name too long")

	// ErrInvalidPort is returned for ports outside 0-65535.
	ErrInvalidPort = errors.New("socket: invalid port")

	// ErrConnectFailed is returned when the radio does not open the socket.
	ErrConnectFailed = errors.New("socket: connect failed")

	// ErrNotOpen is returned by reads and writes without an open socket.
	ErrNotOpen = errors.New("socket: not open")

	// ErrTimeout is returned when a non-blocking call runs out of time.
	ErrTimeout = errors.New("socket: timeout")

	// ErrCloseFailed is returned when the radio does not confirm a close.
	ErrCloseFailed = errors.New("socket: close failed")
)

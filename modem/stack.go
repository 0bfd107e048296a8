package modem

import (
	"context"
	"time"
)

//go:generate go tool mockgen -source=stack.go -destination=mock_stack.go -package=modem

// MaxHostLen is the longest host name or address a socket can be opened
// to.
const MaxHostLen = 127

// IPStack is the socket-capable face of a radio session. Cellular and Wifi
// implement it and the Selector hands out whichever is active.
//
// Read and Write return -1 when no socket is open or the session has no
// transport. A negative timeout blocks. They take no context: any command
// exchange they need first is bounded by the session's Config instead.
type IPStack interface {
	Connect(ctx context.Context) bool
	Disconnect(ctx context.Context)
	IsConnected(ctx context.Context) bool

	Bind(port int) bool
	Open(ctx context.Context, address string, port int, mode Mode) bool
	IsOpen(ctx context.Context) bool
	Close(ctx context.Context) bool

	Read(p []byte, timeout time.Duration) int
	Write(p []byte, timeout time.Duration) int
	Readable() int
	Writeable() int

	Reset(ctx context.Context)
}

var (
	_ IPStack = (*Cellular)(nil)
	_ IPStack = (*Wifi)(nil)
)

func validPort(port int) bool {
	return port >= 0 && port <= 65535
}

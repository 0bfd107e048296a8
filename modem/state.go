package modem

import "fmt"

// State is where a radio session is in its lifecycle.
type State int

const (
	Uninitialized State = iota
	Idle
	Connecting
	Connected
	SocketOpening
	SocketOpen
	Closing
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "UNINITIALIZED"
	case Idle:
		return "IDLE"
	case Connecting:
		return "CONNECTING"
	case Connected:
		return "CONNECTED"
	case SocketOpening:
		return "SOCKET_OPENING"
	case SocketOpen:
		return "SOCKET_OPEN"
	case Closing:
		return "CLOSING"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Mode is the socket protocol.
type Mode int

const (
	TCP Mode = iota
	UDP
)

func (m Mode) String() string {
	switch m {
	case TCP:
		return "TCP"
	case UDP:
		return "UDP"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

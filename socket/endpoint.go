// Package socket exposes a radio session's socket as a TCP stream.
package socket

import (
	"fmt"
	"net"
	"strconv"

	"i4.energy/across/socketmodem/modem"
)

// Endpoint is a remote host and port.
type Endpoint struct {
	Address string
	Port    int
}

// SetAddress validates and stores host and port. On error the endpoint is
// left unchanged.
func (e *Endpoint) SetAddress(host string, port int) error {
	if len(host) > modem.MaxHostLen {
		return fmt.Errorf("%w: %d bytes, max %d", ErrAddressTooLong, len(host), modem.MaxHostLen)
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	e.Address = host
	e.Port = port
	return nil
}

// Reset forgets the address.
func (e *Endpoint) Reset() {
	*e = Endpoint{}
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.Address, strconv.Itoa(e.Port))
}

// Package dle implements the byte stuffing used on the cellular socket
// datapath. ETX ends a session in-band, so payload bytes equal to ETX or DLE
// travel prefixed by DLE.
package dle

const (
	ETX byte = 0x03
	DLE byte = 0x10
)

// Reserved reports whether b must be escaped on the wire.
func Reserved(b byte) bool {
	return b == ETX || b == DLE
}

// EncodedLen returns the wire length of p once escaped.
func EncodedLen(p []byte) int {
	n := len(p)
	for _, b := range p {
		if Reserved(b) {
			n++
		}
	}
	return n
}

// Append appends the escaped form of p to dst and returns the extended
// slice.
func Append(dst, p []byte) []byte {
	for _, b := range p {
		if Reserved(b) {
			dst = append(dst, DLE)
		}
		dst = append(dst, b)
	}
	return dst
}

// Decoder strips escapes from a stream delivered in arbitrary chunks. A DLE
// that ends one chunk escapes the first byte of the next.
//
// A DLE followed by a byte that is not reserved is dropped and the byte is
// kept. The zero value is ready to use.
type Decoder struct {
	escaped bool
	closed  bool
}

// Decode unescapes src into dst and returns the number of bytes stored. dst
// may be src itself since the output never outgrows the input. dst must be
// at least len(src) long.
//
// An unescaped ETX marks the end of the session: Decode stops there, drops
// the rest of src and reports closed. Once closed, Decode discards all input
// until Reset.
func (d *Decoder) Decode(dst, src []byte) (n int, closed bool) {
	if d.closed {
		return 0, true
	}
	for _, b := range src {
		if d.escaped {
			d.escaped = false
			dst[n] = b
			n++
			continue
		}
		switch b {
		case DLE:
			d.escaped = true
		case ETX:
			d.closed = true
			return n, true
		default:
			dst[n] = b
			n++
		}
	}
	return n, false
}

// Pending reports whether the last byte seen was an unpaired DLE.
func (d *Decoder) Pending() bool {
	return d.escaped
}

// Closed reports whether an unescaped ETX has been seen.
func (d *Decoder) Closed() bool {
	return d.closed
}

// Reset prepares the decoder for a new session.
func (d *Decoder) Reset() {
	d.escaped = false
	d.closed = false
}

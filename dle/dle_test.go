package dle_test

import (
	"bytes"
	"testing"

	"i4.energy/across/socketmodem/dle"
)

func TestAppend(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"plain", []byte("hello"), []byte("hello")},
		{"etx", []byte{'a', dle.ETX, 'b'}, []byte{'a', dle.DLE, dle.ETX, 'b'}},
		{"dle", []byte{dle.DLE}, []byte{dle.DLE, dle.DLE}},
		{"both adjacent", []byte{dle.DLE, dle.ETX}, []byte{dle.DLE, dle.DLE, dle.DLE, dle.ETX}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dle.Append(nil, tt.in)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Append(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if n := dle.EncodedLen(tt.in); n != len(tt.want) {
				t.Errorf("EncodedLen(%v) = %d, want %d", tt.in, n, len(tt.want))
			}
		})
	}
}

func TestDecoderRoundTrip(t *testing.T) {
	payload := []byte{0x00, dle.ETX, 'x', dle.DLE, dle.DLE, dle.ETX, dle.ETX, 0xFF, dle.DLE}
	wire := dle.Append(nil, payload)

	// every possible chunking point, including one that splits an escape pair
	for split := 0; split <= len(wire); split++ {
		var d dle.Decoder
		out := make([]byte, 0, len(payload))

		first := append([]byte(nil), wire[:split]...)
		n, closed := d.Decode(first, first)
		if closed {
			t.Fatalf("split %d: escaped ETX reported as close", split)
		}
		out = append(out, first[:n]...)

		second := append([]byte(nil), wire[split:]...)
		n, closed = d.Decode(second, second)
		if closed {
			t.Fatalf("split %d: escaped ETX reported as close", split)
		}
		out = append(out, second[:n]...)

		if !bytes.Equal(out, payload) {
			t.Errorf("split %d: got %v, want %v", split, out, payload)
		}
		if d.Pending() {
			t.Errorf("split %d: decoder still holds an escape", split)
		}
	}
}

func TestDecoderUnescapedETX(t *testing.T) {
	var d dle.Decoder
	src := []byte{'a', dle.DLE, dle.ETX, 'b', dle.ETX, 'c', 'd'}
	dst := make([]byte, len(src))

	n, closed := d.Decode(dst, src)
	if !closed {
		t.Fatal("unescaped ETX not reported")
	}
	if got := dst[:n]; !bytes.Equal(got, []byte{'a', dle.ETX, 'b'}) {
		t.Errorf("decoded %v, want payload truncated at the terminator", got)
	}

	n, closed = d.Decode(dst, []byte("more"))
	if n != 0 || !closed {
		t.Errorf("Decode after close = %d,%v, want 0,true", n, closed)
	}

	d.Reset()
	n, closed = d.Decode(dst, []byte("ok"))
	if n != 2 || closed {
		t.Errorf("Decode after Reset = %d,%v, want 2,false", n, closed)
	}
}

func TestDecoderEscapeAtChunkBoundary(t *testing.T) {
	var d dle.Decoder
	buf := make([]byte, 4)

	n, closed := d.Decode(buf, []byte{'a', dle.DLE})
	if n != 1 || closed || !d.Pending() {
		t.Fatalf("Decode = %d,%v pending %v, want 1,false pending", n, closed, d.Pending())
	}

	// the ETX opening the next chunk is escaped, not a terminator
	n, closed = d.Decode(buf, []byte{dle.ETX, 'b'})
	if closed {
		t.Fatal("escaped ETX across chunks reported as close")
	}
	if !bytes.Equal(buf[:n], []byte{dle.ETX, 'b'}) {
		t.Errorf("decoded %v, want [ETX b]", buf[:n])
	}
}

func TestDecoderStrayEscape(t *testing.T) {
	var d dle.Decoder
	src := []byte{'a', dle.DLE, 'b', 'c'}
	dst := make([]byte, len(src))

	n, closed := d.Decode(dst, src)
	if closed {
		t.Fatal("stray escape reported as close")
	}
	if !bytes.Equal(dst[:n], []byte("abc")) {
		t.Errorf("decoded %q, want %q", dst[:n], "abc")
	}
}

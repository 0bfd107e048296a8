package modem

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"i4.energy/across/socketmodem/at"
	"i4.energy/across/socketmodem/dle"
)

// scriptedTransport accepts one command and then hands out chunks, one per
// receive poll. Polls after the script has run out find nothing.
func scriptedTransport(ctrl *gomock.Controller, chunks ...string) *MockTransport {
	m := NewMockTransport(ctrl)
	gomock.InOrder(
		m.EXPECT().RxClear(),
		m.EXPECT().TxClear(),
		m.EXPECT().WriteTimeout(gomock.Any(), gomock.Any()).DoAndReturn(func(p []byte, _ time.Duration) int {
			return len(p)
		}),
		m.EXPECT().WriteByteTimeout(byte(at.CR), gomock.Any()).Return(1),
	)
	next := 0
	m.EXPECT().ReadTimeout(gomock.Any(), time.Duration(0)).DoAndReturn(func(p []byte, _ time.Duration) int {
		if next >= len(chunks) {
			return 0
		}
		n := copy(p, chunks[next])
		next++
		return n
	}).AnyTimes()
	return m
}

func testSession(dialect at.Dialect, io Transport) *session {
	s := newSession(Config{PollSlice: time.Millisecond}, dialect)
	s.io = io
	return &s
}

func TestExchange(t *testing.T) {
	tests := []struct {
		name    string
		echo    bool
		expect  string
		timeout time.Duration
		chunks  []string
		want    string
	}{
		{
			name:    "ends on quiescence",
			timeout: time.Second,
			chunks:  []string{"\r\n+CSQ: 17", ",99\r\n", "\r\nOK\r\n"},
			want:    "\r\n+CSQ: 17,99\r\n\r\nOK\r\n",
		},
		{
			name:    "waits for the first byte",
			timeout: time.Second,
			chunks:  []string{"", "", "", "\r\nOK\r\n"},
			want:    "\r\nOK\r\n",
		},
		{
			name:    "stops at expected marker",
			expect:  ">",
			timeout: time.Second,
			chunks:  []string{"\r\n", "> ", "late"},
			want:    "\r\n> ",
		},
		{
			name:    "echo does not end the reply",
			echo:    true,
			timeout: time.Second,
			chunks:  []string{"AT\r\n", "", "", "\r\nOK\r\n"},
			want:    "AT\r\n\r\nOK\r\n",
		},
		{
			name:    "partial reply on timeout",
			expect:  "never",
			timeout: 20 * time.Millisecond,
			chunks:  []string{"partial"},
			want:    "partial",
		},
		{
			name:    "nothing on timeout",
			timeout: 20 * time.Millisecond,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			s := testSession(at.CellularDialect, scriptedTransport(ctrl, tt.chunks...))
			s.echo = tt.echo

			got := s.exchange(context.Background(), "AT", tt.timeout, tt.expect, at.CR)

			if got != tt.want {
				t.Errorf("exchange() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExchangeCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := testSession(at.CellularDialect, scriptedTransport(ctrl))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	got := s.exchange(ctx, "AT", 10*time.Second, "", at.CR)

	if got != "" {
		t.Errorf("exchange() = %q, want empty", got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancelled exchange took %s", elapsed)
	}
}

func TestExchangeWriteFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMockTransport(ctrl)
	m.EXPECT().RxClear()
	m.EXPECT().TxClear()
	m.EXPECT().WriteTimeout([]byte("AT"), time.Second).Return(1)

	s := testSession(at.CellularDialect, m)

	if got := s.exchange(context.Background(), "AT", time.Second, "", at.CR); got != "" {
		t.Errorf("exchange() = %q, want empty", got)
	}
}

func TestExchangeWithoutTransport(t *testing.T) {
	s := testSession(at.CellularDialect, nil)

	if got := s.exchange(context.Background(), "AT", time.Second, "", at.CR); got != "" {
		t.Errorf("exchange() = %q, want empty", got)
	}
}

func TestBasic(t *testing.T) {
	tests := []struct {
		name    string
		dialect at.Dialect
		chunks  []string
		want    at.Code
	}{
		{name: "cellular success", dialect: at.CellularDialect, chunks: []string{"\r\nOK\r\n"}, want: at.Success},
		{name: "cellular error", dialect: at.CellularDialect, chunks: []string{"\r\nERROR\r\n"}, want: at.Error},
		{name: "cellular failure", dialect: at.CellularDialect, chunks: []string{"\r\n+CSQ: 99,99\r\n"}, want: at.Failure},
		{name: "no response", dialect: at.CellularDialect, want: at.NoResponse},
		{name: "wifi success", dialect: at.WifiDialect, chunks: []string{"\r\nAOK\r\n<4.00> "}, want: at.Success},
		{name: "wifi error", dialect: at.WifiDialect, chunks: []string{"\r\nERR: Bad Args\r\n<4.00> "}, want: at.Error},
		{name: "wifi ignores OK", dialect: at.WifiDialect, chunks: []string{"\r\nOK\r\n"}, want: at.Failure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			s := testSession(tt.dialect, scriptedTransport(ctrl, tt.chunks...))

			if got := s.basic(context.Background(), "AT", 30*time.Millisecond, "", at.CR); got != tt.want {
				t.Errorf("basic() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStateHook(t *testing.T) {
	var got [][2]State
	s := newSession(Config{OnStateChange: func(from, to State) {
		got = append(got, [2]State{from, to})
	}}, at.CellularDialect)

	s.setState(Idle)
	s.setState(Idle)
	s.setState(Connecting)

	want := [][2]State{{Uninitialized, Idle}, {Idle, Connecting}}
	if len(got) != len(want) {
		t.Fatalf("hook calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("hook call %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPayloadSent(t *testing.T) {
	tests := []struct {
		name      string
		enc       []byte
		wantN     int
		wantSplit bool
	}{
		{name: "empty", enc: nil, wantN: 0},
		{name: "plain", enc: []byte("abc"), wantN: 3},
		{name: "escape pair", enc: []byte{'a', dle.DLE, dle.ETX}, wantN: 2},
		{name: "split pair", enc: []byte{'a', dle.DLE}, wantN: 1, wantSplit: true},
		{name: "escaped escape", enc: []byte{dle.DLE, dle.DLE, 'b'}, wantN: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, split := payloadSent(tt.enc)
			if n != tt.wantN || split != tt.wantSplit {
				t.Errorf("payloadSent(%q) = %d, %v, want %d, %v", tt.enc, n, split, tt.wantN, tt.wantSplit)
			}
		})
	}
}

func TestCellularWriteCompletesSplitEscape(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMockTransport(ctrl)
	c := NewCellular(Config{})
	c.io = m
	c.socketOpen = true

	payload := []byte{'a', dle.ETX, 'b'}
	enc := dle.Append(nil, payload)
	gomock.InOrder(
		m.EXPECT().WriteTimeout(enc, 10*time.Millisecond).Return(2),
		m.EXPECT().Write([]byte{dle.ETX}).Return(1, nil),
	)

	if n := c.Write(payload, 10*time.Millisecond); n != 2 {
		t.Errorf("Write() = %d, want 2", n)
	}
}

package modem_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"i4.energy/across/socketmodem/at"
	"i4.energy/across/socketmodem/modem"
	"i4.energy/across/socketmodem/radiosim"
	"i4.energy/across/socketmodem/serialio"
)

// stateLog records session state transitions.
type stateLog struct {
	mu  sync.Mutex
	got []modem.State
}

func (l *stateLog) record(_, to modem.State) {
	l.mu.Lock()
	l.got = append(l.got, to)
	l.mu.Unlock()
}

func (l *stateLog) states() []modem.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]modem.State(nil), l.got...)
}

// testConfig shrinks every wait so sessions against the simulator run in
// milliseconds.
func testConfig(t *testing.T, line *serialio.Loopback, hook func(from, to modem.State)) modem.Config {
	t.Helper()
	cfg, err := modem.NewConfigBuilder().
		WithDialer(modem.LoopbackDialer{Line: line}).
		WithPollSlice(5 * time.Millisecond).
		WithInitTimeout(200 * time.Millisecond).
		WithRegistrationTimeout(100 * time.Millisecond).
		WithGuardTime(time.Millisecond).
		WithCloseWait(20 * time.Millisecond).
		WithPoll(modem.PollConfig{Interval: 5 * time.Millisecond}).
		WithStateHook(hook).
		Build()
	if err != nil {
		t.Fatalf("unexpected error from Build(): %v", err)
	}
	return cfg
}

func newRadio(dialect at.Dialect) (*serialio.Loopback, *radiosim.Radio) {
	line := serialio.NewLoopback()
	radio := radiosim.New(dialect)
	radio.Attach(line)
	return line, radio
}

// newCellular returns an initialized cellular session wired to a simulated
// radio.
func newCellular(t *testing.T, hook func(from, to modem.State)) (*modem.Cellular, *radiosim.Radio) {
	t.Helper()
	line, radio := newRadio(at.CellularDialect)
	c := modem.NewCellular(testConfig(t, line, hook))
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	t.Cleanup(func() { c.Shutdown() })
	return c, radio
}

// openCellular returns a cellular session with a TCP socket open to
// example.com:80.
func openCellular(t *testing.T) (*modem.Cellular, *radiosim.Radio) {
	t.Helper()
	c, radio := newCellular(t, nil)
	ctx := context.Background()
	if code := c.SetAPN(ctx, "internet"); code != at.Success {
		t.Fatalf("SetAPN() = %s", code)
	}
	if !c.Open(ctx, "example.com", 80, modem.TCP) {
		t.Fatal("Open() failed")
	}
	return c, radio
}

func newWifi(t *testing.T, hook func(from, to modem.State)) (*modem.Wifi, *radiosim.Radio) {
	t.Helper()
	line, radio := newRadio(at.WifiDialect)
	w := modem.NewWifi(testConfig(t, line, hook))
	if err := w.Init(context.Background()); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	t.Cleanup(func() { w.Shutdown() })
	return w, radio
}

// readPayload reads from s until want bytes arrived or a second passed.
func readPayload(t *testing.T, s modem.IPStack, want int) []byte {
	t.Helper()
	var got []byte
	buf := make([]byte, 64)
	deadline := time.Now().Add(time.Second)
	for len(got) < want && time.Now().Before(deadline) {
		n := s.Read(buf, 20*time.Millisecond)
		if n < 0 {
			t.Fatalf("Read() = %d", n)
		}
		got = append(got, buf[:n]...)
	}
	return got
}

package serialio_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"i4.energy/across/socketmodem/buffer"
	"i4.energy/across/socketmodem/serialio"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func drainAll(tx *buffer.Ring) error {
	tx.Read(make([]byte, tx.Size()))
	return nil
}

func TestBufferedIOEcho(t *testing.T) {
	lb := serialio.NewLoopback()
	lb.SetPeer(lb.Inject)

	b := serialio.NewBufferedIO(lb)
	b.Start(context.Background())
	defer b.Close()

	if n := b.WriteTimeout([]byte("AT\r"), time.Second); n != 3 {
		t.Fatalf("WriteTimeout() = %d, want 3", n)
	}
	got := make([]byte, 3)
	if n := b.ReadTimeout(got, time.Second); n != 3 {
		t.Fatalf("ReadTimeout() = %d, want 3", n)
	}
	if string(got) != "AT\r" {
		t.Errorf("read %q, want %q", got, "AT\r")
	}

	st := b.Stats()
	if st.RxBytes != 3 || st.TxBytes != 3 || st.Dropped != 0 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestBufferedIOReadTimeout(t *testing.T) {
	lb := serialio.NewLoopback()
	b := serialio.NewBufferedIO(lb)
	b.Start(context.Background())
	defer b.Close()

	t.Run("zero timeout returns immediately", func(t *testing.T) {
		start := time.Now()
		if n := b.ReadTimeout(make([]byte, 4), 0); n != 0 {
			t.Errorf("ReadTimeout() = %d, want 0", n)
		}
		if d := time.Since(start); d > 5*time.Millisecond {
			t.Errorf("ReadTimeout(0) took %v", d)
		}
	})

	t.Run("partial read at deadline", func(t *testing.T) {
		lb.Inject([]byte("OK"))
		start := time.Now()
		p := make([]byte, 4)
		n := b.ReadTimeout(p, 50*time.Millisecond)
		if n != 2 || string(p[:n]) != "OK" {
			t.Errorf("ReadTimeout() = %d %q, want 2 %q", n, p[:n], "OK")
		}
		if d := time.Since(start); d < 50*time.Millisecond || d > 150*time.Millisecond {
			t.Errorf("ReadTimeout(50ms) took %v", d)
		}
	})

	t.Run("single byte", func(t *testing.T) {
		lb.Inject([]byte{'>'})
		c, n := b.ReadByteTimeout(time.Second)
		if n != 1 || c != '>' {
			t.Errorf("ReadByteTimeout() = %q, %d", c, n)
		}
		if _, n := b.ReadByteTimeout(10 * time.Millisecond); n != 0 {
			t.Errorf("ReadByteTimeout() on empty line = %d, want 0", n)
		}
	})
}

func TestBufferedIOEOFAfterClose(t *testing.T) {
	lb := serialio.NewLoopback()
	b := serialio.NewBufferedIO(lb)
	b.Start(context.Background())

	lb.Inject([]byte("x"))
	waitFor(t, "received byte", func() bool { return b.Readable() == 1 })

	if err := b.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	got, err := io.ReadAll(b)
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if string(got) != "x" {
		t.Errorf("ReadAll() = %q, want %q", got, "x")
	}
	if _, err := b.ReadByte(); !errors.Is(err, io.EOF) {
		t.Errorf("ReadByte() after close = %v, want io.EOF", err)
	}
	if _, err := b.Write([]byte("AT")); !errors.Is(err, serialio.ErrClosed) {
		t.Errorf("Write() after close = %v, want ErrClosed", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestBufferedIODropsOverflow(t *testing.T) {
	var (
		mu      sync.Mutex
		reasons []string
	)
	lb := serialio.NewLoopback()
	b := serialio.NewBufferedIO(lb,
		serialio.WithBufferSizes(8, 4),
		serialio.WithResetter(func(reason string) {
			mu.Lock()
			reasons = append(reasons, reason)
			mu.Unlock()
		}),
	)
	b.Start(context.Background())
	defer b.Close()

	lb.Inject([]byte{'a', 'b', 'c', 'd', 0x01, 0xFF})
	waitFor(t, "dropped bytes", func() bool { return b.Stats().Dropped == 2 })

	mu.Lock()
	if len(reasons) != 1 {
		t.Errorf("reset called %d times, want 1", len(reasons))
	}
	mu.Unlock()

	got := make([]byte, 4)
	if n := b.ReadTimeout(got, 0); n != 4 || string(got) != "abcd" {
		t.Errorf("ReadTimeout() = %d %q, want 4 %q", n, got, "abcd")
	}
}

func TestBufferedIODropWithoutResetter(t *testing.T) {
	lb := serialio.NewLoopback()
	b := serialio.NewBufferedIO(lb, serialio.WithBufferSizes(8, 1))
	b.Start(context.Background())
	defer b.Close()

	lb.Inject([]byte{'a', 0xFF})
	waitFor(t, "dropped byte", func() bool { return b.Stats().Dropped == 1 })
}

func TestBufferedIOWrite(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("payload larger than the ring", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		hw := serialio.NewMockHardware(ctrl)
		hw.EXPECT().Drain(gomock.Any()).DoAndReturn(drainAll).AnyTimes()

		b := serialio.NewBufferedIO(hw, serialio.WithBufferSizes(4, 4))
		payload := []byte("0123456789")
		if n := b.WriteTimeout(payload, time.Second); n != len(payload) {
			t.Errorf("WriteTimeout() = %d, want %d", n, len(payload))
		}
		if n, err := b.Write(payload); n != len(payload) || err != nil {
			t.Errorf("Write() = %d, %v", n, err)
		}
		if got := b.Stats().TxBytes; got != 2*uint64(len(payload)) {
			t.Errorf("TxBytes = %d, want %d", got, 2*len(payload))
		}
	})

	t.Run("stalled line is bounded by the timeout", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		hw := serialio.NewMockHardware(ctrl)
		hw.EXPECT().Drain(gomock.Any()).Return(nil).AnyTimes()

		b := serialio.NewBufferedIO(hw, serialio.WithBufferSizes(4, 4))
		start := time.Now()
		if n := b.WriteTimeout([]byte("0123456789"), 40*time.Millisecond); n != 0 {
			t.Errorf("WriteTimeout() = %d, want 0", n)
		}
		if d := time.Since(start); d > 40*time.Millisecond+50*time.Millisecond {
			t.Errorf("WriteTimeout(40ms) took %v", d)
		}
		if got := b.Writeable(); got != 4 {
			t.Errorf("Writeable() = %d, want 4 after timeout", got)
		}
	})

	t.Run("drain error ends Write", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		hw := serialio.NewMockHardware(ctrl)
		hw.EXPECT().Drain(gomock.Any()).Return(errBoom)

		b := serialio.NewBufferedIO(hw)
		n, err := b.Write([]byte("AT\r"))
		if !errors.Is(err, errBoom) {
			t.Errorf("Write() error = %v, want %v", err, errBoom)
		}
		if n != 0 {
			t.Errorf("Write() = %d, want 0", n)
		}
	})

	t.Run("drain error ends WriteTimeout", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		hw := serialio.NewMockHardware(ctrl)
		hw.EXPECT().Drain(gomock.Any()).Return(errBoom)

		b := serialio.NewBufferedIO(hw)
		if n := b.WriteTimeout([]byte("AT\r"), time.Second); n != 0 {
			t.Errorf("WriteTimeout() = %d, want 0", n)
		}
	})

	t.Run("single byte", func(t *testing.T) {
		lb := serialio.NewLoopback()
		b := serialio.NewBufferedIO(lb)
		if err := b.WriteByte(0x1A); err != nil {
			t.Fatalf("WriteByte() error: %v", err)
		}
		if n := b.WriteByteTimeout('\r', time.Second); n != 1 {
			t.Errorf("WriteByteTimeout() = %d, want 1", n)
		}
		if got := lb.Written(); !bytes.Equal(got, []byte{0x1A, '\r'}) {
			t.Errorf("written %q", got)
		}
	})
}

func TestBufferedIOClear(t *testing.T) {
	lb := serialio.NewLoopback()
	b := serialio.NewBufferedIO(lb)
	b.Start(context.Background())
	defer b.Close()

	lb.Inject([]byte("garbage"))
	waitFor(t, "received bytes", func() bool { return b.Readable() == 7 })
	b.RxClear()
	if got := b.Readable(); got != 0 {
		t.Errorf("Readable() after RxClear = %d", got)
	}
	b.TxClear()
	if got := b.Writeable(); got != serialio.DefaultBufferSize {
		t.Errorf("Writeable() = %d, want %d", got, serialio.DefaultBufferSize)
	}
}

func TestBufferedIOCloseUnstarted(t *testing.T) {
	ctrl := gomock.NewController(t)
	hw := serialio.NewMockHardware(ctrl)
	hw.EXPECT().Close().Return(nil)

	b := serialio.NewBufferedIO(hw)
	if err := b.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

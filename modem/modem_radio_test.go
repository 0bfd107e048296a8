package modem_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"i4.energy/across/socketmodem/at"
	"i4.energy/across/socketmodem/modem"
)

// startRadio runs a Radio loop over an initialized cellular session until
// the test ends.
func startRadio(t *testing.T, cfg modem.RadioConfig) *modem.Radio {
	t.Helper()
	r, err := modem.NewRadio(cfg)
	if err != nil {
		t.Fatalf("NewRadio() failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Loop(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return r
}

func TestRadioLoop(t *testing.T) {
	t.Run("Already running", func(t *testing.T) {
		c, _ := newCellular(t, nil)
		r := startRadio(t, modem.RadioConfig{Cellular: c, Kind: modem.KindCellular})

		// Do only returns once the loop has picked up the request.
		if err := r.Do(context.Background(), func(context.Context) error { return nil }); err != nil {
			t.Fatalf("Do() failed: %v", err)
		}
		if err := r.Loop(context.Background()); !errors.Is(err, modem.ErrLoopRunning) {
			t.Errorf("second Loop() = %v, want ErrLoopRunning", err)
		}
	})

	t.Run("Do returns the error of fn", func(t *testing.T) {
		c, _ := newCellular(t, nil)
		r := startRadio(t, modem.RadioConfig{Cellular: c, Kind: modem.KindCellular})
		want := errors.New("boom")

		if err := r.Do(context.Background(), func(context.Context) error { return want }); !errors.Is(err, want) {
			t.Errorf("Do() = %v, want %v", err, want)
		}
	})

	t.Run("Do without loop times out", func(t *testing.T) {
		r, err := modem.NewRadio(modem.RadioConfig{})
		if err != nil {
			t.Fatalf("NewRadio() failed: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err = r.Do(ctx, func(context.Context) error { return nil })
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Do() = %v, want DeadlineExceeded", err)
		}
	})

	t.Run("Do after Close", func(t *testing.T) {
		c, _ := newCellular(t, nil)
		r := startRadio(t, modem.RadioConfig{Cellular: c, Kind: modem.KindCellular})

		if err := r.Close(); err != nil {
			t.Fatalf("Close() failed: %v", err)
		}
		if err := r.Do(context.Background(), func(context.Context) error { return nil }); !errors.Is(err, modem.ErrAlreadyClosed) {
			t.Errorf("Do() = %v, want ErrAlreadyClosed", err)
		}
		if err := r.Close(); !errors.Is(err, modem.ErrAlreadyClosed) {
			t.Errorf("second Close() = %v, want ErrAlreadyClosed", err)
		}
	})
}

func TestNewRadio_UnknownStack(t *testing.T) {
	_, err := modem.NewRadio(modem.RadioConfig{Kind: modem.KindWifi})
	if !errors.Is(err, modem.ErrNoStack) {
		t.Errorf("NewRadio() = %v, want ErrNoStack", err)
	}
}

func TestRadioSendSMS(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		c, sim := newCellular(t, nil)
		r := startRadio(t, modem.RadioConfig{Cellular: c, Kind: modem.KindCellular})

		if err := r.SendSMS(ctx, "+15551234", "hello"); err != nil {
			t.Fatalf("SendSMS() failed: %v", err)
		}
		if sent := sim.Sent(); len(sent) != 1 || sent[0].Body != "hello" {
			t.Errorf("radio sent %+v", sent)
		}
	})

	t.Run("Rejected", func(t *testing.T) {
		c, sim := newCellular(t, nil)
		sim.SetResponse(`AT+CMGS="+15551234"`, "\r\n+CMS ERROR: 304\r\n")
		r := startRadio(t, modem.RadioConfig{Cellular: c, Kind: modem.KindCellular})

		if err := r.SendSMS(ctx, "+15551234", "hello"); !errors.Is(err, modem.ErrSMSFailed) {
			t.Errorf("SendSMS() = %v, want ErrSMSFailed", err)
		}
	})

	t.Run("No cellular radio", func(t *testing.T) {
		w, _ := newWifi(t, nil)
		r := startRadio(t, modem.RadioConfig{Wifi: w, Kind: modem.KindWifi})

		if err := r.SendSMS(ctx, "+15551234", "hello"); !errors.Is(err, modem.ErrNoSMS) {
			t.Errorf("SendSMS() = %v, want ErrNoSMS", err)
		}
	})
}

func TestRadioStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Cellular", func(t *testing.T) {
		c, _ := newCellular(t, nil)
		if code := c.SetAPN(ctx, "internet"); code != at.Success {
			t.Fatalf("SetAPN() = %s", code)
		}
		if !c.Connect(ctx) {
			t.Fatal("Connect() failed")
		}
		r := startRadio(t, modem.RadioConfig{Cellular: c, Kind: modem.KindCellular})

		status, err := r.Status(ctx)
		if err != nil {
			t.Fatalf("Status() failed: %v", err)
		}
		want := modem.Status{
			Kind:      modem.KindCellular,
			State:     modem.Connected.String(),
			Connected: true,
			Signal:    17,
			Address:   "10.0.0.7",
		}
		if status != want {
			t.Errorf("Status() = %+v, want %+v", status, want)
		}
	})

	t.Run("None", func(t *testing.T) {
		r := startRadio(t, modem.RadioConfig{})

		status, err := r.Status(ctx)
		if err != nil {
			t.Fatalf("Status() failed: %v", err)
		}
		if status.Kind != modem.KindNone || status.Connected {
			t.Errorf("Status() = %+v", status)
		}
	})
}

func TestRadioInbox(t *testing.T) {
	c, sim := newCellular(t, nil)
	sim.AddSMS("+15550001", "ping", "24/01/02,10:11:12+00")
	r := startRadio(t, modem.RadioConfig{
		Cellular:  c,
		Kind:      modem.KindCellular,
		InboxPoll: 10 * time.Millisecond,
	})

	select {
	case sms := <-r.Inbox():
		if sms.PhoneNumber != "+15550001" || sms.Message != "ping" {
			t.Errorf("received %+v", sms)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no SMS delivered")
	}

	// Delivered messages are deleted from the radio.
	deadline := time.Now().Add(time.Second)
	for len(sim.Inbox()) != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if inbox := sim.Inbox(); len(inbox) != 0 {
		t.Errorf("radio inbox = %+v, want empty", inbox)
	}
}

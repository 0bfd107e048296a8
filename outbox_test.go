package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
)

// newTestOutbox returns an outbox without retry pauses, running until the
// test ends.
func newTestOutbox(t *testing.T, sender SMSSender, ratePerMin, maxRetries int) *Outbox {
	t.Helper()
	o := NewOutbox(sender, ratePerMin, maxRetries, nil)
	o.backoff = func(int) time.Duration { return time.Millisecond }
	return o
}

func run(t *testing.T, o *Outbox) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestOutboxEnqueue(t *testing.T) {
	tests := []struct {
		name    string
		req     SMSRequest
		wantErr error
		wantID  string
	}{
		{name: "Assigns an ID", req: SMSRequest{To: "+1555", Message: "hi"}},
		{name: "Keeps the caller's ID", req: SMSRequest{To: "+1555", Message: "hi", ID: "abc"}, wantID: "abc"},
		{name: "Missing recipient", req: SMSRequest{Message: "hi"}, wantErr: ErrMissingFields},
		{name: "Missing message", req: SMSRequest{To: "+1555"}, wantErr: ErrMissingFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			o := newTestOutbox(t, NewMockSMSSender(ctrl), 0, 0)

			id, err := o.Enqueue(tt.req)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Enqueue() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if id == "" || (tt.wantID != "" && id != tt.wantID) {
				t.Errorf("Enqueue() id = %q, want %q", id, tt.wantID)
			}
			if o.Pending() != 1 {
				t.Errorf("Pending() = %d, want 1", o.Pending())
			}
		})
	}
}

func TestOutboxQueueFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	o := newTestOutbox(t, NewMockSMSSender(ctrl), 0, 0)

	for i := range cap(o.queue) {
		if _, err := o.Enqueue(SMSRequest{To: "+1555", Message: "hi"}); err != nil {
			t.Fatalf("Enqueue() #%d failed: %v", i, err)
		}
	}
	if _, err := o.Enqueue(SMSRequest{To: "+1555", Message: "hi"}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Enqueue() = %v, want ErrQueueFull", err)
	}
}

func TestOutboxDelivery(t *testing.T) {
	t.Run("Sends queued message", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := NewMockSMSSender(ctrl)
		sent := make(chan struct{})
		sender.EXPECT().SendSMS(gomock.Any(), "+1555", "hi").DoAndReturn(
			func(context.Context, string, string) error {
				close(sent)
				return nil
			})
		o := newTestOutbox(t, sender, 0, 3)
		run(t, o)

		o.Enqueue(SMSRequest{To: "+1555", Message: "hi"})

		select {
		case <-sent:
		case <-time.After(time.Second):
			t.Fatal("message not sent")
		}
	})

	t.Run("Retries until success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := NewMockSMSSender(ctrl)
		sent := make(chan struct{})
		gomock.InOrder(
			sender.EXPECT().SendSMS(gomock.Any(), "+1555", "hi").Return(errors.New("no prompt")),
			sender.EXPECT().SendSMS(gomock.Any(), "+1555", "hi").Return(errors.New("no prompt")),
			sender.EXPECT().SendSMS(gomock.Any(), "+1555", "hi").DoAndReturn(
				func(context.Context, string, string) error {
					close(sent)
					return nil
				}),
		)
		o := newTestOutbox(t, sender, 0, 3)
		run(t, o)

		o.Enqueue(SMSRequest{To: "+1555", Message: "hi"})

		select {
		case <-sent:
		case <-time.After(time.Second):
			t.Fatal("message not sent")
		}
	})

	t.Run("Gives up after max retries", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := NewMockSMSSender(ctrl)
		next := make(chan struct{})
		// One attempt plus two retries, then the next message is handled.
		sender.EXPECT().SendSMS(gomock.Any(), "+1555", "doomed").Return(errors.New("rejected")).Times(3)
		sender.EXPECT().SendSMS(gomock.Any(), "+1666", "next").DoAndReturn(
			func(context.Context, string, string) error {
				close(next)
				return nil
			})
		o := newTestOutbox(t, sender, 0, 2)
		run(t, o)

		o.Enqueue(SMSRequest{To: "+1555", Message: "doomed"})
		o.Enqueue(SMSRequest{To: "+1666", Message: "next"})

		select {
		case <-next:
		case <-time.After(time.Second):
			t.Fatal("second message not sent")
		}
	})
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	r := newRateLimiter(2, time.Minute)
	r.now = func() time.Time { return now }

	for i := range 2 {
		if ok, _ := r.reserve(); !ok {
			t.Fatalf("reserve() #%d refused", i)
		}
	}

	ok, wait := r.reserve()
	if ok {
		t.Fatal("third reserve() inside the window allowed")
	}
	if wait != time.Minute {
		t.Errorf("wait = %v, want 1m", wait)
	}

	now = now.Add(time.Minute + time.Second)
	if ok, _ := r.reserve(); !ok {
		t.Error("reserve() refused after the window passed")
	}
}

func TestRateLimiterWaitCancelled(t *testing.T) {
	r := newRateLimiter(1, time.Hour)
	r.reserve()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := r.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want DeadlineExceeded", err)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	r := newRateLimiter(0, time.Minute)
	for range 100 {
		if ok, _ := r.reserve(); !ok {
			t.Fatal("disabled limiter refused")
		}
	}
}

package modem

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"i4.energy/across/socketmodem/at"
)

// Radio owns the radio sessions of a device and serializes every operation
// on them through one event loop, since sessions are not safe for
// concurrent use. It also watches the cellular inbox and hands new messages
// to Inbox.
type Radio struct {
	cellular *Cellular
	wifi     *Wifi
	selector *Selector
	logger   *slog.Logger

	// requests queues work for the Loop
	requests chan *request
	// inbox receives SMS found by the inbox poll
	inbox     chan SMS
	inboxPoll time.Duration

	loopRunning atomic.Bool
	closed      atomic.Bool
}

// request is a unit of work executed by the Loop.
type request struct {
	fn   func(ctx context.Context) error
	ctx  context.Context
	done chan error
}

// RadioConfig describes the sessions a Radio manages.
type RadioConfig struct {
	// Cellular and Wifi are the fitted radios. Either may be nil.
	Cellular *Cellular
	Wifi     *Wifi
	// Kind selects the radio that carries sockets.
	Kind   Kind
	Logger *slog.Logger
	// InboxPoll is how often the cellular inbox is checked for new SMS.
	// Zero disables the check.
	InboxPoll time.Duration
}

// Status is a snapshot of the active radio.
type Status struct {
	Kind      Kind   `json:"kind"`
	State     string `json:"state"`
	Connected bool   `json:"connected"`
	Signal    int    `json:"signal"`
	Address   string `json:"address,omitempty"`
}

// NewRadio builds a Radio. The sessions should already be initialized; the
// Loop must be started before any other call.
func NewRadio(cfg RadioConfig) (*Radio, error) {
	var cellular, wifi IPStack
	if cfg.Cellular != nil {
		cellular = cfg.Cellular
	}
	if cfg.Wifi != nil {
		wifi = cfg.Wifi
	}
	selector := NewSelector(cellular, wifi)
	if err := selector.SetKind(cfg.Kind); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Radio{
		cellular:  cfg.Cellular,
		wifi:      cfg.Wifi,
		selector:  selector,
		logger:    logger.With("component", "radio"),
		requests:  make(chan *request),
		inbox:     make(chan SMS, 16),
		inboxPoll: cfg.InboxPoll,
	}, nil
}

// Loop runs queued operations one at a time until ctx is cancelled. It must
// be running for Do and the helpers built on it to make progress.
//
// Usage:
//
//	r, err := NewRadio(cfg)
//	if err != nil { return err }
//
//	go r.Loop(ctx)
//
//	status, err := r.Status(ctx)
func (r *Radio) Loop(ctx context.Context) error {
	if !r.loopRunning.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer r.loopRunning.Store(false)

	var tick <-chan time.Time
	if r.cellular != nil && r.inboxPoll > 0 {
		ticker := time.NewTicker(r.inboxPoll)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case req := <-r.requests:
			if err := req.ctx.Err(); err != nil {
				req.done <- err
				continue
			}
			req.done <- req.fn(req.ctx)

		case <-tick:
			r.pollInbox(ctx)
		}
	}
}

// Do runs fn on the Loop and returns its error. fn has exclusive use of
// the sessions while it runs.
func (r *Radio) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.closed.Load() {
		return ErrAlreadyClosed
	}

	req := &request{
		fn:   fn,
		ctx:  ctx,
		done: make(chan error, 1),
	}

	select {
	case r.requests <- req:
	case <-ctx.Done():
		return fmt.Errorf("request cancelled before running: %w", ctx.Err())
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("request timeout: %w", ctx.Err())
	}
}

// Selector returns the selector of the managed sessions. Use the stacks it
// hands out from inside Do only.
func (r *Radio) Selector() *Selector {
	return r.selector
}

// Inbox returns a channel receiving SMS picked up by the inbox poll. It is
// buffered, but messages are dropped when it is not drained fast enough.
func (r *Radio) Inbox() <-chan SMS {
	return r.inbox
}

// SendSMS sends a text message through the cellular radio.
func (r *Radio) SendSMS(ctx context.Context, phoneNumber, message string) error {
	return r.Do(ctx, func(ctx context.Context) error {
		if r.cellular == nil {
			return ErrNoSMS
		}
		if code := r.cellular.SendSMS(ctx, phoneNumber, message); code != at.Success {
			return fmt.Errorf("%w: %s", ErrSMSFailed, code)
		}
		return nil
	})
}

// Status reports the state of the active radio.
func (r *Radio) Status(ctx context.Context) (Status, error) {
	var status Status
	err := r.Do(ctx, func(ctx context.Context) error {
		status.Kind = r.selector.Kind()
		switch status.Kind {
		case KindCellular:
			status.State = r.cellular.State().String()
			status.Connected = r.cellular.IsConnected(ctx)
			status.Address = r.cellular.DeviceIP()
			// Commands are refused while a socket is open.
			status.Signal = -1
			if !r.cellular.IsOpen(ctx) {
				status.Signal = r.cellular.SignalStrength(ctx)
			}
		case KindWifi:
			status.State = r.wifi.State().String()
			status.Connected = r.wifi.IsConnected(ctx)
			status.Address = r.wifi.DeviceIP()
			status.Signal = r.wifi.SignalStrength(ctx)
		default:
			status.State = Uninitialized.String()
		}
		return nil
	})
	return status, err
}

// pollInbox moves new messages from the cellular inbox to the Inbox
// channel and deletes them from the radio.
func (r *Radio) pollInbox(ctx context.Context) {
	if r.cellular.io == nil || r.cellular.socketOpen {
		return
	}
	list := r.cellular.ReceivedSMS(ctx)
	if len(list) == 0 {
		return
	}
	for _, sms := range list {
		select {
		case r.inbox <- sms:
		default:
			r.logger.Warn("Inbox full, dropping SMS", "from", sms.PhoneNumber)
		}
	}
	if code := r.cellular.DeleteReadSMS(ctx); code != at.Success {
		r.logger.Error("Failed to delete read SMS", "code", code)
	}
}

// Close shuts down every session. Call it once the Loop has stopped or is
// idle; the Loop itself stops with its context.
func (r *Radio) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return ErrAlreadyClosed
	}
	var err error
	if r.cellular != nil && r.cellular.io != nil {
		err = r.cellular.Shutdown()
	}
	if r.wifi != nil && r.wifi.io != nil {
		if werr := r.wifi.Shutdown(); err == nil {
			err = werr
		}
	}
	return err
}

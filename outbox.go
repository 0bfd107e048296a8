package main

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

//go:generate go tool mockgen -source=outbox.go -destination=mock_outbox.go -package=main

// SMSSender delivers one text message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// SMSRequest is a message waiting for delivery.
type SMSRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
	// ID is optional; the outbox assigns one when empty.
	ID string `json:"id,omitempty"`
}

var (
	// ErrQueueFull is returned when the outbox cannot take another message.
	ErrQueueFull = errors.New("outbox queue full")

	// ErrMissingFields is returned for a request without recipient or body.
	ErrMissingFields = errors.New("both 'to' and 'message' fields are required")
)

// Outbox queues SMS requests and delivers them one at a time, honouring a
// per-minute rate limit and retrying failed sends with jitter.
type Outbox struct {
	sender     SMSSender
	queue      chan SMSRequest
	limit      *rateLimiter
	maxRetries int
	logger     *slog.Logger

	// backoff returns the pause before retry attempt n.
	backoff func(n int) time.Duration
}

// NewOutbox returns an outbox delivering through sender. ratePerMin <= 0
// disables the rate limit.
func NewOutbox(sender SMSSender, ratePerMin, maxRetries int, logger *slog.Logger) *Outbox {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Outbox{
		sender:     sender,
		queue:      make(chan SMSRequest, 1024),
		limit:      newRateLimiter(ratePerMin, time.Minute),
		maxRetries: maxRetries,
		logger:     logger.With("component", "outbox"),
		backoff:    jitterBackoff,
	}
}

func jitterBackoff(int) time.Duration {
	return time.Duration(800+rand.IntN(600)) * time.Millisecond
}

// Enqueue validates req, assigns an ID when missing and queues it. It
// returns the ID.
func (o *Outbox) Enqueue(req SMSRequest) (string, error) {
	if req.To == "" || req.Message == "" {
		return "", ErrMissingFields
	}
	if req.ID == "" {
		h := sha1.Sum(fmt.Appendf(nil, "%s|%s|%d", req.To, req.Message, time.Now().UnixNano()))
		req.ID = hex.EncodeToString(h[:8])
	}
	select {
	case o.queue <- req:
		o.logger.Debug("SMS queued", "id", req.ID, "to", req.To)
		return req.ID, nil
	default:
		return "", ErrQueueFull
	}
}

// Pending returns the number of queued messages.
func (o *Outbox) Pending() int {
	return len(o.queue)
}

// Run delivers queued messages until ctx is cancelled.
func (o *Outbox) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-o.queue:
			o.deliver(ctx, req)
		}
	}
}

func (o *Outbox) deliver(ctx context.Context, req SMSRequest) {
	for attempt := 0; ; attempt++ {
		if err := o.limit.Wait(ctx); err != nil {
			return
		}
		err := o.sender.SendSMS(ctx, req.To, req.Message)
		if err == nil {
			o.logger.Info("SMS sent", "id", req.ID, "to", req.To, "message_length", len(req.Message))
			return
		}
		if attempt >= o.maxRetries || ctx.Err() != nil {
			o.logger.Error("SMS permanently failed", "id", req.ID, "to", req.To, "error", err)
			return
		}
		back := o.backoff(attempt)
		o.logger.Warn("SMS send failed, retrying", "id", req.ID, "error", err, "backoff", back)
		if !sleep(ctx, back) {
			return
		}
	}
}

// sleep waits d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// rateLimiter allows at most max events per sliding window.
type rateLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	events []time.Time
	now    func() time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{max: limit, window: window, now: time.Now}
}

// reserve records an event if the window has room. Otherwise it returns
// how long until the oldest event leaves the window.
func (r *rateLimiter) reserve() (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.max <= 0 {
		return true, 0
	}
	now := r.now()
	cut := now.Add(-r.window)
	kept := r.events[:0]
	for _, t := range r.events {
		if t.After(cut) {
			kept = append(kept, t)
		}
	}
	r.events = kept
	if len(r.events) >= r.max {
		return false, r.events[0].Sub(cut)
	}
	r.events = append(r.events, now)
	return true, 0
}

// Wait blocks until an event is allowed or ctx ends.
func (r *rateLimiter) Wait(ctx context.Context) error {
	for {
		ok, wait := r.reserve()
		if ok {
			return nil
		}
		if !sleep(ctx, wait) {
			return ctx.Err()
		}
	}
}

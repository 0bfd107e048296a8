package modem

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"i4.energy/across/socketmodem/at"
)

// readChunk is how much a command poll takes from the receive ring per
// slice.
const readChunk = 255

// session is the command/response engine shared by both radio families.
// It is not safe for concurrent use.
type session struct {
	cfg     Config
	io      Transport
	dialect at.Dialect
	slice   time.Duration
	logger  *slog.Logger
	state   State

	// echo means the radio repeats each command line before answering.
	echo       bool
	socketOpen bool
}

func newSession(cfg Config, dialect at.Dialect) session {
	cfg.setDefaults()
	slice := cfg.PollSlice
	if slice <= 0 {
		slice = dialect.Slice
	}
	return session{
		cfg:     cfg,
		dialect: dialect,
		slice:   slice,
		logger:  cfg.Logger.With("component", dialect.Name),
	}
}

func (s *session) dial(ctx context.Context) error {
	if s.io != nil {
		return nil
	}
	if s.cfg.Dialer == nil {
		return ErrNoDialer
	}
	t, err := s.cfg.Dialer.Dial(ctx)
	if err != nil {
		return fmt.Errorf("dial radio: %w", err)
	}
	s.io = t
	return nil
}

// shutdown releases the transport.
func (s *session) shutdown() error {
	if s.io == nil {
		return ErrAlreadyClosed
	}
	err := s.io.Close()
	s.io = nil
	s.socketOpen = false
	s.setState(Uninitialized)
	return err
}

func (s *session) setState(to State) {
	if s.state == to {
		return
	}
	from := s.state
	s.state = to
	s.logger.Debug("State changed", "from", from, "to", to)
	if s.cfg.OnStateChange != nil {
		s.cfg.OnStateChange(from, to)
	}
}

// State returns the current lifecycle state.
func (s *session) State() State {
	return s.state
}

// exchange writes text followed by esc (when non-zero) and collects the
// reply. It polls the receive ring once per slice and stops when expect
// shows up, when a whole slice passes without new bytes after the reply
// has started, or when timeout elapses. Partial replies are returned
// as-is; an empty string means nothing arrived or the write failed.
func (s *session) exchange(ctx context.Context, text string, timeout time.Duration, expect string, esc byte) string {
	if s.io == nil {
		s.logger.Error("Transport not set")
		return ""
	}

	s.io.RxClear()
	s.io.TxClear()

	if n := s.io.WriteTimeout([]byte(text), timeout); n != len(text) {
		s.logger.Error("Failed to send command", "command", text, "timeout", timeout)
		return ""
	}
	if esc != 0 {
		if s.io.WriteByteTimeout(esc, timeout) != 1 {
			s.logger.Error("Failed to send terminator", "command", text, "byte", esc)
			return ""
		}
	}

	// With echo on the reply only starts once the echoed line and its
	// CRLF are through.
	armAt := 0
	if s.echo {
		armAt = len(text) + 2
	}

	var (
		result   []byte
		chunk    = make([]byte, readChunk)
		started  = false
		deadline = time.Now().Add(timeout)
		timer    = time.NewTimer(s.slice)
	)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Command cancelled", "command", text, "error", ctx.Err())
			return string(result)
		case <-timer.C:
		}

		previous := len(result)
		if n := s.io.ReadTimeout(chunk, 0); n > 0 {
			result = append(result, chunk[:n]...)
		}

		if expect != "" {
			if len(result) > previous && bytes.Contains(result, []byte(expect)) {
				return string(result)
			}
		} else if started {
			if len(result) == previous {
				return string(result)
			}
		} else if len(result) > armAt {
			started = true
		}

		if !time.Now().Before(deadline) {
			s.logger.Warn("Command timed out", "command", text, "timeout", timeout)
			return string(result)
		}
		timer.Reset(s.slice)
	}
}

// basic runs a command and classifies the reply with the dialect's
// markers.
func (s *session) basic(ctx context.Context, text string, timeout time.Duration, expect string, esc byte) at.Code {
	return s.dialect.Classify(s.exchange(ctx, text, timeout, expect, esc))
}

// sleep waits d unless ctx ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

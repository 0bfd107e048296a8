package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"i4.energy/across/socketmodem/at"
	"i4.energy/across/socketmodem/modem"
	"i4.energy/across/socketmodem/serialio"
)

// stateChange is a radio state transition waiting to be published.
type stateChange struct {
	radio    string
	from, to modem.State
}

// transportTracker remembers the transport of the last dial so its
// counters can be reported.
type transportTracker struct {
	mu        sync.Mutex
	transport modem.Transport
}

// wrap returns a dialer recording every transport d hands out.
func (t *transportTracker) wrap(d modem.Dialer) modem.Dialer {
	return modem.DialerFunc(func(ctx context.Context) (modem.Transport, error) {
		tr, err := d.Dial(ctx)
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		t.transport = tr
		t.mu.Unlock()
		return tr, nil
	})
}

// Stats returns the counters of the tracked transport.
func (t *transportTracker) Stats() serialio.Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.transport.(interface{ Stats() serialio.Stats }); ok {
		return s.Stats()
	}
	return serialio.Stats{}
}

// bringUp initializes and configures the radio selected by cfg and
// connects it to the network. Only a radio that does not answer at all is
// an error; configuration and connect failures are logged and the radio is
// used as is.
func bringUp(ctx context.Context, cfg *Config, dialer modem.Dialer, states chan<- stateChange, logger *slog.Logger) (*modem.Radio, error) {
	kind, err := modem.ParseKind(cfg.Radio)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	security, err := modem.ParseSecurity(cfg.Security)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	hook := func(from, to modem.State) {
		select {
		case states <- stateChange{radio: cfg.Radio, from: from, to: to}:
		default:
			logger.Warn("State change dropped", "from", from, "to", to)
		}
	}

	modemConfig, err := modem.NewConfigBuilder().
		WithDialer(dialer).
		WithLogger(logger).
		WithStateHook(hook).
		Build()
	if err != nil {
		return nil, fmt.Errorf("create radio config: %w", err)
	}

	radioConfig := modem.RadioConfig{
		Kind:      kind,
		Logger:    logger,
		InboxPoll: cfg.InboxPoll,
	}

	switch kind {
	case modem.KindCellular:
		c := modem.NewCellular(modemConfig)
		if err := c.Init(ctx); err != nil {
			return nil, fmt.Errorf("init cellular radio: %w", err)
		}
		if cfg.APN != "" {
			if code := c.SetAPN(ctx, cfg.APN); code != at.Success {
				logger.Warn("Failed to set APN", "apn", cfg.APN, "code", code)
			}
		}
		if !c.Connect(ctx) {
			logger.Warn("Cellular radio not connected")
		}
		radioConfig.Cellular = c

	case modem.KindWifi:
		w := modem.NewWifi(modemConfig)
		if err := w.Init(ctx); err != nil {
			return nil, fmt.Errorf("init wifi radio: %w", err)
		}
		if cfg.SSID != "" {
			if code := w.SetNetwork(ctx, cfg.SSID, security, cfg.Key); code != at.Success {
				logger.Warn("Failed to configure network", "ssid", cfg.SSID, "code", code)
			}
		}
		if !w.Connect(ctx) {
			logger.Warn("WiFi radio not connected")
		}
		radioConfig.Wifi = w
	}

	return modem.NewRadio(radioConfig)
}

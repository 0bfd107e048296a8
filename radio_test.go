package main

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"i4.energy/across/socketmodem/at"
	"i4.energy/across/socketmodem/modem"
	"i4.energy/across/socketmodem/radiosim"
	"i4.energy/across/socketmodem/serialio"
)

func TestBringUpCellular(t *testing.T) {
	line := serialio.NewLoopback()
	sim := radiosim.New(at.CellularDialect)
	sim.Attach(line)

	var tracker transportTracker
	dialer := tracker.wrap(modem.LoopbackDialer{Line: line})
	states := make(chan stateChange, 64)
	config, err := LoadConfig(WithDefaults(), func(c *Config) error {
		c.APN = "internet"
		return nil
	})
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	radio, err := bringUp(context.Background(), config, dialer, states, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("bringUp() failed: %v", err)
	}
	defer radio.Close()

	if got := radio.Selector().Kind(); got != modem.KindCellular {
		t.Errorf("Kind() = %s, want cellular", got)
	}
	if sim.Count(`AT#APNSERV="internet"`) != 1 {
		t.Errorf("APN not configured, commands %q", sim.Commands())
	}
	if stats := tracker.Stats(); stats.TxBytes == 0 || stats.RxBytes == 0 {
		t.Errorf("Stats() = %+v, want traffic", stats)
	}

	var last stateChange
	for len(states) > 0 {
		last = <-states
	}
	if last.radio != "cellular" || last.to != modem.Connected {
		t.Errorf("last state change = %+v, want cellular connected", last)
	}
}

func TestBringUpDialFailure(t *testing.T) {
	boom := errors.New("no such port")
	dialer := modem.DialerFunc(func(context.Context) (modem.Transport, error) {
		return nil, boom
	})
	config, err := LoadConfig(WithDefaults())
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	_, err = bringUp(context.Background(), config, dialer, make(chan stateChange, 8), slog.New(slog.DiscardHandler))
	if !errors.Is(err, boom) {
		t.Errorf("bringUp() = %v, want %v", err, boom)
	}
}

func TestBringUpInvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		radio    string
		security string
	}{
		{name: "Unknown radio", radio: "lora", security: "WPA2"},
		{name: "Unknown security", radio: "wifi", security: "WPA3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialed := false
			dialer := modem.DialerFunc(func(context.Context) (modem.Transport, error) {
				dialed = true
				return nil, errors.New("unexpected dial")
			})
			config := &Config{Radio: tt.radio, Security: tt.security}

			_, err := bringUp(context.Background(), config, dialer, make(chan stateChange, 8), slog.New(slog.DiscardHandler))

			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("bringUp() = %v, want %v", err, ErrInvalidConfig)
			}
			if dialed {
				t.Error("radio was dialed with an invalid configuration")
			}
		})
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"go.bug.st/serial"

	"i4.energy/across/socketmodem/gpio"
	"i4.energy/across/socketmodem/modem"
	"i4.energy/across/socketmodem/serialio"
)

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(parser))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	var resetLine *gpio.ResetLine
	var handshake serialio.Handshake
	if config.ResetPin != 0 || config.RTSPin != 0 {
		if err := gpio.Open(); err != nil {
			logger.Error("Failed to open GPIO", "error", err)
			os.Exit(1)
		}
		defer gpio.Close()
	}
	if config.ResetPin != 0 {
		resetLine = &gpio.ResetLine{Pin: gpio.BCM(config.ResetPin)}
	}
	if config.RTSPin != 0 {
		hs, err := gpio.NewHandshake(gpio.BCM(config.RTSPin), gpio.BCM(config.CTSPin))
		if err != nil {
			logger.Error("Failed to set up GPIO handshake", "error", err)
			os.Exit(1)
		}
		handshake = hs
		config.FlowControl = true
	}

	// resetRadio is the fail-fast path: the radio is power cycled and the
	// process exits so the supervisor starts over.
	resetRadio := func(reason string) {
		logger.Error("Radio unrecoverable, resetting", "reason", reason)
		if resetLine != nil {
			if err := resetLine.Reset(context.Background()); err != nil {
				logger.Error("Radio reset failed", "error", err)
			}
		}
		os.Exit(1)
	}

	var tracker transportTracker
	dialer := tracker.wrap(modem.SerialDialer{
		PortName: config.SerialPort,
		Mode: &serial.Mode{
			BaudRate: config.BaudRate,
			Parity:   serial.NoParity,
			DataBits: 8,
			StopBits: serial.OneStopBit,
		},
		FlowControl: config.FlowControl,
		Handshake:   handshake,
		Options:     []serialio.Option{serialio.WithResetter(resetRadio)},
		Logger:      logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	states := make(chan stateChange, 64)
	logger.Info("Starting radio", "radio", config.Radio, "port", config.SerialPort)
	radio, err := bringUp(ctx, config, dialer, states, logger)
	if errors.Is(err, ErrInvalidConfig) {
		logger.Error("Invalid radio configuration", "error", err)
		os.Exit(1)
	}
	if err != nil {
		resetRadio(err.Error())
	}

	go func() {
		if err := radio.Loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Radio loop stopped", "error", err)
		}
	}()

	outbox := NewOutbox(radio, config.RatePerMin, config.MaxRetries, logger)
	go outbox.Run(ctx)

	var bridge *Bridge
	if config.MQTT.Broker != "" {
		bridge = NewBridge(config.MQTT, outbox, logger)
		if err := bridge.Connect(); err != nil {
			logger.Error("MQTT unavailable", "error", err)
			bridge = nil
		} else {
			go bridge.ForwardInbox(ctx, radio.Inbox())
		}
	}
	go forwardStates(ctx, states, bridge, logger)

	httpServer := &http.Server{
		Addr: config.BindAddress,
		Handler: &Server{
			Logger: logger.With("component", "server"),
			Outbox: outbox,
			Radio:  radio,
			Stats:  tracker.Stats,
		},
	}

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
	}

	if bridge != nil {
		bridge.Close()
	}

	logger.Info("Closing radio")
	if err := radio.Close(); err != nil {
		logger.Error("Failed to close radio", "error", err)
	}
}

// forwardStates logs radio state changes and publishes them when MQTT is
// available.
func forwardStates(ctx context.Context, states <-chan stateChange, bridge *Bridge, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-states:
			logger.Info("Radio state changed", "radio", s.radio, "from", s.from, "to", s.to)
			if bridge != nil {
				bridge.PublishState(s.radio, s.from, s.to)
			}
		}
	}
}

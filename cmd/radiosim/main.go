// Command radiosim serves a simulated radio on a pseudo terminal so the
// daemon can be run on a bench without hardware:
//
//	radiosim --radio wifi --host example.com=93.184.216.34
//	socketmodem --serial-port /dev/pts/N
package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/creack/pty"
	"github.com/jessevdk/go-flags"

	"i4.energy/across/socketmodem/at"
	"i4.energy/across/socketmodem/radiosim"
)

type options struct {
	Radio    string   `long:"radio" default:"cellular" choice:"cellular" choice:"wifi" description:"Console dialect to simulate"`
	Signal   int      `long:"signal" default:"17" description:"Signal strength to report"`
	Hosts    []string `long:"host" description:"name=ip pair resolved by the WiFi lookup command"`
	SMS      []string `long:"sms" description:"number:body message stored in the inbox"`
	LogLevel string   `long:"log-level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	dialect := at.CellularDialect
	if opts.Radio == "wifi" {
		dialect = at.WifiDialect
	}
	radio := radiosim.New(dialect,
		radiosim.WithLogger(logger),
		radiosim.WithSignal(opts.Signal),
	)
	for _, h := range opts.Hosts {
		name, ip, ok := strings.Cut(h, "=")
		if !ok {
			logger.Error("Invalid host mapping", "host", h)
			os.Exit(2)
		}
		radio.AddHost(name, ip)
	}
	for _, m := range opts.SMS {
		number, body, ok := strings.Cut(m, ":")
		if !ok {
			logger.Error("Invalid SMS", "sms", m)
			os.Exit(2)
		}
		radio.AddSMS(number, body, "24/01/02,10:11:12+00")
	}

	master, slave, err := pty.Open()
	if err != nil {
		logger.Error("Failed to open pseudo terminal", "error", err)
		os.Exit(1)
	}
	defer slave.Close()
	defer master.Close()

	radio.SetOutput(func(p []byte) {
		if _, err := master.Write(p); err != nil {
			logger.Error("Failed to write to pseudo terminal", "error", err)
		}
	})

	logger.Info("Radio simulator ready", "radio", opts.Radio, "port", slave.Name())

	go serve(master, radio, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)
}

func serve(master io.Reader, radio *radiosim.Radio, logger *slog.Logger) {
	buf := make([]byte, 256)
	for {
		n, err := master.Read(buf)
		if n > 0 {
			radio.Receive(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				logger.Error("Pseudo terminal read failed", "error", err)
			}
			return
		}
	}
}

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jessevdk/go-flags"

	"i4.energy/across/socketmodem/modem"
)

// ErrInvalidConfig marks operator mistakes in the configuration, as opposed
// to radio faults.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the server listens on (e.g. "0.0.0.0:8080")
	BindAddress string
	// SerialPort is the path to the radio's serial port (e.g. "/dev/ttyUSB0")
	SerialPort string
	// BaudRate is the baud rate for serial communication with the radio (e.g. 115200)
	BaudRate int
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string

	// Radio selects the fitted radio, "cellular" or "wifi"
	Radio string
	// FlowControl enables RTS/CTS on the serial line
	FlowControl bool
	// RTSPin and CTSPin move the handshake to BCM GPIO pins; zero uses the
	// port's own modem lines
	RTSPin int
	CTSPin int
	// ResetPin is the BCM pin wired to the radio's reset input; zero
	// disables the hardware reset
	ResetPin int

	// APN is the cellular access point name
	APN string
	// SSID, Key and Security configure the WiFi network
	SSID     string
	Key      string
	Security string

	// InboxPoll is how often the cellular inbox is checked for SMS
	InboxPoll time.Duration
	// RatePerMin limits outgoing SMS
	RatePerMin int
	// MaxRetries bounds delivery attempts of one SMS after the first
	MaxRetries int

	MQTT MQTTConfig
}

// MQTTConfig configures the MQTT bridge. An empty Broker disables it.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	// Topic carries SMS requests to send
	Topic string
	// StatusTopic receives radio state changes
	StatusTopic string
	// InboxTopic receives SMS read from the radio
	InboxTopic string
}

// options are the command-line flags. Defaults live in WithDefaults so
// that only flags given on the command line override the environment.
type options struct {
	BindAddress string        `long:"bind-address" description:"Bind address for the HTTP server"`
	SerialPort  string        `long:"serial-port" description:"Serial port connected to the radio"`
	BaudRate    int           `long:"baud-rate" description:"Baud rate for serial communication"`
	LogLevel    string        `long:"log-level" description:"Log level (debug, info, warn, error)"`
	Radio       string        `long:"radio" description:"Fitted radio (cellular, wifi)"`
	FlowControl bool          `long:"flow-control" description:"Enable RTS/CTS flow control"`
	RTSPin      int           `long:"rts-pin" description:"BCM pin driving RTS instead of the serial line"`
	CTSPin      int           `long:"cts-pin" description:"BCM pin reading CTS instead of the serial line"`
	ResetPin    int           `long:"reset-pin" description:"BCM pin wired to the radio reset input"`
	APN         string        `long:"apn" description:"Cellular access point name"`
	SSID        string        `long:"ssid" description:"WiFi network name"`
	Key         string        `long:"key" description:"WiFi passphrase or WEP key"`
	Security    string        `long:"security" description:"WiFi security (NONE, WEP64, WEP128, WPA, WPA2)"`
	InboxPoll   time.Duration `long:"inbox-poll" description:"Interval between cellular inbox checks"`
	RatePerMin  int           `long:"rate-per-min" description:"Maximum SMS sent per minute"`
	MaxRetries  int           `long:"max-retries" description:"Retries of a failed SMS"`

	MQTTBroker      string `long:"mqtt-broker" description:"MQTT broker URL, empty disables MQTT"`
	MQTTClientID    string `long:"mqtt-client-id" description:"MQTT client ID"`
	MQTTUsername    string `long:"mqtt-username" description:"MQTT user name"`
	MQTTPassword    string `long:"mqtt-password" description:"MQTT password"`
	MQTTTopic       string `long:"mqtt-topic" description:"Topic carrying SMS requests"`
	MQTTStatusTopic string `long:"mqtt-status-topic" description:"Topic receiving radio state changes"`
	MQTTInboxTopic  string `long:"mqtt-inbox-topic" description:"Topic receiving incoming SMS"`
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	kind, err := modem.ParseKind(c.Radio)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if kind == modem.KindNone {
		return fmt.Errorf("%w: a radio must be selected", ErrInvalidConfig)
	}
	if _, err := modem.ParseSecurity(c.Security); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if (c.RTSPin == 0) != (c.CTSPin == 0) {
		return fmt.Errorf("%w: rts-pin and cts-pin must be set together", ErrInvalidConfig)
	}
	return nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = 115200
		c.LogLevel = "info"
		c.Radio = "cellular"
		c.Security = "WPA2"
		c.InboxPoll = 30 * time.Second
		c.RatePerMin = 30
		c.MaxRetries = 3
		c.MQTT = MQTTConfig{
			ClientID:    "socketmodem",
			Topic:       "sms/send",
			StatusTopic: "radio/status",
			InboxTopic:  "sms/received",
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		strs := map[string]*string{
			"BIND_ADDRESS":      &c.BindAddress,
			"SERIAL_PORT":       &c.SerialPort,
			"LOG_LEVEL":         &c.LogLevel,
			"RADIO":             &c.Radio,
			"APN":               &c.APN,
			"WIFI_SSID":         &c.SSID,
			"WIFI_KEY":          &c.Key,
			"WIFI_SECURITY":     &c.Security,
			"MQTT_BROKER":       &c.MQTT.Broker,
			"MQTT_CLIENT_ID":    &c.MQTT.ClientID,
			"MQTT_USERNAME":     &c.MQTT.Username,
			"MQTT_PASSWORD":     &c.MQTT.Password,
			"MQTT_TOPIC":        &c.MQTT.Topic,
			"MQTT_STATUS_TOPIC": &c.MQTT.StatusTopic,
			"MQTT_INBOX_TOPIC":  &c.MQTT.InboxTopic,
		}
		for key, dst := range strs {
			if v := os.Getenv(key); v != "" {
				*dst = v
			}
		}

		ints := map[string]*int{
			"BAUD_RATE":    &c.BaudRate,
			"RTS_PIN":      &c.RTSPin,
			"CTS_PIN":      &c.CTSPin,
			"RESET_PIN":    &c.ResetPin,
			"RATE_PER_MIN": &c.RatePerMin,
			"MAX_RETRIES":  &c.MaxRetries,
		}
		for key, dst := range ints {
			if v := os.Getenv(key); v != "" {
				if n, err := strconv.Atoi(v); err == nil {
					*dst = n
				}
			}
		}

		if v := os.Getenv("FLOW_CONTROL"); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.FlowControl = b
			}
		}

		if v := os.Getenv("INBOX_POLL"); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				c.InboxPoll = d
			}
		}

		return nil
	}
}

// WithFlags loads configuration from the command-line flags the parser
// has seen
func WithFlags(parser *flags.Parser) ConfigOption {
	return func(c *Config) error {
		var err error
		visit(parser.Group, func(opt *flags.Option) {
			if err != nil || !opt.IsSet() || opt.IsSetDefault() {
				return
			}
			err = c.setFlag(opt.LongName, opt.Value())
		})
		return err
	}
}

func visit(g *flags.Group, fn func(*flags.Option)) {
	for _, opt := range g.Options() {
		fn(opt)
	}
	for _, sub := range g.Groups() {
		visit(sub, fn)
	}
}

func (c *Config) setFlag(name string, value any) error {
	switch v := value.(type) {
	case string:
		dst := map[string]*string{
			"bind-address":      &c.BindAddress,
			"serial-port":       &c.SerialPort,
			"log-level":         &c.LogLevel,
			"radio":             &c.Radio,
			"apn":               &c.APN,
			"ssid":              &c.SSID,
			"key":               &c.Key,
			"security":          &c.Security,
			"mqtt-broker":       &c.MQTT.Broker,
			"mqtt-client-id":    &c.MQTT.ClientID,
			"mqtt-username":     &c.MQTT.Username,
			"mqtt-password":     &c.MQTT.Password,
			"mqtt-topic":        &c.MQTT.Topic,
			"mqtt-status-topic": &c.MQTT.StatusTopic,
			"mqtt-inbox-topic":  &c.MQTT.InboxTopic,
		}[name]
		if dst != nil {
			*dst = v
			return nil
		}
	case int:
		dst := map[string]*int{
			"baud-rate":    &c.BaudRate,
			"rts-pin":      &c.RTSPin,
			"cts-pin":      &c.CTSPin,
			"reset-pin":    &c.ResetPin,
			"rate-per-min": &c.RatePerMin,
			"max-retries":  &c.MaxRetries,
		}[name]
		if dst != nil {
			*dst = v
			return nil
		}
	case bool:
		if name == "flow-control" {
			c.FlowControl = v
			return nil
		}
	case time.Duration:
		if name == "inbox-poll" {
			c.InboxPoll = v
			return nil
		}
	}
	return fmt.Errorf("unhandled flag %q", name)
}

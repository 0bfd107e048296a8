package modem

import (
	"log/slog"
	"time"
)

// Config carries everything a radio session needs besides its transport.
// Build one with NewConfigBuilder.
type Config struct {
	Dialer Dialer
	Logger *slog.Logger

	// PollSlice overrides the dialect's receive poll interval for command
	// exchanges.
	PollSlice time.Duration

	// InitTimeout bounds the basic "is anybody there" test at start-up.
	InitTimeout time.Duration
	// RegistrationTimeout bounds each of the registration and signal waits
	// before a cellular connect.
	RegistrationTimeout time.Duration
	ConnectTimeout      time.Duration
	OpenTimeout         time.Duration

	// GuardTime is the silence the WiFi module needs around "$$$".
	GuardTime         time.Duration
	// ModeSwitchTimeout bounds entering and leaving the WiFi command mode.
	ModeSwitchTimeout time.Duration
	// CloseWait is the per-read timeout while draining a closing socket.
	CloseWait         time.Duration

	// Poll paces retry loops (radio test, registration, signal).
	Poll PollConfig

	// MaxRetries bounds retried configuration commands.
	MaxRetries int

	// OnStateChange, when set, observes every session state transition.
	OnStateChange func(from, to State)
}

// PollConfig defines how a condition is polled.
type PollConfig struct {
	// Interval is the time between polling attempts
	Interval time.Duration
	// Timeout is the maximum time to wait for the condition
	Timeout time.Duration
	// MaxRetries is the maximum number of polling attempts
	MaxRetries int
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.InitTimeout == 0 {
		c.InitTimeout = 15 * time.Second
	}
	if c.RegistrationTimeout == 0 {
		c.RegistrationTimeout = 30 * time.Second
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 120 * time.Second
	}
	if c.OpenTimeout == 0 {
		c.OpenTimeout = 30 * time.Second
	}
	if c.GuardTime == 0 {
		c.GuardTime = 500 * time.Millisecond
	}
	if c.ModeSwitchTimeout == 0 {
		c.ModeSwitchTimeout = 2 * time.Second
	}
	if c.CloseWait == 0 {
		c.CloseWait = time.Second
	}
	if c.Poll.Interval == 0 {
		c.Poll.Interval = time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
}

// ConfigBuilder assembles a validated Config.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

func (b *ConfigBuilder) WithPollSlice(d time.Duration) *ConfigBuilder {
	b.config.PollSlice = d
	return b
}

func (b *ConfigBuilder) WithInitTimeout(d time.Duration) *ConfigBuilder {
	b.config.InitTimeout = d
	return b
}

func (b *ConfigBuilder) WithRegistrationTimeout(d time.Duration) *ConfigBuilder {
	b.config.RegistrationTimeout = d
	return b
}

func (b *ConfigBuilder) WithConnectTimeout(d time.Duration) *ConfigBuilder {
	b.config.ConnectTimeout = d
	return b
}

func (b *ConfigBuilder) WithOpenTimeout(d time.Duration) *ConfigBuilder {
	b.config.OpenTimeout = d
	return b
}

func (b *ConfigBuilder) WithGuardTime(d time.Duration) *ConfigBuilder {
	b.config.GuardTime = d
	return b
}

func (b *ConfigBuilder) WithModeSwitchTimeout(d time.Duration) *ConfigBuilder {
	b.config.ModeSwitchTimeout = d
	return b
}

func (b *ConfigBuilder) WithCloseWait(d time.Duration) *ConfigBuilder {
	b.config.CloseWait = d
	return b
}

func (b *ConfigBuilder) WithPoll(p PollConfig) *ConfigBuilder {
	b.config.Poll = p
	return b
}

func (b *ConfigBuilder) WithMaxRetries(n int) *ConfigBuilder {
	b.config.MaxRetries = n
	return b
}

// WithStateHook installs fn as Config.OnStateChange.
func (b *ConfigBuilder) WithStateHook(fn func(from, to State)) *ConfigBuilder {
	b.config.OnStateChange = fn
	return b
}

// Build validates the configuration and fills in defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	return c, nil
}

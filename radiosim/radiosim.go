// Package radiosim simulates the consoles of the cellular socket modem and
// the WiFi module closely enough to drive a full session against them:
// command replies, data mode with an echoing peer, and SMS storage.
package radiosim

import (
	"log/slog"
	"strings"
	"sync"

	"i4.energy/across/socketmodem/at"
	"i4.energy/across/socketmodem/dle"
	"i4.energy/across/socketmodem/serialio"
)

// Message is a stored or sent SMS.
type Message struct {
	Number string
	Body   string
	Time   string
	read   bool
}

// Radio is a simulated radio. Bytes written by the host go to Receive and
// replies leave through the output function. It is safe for concurrent
// use.
type Radio struct {
	mu       sync.Mutex
	cellular bool
	out      func(p []byte)
	logger   *slog.Logger

	line      []byte
	commands  []string
	overrides map[string]string
	payload   []byte

	// cellular
	echo         bool
	apn          string
	signal       int
	registration int
	address      string
	connected    bool
	dataMode     bool
	decoder      dle.Decoder
	smsTo        string
	smsBody      []byte
	inSMS        bool
	inbox        []Message
	sent         []Message

	// wifi
	cmdMode    bool
	dollars    int
	ssid       string
	associated bool
	socketOpen bool
	host       string
	hosts      map[string]string
	rssi       int

	opens int
}

// Option configures a Radio.
type Option func(*Radio)

func WithLogger(l *slog.Logger) Option {
	return func(r *Radio) {
		r.logger = l
	}
}

// WithSignal sets the signal strength reported by the radio.
func WithSignal(v int) Option {
	return func(r *Radio) {
		r.signal = v
		r.rssi = v
	}
}

// WithAddress sets the address handed out on connect.
func WithAddress(ip string) Option {
	return func(r *Radio) {
		r.address = ip
	}
}

// New returns a radio speaking the given dialect.
func New(dialect at.Dialect, opts ...Option) *Radio {
	r := &Radio{
		cellular:     dialect.Name == at.CellularDialect.Name,
		overrides:    make(map[string]string),
		hosts:        make(map[string]string),
		signal:       17,
		rssi:         -52,
		registration: 1,
		out:          func([]byte) {},
	}
	if r.cellular {
		r.address = "10.0.0.7"
	} else {
		r.address = "192.168.1.50"
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	r.logger = r.logger.With("component", "radiosim", "dialect", dialect.Name)
	return r
}

// Attach connects the radio to the far side of a loopback line.
func (r *Radio) Attach(lb *serialio.Loopback) {
	lb.SetPeer(r.Receive)
	r.SetOutput(lb.Inject)
}

// SetOutput installs fn to carry replies to the host. fn is never called
// with the radio's lock held.
func (r *Radio) SetOutput(fn func(p []byte)) {
	r.mu.Lock()
	r.out = fn
	r.mu.Unlock()
}

// SetResponse makes the radio answer command with reply instead of its
// usual answer. An empty reply restores the default.
func (r *Radio) SetResponse(command, reply string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reply == "" {
		delete(r.overrides, command)
		return
	}
	r.overrides[command] = reply
}

// SetRegistration sets the +CREG status the radio reports.
func (r *Radio) SetRegistration(v int) {
	r.mu.Lock()
	r.registration = v
	r.mu.Unlock()
}

// AddHost makes lookup resolve name to ip.
func (r *Radio) AddHost(name, ip string) {
	r.mu.Lock()
	r.hosts[name] = ip
	r.mu.Unlock()
}

// AddSMS stores a received message.
func (r *Radio) AddSMS(number, body, timestamp string) {
	r.mu.Lock()
	r.inbox = append(r.inbox, Message{Number: number, Body: body, Time: timestamp})
	r.mu.Unlock()
}

// Inbox returns the stored messages.
func (r *Radio) Inbox() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.inbox...)
}

// Sent returns every message sent through AT+CMGS.
func (r *Radio) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

// Commands returns every command line received, oldest first.
func (r *Radio) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

// Count returns how many times command was received.
func (r *Radio) Count(command string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.commands {
		if c == command {
			n++
		}
	}
	return n
}

// Opens returns how many sockets have been opened.
func (r *Radio) Opens() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opens
}

// Payload returns the unescaped socket payload received so far.
func (r *Radio) Payload() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.payload...)
}

// SocketOpen reports whether the radio is in data mode.
func (r *Radio) SocketOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cellular {
		return r.dataMode
	}
	return r.socketOpen
}

// Send delivers p from the remote peer. The cellular radio escapes it.
func (r *Radio) Send(p []byte) {
	r.mu.Lock()
	out := r.out
	if r.cellular {
		p = dle.Append(nil, p)
	}
	r.mu.Unlock()
	out(p)
}

// SendRaw delivers p to the host exactly as given.
func (r *Radio) SendRaw(p []byte) {
	r.mu.Lock()
	out := r.out
	r.mu.Unlock()
	out(p)
}

// CloseRemote closes the socket from the remote side.
func (r *Radio) CloseRemote() {
	r.mu.Lock()
	var msg []byte
	if r.cellular {
		if r.dataMode {
			r.dataMode = false
			msg = []byte(at.CRLF + at.InfoSocketClosed + at.CRLF)
		}
	} else if r.socketOpen {
		r.socketOpen = false
		msg = []byte("*CLOS*")
	}
	out := r.out
	r.mu.Unlock()
	if msg != nil {
		out(msg)
	}
}

// Receive handles bytes written by the host.
func (r *Radio) Receive(p []byte) {
	r.mu.Lock()
	var replies [][]byte
	emit := func(s string) {
		if s != "" {
			replies = append(replies, []byte(s))
		}
	}
	if r.cellular {
		r.receiveCellular(p, emit)
	} else {
		r.receiveWifi(p, emit)
	}
	out := r.out
	r.mu.Unlock()

	for _, reply := range replies {
		out(reply)
	}
}

func (r *Radio) command(emit func(string), handle func(cmd string) string) {
	cmd := strings.TrimLeft(string(r.line), "\n")
	r.line = r.line[:0]
	r.commands = append(r.commands, cmd)
	r.logger.Debug("Command", "command", cmd)
	if reply, ok := r.overrides[cmd]; ok {
		emit(reply)
		return
	}
	emit(handle(cmd))
}

func quoted(s string) string {
	return strings.Trim(s, `"`)
}

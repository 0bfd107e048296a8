package modem

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"i4.energy/across/socketmodem/at"
	"i4.energy/across/socketmodem/dle"
)

const (
	pingDelay = 3 // seconds per ping attempt
	pingCount = 4

	// noSignal is the signal strength the radio reports without coverage.
	noSignal = 99
)

// Registration is the radio's network registration status.
type Registration int

const (
	NotRegistered Registration = iota
	Registered
	Searching
	Denied
	RegistrationUnknown
	Roaming
)

func (r Registration) String() string {
	switch r {
	case NotRegistered:
		return "NOT_REGISTERED"
	case Registered:
		return "REGISTERED"
	case Searching:
		return "SEARCHING"
	case Denied:
		return "DENIED"
	case RegistrationUnknown:
		return "UNKNOWN"
	case Roaming:
		return "ROAMING"
	default:
		return fmt.Sprintf("Registration(%d)", int(r))
	}
}

// Cellular drives a cellular socket modem. While a socket is open the line
// carries payload, and DLE/ETX in-band escaping lets either side close the
// socket without leaving data mode.
type Cellular struct {
	session

	apn          string
	connected    bool
	closeable    bool
	localPort    int
	localAddress string
	hostAddress  string
	hostPort     int
	mode         Mode
	decoder      dle.Decoder

	// pending holds decoded bytes not yet handed to Read. While the socket
	// is open its tail may be the start of the closed notice.
	pending    []byte
	scratch    []byte
	// noticeSeen is set once the closed notice matched; the line break
	// following it is not payload.
	noticeSeen bool
}

// NewCellular returns an uninitialized cellular session.
func NewCellular(cfg Config) *Cellular {
	return &Cellular{
		session:   newSession(cfg, at.CellularDialect),
		closeable: true,
	}
}

// Init dials the radio and waits for it to answer.
func (c *Cellular) Init(ctx context.Context) error {
	if err := c.dial(ctx); err != nil {
		return err
	}
	if c.Test(ctx) != at.Success {
		return ErrNoResponse
	}
	c.setState(Idle)
	return nil
}

// Shutdown releases the transport. The session can be initialized again.
func (c *Cellular) Shutdown() error {
	c.connected = false
	return c.shutdown()
}

// SendCommand sends text and esc and returns the raw reply. It refuses
// while a socket is open because the line is in data mode.
func (c *Cellular) SendCommand(ctx context.Context, text string, timeout time.Duration, expect string, esc byte) string {
	if c.socketOpen {
		c.logger.Error("Socket is open, cannot send commands", "command", text)
		return ""
	}
	return c.exchange(ctx, text, timeout, expect, esc)
}

// SendBasicCommand sends text and classifies the reply by OK / ERROR.
func (c *Cellular) SendBasicCommand(ctx context.Context, text string, timeout time.Duration, esc byte) at.Code {
	if c.socketOpen {
		c.logger.Error("Socket is open, cannot send commands", "command", text)
		return at.Error
	}
	return c.dialect.Classify(c.exchange(ctx, text, timeout, "", esc))
}

func (c *Cellular) command(ctx context.Context, text string, timeout time.Duration) string {
	return c.SendCommand(ctx, text, timeout, "", at.CR)
}

func (c *Cellular) basicCommand(ctx context.Context, text string, timeout time.Duration) at.Code {
	return c.SendBasicCommand(ctx, text, timeout, at.CR)
}

// Test repeats the basic attention command until the radio answers or the
// init timeout passes.
func (c *Cellular) Test(ctx context.Context) at.Code {
	deadline := time.Now().Add(c.cfg.InitTimeout)
	for {
		c.logger.Debug("Attempting basic radio communication")
		if c.basicCommand(ctx, at.CmdTest, time.Second) == at.Success {
			return at.Success
		}
		if !time.Now().Before(deadline) || !sleep(ctx, c.cfg.Poll.Interval) {
			break
		}
	}
	c.logger.Error("Unable to communicate with the radio")
	return at.Failure
}

func (c *Cellular) Connect(ctx context.Context) bool {
	if c.socketOpen {
		return true
	}
	if c.IsConnected(ctx) {
		return true
	}
	c.setState(Connecting)

	c.waitFor(ctx, "registration", func() bool {
		reg := c.Registration(ctx)
		if reg != Registered {
			c.logger.Warn("Not registered, waiting", "registration", reg)
			return false
		}
		return true
	})
	c.waitFor(ctx, "signal", func() bool {
		rssi := c.SignalStrength(ctx)
		c.logger.Debug("Signal strength", "rssi", rssi)
		if rssi == noSignal {
			c.logger.Warn("No signal, waiting")
			return false
		}
		return true
	})

	c.logger.Debug("Starting PPP connection", "apn", c.apn)
	resp := c.command(ctx, at.CmdConnectionStart, c.cfg.ConnectTimeout)
	if !strings.Contains(resp, at.InfoGprsActivation) {
		c.logger.Warn("PPP connection failed", "response", resp)
		c.connected = false
		c.setState(Idle)
		return false
	}

	lines := at.Lines(resp)
	for i, line := range lines {
		if line == at.InfoGprsActivation && i+1 < len(lines) {
			c.localAddress = lines[i+1]
		}
	}
	c.logger.Info("PPP connection established", "ip", c.localAddress)
	c.connected = true
	c.setState(Connected)
	return true
}

// waitFor polls cond once per poll interval for at most the registration
// timeout.
func (c *Cellular) waitFor(ctx context.Context, what string, cond func() bool) bool {
	deadline := time.Now().Add(c.cfg.RegistrationTimeout)
	for {
		if cond() {
			return true
		}
		if !time.Now().Before(deadline) || !sleep(ctx, c.cfg.Poll.Interval) {
			c.logger.Warn("Gave up waiting", "condition", what)
			return false
		}
	}
}

func (c *Cellular) Disconnect(ctx context.Context) {
	c.logger.Debug("Closing PPP connection")
	if c.socketOpen {
		c.Close(ctx)
	}
	if code := c.basicCommand(ctx, at.CmdConnectionStop, 10*time.Second); code != at.Success {
		c.logger.Error("Closing PPP connection failed, continuing", "code", code)
	} else {
		c.logger.Debug("PPP connection closed")
	}
	c.connected = false
	if c.io != nil {
		c.setState(Idle)
	}
}

// IsConnected asks the radio for its PPP state. It needs an APN and
// reports true without asking while a socket is open.
func (c *Cellular) IsConnected(ctx context.Context) bool {
	if c.apn == "" {
		c.logger.Debug("APN is not set")
		return false
	}
	if c.socketOpen {
		return true
	}

	resp := c.command(ctx, at.CmdVState, 3*time.Second)
	i := strings.Index(resp, at.StatePrefix)
	if i < 0 {
		if c.connected {
			c.logger.Error("Unable to parse radio state", "response", resp)
		}
		c.connected = false
		c.syncConnected()
		return false
	}

	state, _ := at.GetLine(resp, i+len(at.StatePrefix))
	state = strings.TrimSpace(state)
	switch {
	case state == at.StateConnected:
		if !c.connected {
			c.logger.Warn("Tracked PPP state differs from radio", "tracked", "DISCONNECTED", "radio", state)
		}
		c.connected = true
	case c.connected:
		c.logger.Warn("Tracked PPP state differs from radio", "tracked", "CONNECTED", "radio", state)
		c.connected = false
	}
	c.syncConnected()
	return c.connected
}

func (c *Cellular) syncConnected() {
	switch {
	case c.connected && c.state == Idle:
		c.setState(Connected)
	case !c.connected && c.state == Connected:
		c.setState(Idle)
	}
}

func (c *Cellular) Bind(port int) bool {
	if c.socketOpen {
		c.logger.Error("Socket is open, cannot set local port")
		return false
	}
	if !validPort(port) {
		c.logger.Error("Port out of range", "port", port)
		return false
	}
	c.localPort = port
	return true
}

// Open opens a socket to address:port. Opening the socket that is already
// open succeeds without talking to the radio; any other socket fails while
// one is open. The radio resolves host names itself.
func (c *Cellular) Open(ctx context.Context, address string, port int, mode Mode) bool {
	if c.socketOpen {
		if c.hostAddress != address || c.hostPort != port || c.mode != mode {
			c.logger.Error("Socket already open",
				"mode", c.mode, "address", c.hostAddress, "port", c.hostPort)
			return false
		}
		c.logger.Debug("Socket already open")
		return true
	}

	if !validPort(port) {
		c.logger.Error("Port out of range", "port", port)
		return false
	}
	if address == "" || len(address) > MaxHostLen {
		c.logger.Error("Invalid host address", "length", len(address))
		return false
	}

	if !c.IsConnected(ctx) {
		c.logger.Warn("PPP not established, attempting to connect")
		if !c.Connect(ctx) {
			c.logger.Error("PPP connection failed")
			return false
		}
	}
	c.setState(SocketOpening)

	if c.localPort != 0 {
		if code := c.basicCommand(ctx, fmt.Sprintf(at.CmdOutPort, c.localPort), time.Second); code != at.Success {
			c.logger.Warn("Unable to set local port", "port", c.localPort, "code", code)
		}
	}

	var portCode, addressCode at.Code
	openCmd := at.CmdOpenTCP
	if mode == TCP {
		if c.closeable {
			if code := c.basicCommand(ctx, at.CmdDLEMode, time.Second); code != at.Success {
				c.logger.Warn("Unable to make socket closeable", "code", code)
			}
		}
		portCode = c.basicCommand(ctx, fmt.Sprintf(at.CmdTCPPort, port), time.Second)
		addressCode = c.basicCommand(ctx, fmt.Sprintf(at.CmdTCPServ, address), time.Second)
	} else {
		if c.closeable {
			if code := c.basicCommand(ctx, at.CmdUDPDLEMode, time.Second); code != at.Success {
				c.logger.Warn("Unable to make socket closeable", "code", code)
			}
		}
		portCode = c.basicCommand(ctx, fmt.Sprintf(at.CmdUDPPort, port), time.Second)
		addressCode = c.basicCommand(ctx, fmt.Sprintf(at.CmdUDPServ, address), time.Second)
		openCmd = at.CmdOpenUDP
	}

	if portCode != at.Success {
		c.logger.Error("Host port could not be set", "code", portCode)
	}
	if addressCode != at.Success {
		c.logger.Error("Host address could not be set", "code", addressCode)
	}

	resp := c.SendCommand(ctx, openCmd, c.cfg.OpenTimeout, at.InfoWaitingForData, at.CR)
	if !strings.Contains(resp, at.InfoWaitingForData) {
		c.logger.Warn("Unable to open socket", "mode", mode, "address", address, "port", port)
		c.setState(Connected)
		return false
	}

	c.logger.Info("Opened socket", "mode", mode, "address", address, "port", port)
	c.mode = mode
	c.hostAddress = address
	c.hostPort = port
	c.socketOpen = true
	c.decoder.Reset()
	c.pending = c.pending[:0]
	c.noticeSeen = false
	c.setState(SocketOpen)
	return true
}

// IsOpen reports an open socket. Pending received bytes count as open.
func (c *Cellular) IsOpen(ctx context.Context) bool {
	if c.io != nil && (c.io.Readable() > 0 || len(c.pending) > 0) {
		c.logger.Debug("Assuming open, data available to read")
		return true
	}
	return c.socketOpen
}

// Close ends the socket by sending an unescaped ETX and draining until the
// radio confirms.
func (c *Cellular) Close(ctx context.Context) bool {
	if c.io == nil {
		c.logger.Error("Transport not set")
		return false
	}
	if !c.socketOpen {
		c.logger.Warn("Close called, but socket was not open")
		return true
	}
	if !c.closeable {
		c.logger.Error("Socket is not closeable")
		return false
	}

	c.setState(Closing)
	if c.io.WriteByteTimeout(dle.ETX, time.Second) != 1 {
		c.logger.Error("Timed out closing socket")
		c.setState(SocketOpen)
		return false
	}

	tmp := make([]byte, 256)
	for range 10 {
		if !c.socketOpen || ctx.Err() != nil {
			break
		}
		c.Read(tmp, c.cfg.CloseWait)
	}

	c.io.RxClear()
	c.io.TxClear()
	c.socketOpen = false
	c.decoder.Reset()
	c.pending = c.pending[:0]
	c.noticeSeen = false
	c.setState(Connected)
	return true
}

// Read reads socket payload into p. Escapes are removed; an unescaped ETX
// or the radio's socket-closed notice marks the socket closed and cuts the
// data there. The notice may arrive split over several reads, so while the
// socket is open trailing bytes that could start it are held back until the
// next read settles them.
func (c *Cellular) Read(p []byte, timeout time.Duration) int {
	if c.io == nil {
		c.logger.Error("Transport not set")
		return -1
	}
	if !c.socketOpen && len(c.pending) == 0 && c.io.Readable() == 0 {
		c.logger.Error("Socket is not open")
		return -1
	}

	if want := len(p) - c.deliverable(); want > 0 {
		if cap(c.scratch) < want {
			c.scratch = make([]byte, want)
		}
		buf := c.scratch[:want]
		n := c.io.ReadTimeout(buf, timeout)

		if n > 0 && c.closeable {
			var closed bool
			n, closed = c.decoder.Decode(buf[:n], buf[:n])
			if closed && c.socketOpen {
				c.logger.Info("Read unescaped ETX, socket closed")
				c.socketOpen = false
			}
		}
		data := buf[:n]
		if c.noticeSeen && !c.socketOpen {
			data = bytes.TrimLeft(data, at.CRLF)
			if len(data) > 0 {
				c.noticeSeen = false
			}
		}
		c.pending = append(c.pending, data...)
		c.matchClosedNotice()
	}

	n := copy(p, c.pending[:c.deliverable()])
	c.pending = c.pending[:copy(c.pending, c.pending[n:])]

	if !c.socketOpen && c.state == SocketOpen {
		c.setState(Connected)
	}
	return n
}

// closedNotice is the line the radio emits in data mode when the peer
// closes the socket.
var closedNotice = []byte(at.CRLF + at.InfoSocketClosed)

// matchClosedNotice closes the socket when pending contains the notice and
// drops the notice with everything after it.
func (c *Cellular) matchClosedNotice() {
	i := bytes.Index(c.pending, []byte(at.InfoSocketClosed))
	if i < 0 {
		return
	}
	c.logger.Info("Found socket closed message, socket closed")
	c.socketOpen = false
	c.noticeSeen = true
	c.pending = bytes.TrimSuffix(c.pending[:i], []byte(at.CRLF))
}

// deliverable returns how many pending bytes Read may hand out. While the
// socket is open the longest tail that is a prefix of the notice is kept;
// the radio always starts the notice on a new line.
func (c *Cellular) deliverable() int {
	if !c.socketOpen {
		return len(c.pending)
	}
	return len(c.pending) - heldPrefix(c.pending, closedNotice)
}

// heldPrefix returns the length of the longest proper prefix of marker
// that data ends with.
func heldPrefix(data, marker []byte) int {
	for k := min(len(data), len(marker)-1); k > 0; k-- {
		if bytes.HasSuffix(data, marker[:k]) {
			return k
		}
	}
	return 0
}

// Write sends p as socket payload and returns how many payload bytes went
// out. DLE and ETX are escaped and an escape pair is never split: when the
// timeout cuts between the two halves the second one is sent anyway.
func (c *Cellular) Write(p []byte, timeout time.Duration) int {
	if c.io == nil {
		c.logger.Error("Transport not set")
		return -1
	}
	if !c.socketOpen {
		c.logger.Error("Socket is not open")
		return -1
	}

	if !c.closeable {
		if timeout < 0 {
			n, _ := c.io.Write(p)
			return n
		}
		return c.io.WriteTimeout(p, timeout)
	}

	enc := dle.Append(make([]byte, 0, dle.EncodedLen(p)), p)
	var sent int
	if timeout < 0 {
		sent, _ = c.io.Write(enc)
	} else {
		sent = c.io.WriteTimeout(enc, timeout)
	}

	n, split := payloadSent(enc[:sent])
	if split {
		if _, err := c.io.Write(enc[sent : sent+1]); err == nil {
			n++
		}
	}
	return n
}

// payloadSent counts the payload bytes in a prefix of an escaped stream
// and reports whether the prefix ends inside an escape pair.
func payloadSent(enc []byte) (n int, split bool) {
	for i := 0; i < len(enc); i++ {
		if enc[i] == dle.DLE {
			if i+1 == len(enc) {
				return n, true
			}
			i++
		}
		n++
	}
	return n, false
}

// Readable returns the received bytes waiting, or 0 without a socket.
func (c *Cellular) Readable() int {
	if c.io == nil {
		return 0
	}
	if !c.socketOpen && len(c.pending) == 0 && c.io.Readable() == 0 {
		return 0
	}
	return c.io.Readable() + c.deliverable()
}

func (c *Cellular) Writeable() int {
	if c.io == nil || !c.socketOpen {
		return 0
	}
	return c.io.Writeable()
}

// Reset disconnects and restarts the radio. It takes about 30 seconds to
// come back.
func (c *Cellular) Reset(ctx context.Context) {
	c.Disconnect(ctx)
	if code := c.basicCommand(ctx, at.CmdReset, 10*time.Second); code != at.Success {
		c.logger.Error("Radio did not accept reset", "code", code)
		return
	}
	c.logger.Warn("Radio is resetting, allow 30 seconds for it to come back")
}

// DeviceIP returns the address assigned by the last successful connect.
func (c *Cellular) DeviceIP() string {
	return c.localAddress
}

// APN returns the access point name set with SetAPN.
func (c *Cellular) APN() string {
	return c.apn
}

// Echo turns the radio's command echo on or off.
func (c *Cellular) Echo(ctx context.Context, on bool) at.Code {
	cmd := at.CmdEchoOff
	if on {
		cmd = at.CmdEchoOn
	}
	code := c.basicCommand(ctx, cmd, time.Second)
	if code == at.Success {
		c.echo = on
	}
	return code
}

// SignalStrength returns the RSSI index from AT+CSQ (99 means no signal)
// or -1 when the radio gives no usable answer.
func (c *Cellular) SignalStrength(ctx context.Context) int {
	resp := c.command(ctx, at.CmdSignal, time.Second)
	if !strings.Contains(resp, at.OK) {
		return -1
	}
	start := strings.IndexByte(resp, ':')
	if start < 0 {
		return -1
	}
	stop := strings.IndexByte(resp[start:], ',')
	if stop < 0 {
		return -1
	}
	v, err := strconv.Atoi(strings.TrimSpace(resp[start+1 : start+stop]))
	if err != nil {
		return -1
	}
	return v
}

func (c *Cellular) Registration(ctx context.Context) Registration {
	resp := c.command(ctx, at.CmdRegistration, 5*time.Second)
	if !strings.Contains(resp, at.OK) {
		return RegistrationUnknown
	}
	i := strings.IndexByte(resp, ',')
	if i < 0 {
		return RegistrationUnknown
	}
	digits := resp[i+1:]
	end := strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		digits = digits[:end]
	}
	v, err := strconv.Atoi(digits)
	if err != nil || v < int(NotRegistered) || v > int(Roaming) {
		return RegistrationUnknown
	}
	return Registration(v)
}

// SetAPN configures the access point name. It is remembered only when the
// radio accepts it.
func (c *Cellular) SetAPN(ctx context.Context, apn string) at.Code {
	code := c.basicCommand(ctx, fmt.Sprintf(at.CmdAPN, apn), time.Second)
	if code == at.Success {
		c.apn = apn
	}
	return code
}

func (c *Cellular) SetDNS(ctx context.Context, primary, secondary string) at.Code {
	return c.basicCommand(ctx, fmt.Sprintf(at.CmdDNS, primary, secondary), time.Second)
}

// Ping asks the radio to ping address, trying up to four times.
func (c *Cellular) Ping(ctx context.Context, address string) bool {
	for _, cmd := range []string{
		fmt.Sprintf(at.CmdPingRemote, address),
		fmt.Sprintf(at.CmdPingNum, 1),
		fmt.Sprintf(at.CmdPingDelay, pingDelay),
	} {
		if c.basicCommand(ctx, cmd, time.Second) != at.Success {
			return false
		}
	}
	for range pingCount {
		resp := c.SendCommand(ctx, at.CmdPing, pingDelay*time.Second, at.PingAlive, at.CR)
		if strings.Contains(resp, at.PingAlive) {
			return true
		}
		if ctx.Err() != nil {
			break
		}
	}
	return false
}

// SetSocketCloseable selects whether sockets use in-band DLE/ETX closing.
// It cannot change while a socket is open.
func (c *Cellular) SetSocketCloseable(enabled bool) at.Code {
	if c.closeable == enabled {
		return at.Success
	}
	if c.socketOpen {
		c.logger.Error("Socket is open, cannot change closeable")
		return at.Error
	}
	c.closeable = enabled
	return at.Success
}

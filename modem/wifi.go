package modem

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"i4.energy/across/socketmodem/at"
)

// SecurityType is a WiFi network's security scheme.
type SecurityType int

const (
	SecurityNone SecurityType = iota
	WEP64
	WEP128
	WPA
	WPA2
)

func (s SecurityType) String() string {
	switch s {
	case SecurityNone:
		return "NONE"
	case WEP64:
		return "WEP64"
	case WEP128:
		return "WEP128"
	case WPA:
		return "WPA"
	case WPA2:
		return "WPA2"
	default:
		return fmt.Sprintf("SecurityType(%d)", int(s))
	}
}

// ParseSecurity maps a name printed by SecurityType.String back to the
// type, ignoring case.
func ParseSecurity(name string) (SecurityType, error) {
	for s := SecurityNone; s <= WPA2; s++ {
		if strings.EqualFold(name, s.String()) {
			return s, nil
		}
	}
	return SecurityNone, fmt.Errorf("unknown security type %q", name)
}

// Wifi drives a WiFi module with a "set/show/join" console. The console and
// the socket share the line: "$$$" switches to command mode and "exit"
// back to data.
type Wifi struct {
	session

	ssid         string
	connected    bool
	cmdOn        bool
	localPort    int
	localAddress string
	// hostName is what Open was called with, hostAddress what it resolved
	// to.
	hostName    string
	hostAddress string
	hostPort    int
	mode        Mode
}

// NewWifi returns an uninitialized WiFi session.
func NewWifi(cfg Config) *Wifi {
	return &Wifi{session: newSession(cfg, at.WifiDialect)}
}

// Init dials the module, restores factory settings and configures it for
// manual joins with DHCP.
func (w *Wifi) Init(ctx context.Context) error {
	if err := w.dial(ctx); err != nil {
		return err
	}

	w.Reset(ctx)

	if !w.sortInterfaceMode(ctx) {
		return ErrNoResponse
	}

	// The module does not always take the first one.
	for range 2 {
		if err := w.retry(ctx, at.WifiCmdUARTMode); err != nil {
			return err
		}
	}

	for _, cmd := range []string{
		at.WifiCmdJoinMode,
		at.WifiCmdChannel,
		at.WifiCmdCommRemote,
		at.WifiCmdDHCP,
	} {
		if code := w.basicCommand(ctx, cmd, time.Second); code != at.Success {
			return fmt.Errorf("%w: %q: %s", ErrCommandFailed, cmd, code)
		}
	}
	w.setState(Idle)
	return nil
}

func (w *Wifi) retry(ctx context.Context, cmd string) error {
	var code at.Code
	for range w.cfg.MaxRetries {
		if code = w.basicCommand(ctx, cmd, time.Second); code == at.Success {
			return nil
		}
		w.logger.Error("Command failed, retrying", "command", cmd, "code", code)
	}
	return fmt.Errorf("%w: %q: %s", ErrCommandFailed, cmd, code)
}

// Shutdown releases the transport.
func (w *Wifi) Shutdown() error {
	w.connected = false
	w.cmdOn = false
	return w.shutdown()
}

// SendCommand sends text and esc and returns the reply, stopping early
// when expect appears.
func (w *Wifi) SendCommand(ctx context.Context, text string, timeout time.Duration, expect string, esc byte) string {
	return w.exchange(ctx, text, timeout, expect, esc)
}

// SendBasicCommand sends text and classifies the reply by AOK / ERR.
func (w *Wifi) SendBasicCommand(ctx context.Context, text string, timeout time.Duration, esc byte) at.Code {
	if w.socketOpen {
		w.logger.Error("Socket is open, cannot send commands", "command", text)
		return at.Error
	}
	return w.dialect.Classify(w.exchange(ctx, text, timeout, at.AOK, esc))
}

func (w *Wifi) basicCommand(ctx context.Context, text string, timeout time.Duration) at.Code {
	return w.SendBasicCommand(ctx, text, timeout, at.CR)
}

// sortInterfaceMode finds out whether the module is already in command
// mode and makes sure it ends up there.
func (w *Wifi) sortInterfaceMode(ctx context.Context) bool {
	resp := w.SendCommand(ctx, "", time.Second, at.WifiCommandPrompt, at.CR)
	if strings.Contains(resp, at.WifiCommandPrompt) {
		w.cmdOn = true
	}
	return w.setCmdMode(ctx, true)
}

func (w *Wifi) setCmdMode(ctx context.Context, on bool) bool {
	if on {
		if w.cmdOn {
			return true
		}
		sleep(ctx, w.cfg.GuardTime)
		resp := w.SendCommand(ctx, at.WifiCmdEnter, w.cfg.ModeSwitchTimeout, at.WifiCmdMode, '$')
		if strings.Contains(resp, at.WifiCmdMode) {
			w.cmdOn = true
			sleep(ctx, w.cfg.GuardTime)
			return true
		}
		w.logger.Error("Failed to enter command mode")
		return false
	}

	if !w.cmdOn {
		return true
	}
	resp := w.SendCommand(ctx, at.WifiCmdExit, w.cfg.ModeSwitchTimeout, at.WifiExitMode, at.CR)
	if strings.Contains(resp, at.WifiExitMode) {
		w.cmdOn = false
		return true
	}
	w.logger.Error("Failed to exit command mode")
	return false
}

// leaveCmdMode returns to data mode for Read and Write, which take no
// context. The switch is bounded by ModeSwitchTimeout instead.
func (w *Wifi) leaveCmdMode() bool {
	if !w.cmdOn {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.ModeSwitchTimeout)
	defer cancel()
	return w.setCmdMode(ctx, false)
}

func (w *Wifi) Connect(ctx context.Context) bool {
	if w.socketOpen {
		return true
	}
	if w.IsConnected(ctx) {
		return true
	}
	if w.ssid == "" {
		w.logger.Error("No SSID has been set")
		return false
	}
	if !w.setCmdMode(ctx, true) {
		return false
	}

	w.setState(Connecting)
	w.logger.Debug("Joining network", "ssid", w.ssid)
	resp := w.SendCommand(ctx, fmt.Sprintf(at.WifiCmdJoin, w.ssid), 15*time.Second, at.WifiGateway, at.CR)
	if !strings.Contains(resp, at.WifiAssociated) {
		w.logger.Warn("Join failed", "ssid", w.ssid, "response", resp)
		w.connected = false
		w.setState(Idle)
		return false
	}

	if !strings.Contains(resp, at.WifiStatic) {
		if start := strings.Index(resp, at.WifiIP); start >= 0 {
			addr := resp[start+len(at.WifiIP):]
			if stop := strings.IndexByte(addr, ':'); stop >= 0 {
				addr = addr[:stop]
			}
			w.localAddress = addr
		}
	}
	w.connected = true
	w.setState(Connected)
	w.logger.Info("WiFi connection established", "ip", w.localAddress)

	// The module only reports RSSI once it has settled.
	sleep(ctx, w.cfg.GuardTime)
	w.logger.Debug("Signal strength", "dbm", w.SignalStrength(ctx))
	return true
}

func (w *Wifi) Disconnect(ctx context.Context) {
	w.logger.Debug("Disconnecting from network")
	if w.socketOpen {
		w.Close(ctx)
	}
	if !w.setCmdMode(ctx, true) {
		w.logger.Error("Failed to disconnect from network, continuing")
	}

	w.SendCommand(ctx, at.WifiCmdLeave, 10*time.Second, at.WifiVersion, at.CR)
	resp := w.SendCommand(ctx, at.WifiCmdShowNet, 5*time.Second, at.WifiLinks, at.CR)
	if strings.Contains(resp, at.WifiAssocFail) {
		w.logger.Debug("Disconnected from network")
	} else {
		w.logger.Error("Failed to disconnect from network, continuing")
	}
	w.connected = false
	if w.io != nil {
		w.setState(Idle)
	}
}

// IsConnected asks the module whether it is associated. It needs an SSID
// and reports true without asking while a socket is open.
func (w *Wifi) IsConnected(ctx context.Context) bool {
	if w.ssid == "" {
		w.logger.Debug("SSID is not set")
		return false
	}
	if w.IsOpen(ctx) {
		return true
	}
	if !w.setCmdMode(ctx, true) {
		return false
	}

	resp := w.SendCommand(ctx, at.WifiCmdShowNet, 5*time.Second, at.WifiLinks, at.CR)
	w.connected = strings.Contains(resp, at.WifiAssocOK)
	switch {
	case w.connected && w.state == Idle:
		w.setState(Connected)
	case !w.connected && w.state == Connected:
		w.setState(Idle)
	}
	return w.connected
}

func (w *Wifi) Bind(port int) bool {
	if w.socketOpen {
		w.logger.Error("Socket is open, cannot set local port")
		return false
	}
	if !validPort(port) {
		w.logger.Error("Port out of range", "port", port)
		return false
	}
	w.localPort = port
	return true
}

// Open opens a TCP socket. Names that are not dotted quads are resolved
// by the module first. UDP is not supported.
func (w *Wifi) Open(ctx context.Context, address string, port int, mode Mode) bool {
	if w.socketOpen {
		if w.hostName != address || w.hostPort != port || w.mode != mode {
			w.logger.Error("Socket already open",
				"mode", w.mode, "address", w.hostName, "port", w.hostPort)
			return false
		}
		w.logger.Debug("Socket already open")
		return true
	}

	if !validPort(port) {
		w.logger.Error("Port out of range", "port", port)
		return false
	}
	if address == "" || len(address) > MaxHostLen {
		w.logger.Error("Invalid host address", "length", len(address))
		return false
	}
	if mode != TCP {
		w.logger.Error("Socket mode not supported", "mode", mode)
		return false
	}

	if !w.IsConnected(ctx) {
		w.logger.Warn("WiFi network not connected, attempting to connect")
		if !w.Connect(ctx) {
			w.logger.Error("WiFi network connection failed")
			return false
		}
	}
	if !w.setCmdMode(ctx, true) {
		return false
	}
	w.setState(SocketOpening)
	fail := func(msg string) bool {
		w.logger.Error(msg)
		w.setState(Connected)
		return false
	}

	if w.localPort != 0 {
		if code := w.basicCommand(ctx, fmt.Sprintf(at.WifiCmdLocalPort, w.localPort), time.Second); code != at.Success {
			w.logger.Warn("Unable to set local port, continuing", "port", w.localPort, "code", code)
		}
	}

	if w.basicCommand(ctx, fmt.Sprintf(at.WifiCmdRemotePort, port), time.Second) != at.Success {
		w.logger.Error("Host port could not be set")
	}

	host := address
	if len(at.Split(address, ".", 0)) != 4 {
		host = w.HostByName(ctx, address)
		if host == "" {
			return fail("Host name could not be resolved")
		}
	}
	w.logger.Debug("Host address", "address", host)

	if w.basicCommand(ctx, fmt.Sprintf(at.WifiCmdHost, host), time.Second) != at.Success {
		return fail("Host address could not be set")
	}

	if w.basicCommand(ctx, at.WifiCmdProtocol, time.Second) != at.Success {
		return fail("Failed to set TCP mode")
	}

	resp := w.SendCommand(ctx, at.WifiCmdOpen, 10*time.Second, at.WifiOpened, at.CR)
	if !strings.Contains(resp, at.WifiOpened) {
		w.logger.Warn("Unable to open socket", "mode", mode, "address", host, "port", port)
		w.setState(Connected)
		return false
	}

	w.logger.Info("Opened socket", "mode", mode, "address", host, "port", port)
	w.socketOpen = true
	w.cmdOn = false
	w.mode = mode
	w.hostName = address
	w.hostAddress = host
	w.hostPort = port
	w.setState(SocketOpen)
	return true
}

// IsOpen asks the module for its connection status. Pending received
// bytes count as open without asking.
func (w *Wifi) IsOpen(ctx context.Context) bool {
	if w.io != nil && w.io.Readable() > 0 {
		w.logger.Debug("Assuming open, data available to read")
		return true
	}
	if !w.setCmdMode(ctx, true) {
		w.logger.Error("Failed to check connection status")
		return w.socketOpen
	}

	resp := w.SendCommand(ctx, at.WifiCmdShowConn, 2*time.Second, "\n", at.CR)
	// The status is hex; the digit three places after the first 'f'
	// carries the TCP connection bit.
	start := strings.IndexByte(resp, 'f')
	if start >= 0 && len(resp) > start+3 {
		w.socketOpen = resp[start+3] == '1'
	} else {
		w.logger.Warn("Trouble checking connection status", "response", resp)
	}
	if !w.socketOpen && w.state == SocketOpen {
		w.setState(Connected)
	}
	return w.socketOpen
}

func (w *Wifi) Close(ctx context.Context) bool {
	if w.io == nil {
		w.logger.Error("Transport not set")
		return false
	}
	if !w.socketOpen {
		w.logger.Warn("Close called, but socket was not open")
		return true
	}
	if !w.setCmdMode(ctx, true) {
		w.logger.Error("Failed to close socket")
		return false
	}

	w.setState(Closing)
	if w.IsOpen(ctx) {
		resp := w.SendCommand(ctx, at.WifiCmdClose, 3*time.Second, at.WifiClosed, at.CR)
		if !strings.Contains(resp, at.WifiClosed) {
			w.logger.Warn("Failed to close socket")
			w.setState(SocketOpen)
			return false
		}
	}

	// Let the module settle so the next status query is accurate.
	sleep(ctx, w.cfg.GuardTime)
	w.io.RxClear()
	w.io.TxClear()
	w.socketOpen = false
	w.setState(Connected)
	return true
}

// Read leaves command mode and reads socket payload.
func (w *Wifi) Read(p []byte, timeout time.Duration) int {
	if w.io == nil {
		w.logger.Error("Transport not set")
		return -1
	}
	if !w.socketOpen && w.io.Readable() == 0 {
		w.logger.Error("Socket is not open")
		return -1
	}
	if !w.leaveCmdMode() {
		w.logger.Error("Failed to read data due to mode")
		return -1
	}
	return w.io.ReadTimeout(p, timeout)
}

// Write leaves command mode and writes socket payload.
func (w *Wifi) Write(p []byte, timeout time.Duration) int {
	if w.io == nil {
		w.logger.Error("Transport not set")
		return -1
	}
	if !w.socketOpen {
		w.logger.Error("Socket is not open")
		return -1
	}
	if !w.leaveCmdMode() {
		w.logger.Error("Failed to write data due to mode")
		return -1
	}
	if timeout < 0 {
		n, _ := w.io.Write(p)
		return n
	}
	return w.io.WriteTimeout(p, timeout)
}

func (w *Wifi) Readable() int {
	if w.io == nil || !w.socketOpen {
		return 0
	}
	return w.io.Readable()
}

func (w *Wifi) Writeable() int {
	if w.io == nil || !w.socketOpen {
		return 0
	}
	return w.io.Writeable()
}

// Reset restores factory settings, reboots the module and forgets every
// session setting, the SSID included.
func (w *Wifi) Reset(ctx context.Context) {
	if !w.sortInterfaceMode(ctx) {
		return
	}

	w.SendCommand(ctx, at.WifiCmdFactory, 2*time.Second, at.WifiFactory, at.CR)
	sleep(ctx, w.cfg.GuardTime)
	w.SendCommand(ctx, at.WifiCmdReboot, 2*time.Second, at.WifiReady, at.CR)

	w.connected = false
	w.ssid = ""
	w.mode = TCP
	w.socketOpen = false
	w.localPort = 0
	w.localAddress = ""
	w.hostName = ""
	w.hostAddress = ""
	w.hostPort = 0
	w.cmdOn = false
	w.setState(Idle)
	sleep(ctx, w.cfg.GuardTime)
}

// SetDeviceIP switches to DHCP for "DHCP" and to a static address
// otherwise.
func (w *Wifi) SetDeviceIP(ctx context.Context, address string) at.Code {
	if !w.setCmdMode(ctx, true) {
		w.logger.Error("Failed to set IP due to mode")
		return at.Failure
	}
	if address == "DHCP" {
		return w.basicCommand(ctx, at.WifiCmdDHCP, time.Second)
	}
	if code := w.basicCommand(ctx, fmt.Sprintf(at.WifiCmdAddress, address), time.Second); code != at.Success {
		return code
	}
	if code := w.basicCommand(ctx, at.WifiCmdStatic, time.Second); code != at.Success {
		return code
	}
	w.localAddress = address
	return at.Success
}

// DeviceIP returns the module's address.
func (w *Wifi) DeviceIP() string {
	return w.localAddress
}

// SetNetwork sets the SSID to join and its key. The SSID is remembered only
// when the module accepts every setting.
func (w *Wifi) SetNetwork(ctx context.Context, ssid string, security SecurityType, key string) at.Code {
	if !w.setCmdMode(ctx, true) {
		return at.Failure
	}
	if code := w.basicCommand(ctx, fmt.Sprintf(at.WifiCmdSSID, ssid), time.Second); code != at.Success {
		return code
	}

	var keyCmd string
	switch security {
	case WEP64, WEP128:
		keyCmd = at.WifiCmdKey
	case WPA, WPA2:
		keyCmd = at.WifiCmdPhrase
	}
	if keyCmd != "" {
		if code := w.basicCommand(ctx, fmt.Sprintf(keyCmd, key), time.Second); code != at.Success {
			return code
		}
	}

	w.ssid = ssid
	return at.Success
}

// SSID returns the network set with SetNetwork.
func (w *Wifi) SSID() string {
	return w.ssid
}

func (w *Wifi) SetDNS(ctx context.Context, name string) at.Code {
	if !w.setCmdMode(ctx, true) {
		return at.Failure
	}
	return w.basicCommand(ctx, fmt.Sprintf(at.WifiCmdDNS, name), time.Second)
}

// SignalStrength returns the RSSI in dBm, or 99 when it is unavailable.
func (w *Wifi) SignalStrength(ctx context.Context) int {
	if !w.connected {
		w.logger.Error("Could not get RSSI, network not connected")
		return noSignal
	}
	if !w.setCmdMode(ctx, true) {
		w.logger.Error("Could not get RSSI")
		return noSignal
	}

	resp := w.SendCommand(ctx, at.WifiCmdRSSI, 2*time.Second, at.WifiDBm, at.CR)
	if !strings.Contains(resp, at.WifiRSSI) {
		w.logger.Error("Could not get RSSI", "response", resp)
		return noSignal
	}
	start := strings.IndexByte(resp, '(')
	stop := strings.IndexByte(resp, ')')
	if start < 0 || stop < start {
		return noSignal
	}
	v, err := strconv.Atoi(resp[start+1 : stop])
	if err != nil {
		return noSignal
	}
	return v
}

// Ping asks the module to ping address, trying up to four times.
func (w *Wifi) Ping(ctx context.Context, address string) bool {
	if !w.setCmdMode(ctx, true) {
		w.logger.Error("Could not send ping command")
		return false
	}
	for range pingCount {
		resp := w.SendCommand(ctx, fmt.Sprintf(at.WifiCmdPing, address), pingDelay*time.Second, at.WifiReply, at.CR)
		if strings.Contains(resp, at.WifiReply) {
			return true
		}
		if ctx.Err() != nil {
			break
		}
	}
	return false
}

// HostByName resolves name with the module's DNS client. It returns "" on
// failure.
func (w *Wifi) HostByName(ctx context.Context, name string) string {
	resp := w.SendCommand(ctx, fmt.Sprintf(at.WifiCmdLookup, name), 3*time.Second, at.WifiVersion, at.CR)
	start := strings.IndexByte(resp, '=')
	if start < 0 {
		w.logger.Error("Failed to resolve host", "name", name, "response", resp)
		return ""
	}
	rest := resp[start+1:]
	stop := strings.IndexByte(rest, '\r')
	if stop < 0 {
		w.logger.Error("Failed to resolve host", "name", name, "response", resp)
		return ""
	}
	return rest[:stop]
}

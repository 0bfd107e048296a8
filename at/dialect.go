package at

import (
	"strings"
	"time"
)

// Dialect holds what differs between the two radio families' consoles at
// the protocol level. Command vocabularies are plain data and live next to
// each dialect below.
type Dialect struct {
	Name string

	// Success and Error are the substrings that classify a basic command.
	// Success is checked first.
	Success string
	Error   string

	// Slice is the receive poll interval of a command exchange.
	Slice time.Duration
}

// Classify maps the aggregate response of a basic command to a Code.
func (d Dialect) Classify(response string) Code {
	switch {
	case response == "":
		return NoResponse
	case strings.Contains(response, d.Success):
		return Success
	case strings.Contains(response, d.Error):
		return Error
	default:
		return Failure
	}
}

var (
	CellularDialect = Dialect{
		Name:    "cellular",
		Success: OK,
		Error:   ERROR,
		Slice:   100 * time.Millisecond,
	}

	WifiDialect = Dialect{
		Name:    "wifi",
		Success: AOK,
		Error:   ERR,
		Slice:   200 * time.Millisecond,
	}
)

// Cellular socket modem commands and markers.
const (
	CmdTest            = "AT"
	CmdEchoOn          = "ATE1"
	CmdEchoOff         = "ATE0"
	CmdSignal          = "AT+CSQ"
	CmdRegistration    = "AT+CREG?"
	CmdConnectionStart = "AT#CONNECTIONSTART"
	CmdConnectionStop  = "AT#CONNECTIONSTOP"
	CmdVState          = "AT#VSTATE"
	CmdReset           = "AT#RESET=0"
	CmdOutPort         = "AT#OUTPORT=%d"
	CmdDLEMode         = "AT#DLEMODE=1,1"
	CmdTCPPort         = "AT#TCPPORT=1,%d"
	CmdTCPServ         = "AT#TCPSERV=1,\"%s\""
	CmdOpenTCP         = "AT#OTCP=1"
	CmdUDPDLEMode      = "AT#UDPDLEMODE=1"
	CmdUDPPort         = "AT#UDPPORT=%d"
	CmdUDPServ         = "AT#UDPSERV=\"%s\""
	CmdOpenUDP         = "AT#OUDP"
	CmdAPN             = "AT#APNSERV=\"%s\""
	CmdDNS             = "AT#DNS=1,%s,%s"
	CmdPingRemote      = "AT#PINGREMOTE=\"%s\""
	CmdPingNum         = "AT#PINGNUM=%d"
	CmdPingDelay       = "AT#PINGDELAY=%d"
	CmdPing            = "AT#PING"
	CmdSMSTextMode     = "AT+CMGF=1"
	CmdSMSSend         = "AT+CMGS=\"+%s\""
	CmdSMSList         = "AT+CMGL=\"ALL\""
	CmdSMSDeleteRead   = "AT+CMGD=1,1"
	CmdSMSDeleteAll    = "AT+CMGD=1,4"

	InfoGprsActivation = "Ok_Info_GprsActivation"
	InfoWaitingForData = "Ok_Info_WaitingForData"
	InfoSocketClosed   = "Ok_Info_SocketClosed"
	StateConnected     = "CONNECTED"
	StatePrefix        = "STATE:"
	SMSSent            = "+CMGS:"
	SMSListHeader      = "+CMGL: "
	PingAlive          = "alive"
)

// WiFi module console commands and markers.
const (
	WifiCmdEnter      = "$$"
	WifiCmdExit       = "exit"
	WifiCmdUARTMode   = "set uart mode 1"
	WifiCmdJoinMode   = "set wlan join 0"
	WifiCmdChannel    = "set wlan channel 0"
	WifiCmdCommRemote = "set comm remote 0"
	WifiCmdDHCP       = "set ip dhcp 1"
	WifiCmdStatic     = "set ip dhcp 0"
	WifiCmdAddress    = "set ip address %s"
	WifiCmdJoin       = "join %s"
	WifiCmdLeave      = "leave"
	WifiCmdShowNet    = "show net"
	WifiCmdLocalPort  = "set ip localport %d"
	WifiCmdRemotePort = "set ip remote %d"
	WifiCmdHost       = "set ip host %s"
	WifiCmdProtocol   = "set ip protocol 8"
	WifiCmdOpen       = "open"
	WifiCmdClose      = "close"
	WifiCmdShowConn   = "show connection"
	WifiCmdFactory    = "factory RESET"
	WifiCmdReboot     = "reboot"
	WifiCmdSSID       = "set wlan ssid %s"
	WifiCmdKey        = "set wlan key %s"
	WifiCmdPhrase     = "set wlan phrase %s"
	WifiCmdDNS        = "set dns name %s"
	WifiCmdRSSI       = "show rssi"
	WifiCmdPing       = "ping %s"
	WifiCmdLookup     = "lookup %s"

	WifiCommandPrompt = ">"
	WifiCmdMode       = "CMD"
	WifiExitMode      = "EXIT"
	WifiGateway       = "GW="
	WifiAssociated    = "Associated!"
	WifiStatic        = "Static"
	WifiIP            = "IP="
	WifiVersion       = "<4.00>"
	WifiLinks         = "Links"
	WifiAssocOK       = "Assoc=OK"
	WifiAssocFail     = "Assoc=FAIL"
	WifiOpened        = "OPEN"
	WifiClosed        = "CLOS"
	WifiFactory       = "Set Factory Default"
	WifiReady         = "*READY*"
	WifiRSSI          = "RSSI"
	WifiDBm           = "dBm"
	WifiReply         = "reply"
)

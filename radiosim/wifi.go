package radiosim

import (
	"fmt"
	"strconv"
	"strings"

	"i4.energy/across/socketmodem/at"
)

const (
	wifiPrompt = at.CRLF + at.WifiVersion + " "
	wifiAOK    = at.CRLF + at.AOK + wifiPrompt
	wifiERR    = "\r\nERR: Bad Args" + wifiPrompt
)

func (r *Radio) receiveWifi(p []byte, emit func(string)) {
	var echo []byte
	for _, b := range p {
		if b == '$' {
			r.dollars++
			if r.dollars == 3 {
				r.dollars = 0
				r.cmdMode = true
				r.line = r.line[:0]
				emit("CMD\r\n")
			}
			continue
		}
		// A broken run of dollars is ordinary input.
		for ; r.dollars > 0; r.dollars-- {
			r.wifiByte('$', &echo, emit)
		}
		r.wifiByte(b, &echo, emit)
	}
	if len(echo) > 0 {
		emit(string(echo))
	}
}

func (r *Radio) wifiByte(b byte, echo *[]byte, emit func(string)) {
	switch {
	case !r.cmdMode:
		if r.socketOpen {
			r.payload = append(r.payload, b)
			*echo = append(*echo, b)
		}
	case b == at.CR:
		if len(*echo) > 0 {
			emit(string(*echo))
			*echo = nil
		}
		r.command(emit, r.wifiReply)
	case b == at.LF:
	default:
		r.line = append(r.line, b)
	}
}

func (r *Radio) wifiReply(cmd string) string {
	switch cmd {
	case "":
		return wifiPrompt
	case at.WifiCmdExit:
		r.cmdMode = false
		return "EXIT\r\n"
	case at.WifiCmdLeave:
		r.associated = false
		return "\r\nDeAuth" + wifiPrompt
	case at.WifiCmdShowNet:
		assoc := "FAIL"
		if r.associated {
			assoc = "OK"
		}
		return fmt.Sprintf("\r\nSSid=%s\r\nChan=1\r\nAssoc=%s\r\nAuth=OPEN\r\nDHCP=ON\r\nLinks=1\r\n%s ",
			r.ssid, assoc, at.WifiVersion)
	case at.WifiCmdShowConn:
		open := 0
		if r.socketOpen {
			open = 1
		}
		return fmt.Sprintf("f00%d\r\n%s ", open, at.WifiVersion)
	case at.WifiCmdOpen:
		if !r.associated || r.host == "" {
			return "\r\nConnect FAILED" + wifiPrompt
		}
		r.socketOpen = true
		r.cmdMode = false
		r.opens++
		return "\r\n*OPEN*"
	case at.WifiCmdClose:
		if !r.socketOpen {
			return "\r\nERR:no conn" + wifiPrompt
		}
		r.socketOpen = false
		return "\r\n*CLOS*" + wifiPrompt
	case at.WifiCmdFactory:
		r.ssid = ""
		r.host = ""
		r.associated = false
		r.socketOpen = false
		return "\r\nSet Factory Defaults" + wifiPrompt
	case at.WifiCmdReboot:
		r.cmdMode = false
		r.associated = false
		r.socketOpen = false
		return "\r\n*Reboot*\r\n*READY*\r\n"
	case at.WifiCmdRSSI:
		return fmt.Sprintf("\r\nRSSI=(%d) dBm%s", r.rssi, wifiPrompt)
	}

	verb, arg, _ := strings.Cut(cmd, " ")
	switch verb {
	case "set":
		return r.wifiSet(arg)
	case "join":
		if arg == "" || arg != r.ssid {
			return fmt.Sprintf("\r\nAuto-Assoc %s chan=0 mode=NONE FAILED\r\nGW=0.0.0.0%s", arg, wifiPrompt)
		}
		r.associated = true
		return fmt.Sprintf("\r\nAuto-Assoc %s chan=1 mode=NONE SCAN OK\r\nAssociated!\r\nDHCP=ON\r\nIP=%s:2000\r\nNM=255.255.255.0\r\nGW=192.168.1.1%s",
			arg, r.address, wifiPrompt)
	case "lookup":
		ip, ok := r.hosts[arg]
		if !ok {
			return "\r\nERR: lookup failed" + wifiPrompt
		}
		return fmt.Sprintf("\r\n%s=%s\r\n%s ", arg, ip, at.WifiVersion)
	case "ping":
		if !r.associated {
			return "\r\nERR: not associated" + wifiPrompt
		}
		return fmt.Sprintf("\r\n64 bytes from %s: reply\r\n%s ", arg, at.WifiVersion)
	}
	return "\r\nERR: ?-Cmd" + wifiPrompt
}

func (r *Radio) wifiSet(arg string) string {
	fields := strings.Fields(arg)
	if len(fields) < 3 {
		return wifiERR
	}
	key, value := fields[0]+" "+fields[1], strings.Join(fields[2:], " ")
	switch key {
	case "wlan ssid":
		r.ssid = value
	case "ip host":
		r.host = value
	case "ip address":
		r.address = value
	case "ip remote", "ip localport":
		if v, err := strconv.Atoi(value); err != nil || v < 0 || v > 65535 {
			return wifiERR
		}
	}
	return wifiAOK
}

package radiosim

import (
	"fmt"
	"strconv"
	"strings"

	"i4.energy/across/socketmodem/at"
	"i4.energy/across/socketmodem/dle"
)

const (
	cellOK    = "\r\nOK\r\n"
	cellError = "\r\nERROR\r\n"
)

func (r *Radio) receiveCellular(p []byte, emit func(string)) {
	var echo []byte
	flush := func() {
		if len(echo) > 0 {
			emit(string(dle.Append(nil, echo)))
			echo = nil
		}
	}

	for _, b := range p {
		switch {
		case r.dataMode:
			var one [1]byte
			n, closed := r.decoder.Decode(one[:], []byte{b})
			if n > 0 {
				r.payload = append(r.payload, one[0])
				echo = append(echo, one[0])
			}
			if closed {
				flush()
				r.dataMode = false
				r.logger.Debug("Socket closed by host")
				emit(at.CRLF + at.InfoSocketClosed + at.CRLF)
			}
		case r.inSMS:
			if b == at.CtrlZ {
				r.inSMS = false
				r.sent = append(r.sent, Message{Number: r.smsTo, Body: string(r.smsBody)})
				emit(fmt.Sprintf("\r\n+CMGS: %d\r\n\r\nOK\r\n", len(r.sent)))
				continue
			}
			r.smsBody = append(r.smsBody, b)
		case b == at.CR:
			if r.echo {
				emit(string(r.line) + at.CRLF)
			}
			r.command(emit, r.cellularReply)
		case b == at.LF:
		default:
			r.line = append(r.line, b)
		}
	}
	flush()
}

func (r *Radio) cellularReply(cmd string) string {
	switch cmd {
	case at.CmdTest, "":
		return cellOK
	case at.CmdEchoOn:
		r.echo = true
		return cellOK
	case at.CmdEchoOff:
		r.echo = false
		return cellOK
	case at.CmdSignal:
		return fmt.Sprintf("\r\n+CSQ: %d,99\r\n%s", r.signal, cellOK)
	case at.CmdRegistration:
		return fmt.Sprintf("\r\n+CREG: 0,%d\r\n%s", r.registration, cellOK)
	case at.CmdConnectionStart:
		if r.apn == "" {
			return cellError
		}
		r.connected = true
		return at.CRLF + at.InfoGprsActivation + at.CRLF + r.address + at.CRLF
	case at.CmdConnectionStop:
		r.connected = false
		return cellOK
	case at.CmdVState:
		state := "IDLE"
		if r.connected {
			state = at.StateConnected
		}
		return "\r\n#STATE: " + state + at.CRLF + cellOK
	case at.CmdReset:
		r.connected = false
		r.dataMode = false
		r.echo = false
		return cellOK
	case at.CmdOpenTCP, at.CmdOpenUDP:
		if !r.connected || r.host == "" {
			return cellError
		}
		r.dataMode = true
		r.decoder.Reset()
		r.opens++
		return at.CRLF + at.InfoWaitingForData + at.CRLF
	case at.CmdPing:
		return "\r\n#PING: Reply from host alive\r\n" + cellOK
	case at.CmdSMSTextMode:
		return cellOK
	case at.CmdSMSList:
		var b strings.Builder
		for i := range r.inbox {
			m := &r.inbox[i]
			status := "REC UNREAD"
			if m.read {
				status = "REC READ"
			}
			fmt.Fprintf(&b, "\r\n+CMGL: %d,%q,%q,,\"%s\"\r\n%s", i+1, status, m.Number, m.Time, m.Body)
			m.read = true
		}
		return b.String() + at.CRLF + cellOK
	case at.CmdSMSDeleteRead:
		kept := r.inbox[:0]
		for _, m := range r.inbox {
			if !m.read {
				kept = append(kept, m)
			}
		}
		r.inbox = kept
		return cellOK
	case at.CmdSMSDeleteAll:
		r.inbox = nil
		return cellOK
	}

	name, arg, _ := strings.Cut(cmd, "=")
	switch name {
	case "AT#APNSERV":
		r.apn = quoted(arg)
		return cellOK
	case "AT#TCPSERV":
		_, host, _ := strings.Cut(arg, ",")
		r.host = quoted(host)
		return cellOK
	case "AT#UDPSERV":
		r.host = quoted(arg)
		return cellOK
	case "AT#TCPPORT", "AT#UDPPORT", "AT#OUTPORT":
		port := arg[strings.LastIndexByte(arg, ',')+1:]
		if v, err := strconv.Atoi(port); err != nil || v < 0 || v > 65535 {
			return cellError
		}
		return cellOK
	case "AT#DLEMODE", "AT#UDPDLEMODE", "AT#DNS",
		"AT#PINGREMOTE", "AT#PINGNUM", "AT#PINGDELAY":
		return cellOK
	case "AT+CMGS":
		r.smsTo = strings.TrimPrefix(quoted(arg), "+")
		r.smsBody = r.smsBody[:0]
		r.inSMS = true
		return "\r\n" + at.Prompt
	}
	return cellError
}

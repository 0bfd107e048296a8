package modem

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"i4.energy/across/socketmodem/at"
)

// SMS is a text message held by the radio.
type SMS struct {
	PhoneNumber string
	Message     string
	Timestamp   string
}

// SendSMS sends message to phoneNumber in text mode. The number is sent in
// international form; a leading "+" is optional.
//
// The radio prompts with "> " before it takes the body, so the body is only
// written once the prompt has been seen. It is terminated by CTRL-Z.
func (c *Cellular) SendSMS(ctx context.Context, phoneNumber, message string) at.Code {
	if code := c.basicCommand(ctx, at.CmdSMSTextMode, time.Second); code != at.Success {
		return code
	}

	cmd := fmt.Sprintf(at.CmdSMSSend, strings.TrimPrefix(phoneNumber, "+"))
	if resp := c.SendCommand(ctx, cmd, time.Second, ">", at.CR); !strings.Contains(resp, ">") {
		c.logger.Warn("No SMS prompt", "response", resp)
		if code := c.dialect.Classify(resp); code != at.Success {
			return code
		}
		return at.Failure
	}
	if !sleep(ctx, 200*time.Millisecond) {
		return at.Failure
	}

	resp := c.SendCommand(ctx, message, 4*time.Second, "", at.CtrlZ)
	c.logger.Debug("SMS response", "response", resp)
	if !strings.Contains(resp, at.SMSSent) {
		return at.Failure
	}
	return at.Success
}

// ReceivedSMS lists every message stored on the radio.
func (c *Cellular) ReceivedSMS(ctx context.Context) []SMS {
	resp := c.command(ctx, at.CmdSMSList, 4*time.Second)
	list := parseSMSList(resp, c.logger.Warn)
	c.logger.Debug("Received SMS", "count", len(list))
	return list
}

// DeleteReadSMS deletes the messages that have been read.
func (c *Cellular) DeleteReadSMS(ctx context.Context) at.Code {
	return c.basicCommand(ctx, at.CmdSMSDeleteRead, time.Second)
}

// DeleteAllSMS deletes every received message.
func (c *Cellular) DeleteAllSMS(ctx context.Context) at.Code {
	return c.basicCommand(ctx, at.CmdSMSDeleteAll, time.Second)
}

// parseSMSList parses an AT+CMGL listing. Each message is a header of six
// comma separated fields followed by body lines up to the next header or
// the final result.
//
//	+CMGL: 1,"REC READ","+15551234",,"24/01/02,10:11:12+00"
//	body
func parseSMSList(resp string, warn func(msg string, args ...any)) []SMS {
	var (
		list []SMS
		cur  *SMS
		body []string
	)
	flush := func() {
		if cur != nil {
			cur.Message = strings.TrimRight(strings.Join(body, at.CRLF), at.CRLF)
			list = append(list, *cur)
		}
		cur, body = nil, nil
	}

	sc := bufio.NewScanner(strings.NewReader(resp))
	sc.Split(at.Splitter)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, at.SMSListHeader) {
			flush()
			fields := at.Split(line, ",", 0)
			if len(fields) != 6 {
				warn("Expected 6 fields in SMS header", "index", len(list), "line", line)
				continue
			}
			cur = &SMS{
				PhoneNumber: strings.Trim(fields[2], `"`),
				Timestamp:   strings.Trim(fields[4], `"`) + ", " + strings.Trim(fields[5], `"`),
			}
			continue
		}
		if cur == nil {
			continue
		}
		if at.Classify(line) == at.TypeFinal {
			flush()
			break
		}
		body = append(body, line)
	}
	if cur != nil {
		warn("Expected end of SMS list", "index", len(list))
		flush()
	}
	return list
}

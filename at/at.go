// Package at holds the command vocabulary shared by the radio sessions:
// result codes, the two dialects' markers and commands, and the helpers
// that split multi-line responses.
package at

import "fmt"

const (
	// Terminal Control
	CR     = '\r'
	LF     = '\n'
	CtrlZ  = 0x1A
	CRLF   = "\r\n"
	Prompt = "> "

	// Response Codes
	OK         = "OK"
	ERROR      = "ERROR"
	NoCarrier  = "NO CARRIER"
	NoDialtone = "NO DIALTONE"
	Busy       = "BUSY"
	NoAnswer   = "NO ANSWER"
	CmeError   = "+CME ERROR:"
	CmsError   = "+CMS ERROR:"

	// WiFi console result markers
	AOK = "AOK"
	ERR = "ERR"

	// URCs (Unsolicited Result Codes)
	UrcNewMsg         = "+CMTI:"
	UrcMessageReport  = "+CDSI:"
	UrcSignalStrength = "+CSQ:"
	UrcCall           = "RING"
)

type ResponseType int

const (
	TypeFinal  ResponseType = iota // OK, ERROR
	TypeURC                        // Asynchronous notifications
	TypeData                       // Intermediate command output (+CSQ: ...)
	TypePrompt                     // SMS input prompt
)

// Code classifies the aggregate response to a command.
type Code int

const (
	Success Code = iota
	Error
	Failure
	NoResponse
)

func (c Code) String() string {
	switch c {
	case Success:
		return "SUCCESS"
	case Error:
		return "ERROR"
	case Failure:
		return "FAILURE"
	case NoResponse:
		return "NO_RESPONSE"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

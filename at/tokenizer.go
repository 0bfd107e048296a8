package at

import (
	"bufio"
	"bytes"
	"strings"
)

// Splitter tokenizes radio console output. It has the signature of
// bufio.SplitFunc so it can be used with bufio.Scanner directly.
//
// Lines end in CRLF. The SMS input prompt ("> ") is its own token even
// though the radio does not terminate it. A lone CR or LF stays inside the
// token, so callers that need GetLine semantics should use GetLine.
//
// When atEOF is set the remaining data is returned as the final token.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if bytes.HasPrefix(data, []byte(Prompt)) {
		return len(Prompt), data[:len(Prompt)], nil
	}

	if i := bytes.Index(data, []byte(CRLF)); i >= 0 {
		return i + len(CRLF), data[:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter

// Lines splits a complete response into its non-empty lines.
func Lines(response string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(response))
	sc.Split(Splitter)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Classify identifies the nature of one line of radio output.
func Classify(line string) ResponseType {
	if line == Prompt {
		return TypePrompt
	}

	switch line {
	case OK, ERROR, AOK, ERR, NoCarrier, NoDialtone, Busy, NoAnswer:
		return TypeFinal
	}

	switch {
	case strings.HasPrefix(line, CmeError), strings.HasPrefix(line, CmsError):
		return TypeFinal
	case strings.HasPrefix(line, UrcNewMsg),
		strings.HasPrefix(line, UrcMessageReport),
		line == UrcCall:
		return TypeURC
	default:
		return TypeData
	}
}

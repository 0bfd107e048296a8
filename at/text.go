package at

import "strings"

// GetLine returns the text of source from start up to the next '\n' or
// '\r', and the index of the first byte after the line terminator. A
// "\r\n" or "\n\r" pair counts as one terminator. Without a terminator the
// rest of source is returned and the cursor is len(source).
func GetLine(source string, start int) (line string, cursor int) {
	if start >= len(source) {
		return "", len(source)
	}
	end := strings.IndexAny(source[start:], "\r\n")
	if end < 0 {
		return source[start:], len(source)
	}
	end += start
	line = source[start:end]
	cursor = end + 1
	if cursor < len(source) {
		a, b := source[end], source[cursor]
		if (a == '\r' && b == '\n') || (a == '\n' && b == '\r') {
			cursor++
		}
	}
	return line, cursor
}

// Split cuts s around delim. An empty s has no parts. A positive limit
// caps the number of parts, the last one holding the unsplit remainder;
// zero or a negative limit returns every part.
func Split(s, delim string, limit int) []string {
	if s == "" {
		return nil
	}
	if limit <= 0 {
		limit = -1
	}
	return strings.SplitN(s, delim, limit)
}

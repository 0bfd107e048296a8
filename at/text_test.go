package at_test

import (
	"slices"
	"testing"

	"i4.energy/across/socketmodem/at"
)

func TestGetLine(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		start      int
		wantLine   string
		wantCursor int
	}{
		{"CRLF", "OK\r\nNEXT", 0, "OK", 4},
		{"LFCR", "OK\n\rNEXT", 0, "OK", 4},
		{"bare CR", "OK\rNEXT", 0, "OK", 3},
		{"bare LF", "OK\nNEXT", 0, "OK", 3},
		{"double CR is two lines", "OK\r\rNEXT", 0, "OK", 3},
		{"from offset", "AT\r\n+CSQ: 9,99\r\nOK", 4, "+CSQ: 9,99", 16},
		{"no terminator", "STATE: IDLE", 7, "IDLE", 11},
		{"terminator at end", "OK\r", 0, "OK", 3},
		{"start past end", "OK", 5, "", 2},
		{"empty line", "\r\nOK", 0, "", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, cursor := at.GetLine(tt.source, tt.start)
			if line != tt.wantLine || cursor != tt.wantCursor {
				t.Errorf("GetLine(%q, %d) = %q, %d; want %q, %d",
					tt.source, tt.start, line, cursor, tt.wantLine, tt.wantCursor)
			}
		})
	}
}

func TestGetLineWalk(t *testing.T) {
	source := "\r\n+CMGL: 1\r\nhello\r\n\r\nOK\r\n"
	var lines []string
	for cursor := 0; cursor < len(source); {
		var line string
		line, cursor = at.GetLine(source, cursor)
		lines = append(lines, line)
	}
	want := []string{"", "+CMGL: 1", "hello", "", "OK"}
	if !slices.Equal(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		delim string
		limit int
		want  []string
	}{
		{"empty input", "", ",", 0, nil},
		{"all parts", "a,b,c", ",", 0, []string{"a", "b", "c"}},
		{"negative limit", "a,b,c", ",", -1, []string{"a", "b", "c"}},
		{"limited", "a,b,c", ",", 2, []string{"a", "b,c"}},
		{"limit one", "a,b,c", ",", 1, []string{"a,b,c"}},
		{"no delimiter", "abc", ",", 0, []string{"abc"}},
		{"trailing delimiter", "a,", ",", 0, []string{"a", ""}},
		{"multi-byte delimiter", "OK\r\n10.0.0.7\r\n", "\r\n", 0, []string{"OK", "10.0.0.7", ""}},
		{"dotted quad", "192.168.1.1", ".", 0, []string{"192", "168", "1", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := at.Split(tt.s, tt.delim, tt.limit)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Split(%q, %q, %d) = %q, want %q", tt.s, tt.delim, tt.limit, got, tt.want)
			}
		})
	}
}

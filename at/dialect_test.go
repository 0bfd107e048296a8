package at_test

import (
	"testing"

	"i4.energy/across/socketmodem/at"
)

func TestDialectClassify(t *testing.T) {
	tests := []struct {
		name     string
		dialect  at.Dialect
		response string
		want     at.Code
	}{
		{"cellular empty", at.CellularDialect, "", at.NoResponse},
		{"cellular ok", at.CellularDialect, "\r\nOK\r\n", at.Success},
		{"cellular error", at.CellularDialect, "\r\nERROR\r\n", at.Error},
		{"cellular other", at.CellularDialect, "\r\n+CSQ: 9,99\r\n", at.Failure},
		{"cellular success wins", at.CellularDialect, "ERROR\r\nOK\r\n", at.Success},
		{"wifi empty", at.WifiDialect, "", at.NoResponse},
		{"wifi aok", at.WifiDialect, "AOK\r\n<4.00> ", at.Success},
		{"wifi err", at.WifiDialect, "ERR: Bad Args\r\n", at.Error},
		{"wifi plain OK is not success", at.WifiDialect, "OK", at.Failure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.Classify(tt.response); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.response, got, tt.want)
			}
		})
	}
}

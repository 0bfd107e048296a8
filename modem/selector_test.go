package modem_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"i4.energy/across/socketmodem/modem"
)

func TestSelector(t *testing.T) {
	t.Run("None by default", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		s := modem.NewSelector(modem.NewMockIPStack(ctrl), modem.NewMockIPStack(ctrl))

		if got := s.Kind(); got != modem.KindNone {
			t.Errorf("Kind() = %s, want none", got)
		}
		if s.Active() != nil {
			t.Error("Active() should be nil for KindNone")
		}
	})

	t.Run("Switches between stacks", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cellular := modem.NewMockIPStack(ctrl)
		wifi := modem.NewMockIPStack(ctrl)
		s := modem.NewSelector(cellular, wifi)

		if err := s.SetKind(modem.KindCellular); err != nil {
			t.Fatalf("SetKind(cellular) failed: %v", err)
		}
		if s.Active() != cellular {
			t.Error("Active() is not the cellular stack")
		}

		if err := s.SetKind(modem.KindWifi); err != nil {
			t.Fatalf("SetKind(wifi) failed: %v", err)
		}
		if s.Active() != wifi {
			t.Error("Active() is not the wifi stack")
		}

		if err := s.SetKind(modem.KindNone); err != nil {
			t.Fatalf("SetKind(none) failed: %v", err)
		}
		if s.Active() != nil {
			t.Error("Active() should be nil after SetKind(none)")
		}
	})

	t.Run("ErrNoStack for a missing family", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cellular := modem.NewMockIPStack(ctrl)
		s := modem.NewSelector(cellular, nil)
		s.SetKind(modem.KindCellular)

		err := s.SetKind(modem.KindWifi)

		if !errors.Is(err, modem.ErrNoStack) {
			t.Errorf("expected ErrNoStack, got: %v", err)
		}
		if got := s.Kind(); got != modem.KindCellular {
			t.Errorf("Kind() = %s, want cellular", got)
		}
	})

	t.Run("Calls reach the active stack", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cellular := modem.NewMockIPStack(ctrl)
		wifi := modem.NewMockIPStack(ctrl)
		s := modem.NewSelector(cellular, wifi)
		s.SetKind(modem.KindWifi)

		ctx := context.Background()
		wifi.EXPECT().Open(ctx, "example.com", 80, modem.TCP).Return(true)

		if !s.Active().Open(ctx, "example.com", 80, modem.TCP) {
			t.Error("Open() through the selector failed")
		}
	})
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    modem.Kind
		wantErr bool
	}{
		{in: "cellular", want: modem.KindCellular},
		{in: "wifi", want: modem.KindWifi},
		{in: "none", want: modem.KindNone},
		{in: "", want: modem.KindNone},
		{in: "lora", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := modem.ParseKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestKindJSON(t *testing.T) {
	b, err := json.Marshal(modem.Status{Kind: modem.KindWifi})
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	var got struct {
		Kind modem.Kind `json:"kind"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal(%s) failed: %v", b, err)
	}
	if got.Kind != modem.KindWifi {
		t.Errorf("round trip of %s = %s", b, got.Kind)
	}
}

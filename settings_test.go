package commport

import (
	"testing"
)

func TestOpenOptions(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		wantErr bool
	}{
		{"9600 baud", WithBaudRate(9600), false},
		{"zero baud", WithBaudRate(0), true},
		{"negative baud", WithBaudRate(-115200), true},
		{"7 data bits", WithDataBits(7), false},
		{"4 data bits", WithDataBits(4), true},
		{"9 data bits", WithDataBits(9), true},
		{"2 stop bits", WithStopBits(2), false},
		{"3 stop bits", WithStopBits(3), true},
		{"even parity", WithParity(ParityEven), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultSettings()
			err := tt.opt(&cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("option error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPortTypeString(t *testing.T) {
	tests := []struct {
		t        PortType
		expected string
	}{
		{PortTypeSerial, "serial"},
		{PortTypeParallel, "parallel"},
		{PortType(0), "unknown"},
		{PortType(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.t.String(); got != tt.expected {
			t.Errorf("PortType(%d).String() = %q, expected %q", int(tt.t), got, tt.expected)
		}
	}
}

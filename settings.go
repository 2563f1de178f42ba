package commport

import (
	"errors"

	"github.com/allbin/go-commport/provider"
)

// ErrInvalidSettings reports an out-of-range open option.
var ErrInvalidSettings = errors.New("invalid port settings")

// Parity represents the parity mode applied at open
type Parity = provider.Parity

const (
	ParityNone = provider.ParityNone
	ParityOdd  = provider.ParityOdd
	ParityEven = provider.ParityEven
)

// Option is a functional option for the open transition
type Option func(*provider.PortSettings) error

// defaultSettings returns the line configuration used when Open is given no
// options: 115200 8N1.
func defaultSettings() provider.PortSettings {
	return provider.PortSettings{
		BaudRate: 115200,
		DataBits: 8,
		StopBits: 1,
		Parity:   ParityNone,
	}
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(s *provider.PortSettings) error {
		if rate <= 0 {
			return ErrInvalidSettings
		}
		s.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) Option {
	return func(s *provider.PortSettings) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidSettings
		}
		s.DataBits = bits
		return nil
	}
}

// WithStopBits sets the number of stop bits (1 or 2)
func WithStopBits(bits int) Option {
	return func(s *provider.PortSettings) error {
		if bits != 1 && bits != 2 {
			return ErrInvalidSettings
		}
		s.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(s *provider.PortSettings) error {
		s.Parity = parity
		return nil
	}
}

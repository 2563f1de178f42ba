package commport

import "github.com/allbin/go-commport/provider"

// PortType classifies a communications port
type PortType int

const (
	PortTypeSerial PortType = iota + 1
	PortTypeParallel
)

func (t PortType) String() string {
	switch t {
	case PortTypeSerial:
		return "serial"
	case PortTypeParallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// portTypeFromKind maps a backend kind to the facade enumeration. The zero
// PortType marks a kind outside the closed set, which is a backend defect.
func portTypeFromKind(kind provider.PortKind) PortType {
	switch kind {
	case provider.KindSerial:
		return PortTypeSerial
	case provider.KindParallel:
		return PortTypeParallel
	default:
		return 0
	}
}

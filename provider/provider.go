// Package provider defines the backend abstraction for go-commport.
//
// A backend is one concrete port-access implementation (devfs, commx, or a
// test simulator). Backends register themselves with this package; the
// registry probes availability in priority order on first use and fixes the
// selection for the lifetime of the process. Facade types in the root package
// never talk to a backend directly — they resolve typed handles through the
// registry and translate backend failures at the boundary.
package provider

import (
	"io"
	"time"
)

// ProviderID identifies one of the known backends.
type ProviderID string

const (
	// DevFS is the native backend: direct /dev enumeration and termios access.
	DevFS ProviderID = "devfs"
	// CommX is the legacy vendor backend. Its port list is configured through
	// a properties file and cached in a static master list that is never
	// re-read, which is the defect the enumeration refresh compensates for.
	CommX ProviderID = "commx"
)

// PortKind is a backend-reported port classification.
type PortKind int

const (
	KindSerial PortKind = iota + 1
	KindParallel
)

// FailureKind enumerates the recoverable failures a backend may declare.
// Anything a backend returns that is not declared under one of these kinds is
// treated as a defect by the facade.
type FailureKind int

const (
	FailurePortInUse FailureKind = iota + 1
	FailureNoSuchPort
)

// Logical facade type names accepted by Provider.Resolve.
const (
	LogicalPortIdentifier = "port-identifier"
)

// Provider is an activated backend instance.
type Provider interface {
	ID() ProviderID

	// Resolve returns the backend's implementation of the named logical
	// facade type (for example PortIdentifierOps for LogicalPortIdentifier).
	// Unknown logical names are a configuration error.
	Resolve(logical string) (any, error)
}

// PortIdentifierOps is the logical port-identifier surface every backend
// provides. Ports returns a fresh snapshot on every call; Lookup resolves a
// single port by name and fails with the backend's declared no-such-port
// sentinel when the name is unknown.
type PortIdentifierOps interface {
	Ports() ([]NativePort, error)
	Lookup(name string) (NativePort, error)
}

// NativePort is a backend-native port identifier. Exactly one facade
// instance wraps each NativePort; the backend retains ownership of the
// underlying OS resource.
type NativePort interface {
	Name() string
	Kind() PortKind

	// Owned reports whether the port is currently claimed. Owner returns the
	// claiming application's name and is meaningful only while Owned reports
	// true. Failures from either are host-level defects, not operating
	// conditions.
	Owned() (bool, error)
	Owner() (string, error)

	// Open claims the port for the named application, waiting at most
	// timeout for a competing claim to clear, and returns the opened port.
	// A claim held past the timeout fails with the backend's declared
	// port-in-use sentinel.
	Open(appName string, timeout time.Duration, cfg PortSettings) (OpenedPort, error)
}

// OpenedPort is an exclusive claim on a port, produced by NativePort.Open.
// Close releases the claim.
type OpenedPort interface {
	io.ReadWriteCloser
	Name() string
}

// PortSettings carries the line configuration applied during the open
// transition. The zero value is invalid; backends receive settings already
// validated by the facade.
type PortSettings struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   Parity
}

// Parity is the parity mode applied at open.
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

// Refresher is the escape hatch for the commx stale-cache defect. It is
// implemented only by the commx backend and is exercised exclusively from
// the facade's enumeration path; delete it together with that path once the
// backend re-reads its configuration on its own.
type Refresher interface {
	// InvalidatePortCache clears the backend's static master port list.
	InvalidatePortCache()
	// ReloadDrivers re-parses the backend's driver configuration from the
	// given properties path.
	ReloadDrivers(propertiesPath string) error
}

// Backend describes a registrable backend.
type Backend struct {
	ID ProviderID

	// Priority orders availability probes; lower values are probed first.
	Priority int

	// Probe reports whether the backend can serve on this host. It must be
	// cheap and side-effect free.
	Probe func() bool

	// Open constructs the backend's Provider. Called at most once, after a
	// successful probe.
	Open func() (Provider, error)

	// Failures maps the recoverable failure kinds the backend declares to
	// the sentinel errors its operations return for them. Translation in the
	// facade matches these by identity (errors.Is), never by message.
	Failures map[FailureKind]error
}

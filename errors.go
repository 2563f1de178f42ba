package commport

import (
	"errors"
	"fmt"

	"github.com/allbin/go-commport/provider"
)

// Predefined error types for robust error handling
var (
	// ErrNoProvider reports that no port backend is available on this host.
	// This is a configuration error, fixed for the process lifetime.
	ErrNoProvider = provider.ErrNoProvider

	// ErrPortInUse reports that a port is already claimed by another
	// application. Matches *PortInUseError through errors.Is.
	ErrPortInUse = errors.New("port already in use")

	// ErrNoSuchPort reports a lookup for a port name the active backend does
	// not know. Matches *NoSuchPortError through errors.Is.
	ErrNoSuchPort = errors.New("no such port")
)

// PortInUseError is returned from Open when the port stays claimed by
// another application for the whole acquisition timeout.
type PortInUseError struct {
	Port  string
	Owner string // empty when the backend does not report the holder
	Err   error  // the backend's native failure
}

func (e *PortInUseError) Error() string {
	if e.Owner != "" {
		return fmt.Sprintf("port %s already in use by %s", e.Port, e.Owner)
	}
	return fmt.Sprintf("port %s already in use", e.Port)
}

func (e *PortInUseError) Unwrap() error { return e.Err }

func (e *PortInUseError) Is(target error) bool { return target == ErrPortInUse }

// NoSuchPortError is returned from GetPortIdentifier when the active backend
// knows no port with the requested name.
type NoSuchPortError struct {
	Port string
	Err  error // the backend's native failure
}

func (e *NoSuchPortError) Error() string { return fmt.Sprintf("no such port: %s", e.Port) }

func (e *NoSuchPortError) Unwrap() error { return e.Err }

func (e *NoSuchPortError) Is(target error) bool { return target == ErrNoSuchPort }

// StateError reports a failure this layer cannot recover from: a backend
// failure outside the declared recoverable kinds, or a drift between the
// backend's surface and the assumed contract. Callers should treat it as a
// defect, not a retryable condition. The original cause is always preserved.
type StateError struct {
	Op   string // the facade operation that failed
	Port string // the port involved, if any
	Err  error
}

func (e *StateError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("commport: unexpected provider failure in %s on %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("commport: unexpected provider failure in %s: %v", e.Op, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

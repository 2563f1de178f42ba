package commport

import (
	"errors"

	"github.com/allbin/go-commport/provider"
)

// translateIfMatches converts a backend failure into the typed facade error
// for the expected failure kind. Matching is by identity against the active
// backend's declared sentinel (errors.Is), never by message inspection. A
// failure outside the declared kind is not swallowed: it comes back as a
// *StateError preserving the original cause.
func translateIfMatches(kind provider.FailureKind, op, port string, err error) error {
	sentinel, declared := provider.ActiveFailure(kind)
	if declared && errors.Is(err, sentinel) {
		switch kind {
		case provider.FailurePortInUse:
			return &PortInUseError{Port: port, Err: err}
		case provider.FailureNoSuchPort:
			return &NoSuchPortError{Port: port, Err: err}
		}
	}
	return &StateError{Op: op, Port: port, Err: err}
}

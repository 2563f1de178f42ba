package commport

import (
	"sync"
	"time"

	"github.com/allbin/go-commport/provider"
)

// enumMu serializes enumeration process-wide. The commx cache reset, driver
// reload and enumeration are not atomic at the backend level, so two
// concurrent enumerations could observe a half-reset cache without this.
var enumMu sync.Mutex

// PortIdentifier identifies a named communications port known to the active
// backend. Identifiers are produced by GetPortIdentifiers and
// GetPortIdentifier only; each instance wraps exactly one backend-native
// port reference.
type PortIdentifier struct {
	native provider.NativePort
}

// Name returns the port name. Names are unique within one enumeration
// snapshot.
func (p *PortIdentifier) Name() string { return p.native.Name() }

// PortType returns the port classification. The kind is fixed for the
// lifetime of the identifier.
func (p *PortIdentifier) PortType() PortType {
	return portTypeFromKind(p.native.Kind())
}

// CurrentlyOwned reports whether the port is claimed by an application. A
// failure here is a host-level defect (*StateError), never an operating
// condition.
func (p *PortIdentifier) CurrentlyOwned() (bool, error) {
	owned, err := p.native.Owned()
	if err != nil {
		return false, &StateError{Op: "owned", Port: p.Name(), Err: err}
	}
	return owned, nil
}

// CurrentOwner returns the name of the claiming application. The result is
// meaningful only while CurrentlyOwned reports true; callers are expected to
// check ownership first, mirroring the backends' own contract.
func (p *PortIdentifier) CurrentOwner() (string, error) {
	owner, err := p.native.Owner()
	if err != nil {
		return "", &StateError{Op: "owner", Port: p.Name(), Err: err}
	}
	return owner, nil
}

// Open claims the port for appName, waiting at most timeout for a competing
// claim to clear, and returns the opened port configured from opts (115200
// 8N1 by default). A port held by another application fails with
// *PortInUseError; any other backend failure is a defect (*StateError).
func (p *PortIdentifier) Open(appName string, timeout time.Duration, opts ...Option) (*Port, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	opened, err := p.native.Open(appName, timeout, cfg)
	if err != nil {
		terr := translateIfMatches(provider.FailurePortInUse, "open", p.Name(), err)
		if inUse, ok := terr.(*PortInUseError); ok {
			// Best effort; the holder may already be gone.
			inUse.Owner, _ = p.native.Owner()
		}
		return nil, terr
	}
	return &Port{inner: opened}, nil
}

// GetPortIdentifiers returns a fresh snapshot of the ports known to the
// active backend, sorted the way the backend reports them. On the commx
// backend the stale port-list cache is reset first; the whole
// reset-reload-enumerate sequence is serialized process-wide.
func GetPortIdentifiers() ([]*PortIdentifier, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	active, err := provider.Active()
	if err != nil {
		return nil, err
	}
	ops, err := provider.Handle[provider.PortIdentifierOps](provider.LogicalPortIdentifier)
	if err != nil {
		return nil, &StateError{Op: "enumerate", Err: err}
	}

	refreshListIfRequired(active)

	natives, err := ops.Ports()
	if err != nil {
		// Enumeration declares no recoverable failures.
		return nil, &StateError{Op: "enumerate", Err: err}
	}

	ids := make([]*PortIdentifier, 0, len(natives))
	for _, n := range natives {
		ids = append(ids, &PortIdentifier{native: n})
	}
	return ids, nil
}

// GetPortIdentifier resolves a single port by name. An unknown name fails
// with *NoSuchPortError; any other backend failure is a defect.
func GetPortIdentifier(name string) (*PortIdentifier, error) {
	if _, err := provider.Active(); err != nil {
		return nil, err
	}
	ops, err := provider.Handle[provider.PortIdentifierOps](provider.LogicalPortIdentifier)
	if err != nil {
		return nil, &StateError{Op: "lookup", Port: name, Err: err}
	}

	native, err := ops.Lookup(name)
	if err != nil {
		return nil, translateIfMatches(provider.FailureNoSuchPort, "lookup", name, err)
	}
	return &PortIdentifier{native: native}, nil
}

// ActiveProvider reports which backend serves this process, without
// triggering backend selection.
func ActiveProvider() (provider.ProviderID, bool) {
	return provider.ActiveID()
}

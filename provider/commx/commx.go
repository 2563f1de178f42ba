// Package commx adapts the legacy commx vendor stack: ports are declared in
// a properties file rather than discovered, and the parsed port table is held
// in a static master list.
//
// The master list is loaded once and never re-read, so ports added to the
// properties file after first use are invisible — a long-standing defect in
// the vendor stack. The facade's enumeration path compensates by driving the
// provider.Refresher hooks implemented here; everything else in this package
// behaves like a regular backend.
package commx

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/allbin/go-commport/internal/lockfile"
	"github.com/allbin/go-commport/internal/termio"
	"github.com/allbin/go-commport/provider"
)

var (
	errNoSuchPort = errors.New("commx: no such port")
)

const (
	// PropertiesEnv overrides the driver properties path.
	PropertiesEnv = "COMMX_PROPERTIES"
	// DefaultPropertiesPath is where the vendor stack installs its
	// configuration.
	DefaultPropertiesPath = "/etc/commx/commx.properties"
)

func init() {
	provider.Register(Backend())
}

// Backend returns the commx backend descriptor. It probes available when the
// driver properties file exists.
func Backend() provider.Backend {
	return provider.Backend{
		ID:       provider.CommX,
		Priority: 20,
		Probe: func() bool {
			_, err := os.Stat(PropertiesPath())
			return err == nil
		},
		Open: func() (provider.Provider, error) {
			return &prov{}, nil
		},
		Failures: map[provider.FailureKind]error{
			provider.FailurePortInUse:  lockfile.ErrLocked,
			provider.FailureNoSuchPort: errNoSuchPort,
		},
	}
}

// PropertiesPath returns the active driver properties path.
func PropertiesPath() string {
	if p := os.Getenv(PropertiesEnv); p != "" {
		return p
	}
	return DefaultPropertiesPath
}

// master is the static port-list cache. Loaded on first use and never
// re-read: this is the stale-cache defect the facade works around through
// the Refresher hooks.
var master struct {
	mu      sync.Mutex
	loaded  bool
	ports   []portEntry
	lockDir string
}

func loadMasterLocked(path string) error {
	table, err := parseProperties(path)
	if err != nil {
		return err
	}
	master.ports = table.ports
	master.lockDir = table.lockDir
	master.loaded = true
	return nil
}

func masterSnapshot() ([]portEntry, string, error) {
	master.mu.Lock()
	defer master.mu.Unlock()
	if !master.loaded {
		if err := loadMasterLocked(PropertiesPath()); err != nil {
			return nil, "", err
		}
	}
	ports := make([]portEntry, len(master.ports))
	copy(ports, master.ports)
	return ports, master.lockDir, nil
}

type prov struct{}

var (
	_ provider.Provider  = (*prov)(nil)
	_ provider.Refresher = (*prov)(nil)
)

func (p *prov) ID() provider.ProviderID { return provider.CommX }

func (p *prov) Resolve(logical string) (any, error) {
	switch logical {
	case provider.LogicalPortIdentifier:
		return &ops{}, nil
	default:
		return nil, fmt.Errorf("commx: unknown logical type %q", logical)
	}
}

// InvalidatePortCache drops the static master list so the next enumeration
// reloads it.
func (p *prov) InvalidatePortCache() {
	master.mu.Lock()
	defer master.mu.Unlock()
	master.loaded = false
	master.ports = nil
}

// ReloadDrivers re-parses the driver properties file at the given path into
// the master list.
func (p *prov) ReloadDrivers(propertiesPath string) error {
	master.mu.Lock()
	defer master.mu.Unlock()
	return loadMasterLocked(propertiesPath)
}

type ops struct{}

var _ provider.PortIdentifierOps = (*ops)(nil)

func (o *ops) Ports() ([]provider.NativePort, error) {
	entries, lockDir, err := masterSnapshot()
	if err != nil {
		return nil, err
	}
	ports := make([]provider.NativePort, 0, len(entries))
	for _, e := range entries {
		ports = append(ports, &nativePort{entry: e, lockDir: lockDir})
	}
	return ports, nil
}

func (o *ops) Lookup(name string) (provider.NativePort, error) {
	entries, lockDir, err := masterSnapshot()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.name == name {
			return &nativePort{entry: e, lockDir: lockDir}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", errNoSuchPort, name)
}

type nativePort struct {
	entry   portEntry
	lockDir string
}

func (n *nativePort) Name() string            { return n.entry.name }
func (n *nativePort) Kind() provider.PortKind { return n.entry.kind }

func (n *nativePort) Owned() (bool, error) {
	owned, _, err := lockfile.Check(n.lockDir, n.entry.name)
	return owned, err
}

func (n *nativePort) Owner() (string, error) {
	_, owner, err := lockfile.Check(n.lockDir, n.entry.name)
	return owner, err
}

func (n *nativePort) Open(appName string, timeout time.Duration, cfg provider.PortSettings) (provider.OpenedPort, error) {
	lock, err := lockfile.Acquire(n.lockDir, n.entry.name, appName, timeout)
	if err != nil {
		return nil, err
	}

	port, err := termio.Open(n.entry.name, n.entry.device, cfg, lock)
	if err != nil {
		lock.Release()
		return nil, err
	}
	return port, nil
}

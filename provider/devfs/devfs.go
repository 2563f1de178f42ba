// Package devfs is the native port backend: it enumerates character devices
// under /dev, opens them through termios, and models port ownership with
// UUCP-style lock files. It registers itself with the provider registry at
// the highest probe priority.
package devfs

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/allbin/go-commport/internal/lockfile"
	"github.com/allbin/go-commport/internal/termio"
	"github.com/allbin/go-commport/provider"
)

var errNoSuchPort = errors.New("devfs: no such port")

// LockDirEnv overrides the lock directory used for port claims.
const LockDirEnv = "COMMPORT_LOCK_DIR"

func init() {
	provider.Register(Backend())
}

// Backend returns the devfs backend descriptor.
func Backend() provider.Backend {
	return provider.Backend{
		ID:       provider.DevFS,
		Priority: 10,
		Probe:    probe,
		Open: func() (provider.Provider, error) {
			return &prov{lockDir: lockDir()}, nil
		},
		Failures: map[provider.FailureKind]error{
			provider.FailurePortInUse:  lockfile.ErrLocked,
			provider.FailureNoSuchPort: errNoSuchPort,
		},
	}
}

func probe() bool {
	info, err := os.Stat("/dev")
	return err == nil && info.IsDir()
}

func lockDir() string {
	if dir := os.Getenv(LockDirEnv); dir != "" {
		return dir
	}
	return lockfile.DefaultDir
}

type prov struct {
	lockDir string
}

func (p *prov) ID() provider.ProviderID { return provider.DevFS }

func (p *prov) Resolve(logical string) (any, error) {
	switch logical {
	case provider.LogicalPortIdentifier:
		return &ops{lockDir: p.lockDir}, nil
	default:
		return nil, fmt.Errorf("devfs: unknown logical type %q", logical)
	}
}

type ops struct {
	lockDir string
}

var _ provider.PortIdentifierOps = (*ops)(nil)

func (o *ops) Ports() ([]provider.NativePort, error) {
	devices, err := scanDevices("/dev")
	if err != nil {
		return nil, err
	}
	ports := make([]provider.NativePort, 0, len(devices))
	for _, d := range devices {
		ports = append(ports, &nativePort{
			name:    d.name,
			device:  d.path,
			kind:    d.kind,
			lockDir: o.lockDir,
		})
	}
	return ports, nil
}

func (o *ops) Lookup(name string) (provider.NativePort, error) {
	devices, err := scanDevices("/dev")
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if d.name == name || d.path == name {
			return &nativePort{
				name:    d.name,
				device:  d.path,
				kind:    d.kind,
				lockDir: o.lockDir,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", errNoSuchPort, name)
}

type nativePort struct {
	name    string
	device  string
	kind    provider.PortKind
	lockDir string
}

func (n *nativePort) Name() string            { return n.name }
func (n *nativePort) Kind() provider.PortKind { return n.kind }

func (n *nativePort) Owned() (bool, error) {
	owned, _, err := lockfile.Check(n.lockDir, n.name)
	return owned, err
}

func (n *nativePort) Owner() (string, error) {
	_, owner, err := lockfile.Check(n.lockDir, n.name)
	return owner, err
}

func (n *nativePort) Open(appName string, timeout time.Duration, cfg provider.PortSettings) (provider.OpenedPort, error) {
	lock, err := lockfile.Acquire(n.lockDir, n.name, appName, timeout)
	if err != nil {
		return nil, err
	}

	port, err := termio.Open(n.name, n.device, cfg, lock)
	if err != nil {
		lock.Release()
		return nil, err
	}
	return port, nil
}

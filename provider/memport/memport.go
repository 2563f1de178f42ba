// Package memport is an in-memory port backend for tests. A Simulator holds
// a mutable port table with claims, journals every backend operation, and
// can impersonate any provider id so facade behavior specific to one backend
// (such as the commx cache refresh) is observable against it.
//
// The simulator is never registered by default; tests reset the registry and
// register Simulator.Backend themselves.
package memport

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/allbin/go-commport/provider"
)

var (
	// ErrPortInUse is the simulator's declared port-in-use sentinel.
	ErrPortInUse = errors.New("memport: port in use")
	// ErrNoSuchPort is the simulator's declared no-such-port sentinel.
	ErrNoSuchPort = errors.New("memport: no such port")
)

// Simulator is an instrumented in-memory backend.
type Simulator struct {
	id provider.ProviderID

	mu      sync.Mutex
	ports   map[string]*simPort
	order   []string
	journal []string

	// OpDelay is slept inside each journaled operation; a non-zero delay
	// widens race windows so serialization violations surface in tests.
	OpDelay time.Duration

	reloadErr error
}

type simPort struct {
	name  string
	kind  provider.PortKind
	owner string
	owned bool
}

// NewSimulator creates a simulator that reports the given provider id.
func NewSimulator(id provider.ProviderID) *Simulator {
	return &Simulator{id: id, ports: make(map[string]*simPort)}
}

// Backend returns a registrable descriptor for the simulator. Probe always
// reports available.
func (s *Simulator) Backend(priority int) provider.Backend {
	return provider.Backend{
		ID:       s.id,
		Priority: priority,
		Probe:    func() bool { return true },
		Open:     func() (provider.Provider, error) { return s, nil },
		Failures: map[provider.FailureKind]error{
			provider.FailurePortInUse:  ErrPortInUse,
			provider.FailureNoSuchPort: ErrNoSuchPort,
		},
	}
}

// AddPort declares a port. Re-adding an existing name is a no-op.
func (s *Simulator) AddPort(name string, kind provider.PortKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ports[name]; ok {
		return
	}
	s.ports[name] = &simPort{name: name, kind: kind}
	s.order = append(s.order, name)
}

// Claim marks a port as owned by another application, as if a competing
// process had opened it.
func (s *Simulator) Claim(name, owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.ports[name]; ok {
		p.owned = true
		p.owner = owner
	}
}

// ReleaseClaim clears a claim placed with Claim or by an open.
func (s *Simulator) ReleaseClaim(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.ports[name]; ok {
		p.owned = false
		p.owner = ""
	}
}

// FailReloads makes subsequent ReloadDrivers calls return err (nil restores
// normal behavior).
func (s *Simulator) FailReloads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadErr = err
}

// Journal returns a copy of the recorded operation sequence.
func (s *Simulator) Journal() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.journal))
	copy(out, s.journal)
	return out
}

// record journals an op while holding no lock across the delay, so that
// concurrent facade calls may genuinely interleave unless the facade itself
// serializes them.
func (s *Simulator) record(op string) {
	s.mu.Lock()
	s.journal = append(s.journal, op)
	delay := s.OpDelay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
}

var (
	_ provider.Provider  = (*Simulator)(nil)
	_ provider.Refresher = (*Simulator)(nil)
)

func (s *Simulator) ID() provider.ProviderID { return s.id }

func (s *Simulator) Resolve(logical string) (any, error) {
	switch logical {
	case provider.LogicalPortIdentifier:
		return &ops{sim: s}, nil
	default:
		return nil, fmt.Errorf("memport: unknown logical type %q", logical)
	}
}

func (s *Simulator) InvalidatePortCache() {
	s.record("reset")
}

func (s *Simulator) ReloadDrivers(propertiesPath string) error {
	s.record("reload")
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadErr
}

type ops struct {
	sim *Simulator
}

var _ provider.PortIdentifierOps = (*ops)(nil)

func (o *ops) Ports() ([]provider.NativePort, error) {
	o.sim.record("enumerate")
	o.sim.mu.Lock()
	defer o.sim.mu.Unlock()
	ports := make([]provider.NativePort, 0, len(o.sim.order))
	for _, name := range o.sim.order {
		ports = append(ports, &nativePort{sim: o.sim, name: name})
	}
	return ports, nil
}

func (o *ops) Lookup(name string) (provider.NativePort, error) {
	o.sim.record("lookup " + name)
	o.sim.mu.Lock()
	defer o.sim.mu.Unlock()
	if _, ok := o.sim.ports[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchPort, name)
	}
	return &nativePort{sim: o.sim, name: name}, nil
}

type nativePort struct {
	sim  *Simulator
	name string
}

func (n *nativePort) Name() string { return n.name }

func (n *nativePort) Kind() provider.PortKind {
	n.sim.mu.Lock()
	defer n.sim.mu.Unlock()
	return n.sim.ports[n.name].kind
}

func (n *nativePort) Owned() (bool, error) {
	n.sim.mu.Lock()
	defer n.sim.mu.Unlock()
	return n.sim.ports[n.name].owned, nil
}

func (n *nativePort) Owner() (string, error) {
	n.sim.mu.Lock()
	defer n.sim.mu.Unlock()
	return n.sim.ports[n.name].owner, nil
}

func (n *nativePort) Open(appName string, timeout time.Duration, cfg provider.PortSettings) (provider.OpenedPort, error) {
	n.sim.record("open " + n.name)
	n.sim.mu.Lock()
	defer n.sim.mu.Unlock()
	p := n.sim.ports[n.name]
	if p.owned {
		return nil, fmt.Errorf("%w: %s is held by %s", ErrPortInUse, n.name, p.owner)
	}
	p.owned = true
	p.owner = appName
	return &openedPort{sim: n.sim, name: n.name}, nil
}

// openedPort is a loopback port: writes become readable input.
type openedPort struct {
	sim  *Simulator
	name string

	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (p *openedPort) Name() string { return p.name }

func (p *openedPort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, errors.New("memport: port closed")
	}
	return p.buf.Read(buf)
}

func (p *openedPort) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, errors.New("memport: port closed")
	}
	return p.buf.Write(data)
}

func (p *openedPort) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	p.sim.ReleaseClaim(p.name)
	return nil
}

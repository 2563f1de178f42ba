// Package commport provides a backend-agnostic API for enumerating,
// identifying, and opening communications ports.
//
// Several mutually incompatible port-access stacks exist in the wild; which
// one serves a given host is a deployment detail. This package probes the
// registered backends once per process, fixes the selection for the process
// lifetime, and presents one stable surface over whichever backend won, so
// call sites never depend on the concrete stack.
//
// # Port Discovery
//
// Enumerate the ports known to the active backend, or resolve one by name:
//
//	ports, err := commport.GetPortIdentifiers()
//	for _, p := range ports {
//	    owned, _ := p.CurrentlyOwned()
//	    fmt.Printf("%s (%s) owned=%v\n", p.Name(), p.PortType(), owned)
//	}
//
//	p, err := commport.GetPortIdentifier("ttyUSB0")
//	if errors.Is(err, commport.ErrNoSuchPort) {
//	    // handle unknown port name
//	}
//
// Every call to GetPortIdentifiers takes a fresh snapshot. On the commx
// backend the enumeration first resets the backend's stale port-list cache;
// see the provider/commx package for the defect this compensates for.
//
// # Opening Ports
//
// Open claims a port exclusively for a named application, waiting up to the
// given timeout for a competing claim to clear:
//
//	port, err := p.Open("myapp", 2*time.Second,
//	    commport.WithBaudRate(9600),
//	    commport.WithParity(commport.ParityEven),
//	)
//	if errors.Is(err, commport.ErrPortInUse) {
//	    // somebody else holds the port
//	}
//	defer port.Close()
//
// The returned Port is a plain io.ReadWriteCloser; behavioral differences
// between backends (timing, buffering) are deliberately not papered over.
//
// # Error Handling
//
// Recoverable conditions are typed and match their sentinels with errors.Is:
//
//	ErrPortInUse  // Open on a claimed port (*PortInUseError)
//	ErrNoSuchPort // lookup miss (*NoSuchPortError)
//	ErrNoProvider // no backend available on this host
//
// Anything else a backend signals is surfaced as *StateError: a defect in
// the backend or in this layer's assumptions about it, never retried here
// and never silently discarded.
//
// # Backends
//
// Two backends are linked by default: devfs (native /dev enumeration with
// termios access, preferred) and commx (the legacy vendor stack configured
// through a properties file). The provider/memport package offers an
// in-memory backend for tests.
package commport

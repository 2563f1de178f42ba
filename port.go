package commport

import (
	"io"

	"github.com/allbin/go-commport/provider"
)

// Port is an exclusive claim on a communications port, produced by
// PortIdentifier.Open. Close releases the claim; behavioral details of the
// underlying transfer (timing, buffering) are the backend's.
type Port struct {
	inner provider.OpenedPort
}

// Ensure Port satisfies the stream contract at compile time
var _ io.ReadWriteCloser = (*Port)(nil)

// Name returns the name of the port this claim was opened on.
func (p *Port) Name() string { return p.inner.Name() }

func (p *Port) Read(buf []byte) (int, error) { return p.inner.Read(buf) }

func (p *Port) Write(data []byte) (int, error) { return p.inner.Write(data) }

// Close releases the port back to the host. Closing twice is harmless.
func (p *Port) Close() error { return p.inner.Close() }

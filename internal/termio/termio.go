// Package termio holds the termios open path shared by the devfs and commx
// backends: raw-mode configuration from port settings and the opened-port
// handle that couples the device fd to its lock-file claim.
package termio

import (
	"fmt"
	"sync"

	"github.com/allbin/go-commport/internal/lockfile"
	"github.com/allbin/go-commport/provider"
	"golang.org/x/sys/unix"
)

// Open opens the device, configures it for raw I/O from the given settings,
// and binds the held claim to the returned port.
func Open(name, device string, cfg provider.PortSettings, lock *lockfile.Lock) (*Port, error) {
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %v", device, err)
	}

	if err := configure(fd, cfg); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Port{name: name, fd: fd, lock: lock}, nil
}

// configure applies raw-mode termios settings.
func configure(fd int, cfg provider.PortSettings) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("failed to get termios: %v", err)
	}

	// Raw mode: no input, output or line processing.
	termios.Cflag = unix.CREAD | unix.CLOCAL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	// Blocking reads, byte at a time.
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	baud, err := baudConstant(cfg.BaudRate)
	if err != nil {
		return err
	}
	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | baud
	termios.Ispeed = baud
	termios.Ospeed = baud

	switch cfg.DataBits {
	case 5:
		termios.Cflag |= unix.CS5
	case 6:
		termios.Cflag |= unix.CS6
	case 7:
		termios.Cflag |= unix.CS7
	default:
		termios.Cflag |= unix.CS8
	}

	if cfg.StopBits == 2 {
		termios.Cflag |= unix.CSTOPB
	}

	switch cfg.Parity {
	case provider.ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
	case provider.ParityEven:
		termios.Cflag |= unix.PARENB
	}

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("failed to set termios: %v", err)
	}
	return nil
}

// baudConstant converts an integer baud rate to the unix constant
func baudConstant(rate int) (uint32, error) {
	switch rate {
	case 300:
		return unix.B300, nil
	case 600:
		return unix.B600, nil
	case 1200:
		return unix.B1200, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 921600:
		return unix.B921600, nil
	default:
		return 0, fmt.Errorf("unsupported baud rate %d", rate)
	}
}

// Port is an open claim on a termios-backed port.
type Port struct {
	name string
	lock *lockfile.Lock

	mu     sync.RWMutex
	fd     int
	closed bool
}

var _ provider.OpenedPort = (*Port)(nil)

func (p *Port) Name() string { return p.name }

func (p *Port) Read(buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return 0, unix.EBADF
	}
	return unix.Read(p.fd, buf)
}

func (p *Port) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return 0, unix.EBADF
	}
	return unix.Write(p.fd, data)
}

// Close releases the device and the lock-file claim.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	err := unix.Close(p.fd)
	if p.lock != nil {
		if rerr := p.lock.Release(); err == nil {
			err = rerr
		}
	}
	return err
}

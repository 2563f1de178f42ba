// Package lockfile implements UUCP-style lock-dir port claims shared by the
// devfs and commx backends.
//
// A claim on port ttyUSB0 is a file LCK..ttyUSB0 in the lock directory whose
// content is "<pid> <appname>\n". Creation is O_EXCL so exactly one claimant
// wins; a lock whose pid no longer runs is stale and may be stolen.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned by Acquire when a live claim holds the port past the
// acquisition timeout.
var ErrLocked = errors.New("port is locked by another application")

// DefaultDir is the conventional lock directory on Linux hosts.
const DefaultDir = "/var/lock"

// pollInterval is how often Acquire re-attempts a contended claim.
const pollInterval = 50 * time.Millisecond

// Lock is a held claim. Release removes the lock file.
type Lock struct {
	path string
}

func lockPath(dir, port string) string {
	return filepath.Join(dir, "LCK.."+filepath.Base(port))
}

// Acquire claims the named port for app, retrying a contended claim until
// timeout elapses. A non-positive timeout allows a single attempt.
func Acquire(dir, port, app string, timeout time.Duration) (*Lock, error) {
	deadline := time.Now().Add(timeout)
	path := lockPath(dir, port)

	for {
		ok, err := tryCreate(path, app)
		if err != nil {
			return nil, err
		}
		if ok {
			return &Lock{path: path}, nil
		}

		// Contended. A dead holder forfeits the claim.
		if pid, _, err := readLock(path); err == nil && !pidAlive(pid) {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("removing stale lock %s: %w", path, err)
			}
			continue
		}

		if !time.Now().Before(deadline) {
			return nil, ErrLocked
		}
		time.Sleep(pollInterval)
	}
}

// Release removes the lock file. Releasing twice is harmless.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Check reports whether the named port is claimed and by which application.
// A stale lock (dead holder) reports unclaimed.
func Check(dir, port string) (owned bool, owner string, err error) {
	pid, app, err := readLock(lockPath(dir, port))
	if err != nil {
		if os.IsNotExist(err) {
			return false, "", nil
		}
		return false, "", err
	}
	if !pidAlive(pid) {
		return false, "", nil
	}
	return true, app, nil
}

func tryCreate(path, app string) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("creating lock %s: %w", path, err)
	}
	_, werr := fmt.Fprintf(f, "%10d %s\n", os.Getpid(), app)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		os.Remove(path)
		if werr != nil {
			return false, fmt.Errorf("writing lock %s: %w", path, werr)
		}
		return false, fmt.Errorf("writing lock %s: %w", path, cerr)
	}
	return true, nil
}

func readLock(path string) (pid int, app string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, "", err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, "", fmt.Errorf("lock %s is empty", path)
	}
	pid, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, "", fmt.Errorf("lock %s has malformed pid %q", path, fields[0])
	}
	if len(fields) > 1 {
		app = strings.Join(fields[1:], " ")
	}
	return pid, app, nil
}

// pidAlive probes liveness with a null signal.
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	// EPERM means the process exists but belongs to someone else.
	return err == nil || errors.Is(err, unix.EPERM)
}

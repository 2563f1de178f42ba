package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()

	lock, err := Acquire(dir, "ttyUSB0", "testapp", 0)
	require.NoError(t, err)

	owned, owner, err := Check(dir, "ttyUSB0")
	require.NoError(t, err)
	assert.True(t, owned)
	assert.Equal(t, "testapp", owner)

	require.NoError(t, lock.Release())

	owned, owner, err = Check(dir, "ttyUSB0")
	require.NoError(t, err)
	assert.False(t, owned)
	assert.Empty(t, owner)

	// Releasing twice is harmless.
	assert.NoError(t, lock.Release())
}

func TestAcquireContended(t *testing.T) {
	dir := t.TempDir()

	lock, err := Acquire(dir, "ttyUSB0", "holder", 0)
	require.NoError(t, err)
	defer lock.Release()

	start := time.Now()
	_, err = Acquire(dir, "ttyUSB0", "contender", 120*time.Millisecond)
	assert.ErrorIs(t, err, ErrLocked)
	assert.GreaterOrEqual(t, time.Since(start), 120*time.Millisecond,
		"contender gave up before the acquisition timeout")
}

func TestAcquireStealsStaleLock(t *testing.T) {
	dir := t.TempDir()

	// A pid above the kernel's pid ceiling cannot be running.
	stale := filepath.Join(dir, "LCK..ttyUSB0")
	require.NoError(t, os.WriteFile(stale, []byte(fmt.Sprintf("%10d deadapp\n", 1<<30)), 0o644))

	lock, err := Acquire(dir, "ttyUSB0", "testapp", 0)
	require.NoError(t, err)
	defer lock.Release()

	owned, owner, err := Check(dir, "ttyUSB0")
	require.NoError(t, err)
	assert.True(t, owned)
	assert.Equal(t, "testapp", owner)
}

func TestCheckIgnoresStaleLock(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "LCK..ttyS0")
	require.NoError(t, os.WriteFile(stale, []byte(fmt.Sprintf("%10d deadapp\n", 1<<30)), 0o644))

	owned, owner, err := Check(dir, "ttyS0")
	require.NoError(t, err)
	assert.False(t, owned)
	assert.Empty(t, owner)
}

func TestCheckMalformedLock(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "LCK..ttyS0"), []byte("not-a-pid app\n"), 0o644))

	_, _, err := Check(dir, "ttyS0")
	assert.Error(t, err)
}

func TestOwnerWithSpaces(t *testing.T) {
	dir := t.TempDir()

	lock, err := Acquire(dir, "ttyS0", "my app v2", 0)
	require.NoError(t, err)
	defer lock.Release()

	owned, owner, err := Check(dir, "ttyS0")
	require.NoError(t, err)
	assert.True(t, owned)
	assert.Equal(t, "my app v2", owner)
}

func TestPidAlive(t *testing.T) {
	assert.True(t, pidAlive(os.Getpid()))
	assert.False(t, pidAlive(0))
	assert.False(t, pidAlive(-1))
	assert.False(t, pidAlive(1<<30))
}

func TestLockPathUsesBaseName(t *testing.T) {
	// Claims keyed by device path and by bare name must collide.
	assert.Equal(t, lockPath("/var/lock", "/dev/ttyUSB0"), lockPath("/var/lock", "ttyUSB0"))
}

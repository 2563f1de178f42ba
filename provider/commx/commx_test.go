package commx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/allbin/go-commport/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetMaster clears the static cache between tests.
func resetMaster(t *testing.T) {
	t.Helper()
	master.mu.Lock()
	master.loaded = false
	master.ports = nil
	master.lockDir = ""
	master.mu.Unlock()
	t.Cleanup(func() {
		master.mu.Lock()
		master.loaded = false
		master.ports = nil
		master.lockDir = ""
		master.mu.Unlock()
	})
}

func writeProperties(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "commx.properties")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseProperties(t *testing.T) {
	path := writeProperties(t, `
# commx driver configuration
! alternate comment style
lock.dir=/run/lock

port.COM1=/dev/ttyS0,serial
port.COM2=/dev/ttyS1
port.LPT1=/dev/lp0,parallel
future.knob=ignored
`)

	table, err := parseProperties(path)
	require.NoError(t, err)
	assert.Equal(t, "/run/lock", table.lockDir)
	require.Len(t, table.ports, 3)

	// Sorted by name.
	assert.Equal(t, "COM1", table.ports[0].name)
	assert.Equal(t, "/dev/ttyS0", table.ports[0].device)
	assert.Equal(t, provider.KindSerial, table.ports[0].kind)

	assert.Equal(t, "COM2", table.ports[1].name)
	assert.Equal(t, provider.KindSerial, table.ports[1].kind, "kind defaults to serial")

	assert.Equal(t, "LPT1", table.ports[2].name)
	assert.Equal(t, provider.KindParallel, table.ports[2].kind)
}

func TestParsePropertiesErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing separator", "port.COM1 /dev/ttyS0"},
		{"duplicate port", "port.COM1=/dev/ttyS0\nport.COM1=/dev/ttyS1"},
		{"empty port name", "port.=/dev/ttyS0"},
		{"missing device", "port.COM1=,serial"},
		{"unknown kind", "port.COM1=/dev/ttyS0,infrared"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseProperties(writeProperties(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestParsePropertiesMissingFile(t *testing.T) {
	_, err := parseProperties(filepath.Join(t.TempDir(), "nope.properties"))
	assert.Error(t, err)
}

func TestMasterListGoesStale(t *testing.T) {
	resetMaster(t)
	path := writeProperties(t, "port.COM1=/dev/ttyS0,serial\n")
	t.Setenv(PropertiesEnv, path)

	o := &ops{}
	ports, err := o.Ports()
	require.NoError(t, err)
	require.Len(t, ports, 1)

	// A port added after first load is invisible: the master list is cached.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("port.COM2=/dev/ttyS1,serial\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	ports, err = o.Ports()
	require.NoError(t, err)
	assert.Len(t, ports, 1, "master list reloaded on its own; the defect (and the workaround) no longer apply")
}

func TestRefresherHooksReload(t *testing.T) {
	resetMaster(t)
	path := writeProperties(t, "port.COM1=/dev/ttyS0,serial\n")
	t.Setenv(PropertiesEnv, path)

	o := &ops{}
	ports, err := o.Ports()
	require.NoError(t, err)
	require.Len(t, ports, 1)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("port.COM2=/dev/ttyS1,serial\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	p := &prov{}
	p.InvalidatePortCache()
	require.NoError(t, p.ReloadDrivers(path))

	ports, err = o.Ports()
	require.NoError(t, err)
	assert.Len(t, ports, 2)
}

func TestLookup(t *testing.T) {
	resetMaster(t)
	path := writeProperties(t, "port.COM1=/dev/ttyS0,serial\n")
	t.Setenv(PropertiesEnv, path)

	o := &ops{}
	port, err := o.Lookup("COM1")
	require.NoError(t, err)
	assert.Equal(t, "COM1", port.Name())
	assert.Equal(t, provider.KindSerial, port.Kind())

	_, err = o.Lookup("COM9")
	assert.ErrorIs(t, err, errNoSuchPort)
}

func TestBackendProbe(t *testing.T) {
	resetMaster(t)

	t.Setenv(PropertiesEnv, filepath.Join(t.TempDir(), "missing.properties"))
	assert.False(t, Backend().Probe(), "probe must fail without a properties file")

	path := writeProperties(t, "port.COM1=/dev/ttyS0\n")
	t.Setenv(PropertiesEnv, path)
	assert.True(t, Backend().Probe())
}

func TestBackendDeclaresFailures(t *testing.T) {
	b := Backend()
	assert.Equal(t, provider.CommX, b.ID)
	assert.NotNil(t, b.Failures[provider.FailurePortInUse])
	assert.NotNil(t, b.Failures[provider.FailureNoSuchPort])
}

func TestPropertiesPathDefault(t *testing.T) {
	t.Setenv(PropertiesEnv, "")
	assert.Equal(t, DefaultPropertiesPath, PropertiesPath())

	t.Setenv(PropertiesEnv, "/tmp/custom.properties")
	assert.Equal(t, "/tmp/custom.properties", PropertiesPath())
}

package devfs

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/allbin/go-commport/provider"
)

// serialPatterns match communication-capable serial devices.
var serialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
	regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
	regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
	regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
	regexp.MustCompile(`^ttymxc\d+$`), // i.MX serial ports
	regexp.MustCompile(`^ttyO\d+$`),   // OMAP serial ports
	regexp.MustCompile(`^ttySAC\d+$`), // Samsung serial ports
	regexp.MustCompile(`^ttyTHS\d+$`), // Tegra serial ports
}

// parallelPatterns match parallel-port devices.
var parallelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^lp\d+$`),
	regexp.MustCompile(`^parport\d+$`),
}

// excludePatterns filter out virtual terminals and pseudo-terminals.
var excludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^tty\d+$`),  // Virtual terminals (tty1, tty2, etc.)
	regexp.MustCompile(`^console$`), // Console
	regexp.MustCompile(`^ptmx$`),    // Pseudo-terminal multiplexer
	regexp.MustCompile(`^pty.*$`),   // Pseudo-terminals
	regexp.MustCompile(`^pts/.*$`),  // Pseudo-terminal slaves
}

type device struct {
	name string
	path string
	kind provider.PortKind
}

// scanDevices takes a fresh snapshot of the communication-capable character
// devices under dir, sorted by name.
func scanDevices(dir string) ([]device, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var devices []device
	for _, entry := range entries {
		name := entry.Name()

		if matchesAny(excludePatterns, name) {
			continue
		}

		kind, ok := classify(name)
		if !ok {
			continue
		}

		fullPath := filepath.Join(dir, name)
		if !isCharacterDevice(fullPath) {
			continue
		}

		devices = append(devices, device{name: name, path: fullPath, kind: kind})
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].name < devices[j].name })
	return devices, nil
}

func classify(name string) (provider.PortKind, bool) {
	if matchesAny(serialPatterns, name) {
		return provider.KindSerial, true
	}
	if matchesAny(parallelPatterns, name) {
		return provider.KindParallel, true
	}
	return 0, false
}

func matchesAny(patterns []*regexp.Regexp, name string) bool {
	for _, p := range patterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

package commx

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/allbin/go-commport/internal/lockfile"
	"github.com/allbin/go-commport/provider"
)

// portEntry is one declared port from the properties file.
type portEntry struct {
	name   string
	device string
	kind   provider.PortKind
}

type driverTable struct {
	ports   []portEntry
	lockDir string
}

// parseProperties reads a commx driver properties file:
//
//	# comment
//	lock.dir=/var/lock
//	port.COM1=/dev/ttyS0,serial
//	port.LPT1=/dev/lp0,parallel
//
// The kind suffix defaults to serial. Port names are unique; a duplicate
// declaration is a configuration error.
func parseProperties(path string) (*driverTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("commx: reading driver properties: %w", err)
	}
	defer f.Close()

	table := &driverTable{lockDir: lockfile.DefaultDir}
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("commx: %s:%d: missing '=' separator", path, lineNo)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case key == "lock.dir":
			table.lockDir = value
		case strings.HasPrefix(key, "port."):
			name := strings.TrimPrefix(key, "port.")
			if name == "" {
				return nil, fmt.Errorf("commx: %s:%d: empty port name", path, lineNo)
			}
			if seen[name] {
				return nil, fmt.Errorf("commx: %s:%d: duplicate port %q", path, lineNo, name)
			}
			entry, err := parsePortValue(name, value)
			if err != nil {
				return nil, fmt.Errorf("commx: %s:%d: %w", path, lineNo, err)
			}
			seen[name] = true
			table.ports = append(table.ports, entry)
		default:
			// Unknown keys are tolerated for forward compatibility with
			// newer vendor configurations.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("commx: reading driver properties: %w", err)
	}

	sort.Slice(table.ports, func(i, j int) bool {
		return table.ports[i].name < table.ports[j].name
	})
	return table, nil
}

func parsePortValue(name, value string) (portEntry, error) {
	device, kindName, _ := strings.Cut(value, ",")
	device = strings.TrimSpace(device)
	if device == "" {
		return portEntry{}, fmt.Errorf("port %q has no device path", name)
	}

	kind := provider.KindSerial
	switch strings.TrimSpace(kindName) {
	case "", "serial":
	case "parallel":
		kind = provider.KindParallel
	default:
		return portEntry{}, fmt.Errorf("port %q has unknown kind %q", name, kindName)
	}

	return portEntry{name: name, device: device, kind: kind}, nil
}

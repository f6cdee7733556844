// Package platform reads the host-side facts the swact sequence depends
// on: the platform.conf role description, the software version from the
// build-info file, and the hosts-table IP lookup. It is read-only with the
// exception of the flag files in flags.go.
package platform

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/davidroman0O/swactd/errors"
)

// Subfunction tokens that can appear in the platform.conf subfunction list
const (
	SubfunctionController = "controller"
	SubfunctionWorker     = "worker"
)

// HostInfo holds the derived facts about the executing host
type HostInfo struct {
	Hostname     string
	Nodetype     string
	Subfunctions []string
	SWVersion    string
}

// ParseConf parses a platform.conf style file of key=value lines.
// Blank lines and lines starting with '#' are skipped; values may be
// double-quoted.
func ParseConf(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open platform conf: %w", err)
	}
	defer file.Close()

	return ParseConfReader(file)
}

// ParseConfReader parses key=value configuration from a reader
func ParseConfReader(r io.Reader) (map[string]string, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"`)
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read platform conf: %w", err)
	}

	return values, nil
}

// LoadHostInfo assembles HostInfo from platform.conf and the build-info
// file. The hostname comes from the OS, not the conf file; the conf file
// lags behind during initial configuration.
func LoadHostInfo(confPath, buildInfoPath string) (*HostInfo, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve hostname: %w", err)
	}

	conf, err := ParseConf(confPath)
	if err != nil {
		return nil, err
	}

	version, err := ReadBuildVersion(buildInfoPath)
	if err != nil {
		return nil, err
	}

	return &HostInfo{
		Hostname:     hostname,
		Nodetype:     conf["nodetype"],
		Subfunctions: splitSubfunctions(conf["subfunction"]),
		SWVersion:    version,
	}, nil
}

func splitSubfunctions(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	subfunctions := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			subfunctions = append(subfunctions, trimmed)
		}
	}
	return subfunctions
}

// HasSubfunction reports whether the host carries the given subfunction
func (h *HostInfo) HasSubfunction(name string) bool {
	for _, sub := range h.Subfunctions {
		if sub == name {
			return true
		}
	}
	return false
}

// ReadBuildVersion extracts the SW_VERSION value from a build-info file
func ReadBuildVersion(path string) (string, error) {
	conf, err := ParseConf(path)
	if err != nil {
		return "", err
	}

	version, err := VersionFromConf(conf)
	if err != nil {
		return "", errors.Newf(errors.ErrConfiguration, "no SW_VERSION in %s", path)
	}
	return version, nil
}

// VersionFromConf extracts the SW_VERSION value from parsed conf values
func VersionFromConf(conf map[string]string) (string, error) {
	version, ok := conf["SW_VERSION"]
	if !ok || version == "" {
		return "", errors.New(errors.ErrConfiguration, "missing SW_VERSION")
	}
	return version, nil
}

// LookupHostIP resolves a hostname to an IP address from an
// /etc/hosts-format table. Aliases on the same line are matched too.
func LookupHostIP(hostsPath, hostname string) (string, error) {
	file, err := os.Open(hostsPath)
	if err != nil {
		return "", fmt.Errorf("failed to open hosts table: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if net.ParseIP(fields[0]) == nil {
			continue
		}

		for _, name := range fields[1:] {
			if name == hostname {
				return fields[0], nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read hosts table: %w", err)
	}

	return "", errors.Newf(errors.ErrHostNotFound, "no hosts entry for %q", hostname)
}

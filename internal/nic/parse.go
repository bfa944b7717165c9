package nic

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/ndmpd/ndmpadm/pkg/models"
)

// DefaultSkipPrefixes are interfaces that can never carry NDMP traffic:
// loopback, tunnels, firewall pseudo devices and NTB links
var DefaultSkipPrefixes = []string{"ntb", "tun", "ipfw", "lo"}

// Interfaces maps an interface name to its addresses in the order the
// system reported them
type Interfaces map[string][]string

// Names returns the interface names sorted
func (i Interfaces) Names() []string {
	names := make([]string, 0, len(i))
	for name := range i {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is a known interface
func (i Interfaces) Has(name string) bool {
	_, ok := i[name]
	return ok
}

// Format renders one interface as name(addr1,addr2)
func (i Interfaces) Format(name string) string {
	return models.Interface{Name: name, Addresses: i[name]}.String()
}

// Parse reads ifconfig output. Both the BSD/new Linux layout ("em0: flags=...")
// and the net-tools layout ("eth0      Link encap:...") are understood.
// Interfaces whose name starts with one of skip are left out.
// Unparseable input gives an empty result.
func Parse(r io.Reader, skip []string) Interfaces {
	nics := make(Interfaces)
	current := ""

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if isHeader(line) {
			current = ""
			if hasAnyPrefix(line, skip) {
				continue
			}
			name := headerName(line)
			if name == "" {
				continue
			}
			current = name
			nics[current] = []string{}
			continue
		}

		if current == "" {
			continue
		}
		if addr, ok := inetAddress(line); ok {
			nics[current] = append(nics[current], addr)
		}
	}

	return nics
}

// isHeader reports whether line starts a new interface block. Continuation
// lines are indented, so any line starting in the '0'..'z' range is a header.
func isHeader(line string) bool {
	c := line[0]
	return c >= '0' && c <= 'z'
}

func headerName(line string) string {
	var name string
	if strings.Contains(line, "flags") {
		name, _, _ = strings.Cut(line, ":")
	} else {
		name, _, _ = strings.Cut(line, "Link")
	}
	return strings.TrimSpace(name)
}

func inetAddress(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "inet ") {
		return "", false
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", false
	}
	// net-tools prints "inet addr:10.0.0.1  Bcast:..."
	return strings.TrimPrefix(fields[1], "addr:"), true
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

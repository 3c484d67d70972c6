package link

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.bug.st/serial/enumerator"
)

// ErrNoPort is returned by SelectPort when no serial port is available.
var ErrNoPort = errors.New("no serial port found")

type PortInfo struct {
	Name    string
	USB     bool
	VID     string
	PID     string
	Serial  string
	Product string
}

func (p PortInfo) String() string {
	if !p.USB {
		return p.Name
	}
	s := p.Name + " [usb " + p.VID + ":" + p.PID
	if p.Product != "" {
		s += " " + p.Product
	}
	return s + "]"
}

// ListPorts returns the serial ports the OS knows about, sorted by name.
// When the enumerator reports nothing, common device globs are tried.
func ListPorts() []PortInfo {
	if details, err := enumerator.GetDetailedPortsList(); err == nil && len(details) > 0 {
		out := make([]PortInfo, 0, len(details))
		seen := make(map[string]struct{}, len(details))
		for _, d := range details {
			if d == nil || d.Name == "" {
				continue
			}
			if _, ok := seen[d.Name]; ok {
				continue
			}
			seen[d.Name] = struct{}{}
			out = append(out, PortInfo{
				Name:    d.Name,
				USB:     d.IsUSB,
				VID:     d.VID,
				PID:     d.PID,
				Serial:  d.SerialNumber,
				Product: d.Product,
			})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	}

	var names []string
	switch runtime.GOOS {
	case "windows":
		return nil
	case "darwin":
		names = listByGlob("/dev/cu.*")
	default:
		names = listByGlob("/dev/ttyUSB*", "/dev/ttyACM*")
	}
	out := make([]PortInfo, 0, len(names))
	for _, n := range names {
		out = append(out, PortInfo{Name: n, USB: strings.Contains(n, "USB") || strings.Contains(n, "ACM") || strings.Contains(n, "usb")})
	}
	return out
}

func listByGlob(patterns ...string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 8)
	for _, pat := range patterns {
		matches, _ := filepath.Glob(pat)
		for _, m := range matches {
			if _, err := os.Stat(m); err != nil {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

// SelectPort picks the device to open: preferred when set, else the first
// USB port, else the first port listed.
func SelectPort(preferred string, ports []PortInfo) (string, error) {
	if p := strings.TrimSpace(preferred); p != "" {
		return p, nil
	}
	for _, p := range ports {
		if p.USB {
			return p.Name, nil
		}
	}
	if len(ports) > 0 {
		return ports[0].Name, nil
	}
	return "", ErrNoPort
}

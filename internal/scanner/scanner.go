package scanner

import (
	"context"
	"errors"
	"sort"
)

// Port represents a listening socket and its associated process
type Port struct {
	Port           uint16 `json:"port" yaml:"port"`
	PID            int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Process        string `json:"process_name,omitempty" yaml:"process_name,omitempty"`
	Protocol       string `json:"protocol" yaml:"protocol"`
	State          string `json:"state" yaml:"state"`
	Address        string `json:"local_address" yaml:"local_address"`
	ForeignAddress string `json:"foreign_address,omitempty" yaml:"foreign_address,omitempty"`
	IsDevelopment  bool   `json:"is_development" yaml:"is_development"`
}

// ScanResult is a snapshot of one scan. Use NewScanResult to build one.
type ScanResult struct {
	Ports            []Port `json:"ports" yaml:"ports"`
	TotalCount       int    `json:"total_count" yaml:"total_count"`
	DevelopmentCount int    `json:"development_count" yaml:"development_count"`
}

// NewScanResult classifies the ports, sorts them by port number and counts them.
// The input slice is not modified.
func NewScanResult(ports []Port) ScanResult {
	out := make([]Port, len(ports))
	copy(out, ports)

	dev := 0
	for i := range out {
		out[i].IsDevelopment = IsDevelopmentPort(out[i].Port)
		if out[i].IsDevelopment {
			dev++
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Port < out[j].Port
	})

	return ScanResult{
		Ports:            out,
		TotalCount:       len(out),
		DevelopmentCount: dev,
	}
}

// Development returns the development ports of the result, in order
func (r ScanResult) Development() []Port {
	ports := make([]Port, 0, r.DevelopmentCount)
	for _, p := range r.Ports {
		if p.IsDevelopment {
			ports = append(ports, p)
		}
	}
	return ports
}

// Port returns the first listener on port, if any
func (r ScanResult) Port(port uint16) (Port, bool) {
	for _, p := range r.Ports {
		if p.Port == port {
			return p, true
		}
	}
	return Port{}, false
}

// InRange returns the listeners with lo <= port <= hi, in order
func (r ScanResult) InRange(lo, hi uint16) []Port {
	var ports []Port
	for _, p := range r.Ports {
		if p.Port >= lo && p.Port <= hi {
			ports = append(ports, p)
		}
	}
	return ports
}

// Scanner is implemented once per platform. Exactly one implementation is
// compiled into a binary.
type Scanner interface {
	// Name identifies the strategy, e.g. "lsof".
	Name() string
	// ListPorts returns the listening sockets, unclassified and unsorted.
	ListPorts(ctx context.Context) ([]Port, error)
	// KillPort force-kills the process bound to port. It reports false when
	// nothing is bound to the port.
	KillPort(ctx context.Context, port uint16) (bool, error)
}

// ErrUnsupportedPlatform is returned on operating systems without a strategy.
var ErrUnsupportedPlatform = errors.New("port scanning is not supported on this platform")

// New returns the scanner for the current platform
func New(runner Runner) Scanner {
	if runner == nil {
		runner = ExecRunner()
	}
	return newPlatformScanner(runner)
}

package scanner

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Manager exposes the scan and kill operations over the platform scanner.
// It holds no state between calls.
type Manager struct {
	scanner Scanner
	timeout time.Duration
}

// Option configures a Manager
type Option func(*Manager)

// WithTimeout bounds every call, including the child processes it spawns.
// Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.timeout = d
	}
}

// WithScanner replaces the platform scanner
func WithScanner(s Scanner) Option {
	return func(m *Manager) {
		m.scanner = s
	}
}

// WithRunner runs the platform scanner's commands through r
func WithRunner(r Runner) Option {
	return func(m *Manager) {
		m.scanner = New(r)
	}
}

// NewManager returns a Manager for the current platform
func NewManager(opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.scanner == nil {
		m.scanner = New(nil)
	}
	return m
}

// Platform names the active scanning strategy
func (m *Manager) Platform() string {
	return m.scanner.Name()
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

// ScanPorts lists the listening ports. It fails only when the listing tool
// cannot be run; lines it cannot parse are skipped.
func (m *Manager) ScanPorts(ctx context.Context) (ScanResult, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	ports, err := m.scanner.ListPorts(ctx)
	if err != nil {
		return ScanResult{}, err
	}

	return NewScanResult(ports), nil
}

// KillPort force-kills the process bound to port, looked up at call time.
// It returns false without error when no process holds the port.
func (m *Manager) KillPort(ctx context.Context, port uint16) (bool, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	return m.scanner.KillPort(ctx, port)
}

// KillResult is the outcome of one kill in KillPorts
type KillResult struct {
	Port   uint16 `json:"port" yaml:"port"`
	Killed bool   `json:"killed" yaml:"killed"`
	Err    error  `json:"-" yaml:"-"`
}

// KillPorts kills the processes on several ports concurrently. A failure on
// one port does not stop the others. Results are in the order of ports.
func (m *Manager) KillPorts(ctx context.Context, ports []uint16) []KillResult {
	results := make([]KillResult, len(ports))

	var g errgroup.Group
	for i, port := range ports {
		g.Go(func() error {
			killed, err := m.KillPort(ctx, port)
			results[i] = KillResult{Port: port, Killed: killed, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

//go:build !darwin && !linux && !windows

package scanner

import "context"

type unsupportedScanner struct{}

func newPlatformScanner(Runner) Scanner {
	return unsupportedScanner{}
}

func (unsupportedScanner) Name() string {
	return "unsupported"
}

func (unsupportedScanner) ListPorts(context.Context) ([]Port, error) {
	return nil, ErrUnsupportedPlatform
}

func (unsupportedScanner) KillPort(context.Context, uint16) (bool, error) {
	return false, ErrUnsupportedPlatform
}

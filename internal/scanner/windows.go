//go:build windows

package scanner

func newPlatformScanner(runner Runner) Scanner {
	return &netstatScanner{runner: runner}
}

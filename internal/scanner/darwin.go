//go:build darwin

package scanner

func newPlatformScanner(runner Runner) Scanner {
	return &lsofScanner{runner: runner}
}

//go:build linux

package scanner

func newPlatformScanner(runner Runner) Scanner {
	return &ssScanner{runner: runner}
}

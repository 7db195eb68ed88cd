package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeResponse struct {
	out Output
	err error
}

// fakeRunner answers commands by their full command line, e.g. "kill -9 4021".
type fakeRunner struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	calls     []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: make(map[string]fakeResponse)}
}

func (f *fakeRunner) on(cmdline string, stdout string, exitCode int) *fakeRunner {
	f.responses[cmdline] = fakeResponse{out: Output{Stdout: []byte(stdout), ExitCode: exitCode}}
	return f
}

func (f *fakeRunner) fail(cmdline string, err error) *fakeRunner {
	f.responses[cmdline] = fakeResponse{err: err}
	return f
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (Output, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmdline)

	resp, ok := f.responses[cmdline]
	if !ok {
		return Output{}, &ToolInvocationError{Tool: name, Err: os.ErrNotExist}
	}
	return resp.out, resp.err
}

func (f *fakeRunner) callCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

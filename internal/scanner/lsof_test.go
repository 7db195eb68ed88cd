package scanner

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLsofOutput(t *testing.T) {
	ports := parseLsofOutput([]byte(readFixture(t, "lsof_darwin.txt")))

	want := []Port{
		{Port: 49152, PID: 512, Process: "rapportd", Protocol: "TCP", State: "LISTEN", Address: "*:49152"},
		{Port: 49152, PID: 512, Process: "rapportd", Protocol: "TCP", State: "LISTEN", Address: "*:49152"},
		{Port: 9229, PID: 811, Process: "Code Helper", Protocol: "TCP", State: "LISTEN", Address: "127.0.0.1:9229"},
		{Port: 5173, PID: 4021, Process: "node", Protocol: "TCP", State: "LISTEN", Address: "[::1]:5173"},
		{Port: 3000, PID: 4021, Process: "node", Protocol: "TCP", State: "LISTEN", Address: "127.0.0.1:3000"},
		{Port: 5432, PID: 990, Process: "postgres", Protocol: "TCP", State: "LISTEN", Address: "127.0.0.1:5432"},
	}
	assert.Equal(t, want, ports)
}

func TestParseLsofOutput_DropsMalformedLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"non numeric pid", "node abc dev 23u IPv4 0x1 0t0 TCP 127.0.0.1:3000 (LISTEN)"},
		{"port out of range", "node 1 dev 23u IPv4 0x1 0t0 TCP 127.0.0.1:65536 (LISTEN)"},
		{"service name port", "node 1 dev 23u IPv4 0x1 0t0 TCP 127.0.0.1:http (LISTEN)"},
		{"no colon", "node 1 dev 23u IPv4 0x1 0t0 TCP localhost (LISTEN)"},
		{"too few fields", "node 1 dev TCP (LISTEN)"},
		{"not listening", "node 1 dev 23u IPv4 0x1 0t0 TCP 127.0.0.1:3000->127.0.0.1:4000 (ESTABLISHED)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := "COMMAND PID USER FD TYPE DEVICE SIZE/OFF NODE NAME\n" + tt.line + "\n"
			assert.Empty(t, parseLsofOutput([]byte(output)))
		})
	}
}

func TestParseLsofOutput_SkipsHeaderOnly(t *testing.T) {
	// A data row in first position is treated as the header
	output := "node 1 dev 23u IPv4 0x1 0t0 TCP 127.0.0.1:3000 (LISTEN)\n"
	assert.Empty(t, parseLsofOutput([]byte(output)))
	assert.Empty(t, parseLsofOutput(nil))
}

func TestUnescapeProcessName(t *testing.T) {
	assert.Equal(t, "Code Helper", unescapeProcessName(`Code\x20Helper`))
	assert.Equal(t, "com.docker-backend", unescapeProcessName(`com.docker\x2dbackend`))
	assert.Equal(t, "node", unescapeProcessName("node"))
}

func TestPortFromAddress(t *testing.T) {
	tests := []struct {
		address string
		port    uint16
		ok      bool
	}{
		{"*:3000", 3000, true},
		{"127.0.0.1:8080", 8080, true},
		{"[::1]:5173", 5173, true},
		{"[fe80::1%lo0]:22", 22, true},
		{"0.0.0.0:0", 0, true},
		{"0.0.0.0:65535", 65535, true},
		{"0.0.0.0:65536", 0, false},
		{"0.0.0.0:-1", 0, false},
		{"0.0.0.0:*", 0, false},
		{"localhost", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			port, ok := portFromAddress(tt.address)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.port, port)
		})
	}
}

func TestLsofScanner_ListPorts(t *testing.T) {
	runner := newFakeRunner().on("lsof -i -P -n", readFixture(t, "lsof_darwin.txt"), 0)
	s := &lsofScanner{runner: runner}

	ports, err := s.ListPorts(context.Background())
	require.NoError(t, err)
	assert.Len(t, ports, 6)
	assert.Equal(t, 1, runner.callCount("lsof"))
}

func TestLsofScanner_ListPorts_NoMatchesExitOne(t *testing.T) {
	runner := newFakeRunner().on("lsof -i -P -n", "", 1)
	s := &lsofScanner{runner: runner}

	ports, err := s.ListPorts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ports)
}

func TestLsofScanner_ListPorts_SpawnFailure(t *testing.T) {
	spawnErr := &ToolInvocationError{Tool: "lsof", Err: os.ErrPermission}
	runner := newFakeRunner().fail("lsof -i -P -n", spawnErr)
	s := &lsofScanner{runner: runner}

	_, err := s.ListPorts(context.Background())
	require.Error(t, err)

	var toolErr *ToolInvocationError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "lsof", toolErr.Tool)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), os.ErrPermission.Error())
}

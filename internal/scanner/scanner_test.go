package scanner

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScanResult(t *testing.T) {
	input := []Port{
		{Port: 8080, PID: 3, Address: "*:8080"},
		{Port: 22, PID: 1, Address: "0.0.0.0:22"},
		{Port: 3000, PID: 2, Address: "127.0.0.1:3000"},
		{Port: 22, PID: 1, Address: "[::]:22"},
		{Port: 1420, PID: 4, Address: "127.0.0.1:1420"},
	}

	result := NewScanResult(input)

	ports := make([]uint16, 0, len(result.Ports))
	for _, p := range result.Ports {
		ports = append(ports, p.Port)
	}
	assert.Equal(t, []uint16{22, 22, 1420, 3000, 8080}, ports)
	assert.Equal(t, "0.0.0.0:22", result.Ports[0].Address, "equal ports keep input order")
	assert.Equal(t, "[::]:22", result.Ports[1].Address)

	assert.Equal(t, 5, result.TotalCount)
	assert.Equal(t, 3, result.DevelopmentCount)

	// input untouched
	assert.Equal(t, uint16(8080), input[0].Port)
	assert.False(t, input[0].IsDevelopment)
}

func TestNewScanResult_Invariants(t *testing.T) {
	fixtures := map[string][]Port{
		"lsof":    parseLsofOutput([]byte(readFixture(t, "lsof_darwin.txt"))),
		"ss":      parseSSOutput([]byte(readFixture(t, "ss_linux.txt"))),
		"netstat": parseNetstatOutput([]byte(readFixture(t, "netstat_windows.txt"))),
		"empty":   nil,
	}

	for name, ports := range fixtures {
		t.Run(name, func(t *testing.T) {
			result := NewScanResult(ports)

			assert.True(t, sort.SliceIsSorted(result.Ports, func(i, j int) bool {
				return result.Ports[i].Port < result.Ports[j].Port
			}))
			assert.Equal(t, len(result.Ports), result.TotalCount)

			dev := 0
			for _, p := range result.Ports {
				assert.Equal(t, IsDevelopmentPort(p.Port), p.IsDevelopment)
				assert.Contains(t, []string{"LISTEN", "LISTENING"}, p.State)
				assert.Empty(t, p.ForeignAddress)
				if p.IsDevelopment {
					dev++
				}
			}
			assert.Equal(t, dev, result.DevelopmentCount)
			assert.Len(t, result.Development(), dev)
		})
	}
}

func TestNewScanResult_Deterministic(t *testing.T) {
	fixture := []byte(readFixture(t, "lsof_darwin.txt"))

	first := NewScanResult(parseLsofOutput(fixture))
	second := NewScanResult(parseLsofOutput(fixture))

	require.NotEmpty(t, first.Ports)
	assert.Equal(t, first, second)
}

func TestScanResult_Port(t *testing.T) {
	result := NewScanResult([]Port{
		{Port: 5173, PID: 7, Address: "[::1]:5173"},
		{Port: 22, PID: 1, Address: "0.0.0.0:22"},
		{Port: 22, PID: 1, Address: "[::]:22"},
	})

	p, ok := result.Port(22)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:22", p.Address)

	p, ok = result.Port(5173)
	require.True(t, ok)
	assert.True(t, p.IsDevelopment)

	_, ok = result.Port(3000)
	assert.False(t, ok)
}

func TestScanResult_InRange(t *testing.T) {
	result := NewScanResult([]Port{
		{Port: 2999}, {Port: 3000}, {Port: 3500}, {Port: 3999}, {Port: 4000},
	})

	ports := func(in []Port) []uint16 {
		var out []uint16
		for _, p := range in {
			out = append(out, p.Port)
		}
		return out
	}

	assert.Equal(t, []uint16{3000, 3500, 3999}, ports(result.InRange(3000, 3999)), "both ends inclusive")
	assert.Equal(t, []uint16{3500}, ports(result.InRange(3500, 3500)))
	assert.Empty(t, result.InRange(4001, 65535))
	assert.Empty(t, result.InRange(3999, 3000))
	assert.Len(t, result.InRange(0, 65535), 5)
}

func TestGroupByProcess(t *testing.T) {
	ports := []Port{
		{Port: 3000, Process: "node"},
		{Port: 22, Process: "sshd"},
		{Port: 5173, Process: "node"},
		{Port: 5432},
	}

	groups := GroupByProcess(ports)
	require.Len(t, groups, 3)

	assert.Equal(t, "node", groups[0].Process)
	assert.Equal(t, 2, groups[0].TotalPorts)
	assert.Equal(t, uint16(3000), groups[0].Ports[0].Port)
	assert.Equal(t, uint16(5173), groups[0].Ports[1].Port)

	assert.Equal(t, "sshd", groups[1].Process)
	assert.Equal(t, UnknownProcess, groups[2].Process)
	assert.Equal(t, 1, groups[2].TotalPorts)

	assert.Empty(t, GroupByProcess(nil))
}

package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ScanPorts(t *testing.T) {
	runner := newFakeRunner().on("ss -tlnp", readFixture(t, "ss_linux.txt"), 0)
	m := NewManager(WithScanner(&ssScanner{runner: runner}))

	result, err := m.ScanPorts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, result.TotalCount)
	assert.Equal(t, 3, result.DevelopmentCount) // 3000, 5173, 5432
	assert.Equal(t, uint16(22), result.Ports[0].Port)
	assert.Equal(t, uint16(5432), result.Ports[len(result.Ports)-1].Port)
	assert.Equal(t, "ss", m.Platform())
}

func TestManager_ScanPorts_Twice(t *testing.T) {
	runner := newFakeRunner().on("lsof -i -P -n", readFixture(t, "lsof_darwin.txt"), 0)
	m := NewManager(WithScanner(&lsofScanner{runner: runner}))

	first, err := m.ScanPorts(context.Background())
	require.NoError(t, err)
	second, err := m.ScanPorts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, runner.callCount("lsof -i"))
}

func TestManager_ScanPorts_ToolError(t *testing.T) {
	m := NewManager(WithScanner(&lsofScanner{runner: newFakeRunner()}))

	_, err := m.ScanPorts(context.Background())
	var toolErr *ToolInvocationError
	require.ErrorAs(t, err, &toolErr)
}

func TestManager_Timeout(t *testing.T) {
	blocking := RunnerFunc(func(ctx context.Context, name string, args ...string) (Output, error) {
		<-ctx.Done()
		return Output{}, &ToolInvocationError{Tool: name, Err: ctx.Err()}
	})
	m := NewManager(WithScanner(&lsofScanner{runner: blocking}), WithTimeout(20*time.Millisecond))

	_, err := m.ScanPorts(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = m.KillPort(context.Background(), 3000)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManager_NoTimeoutByDefault(t *testing.T) {
	var hasDeadline bool
	runner := RunnerFunc(func(ctx context.Context, name string, args ...string) (Output, error) {
		_, hasDeadline = ctx.Deadline()
		return Output{}, nil
	})
	m := NewManager(WithScanner(&lsofScanner{runner: runner}))

	_, err := m.ScanPorts(context.Background())
	require.NoError(t, err)
	assert.False(t, hasDeadline)
}

func TestManager_KillPort(t *testing.T) {
	runner := newFakeRunner().
		on("lsof -ti tcp:3000", "4021\n", 0).
		on("kill -9 4021", "", 0).
		on("lsof -ti tcp:4000", "", 1)
	m := NewManager(WithScanner(&lsofScanner{runner: runner}))

	killed, err := m.KillPort(context.Background(), 3000)
	require.NoError(t, err)
	assert.True(t, killed)

	killed, err = m.KillPort(context.Background(), 4000)
	require.NoError(t, err)
	assert.False(t, killed)

	// no scan is involved in a kill
	assert.Equal(t, 0, runner.callCount("lsof -i "))
}

func TestManager_KillPorts(t *testing.T) {
	runner := newFakeRunner().
		on("lsof -ti tcp:3000", "4021\n", 0).
		on("kill -9 4021", "", 0).
		on("lsof -ti tcp:4000", "", 1).
		on("lsof -ti tcp:5000", "oops\n", 0)
	m := NewManager(WithScanner(&lsofScanner{runner: runner}))

	results := m.KillPorts(context.Background(), []uint16{3000, 4000, 5000, 6000})
	require.Len(t, results, 4)

	assert.Equal(t, KillResult{Port: 3000, Killed: true}, results[0])
	assert.Equal(t, KillResult{Port: 4000}, results[1])

	assert.Equal(t, uint16(5000), results[2].Port)
	var parseErr *ParseError
	assert.True(t, errors.As(results[2].Err, &parseErr))

	assert.Equal(t, uint16(6000), results[3].Port)
	var toolErr *ToolInvocationError
	assert.True(t, errors.As(results[3].Err, &toolErr))
}

func TestNewManager_DefaultsToPlatformScanner(t *testing.T) {
	m := NewManager(WithRunner(newFakeRunner()))
	assert.NotEmpty(t, m.Platform())
}

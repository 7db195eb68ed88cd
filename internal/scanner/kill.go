package scanner

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// killUnix resolves the PID on port with `lsof -ti tcp:<port>` and sends it
// SIGKILL through kill(1). The result is kill's exit status.
func killUnix(ctx context.Context, runner Runner, port uint16) (bool, error) {
	out, err := runner.Run(ctx, "lsof", "-ti", fmt.Sprintf("tcp:%d", port))
	if err != nil {
		return false, fmt.Errorf("failed to find process on port %d: %w", port, err)
	}

	pidStr := strings.TrimSpace(string(out.Stdout))
	if pidStr == "" {
		return false, nil
	}

	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return false, &ParseError{Input: pidStr, Err: err}
	}

	res, err := runner.Run(ctx, "kill", "-9", strconv.Itoa(pid))
	if err != nil {
		return false, fmt.Errorf("failed to kill process %d: %w", pid, err)
	}

	return res.Success(), nil
}

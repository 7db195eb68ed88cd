package scanner

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"
)

var (
	ssPIDRegex  = regexp.MustCompile(`pid=(\d+)`)
	ssProcRegex = regexp.MustCompile(`"([^"]+)"`)
)

// ssScanner lists with `ss -tlnp`. Kills go through lsof, as on macOS.
type ssScanner struct {
	runner Runner
}

func (s *ssScanner) Name() string {
	return "ss"
}

func (s *ssScanner) ListPorts(ctx context.Context) ([]Port, error) {
	// ss -tlnp: TCP, listening, numeric, show process
	out, err := s.runner.Run(ctx, "ss", "-tlnp")
	if err != nil {
		return nil, err
	}

	return parseSSOutput(out.Stdout), nil
}

func (s *ssScanner) KillPort(ctx context.Context, port uint16) (bool, error) {
	return killUnix(ctx, s.runner, port)
}

// parseSSOutput parses `ss -tlnp` output:
//
//	State  Recv-Q Send-Q Local Address:Port Peer Address:Port Process
//	LISTEN 0      128    0.0.0.0:22         0.0.0.0:*         users:(("sshd",pid=1234,fd=3))
func parseSSOutput(output []byte) []Port {
	var ports []Port

	scanner := bufio.NewScanner(bytes.NewReader(output))
	// Skip header
	scanner.Scan()

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "LISTEN") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		localAddr := fields[3]
		port, ok := portFromAddress(localAddr)
		if !ok {
			continue
		}

		// Process info is best effort: it is missing for sockets owned by
		// other users when ss runs unprivileged.
		var pid int
		var process string
		if len(fields) >= 6 {
			procInfo := strings.Join(fields[5:], " ")
			if matches := ssPIDRegex.FindStringSubmatch(procInfo); matches != nil {
				pid, _ = strconv.Atoi(matches[1])
			}
			if matches := ssProcRegex.FindStringSubmatch(procInfo); matches != nil {
				process = matches[1]
			}
		}

		ports = append(ports, Port{
			Port:     port,
			PID:      pid,
			Process:  process,
			Protocol: "TCP",
			State:    "LISTEN",
			Address:  localAddr,
		})
	}

	return ports
}

package scanner

import (
	"bufio"
	"bytes"
	"context"
	"strconv"
	"strings"
)

// lsofScanner lists with `lsof -i -P -n` and kills through `lsof -t` + `kill -9`.
type lsofScanner struct {
	runner Runner
}

func (s *lsofScanner) Name() string {
	return "lsof"
}

func (s *lsofScanner) ListPorts(ctx context.Context) ([]Port, error) {
	// lsof exits 1 when nothing matches; the empty output parses to no ports
	out, err := s.runner.Run(ctx, "lsof", "-i", "-P", "-n")
	if err != nil {
		return nil, err
	}

	return parseLsofOutput(out.Stdout), nil
}

func (s *lsofScanner) KillPort(ctx context.Context, port uint16) (bool, error) {
	return killUnix(ctx, s.runner, port)
}

// parseLsofOutput parses `lsof -i -P -n` output:
//
//	COMMAND PID USER FD TYPE DEVICE SIZE/OFF NODE NAME
//	node    1234 dev 23u IPv4 0x1234 0t0     TCP  *:3000 (LISTEN)
func parseLsofOutput(output []byte) []Port {
	var ports []Port

	scanner := bufio.NewScanner(bytes.NewReader(output))
	// Skip header line
	scanner.Scan()

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "LISTEN") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 9 {
			continue
		}

		pid, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}

		// NAME is the 9th field; the last one is "(LISTEN)"
		address := fields[8]
		port, ok := portFromAddress(address)
		if !ok {
			continue
		}

		ports = append(ports, Port{
			Port:     port,
			PID:      pid,
			Process:  unescapeProcessName(fields[0]),
			Protocol: "TCP",
			State:    "LISTEN",
			Address:  address,
		})
	}

	return ports
}

// portFromAddress parses the text after the last colon of host:port
func portFromAddress(address string) (uint16, bool) {
	lastColon := strings.LastIndex(address, ":")
	if lastColon == -1 {
		return 0, false
	}

	port, err := strconv.ParseUint(address[lastColon+1:], 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(port), true
}

// lsof escapes non-printable bytes in COMMAND, e.g. "Code\x20Helper"
func unescapeProcessName(name string) string {
	result := name
	result = strings.ReplaceAll(result, "\\x20", " ")
	result = strings.ReplaceAll(result, "\\x2d", "-")
	return result
}

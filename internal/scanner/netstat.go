package scanner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// netstat -ano prints a blank line, a title, a blank line and the column header
const netstatHeaderLines = 4

// netstatScanner lists with `netstat -ano`, names processes with tasklist and
// kills with `taskkill /F`.
type netstatScanner struct {
	runner Runner
}

func (s *netstatScanner) Name() string {
	return "netstat"
}

func (s *netstatScanner) ListPorts(ctx context.Context) ([]Port, error) {
	out, err := s.runner.Run(ctx, "netstat", "-ano")
	if err != nil {
		return nil, err
	}

	ports := parseNetstatOutput(out.Stdout)

	// One tasklist call per distinct PID, for this scan only
	names := make(map[int]string)
	for i := range ports {
		name, ok := names[ports[i].PID]
		if !ok {
			name = s.processName(ctx, ports[i].PID)
			names[ports[i].PID] = name
		}
		ports[i].Process = name
	}

	return ports, nil
}

// processName returns "" when tasklist fails or knows no such PID
func (s *netstatScanner) processName(ctx context.Context, pid int) string {
	out, err := s.runner.Run(ctx, "tasklist", "/FI", fmt.Sprintf("PID eq %d", pid), "/FO", "CSV", "/NH")
	if err != nil {
		return ""
	}
	return parseTasklistName(out.Stdout)
}

// parseTasklistName reads the image name from `tasklist /FO CSV /NH` output:
//
//	"node.exe","1234","Console","1","52,340 K"
func parseTasklistName(output []byte) string {
	text := strings.TrimSpace(string(output))
	if text == "" || strings.HasPrefix(text, "INFO:") {
		return ""
	}

	record, err := csv.NewReader(strings.NewReader(text)).Read()
	if err != nil || len(record) == 0 {
		return ""
	}
	return strings.TrimSpace(record[0])
}

// parseNetstatOutput parses `netstat -ano` output:
//
//	Proto  Local Address   Foreign Address  State      PID
//	TCP    0.0.0.0:3000    0.0.0.0:0        LISTENING  1234
func parseNetstatOutput(output []byte) []Port {
	var ports []Port

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for i := 0; i < netstatHeaderLines; i++ {
		scanner.Scan()
	}

	for scanner.Scan() {
		port, ok := parseNetstatLine(scanner.Text())
		if !ok {
			continue
		}
		ports = append(ports, port)
	}

	return ports
}

func parseNetstatLine(line string) (Port, bool) {
	if !strings.Contains(line, "LISTENING") {
		return Port{}, false
	}

	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Port{}, false
	}

	pid, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return Port{}, false
	}

	localAddr := fields[1]
	port, ok := portFromAddress(localAddr)
	if !ok {
		return Port{}, false
	}

	return Port{
		Port:     port,
		PID:      pid,
		Protocol: fields[0],
		State:    "LISTENING",
		Address:  localAddr,
	}, true
}

// KillPort re-reads netstat and force-kills the first listener on port
func (s *netstatScanner) KillPort(ctx context.Context, port uint16) (bool, error) {
	out, err := s.runner.Run(ctx, "netstat", "-ano")
	if err != nil {
		return false, err
	}

	scanner := bufio.NewScanner(bytes.NewReader(out.Stdout))
	for scanner.Scan() {
		p, ok := parseNetstatLine(scanner.Text())
		if !ok || p.Port != port {
			continue
		}

		res, err := s.runner.Run(ctx, "taskkill", "/F", "/PID", strconv.Itoa(p.PID))
		if err != nil {
			return false, fmt.Errorf("failed to kill process %d: %w", p.PID, err)
		}
		return res.Success(), nil
	}

	return false, nil
}

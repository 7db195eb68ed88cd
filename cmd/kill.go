package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/productdevbook/port-manager/internal/scanner"
)

var killCmd = &cobra.Command{
	Use:   "kill <port> [port...]",
	Short: "Kill the process listening on a port",
	Long: `Force-kill (SIGKILL, or taskkill /F on Windows) the process bound to each
given port. The process is looked up at call time; a port with nothing bound
to it is reported and is not an error.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runKill,
}

type killOutput struct {
	Port   uint16 `json:"port" yaml:"port"`
	Killed bool   `json:"killed" yaml:"killed"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

func parsePort(arg string) (uint16, error) {
	port, err := strconv.ParseUint(arg, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid port number: %s", arg)
	}
	return uint16(port), nil
}

func runKill(cmd *cobra.Command, args []string) error {
	ports := make([]uint16, 0, len(args))
	for _, arg := range args {
		port, err := parsePort(arg)
		if err != nil {
			return err
		}
		ports = append(ports, port)
	}

	results := newService().KillPorts(cmd.Context(), ports)

	failed := 0
	outputs := make([]killOutput, 0, len(results))
	for _, r := range results {
		out := killOutput{Port: r.Port, Killed: r.Killed}
		if r.Err != nil {
			failed++
			out.Error = r.Err.Error()
			logger.Debug().Err(r.Err).Uint16("port", r.Port).Msg("kill failed")
		}
		outputs = append(outputs, out)
	}

	if outputFormat != formatTable {
		if err := printStructured(cmd.OutOrStdout(), outputs); err != nil {
			return err
		}
	} else {
		printKillResults(cmd, results)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d kill(s) failed", failed, len(results))
	}
	return nil
}

func printKillResults(cmd *cobra.Command, results []scanner.KillResult) {
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to kill process on port %d: %v\n", r.Port, r.Err)
		case r.Killed:
			fmt.Fprintf(cmd.OutOrStdout(), "Killed process on port %d\n", r.Port)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "No process killed on port %d\n", r.Port)
		}
	}
}

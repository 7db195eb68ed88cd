package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/productdevbook/port-manager/internal/scanner"
)

var (
	listDevOnly bool
	listGroup   bool
	listPort    uint16
	listRange   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all listening ports",
	Long: `List all TCP ports currently in LISTEN state with their associated processes.

With --port the command exits non-zero when nothing listens on that port.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listDevOnly, "dev", "d", false, "Only show development ports (default from config)")
	listCmd.Flags().BoolVarP(&listGroup, "group", "g", false, "Group ports by process (default from config)")
	listCmd.Flags().Uint16VarP(&listPort, "port", "p", 0, "Only show listeners on this port")
	listCmd.Flags().StringVarP(&listRange, "range", "r", "", "Only show ports in an inclusive range, e.g. 3000-3999")
	listCmd.MarkFlagsMutuallyExclusive("port", "range")
}

// parseRange parses "LO-HI" with LO <= HI
func parseRange(s string) (uint16, uint16, error) {
	loText, hiText, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid port range %q (use LO-HI)", s)
	}
	lo, err := parsePort(strings.TrimSpace(loText))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid port range %q: %w", s, err)
	}
	hi, err := parsePort(strings.TrimSpace(hiText))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid port range %q: %w", s, err)
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("invalid port range %q: start is after end", s)
	}
	return lo, hi, nil
}

func runList(cmd *cobra.Command, args []string) error {
	devOnly := cfg.ShowOnlyDevelopmentPorts
	if cmd.Flags().Changed("dev") {
		devOnly = listDevOnly
	}
	group := cfg.GroupByProcess
	if cmd.Flags().Changed("group") {
		group = listGroup
	}

	var lo, hi uint16
	if cmd.Flags().Changed("range") {
		var err error
		if lo, hi, err = parseRange(listRange); err != nil {
			return err
		}
	}

	result, err := newService().ScanPorts(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to scan ports: %w", err)
	}

	switch {
	case cmd.Flags().Changed("port"):
		if _, ok := result.Port(listPort); !ok {
			return fmt.Errorf("no process is listening on port %d", listPort)
		}
		result = scanner.NewScanResult(result.InRange(listPort, listPort))
	case cmd.Flags().Changed("range"):
		result = scanner.NewScanResult(result.InRange(lo, hi))
	}
	// an explicit --port is answered even when the port is not a development one
	if devOnly && !cmd.Flags().Changed("port") {
		result = scanner.NewScanResult(result.Development())
	}

	w := cmd.OutOrStdout()

	if outputFormat != formatTable {
		if group {
			return printStructured(w, scanner.GroupByProcess(result.Ports))
		}
		return printStructured(w, result)
	}

	if result.TotalCount == 0 {
		fmt.Fprintln(w, "No listening ports found.")
		return nil
	}

	if group {
		return printGroups(w, scanner.GroupByProcess(result.Ports))
	}
	if err := printTable(w, result.Ports); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d ports, %d development\n", result.TotalCount, result.DevelopmentCount)
	return nil
}

func printTable(out io.Writer, ports []scanner.Port) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PORT\tPID\tPROCESS\tADDRESS\tDEV\tCATEGORY")
	fmt.Fprintln(w, "----\t---\t-------\t-------\t---\t--------")

	for _, p := range ports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			portLabel(p.Port), pidLabel(p.PID), processLabel(p.Process), p.Address, devLabel(p.IsDevelopment), scanner.Category(p.Port))
	}

	return w.Flush()
}

func printGroups(out io.Writer, groups []scanner.ProcessGroup) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, g := range groups {
		fmt.Fprintf(w, "%s (%d)\n", g.Process, g.TotalPorts)
		for _, p := range g.Ports {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", portLabel(p.Port), pidLabel(p.PID), p.Address, devLabel(p.IsDevelopment))
		}
	}
	return w.Flush()
}

func portLabel(port uint16) string {
	if cfg != nil && cfg.IsFavorite(port) {
		return fmt.Sprintf("%d*", port)
	}
	return fmt.Sprint(port)
}

func pidLabel(pid int) string {
	if pid == 0 {
		return "-"
	}
	return fmt.Sprint(pid)
}

func processLabel(name string) string {
	if name == "" {
		return "-"
	}
	return name
}

func devLabel(dev bool) string {
	if dev {
		return "yes"
	}
	return ""
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/productdevbook/port-manager/internal/config"
	"github.com/productdevbook/port-manager/internal/logging"
	"github.com/productdevbook/port-manager/internal/scanner"
)

var (
	version      = "0.1.0"
	jsonOutput   bool
	outputFormat string
	debugMode    bool
	timeout      time.Duration
	configPath   string

	logger zerolog.Logger
	store  config.Store
	cfg    *config.Config
)

// portService is what the commands need from scanner.Manager
type portService interface {
	ScanPorts(ctx context.Context) (scanner.ScanResult, error)
	KillPort(ctx context.Context, port uint16) (bool, error)
	KillPorts(ctx context.Context, ports []uint16) []scanner.KillResult
}

// newService builds the platform manager; tests replace it
var newService = func() portService {
	runner := logging.WrapRunner(logger, scanner.ExecRunner())
	m := scanner.NewManager(scanner.WithRunner(runner), scanner.WithTimeout(timeout))
	logger.Debug().Str("platform", m.Platform()).Dur("timeout", timeout).Msg("scanner ready")
	return m
}

// isInteractive reports whether the bare command should open the UI
var isInteractive = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

var rootCmd = &cobra.Command{
	Use:   "portmanager",
	Short: "List and kill processes listening on TCP ports",
	Long: `portmanager lists the TCP ports in LISTEN state on this machine, flags the ones
used by development tools and force-kills the process bound to a port.

Run without a subcommand it opens the interactive view on a terminal and
prints the list otherwise.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runRoot,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (same as -o json)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatTable, "Output format: table, json or yaml")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", config.DefaultScanTimeout, "Bound on each external tool run (0 disables)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $PORTMANAGER_CONFIG or ~/.portmanager/config.json)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(uiCmd)
	rootCmd.AddCommand(favoritesCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.Version = version
}

func setup(cmd *cobra.Command, args []string) error {
	logger = logging.Setup(debugMode)

	if jsonOutput {
		outputFormat = formatJSON
	}
	if err := validateFormat(outputFormat); err != nil {
		return err
	}

	store = config.NewStore(configPath)
	loaded, err := store.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("ignoring unreadable config file")
		loaded = config.Default()
	}
	cfg = loaded

	// the config file decides unless --timeout was given
	if !cmd.Flags().Changed("timeout") {
		timeout = time.Duration(cfg.ScanTimeout)
	}

	logger.Debug().Str("command", cmd.Name()).Strs("args", args).Msg("starting")
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	if outputFormat == formatTable && isInteractive() {
		return runUI(cmd, args)
	}
	return runList(cmd, args)
}

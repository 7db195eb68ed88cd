package cmd

import (
	"github.com/spf13/cobra"

	"github.com/productdevbook/port-manager/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Browse and kill listening ports interactively",
	Args:  cobra.NoArgs,
	RunE:  runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	return tui.Run(cmd.Context(), newService(), store, cfg)
}

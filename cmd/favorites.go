package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage favorite ports",
	Long:    `Favorite ports are marked with * in lists and pinned to the top of the interactive view.`,
	Args:    cobra.NoArgs,
	RunE:    runFavoritesList,
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite ports",
	Args:  cobra.NoArgs,
	RunE:  runFavoritesList,
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <port> [port...]",
	Short: "Add ports to favorites",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateFavorites(cmd, args, true)
	},
}

var favoritesRemoveCmd = &cobra.Command{
	Use:     "remove <port> [port...]",
	Aliases: []string{"rm"},
	Short:   "Remove ports from favorites",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateFavorites(cmd, args, false)
	},
}

func init() {
	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesAddCmd)
	favoritesCmd.AddCommand(favoritesRemoveCmd)
}

func runFavoritesList(cmd *cobra.Command, args []string) error {
	favorites := append([]uint16(nil), cfg.Favorites...)
	sort.Slice(favorites, func(i, j int) bool { return favorites[i] < favorites[j] })

	if outputFormat != formatTable {
		if favorites == nil {
			favorites = []uint16{}
		}
		return printStructured(cmd.OutOrStdout(), favorites)
	}

	if len(favorites) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No favorite ports.")
		return nil
	}
	for _, p := range favorites {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

func updateFavorites(cmd *cobra.Command, args []string, add bool) error {
	for _, arg := range args {
		port, err := parsePort(arg)
		if err != nil {
			return err
		}
		if add {
			cfg.AddFavorite(port)
		} else {
			cfg.RemoveFavorite(port)
		}
	}

	if err := store.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return runFavoritesList(cmd, nil)
}

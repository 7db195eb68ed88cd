package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/productdevbook/port-manager/internal/database"
)

var dbPath string

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect the embedded notes database",
	Long:  `Initialize, health-check and query the SQLite database the desktop app keeps its users and snippets in.`,
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database file and tables",
	Args:  cobra.NoArgs,
	RunE: withDatabase(func(cmd *cobra.Command, args []string, db *database.Manager) error {
		fmt.Fprintln(cmd.OutOrStdout(), "Database initialized successfully")
		return nil
	}),
}

var dbHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the database answers",
	Args:  cobra.NoArgs,
	RunE: withDatabase(func(cmd *cobra.Command, args []string, db *database.Manager) error {
		health := db.Health(cmd.Context())
		if outputFormat != formatTable {
			if err := printStructured(cmd.OutOrStdout(), health); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", health.Status, health.Message)
		}
		if health.Status != database.StatusHealthy {
			return fmt.Errorf("database is %s", health.Status)
		}
		return nil
	}),
}

var dbQueryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run one SQL statement",
	Args:  cobra.MinimumNArgs(1),
	RunE: withDatabase(func(cmd *cobra.Command, args []string, db *database.Manager) error {
		res := db.Query(cmd.Context(), strings.Join(args, " "))
		if outputFormat != formatTable {
			if err := printStructured(cmd.OutOrStdout(), res); err != nil {
				return err
			}
		} else if res.Status == database.StatusSuccess {
			fmt.Fprintln(cmd.OutOrStdout(), res.Result)
		}
		if res.Status != database.StatusSuccess {
			return errors.New(res.Message)
		}
		return nil
	}),
}

var dbCreateUserCmd = &cobra.Command{
	Use:   "create-user <name> <snippets-path>",
	Short: "Add a user row",
	Args:  cobra.ExactArgs(2),
	RunE: withDatabase(func(cmd *cobra.Command, args []string, db *database.Manager) error {
		id, err := db.CreateUser(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created user %d\n", id)
		return nil
	}),
}

func init() {
	dbCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file (default from config, else the user config directory)")
	dbCmd.AddCommand(dbInitCmd, dbHealthCmd, dbQueryCmd, dbCreateUserCmd)
}

func resolveDBPath() (string, error) {
	switch {
	case dbPath != "":
		return dbPath, nil
	case cfg.DatabasePath != "":
		return cfg.DatabasePath, nil
	}
	return database.DefaultPath()
}

// withDatabase opens the database around fn
func withDatabase(fn func(cmd *cobra.Command, args []string, db *database.Manager) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}

		db := database.NewManager()
		if err := db.Open(cmd.Context(), path); err != nil {
			return err
		}
		defer db.Close()

		logger.Debug().Str("path", path).Msg("database opened")
		return fn(cmd, args, db)
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/config"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/storage/postgres"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the postgres schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *postgres.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			return printVersion(cmd, m)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *postgres.Migrator) error {
			if err := m.Down(migrateSteps); err != nil {
				return err
			}
			return printVersion(cmd, m)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *postgres.Migrator) error {
			return printVersion(cmd, m)
		})
	},
}

func withMigrator(fn func(*postgres.Migrator) error) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	m, err := postgres.NewMigrator(postgres.DSN(&cfg.Database))
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func printVersion(cmd *cobra.Command, m *postgres.Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if output == "json" {
		return printJSON(cmd.OutOrStdout(), map[string]any{"version": v, "dirty": dirty})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", v, dirty)
	return nil
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back")
}

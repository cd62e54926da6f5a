package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"notifier/internal/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manages the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Applies all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := migrations.Up(cfg.DB); err != nil {
			return err
		}
		printf(cmd, "migrations applied\n")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rolls back the last migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := migrations.Down(cfg.DB); err != nil {
			return err
		}
		printf(cmd, "migrations rolled back\n")
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		version, dirty, err := migrations.Version(cfg.DB)
		if err != nil {
			return err
		}
		printf(cmd, "version %d (dirty: %t)\n", version, dirty)
		return nil
	},
}

var migrateForceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Sets the schema version without running migrations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		if err := migrations.Force(cfg.DB, version); err != nil {
			return err
		}
		printf(cmd, "version forced to %d\n", version)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd, migrateForceCmd)
}

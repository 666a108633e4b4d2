package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agencypulse/agencypulse/internal/platform"
)

func newMigrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		Long:  `Creates or upgrades the client record and health score tables in Postgres or MySQL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := firstNonEmpty(databaseURL, os.Getenv("DATABASE_URL"))
			if dsn == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}

			db, dialect, err := platform.Open(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := platform.AutoMigrate(db, dialect); err != nil {
				return err
			}
			version, dirty, err := platform.MigrationVersion(db, dialect)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema at version %d (dirty: %v)\n", dialect, version, dirty)
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "postgres:// or mysql:// URL (default: $DATABASE_URL)")
	return cmd
}

// AngelaMos | 2026
// cmd_db.go

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shyam-international/exportsite/internal/core"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := core.NewDatabase(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck

		applied, err := core.Migrate(cmd.Context(), db.DB)
		if err != nil {
			return err
		}

		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintln(cmd.OutOrStdout(), "applied", name)
		}
		return nil
	},
}

package main

import (
	"leaddesk_backend/migrations"
	"leaddesk_backend/platform/db"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			if err := db.RunMigrations(cmd.Context(), e.pool, migrations.FS, migrations.Dir); err != nil {
				return err
			}
			cmd.Println(color.GreenString("✓ migrations applied"))
			return nil
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			return db.MigrationStatus(cmd.Context(), e.pool, migrations.FS, migrations.Dir)
		}),
	})

	return cmd
}

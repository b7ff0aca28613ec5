package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eventbooking/config"
	"eventbooking/internal/repository/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		conn := postgres.NewLazyConnector(cfg.DBUrl, cfg.DBConnectTimeout)
		defer conn.Close()

		applied, err := postgres.Migrate(cmd.Context(), conn)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", name)
		}
		return nil
	},
}

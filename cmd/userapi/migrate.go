package main

import (
	"fmt"

	"github.com/deppfellow/users-api/internal/config"
	"github.com/deppfellow/users-api/internal/database"
	"github.com/deppfellow/users-api/internal/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		// No New Relic here: the command is short-lived.
		log := logger.NewLoggerWithService(cfg.Observability, nil)

		return database.Migrate(cmd.Context(), &log, cfg.Database.DSN())
	},
}

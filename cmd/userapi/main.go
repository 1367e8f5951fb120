// Command userapi runs the users API and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/deppfellow/users-api/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "userapi",
	Short: "Users CRUD API",
	Long: `userapi serves a CRUD HTTP API for users backed by PostgreSQL.

Configuration is read from ` + config.EnvPrefix + `* environment variables and an optional .env file.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(routesCmd)
}

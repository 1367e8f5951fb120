package main

import (
	"os"

	"github.com/deppfellow/users-api/internal/lib/utils"
	"github.com/deppfellow/users-api/internal/router"
	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the user route table as JSON",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return utils.PrintJSON(os.Stdout, router.UserRoutes)
	},
}

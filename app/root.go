// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "go-rbac-admin",
	Short: "GoRBAC-Admin is a web-based role and permission management panel",
	Long: `GoRBAC-Admin is a web-based administration panel for role-based access
control that provides an easy-to-use interface for managing users, roles,
permissions and their assignments.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

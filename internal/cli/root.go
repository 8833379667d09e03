// Package cli wires the service's commands: serve, migrate and seed.
package cli

import (
	"github.com/spf13/cobra"
)

var migrationsDir string

// Execute runs the CLI
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "course-platform",
		Short:        "Course platform backend: catalog, enrollments, quizzes and reports",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&migrationsDir, "migrations", "", "path to the SQL migrations directory (default: ./migrations or ../migrations)")
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd())
	return cmd
}

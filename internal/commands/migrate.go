// internal/commands/migrate.go
package cogbench

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cogbench/cogbench/internal/migrate"
)

var migrateFlags struct {
	oldDir     string
	dataDir    string
	resultsDir string
	dryRun     bool
}

// migrateCmd reorganizes the legacy directory layout.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate data and results from the legacy directory layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate.Run(os.Stdout, migrate.Options{
			OldDir:     migrateFlags.oldDir,
			DataDir:    migrateFlags.dataDir,
			ResultsDir: migrateFlags.resultsDir,
			DryRun:     migrateFlags.dryRun,
		})
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFlags.oldDir, "old-dir", "cl_results_and_prompts", "legacy directory containing data and results")
	migrateCmd.Flags().StringVar(&migrateFlags.dataDir, "data-dir", "data", "target data directory")
	migrateCmd.Flags().StringVar(&migrateFlags.resultsDir, "results-dir", "results", "target results directory")
	migrateCmd.Flags().BoolVar(&migrateFlags.dryRun, "dry-run", false, "print planned actions without copying files")

	rootCmd.AddCommand(migrateCmd)
}

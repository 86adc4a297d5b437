// internal/commands/show_config.go
package cogbench

import (
	"os"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/cogbench/cogbench/internal/appconfig"
)

var showConfigFull bool

// configCmd groups configuration-related commands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Group commands for inspecting configuration",
}

// showConfigCmd prints the merged configuration. The summary masks API keys;
// --full dumps the raw structure, credentials included.
var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		appconfig.ShowConfig(os.Stdout, cfg)
		if showConfigFull && cfg != nil {
			pp.Println(cfg)
		}
		return nil
	},
}

func init() {
	showConfigCmd.Flags().BoolVar(&showConfigFull, "full", false, "dump the full configuration structure, credentials included")
	configCmd.AddCommand(showConfigCmd)
	rootCmd.AddCommand(configCmd)
}

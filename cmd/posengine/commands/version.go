package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/posengine/internal/storage"
)

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			return printJSON(map[string]string{
				"version":    buildVersion,
				"build_time": buildStamp,
				"build_mode": storage.BuildMode,
				"driver":     storage.DriverName,
			})
		}
		fmt.Printf("posengine\n")
		fmt.Printf("Version: %s\n", buildVersion)
		fmt.Printf("Build Time: %s\n", buildStamp)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

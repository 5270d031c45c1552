package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the build version string, overridable with
// -ldflags "-X semdex/internal/cli.Version=v1.2.3".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("semdex %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

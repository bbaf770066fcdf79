package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version, gitCommit and buildDate are overridden at build time via
// -ldflags.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(versionString())
		return nil
	},
}

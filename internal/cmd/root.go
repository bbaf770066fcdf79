// Package cmd implements the svc command tree: validate, plan, diff,
// up/deploy, destroy, init, and version, each a cobra.Command wired
// into a shared compilation pipeline.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/platformforge/svc/internal/logging"
)

var (
	manifestPath string
	ciMode       bool
	verbose      bool
	noColor      bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "svc",
	Short:   "Internal Developer Platform manifest compiler",
	Long:    "svc compiles a service.yml manifest plus a target environment and\ncompliance framework into a resolved, hardened deployment plan.",
	Version: versionString(),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "info"
		if verbose {
			level = "debug"
		}
		logger = logging.New(logging.Config{Level: level, Format: "text", Output: "stderr"})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "file", "f", "", "path to service.yml (default: search upward from the current directory)")
	rootCmd.PersistentFlags().BoolVar(&ciMode, "ci", false, "emit machine-readable JSON-lines diagnostics and suppress human banners")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(destroyCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and returns the process exit code the
// caller (cmd/svc/main.go) should pass to os.Exit.
func Execute() int {
	exitCode = 0
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return exitCode
}

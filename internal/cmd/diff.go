package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/platformforge/svc/internal/backend"
	"github.com/platformforge/svc/internal/ir"
)

var (
	diffEnv      string
	diffBaseline string
)

// diffExitCode is the process exit code `svc diff` returns when it
// finds a change, distinct from the compile-failure codes.
const diffExitCode = 3

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare a fresh compilation against the last applied plan",
	Long:  "diff never performs a live cloud lookup: it compares the freshly\ncompiled IR against a previously emitted IR file read from\n--baseline (default .svc/last-plan.<service>.<env>.json).",
	RunE: func(cmd *cobra.Command, args []string) error {
		result := runPipeline(diffEnv)
		if result == nil {
			return nil
		}
		current := ir.Build(diffEnv, result)

		baselinePath := diffBaseline
		if baselinePath == "" {
			baselinePath = backend.PlanPath(current.Service, diffEnv)
		}
		baseline, err := backend.LoadBaseline(baselinePath)
		if err != nil {
			exitCode = 1
			return err
		}

		diffResult := backend.Diff(baseline, current)
		r := renderer()
		if !diffResult.Changed {
			r.Success("no changes")
			exitCode = 0
			return nil
		}
		for _, c := range diffResult.Changes {
			r.Info(fmt.Sprintf("%s %s", c.Kind, c.Path))
		}
		exitCode = diffExitCode
		return nil
	},
}

func init() {
	diffCmd.Flags().StringVarP(&diffEnv, "env", "e", "", "target environment (required)")
	diffCmd.MarkFlagRequired("env")
	diffCmd.Flags().StringVar(&diffBaseline, "baseline", "", "path to a previously emitted IR (default: .svc/last-plan.<service>.<env>.json)")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/platformforge/svc/internal/backend"
	"github.com/platformforge/svc/internal/ir"
)

var upEnv string

var upCmd = &cobra.Command{
	Use:     "up",
	Aliases: []string{"deploy"},
	Short:   "Compile the manifest and apply the resolved plan",
	Long:    "up compiles the manifest and hands the IR to the configured backend.\nThe shipped backend persists the plan to disk; it performs no live\nprovisioning (a concrete cloud backend is out of scope).",
	RunE: func(cmd *cobra.Command, args []string) error {
		result := runPipeline(upEnv)
		if result == nil {
			return nil
		}

		doc := ir.Build(upEnv, result)
		b := backend.NewNullBackend(".")
		if err := b.Apply(doc); err != nil {
			exitCode = 1
			return err
		}
		renderer().Success(fmt.Sprintf("applied plan for %s/%s", doc.Service, doc.Environment))
		return nil
	},
}

func init() {
	upCmd.Flags().StringVarP(&upEnv, "env", "e", "", "target environment (required)")
	upCmd.MarkFlagRequired("env")
}

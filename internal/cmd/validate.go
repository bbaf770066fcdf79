package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse and schema-check the manifest without resolving an environment",
	Long:  "validate runs only stages 1-2 of the pipeline (Parse,\nSchemaValidate) and reports diagnostics. It never hydrates\nconfig, resolves bindings, hardens, or evaluates governance, so it\ntakes no --env: those stages require a target environment, which\nvalidate does not.",
	RunE: func(cmd *cobra.Command, args []string) error {
		result := runValidateOnly()
		if result == nil {
			return nil
		}
		renderer().Success(fmt.Sprintf("%s is well-formed", result.Manifest.Service))
		return nil
	},
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/platformforge/svc/internal/ir"
)

var (
	planEnv string
	planOut string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compile the manifest and print the resolved IR",
	Long:  "plan compiles the manifest and prints the pretty-printed IR document\n to stdout, or to --out when given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		result := runPipeline(planEnv)
		if result == nil {
			return nil
		}

		doc := ir.Build(planEnv, result)
		pretty, err := doc.MarshalPretty()
		if err != nil {
			exitCode = 1
			return err
		}

		if planOut == "" {
			fmt.Println(string(pretty))
			return nil
		}
		if err := os.WriteFile(planOut, pretty, 0o644); err != nil {
			exitCode = 1
			return err
		}
		renderer().Success("wrote " + planOut)
		return nil
	},
}

func init() {
	planCmd.Flags().StringVarP(&planEnv, "env", "e", "", "target environment (required)")
	planCmd.MarkFlagRequired("env")
	planCmd.Flags().StringVar(&planOut, "out", "", "write the IR here instead of stdout")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/platformforge/svc/internal/backend"
)

var (
	destroyEnv     string
	destroyService string
)

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Tear down the last applied plan for a service/environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		service := destroyService
		if service == "" {
			result := runPipeline(destroyEnv)
			if result == nil {
				return nil
			}
			service = result.Manifest.Service
		}

		b := backend.NewNullBackend(".")
		if err := b.Destroy(service, destroyEnv); err != nil {
			exitCode = 1
			return err
		}
		renderer().Success(fmt.Sprintf("destroyed plan for %s/%s", service, destroyEnv))
		return nil
	},
}

func init() {
	destroyCmd.Flags().StringVarP(&destroyEnv, "env", "e", "", "target environment (required)")
	destroyCmd.MarkFlagRequired("env")
	destroyCmd.Flags().StringVar(&destroyService, "service", "", "service name (default: read from the manifest at --file)")
}

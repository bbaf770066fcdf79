package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const initTemplate = `service: my-service
owner: my-team
complianceFramework: commercial
environments:
  dev:
    defaults: {}
components: []
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a starter service.yml in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := manifestPath
		if path == "" {
			path = manifestFilename
		}
		if _, err := os.Stat(path); err == nil {
			exitCode = 1
			return fmt.Errorf("%s already exists", path)
		}
		if err := os.WriteFile(path, []byte(initTemplate), 0o644); err != nil {
			exitCode = 1
			return err
		}
		renderer().Success("wrote " + path)
		return nil
	},
}

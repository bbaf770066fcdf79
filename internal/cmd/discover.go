package cmd

import (
	"fmt"
	"os"
	"path/filepath"
)

// manifestFilename is the conventional entrypoint name every command
// searches for when --file/-f is not given.
const manifestFilename = "service.yml"

// findManifest resolves the manifest path to compile: an explicit path
// always wins; otherwise it walks upward from the current directory
// looking for service.yml, stopping at the filesystem root.
func findManifest(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, manifestFilename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("No service.yml found in this directory or any parent directories.")
}

// Package platformconfig embeds the per-framework Layer-4 defaults
// directly into the binary, so a compiled `svc` carries its
// compliance posture with it rather than depending on a writable
// filesystem path at runtime.
package platformconfig

import (
	"embed"
	"fmt"
)

//go:embed commercial.yml fedramp-moderate.yml fedramp-high.yml
var files embed.FS

// KnownFrameworks lists the only framework names the engine will ever
// load a file for.
var KnownFrameworks = []string{"commercial", "fedramp-moderate", "fedramp-high"}

// Load returns the raw YAML bytes for the named framework's
// platform-config file. An unrecognized framework name is a caller
// bug (schema validation rejects it before this is ever reached), so
// this returns a plain error rather than a Diagnostic.
func Load(framework string) ([]byte, error) {
	for _, known := range KnownFrameworks {
		if known == framework {
			return files.ReadFile(framework + ".yml")
		}
	}
	return nil, fmt.Errorf("platformconfig: unknown framework %q", framework)
}

package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/platformforge/svc/internal/errs"
)

// Decode converts a $ref-spliced raw document (as produced by Load)
// into a typed Manifest. It round-trips through YAML rather than a
// reflection-based generic-map decoder: the raw tree is already a
// plain map[string]interface{}/[]interface{} tree, and yaml.v3 applies
// the same `yaml` struct tags used for the platform-config files
// (internal/compliance), so a single decoder implementation serves
// both.
func Decode(raw interface{}) (*Manifest, error) {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, errs.New(errs.CodeInternal, fmt.Sprintf("failed to re-marshal manifest for decode: %v", err))
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errs.New(errs.CodeSchemaViolation, fmt.Sprintf("manifest does not match expected shape: %v", err))
	}
	if m.ComplianceFramework == "" {
		m.ComplianceFramework = "commercial"
	}
	return &m, nil
}

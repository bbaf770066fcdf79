// Package manifest implements the manifest loader:
// reading YAML/JSON service manifests, splicing in $ref file inclusions,
// and decoding the result into the typed shapes consumed by the rest of
// the pipeline.
package manifest

// Manifest is the typed, fully $ref-spliced service.yml document.
type Manifest struct {
	Service             string                 `yaml:"service"`
	Owner               string                 `yaml:"owner"`
	ComplianceFramework string                 `yaml:"complianceFramework"`
	Environments        map[string]Environment `yaml:"environments"`
	Components          []ComponentSpec        `yaml:"components"`
	Governance          Governance             `yaml:"governance"`
	Labels              map[string]interface{} `yaml:"labels"`
}

// Environment holds the environment-scoped default values consulted by
// ${env:key} interpolation.
type Environment struct {
	Defaults map[string]interface{} `yaml:"defaults"`
}

// ComponentSpec is a single entry in manifest.components.
type ComponentSpec struct {
	Name      string                 `yaml:"name"`
	Type      string                 `yaml:"type"`
	Config    map[string]interface{} `yaml:"config"`
	Binds     []BindingRequest       `yaml:"binds"`
	Overrides map[string]interface{} `yaml:"overrides"`
	Policy    PolicySpec             `yaml:"policy"`
	Labels    map[string]interface{} `yaml:"labels"`
}

// PolicySpec carries the highest-priority policy overrides,
// which require a justification to be considered for acceptance.
type PolicySpec struct {
	Overrides     map[string]interface{} `yaml:"overrides"`
	Justification string                  `yaml:"justification"`
}

// BindingRequest declares a source component's wiring to a target's
// capability.
type BindingRequest struct {
	To         string                 `yaml:"to"`
	Capability string                 `yaml:"capability"`
	Access     string                 `yaml:"access"`
	Env        map[string]string      `yaml:"env"`
	Options    map[string]interface{} `yaml:"options"`
}

// Governance carries the cdk-nag suppression ledger.
type Governance struct {
	CDKNag CDKNagConfig `yaml:"cdkNag"`
}

// CDKNagConfig holds the suppression records.
type CDKNagConfig struct {
	Suppress []SuppressionRecord `yaml:"suppress"`
}

// SuppressionRecord is a single governance waiver.
type SuppressionRecord struct {
	ID            string      `yaml:"id"`
	Justification string      `yaml:"justification"`
	Owner         string      `yaml:"owner"`
	ExpiresOn     string      `yaml:"expiresOn"`
	AppliesTo     []AppliesTo `yaml:"appliesTo"`
}

// AppliesTo names the component a suppression record targets.
type AppliesTo struct {
	Component string `yaml:"component"`
}

// LoadReport records non-fatal information about a load — which $ref
// files were inlined, and in what order — useful for --verbose output
// and for detecting stale caches.
type LoadReport struct {
	EntrypointPath string
	IncludedFiles  []string
}

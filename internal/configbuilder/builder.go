package configbuilder

import (
	"fmt"

	"github.com/platformforge/svc/internal/errs"
)

// Layer identifies one of the five precedence layers,
// ordered here from lowest to highest priority.
type Layer int

const (
	LayerFallback Layer = iota
	LayerPlatform
	LayerEnvironment
	LayerOverride
	LayerPolicy
)

func (l Layer) String() string {
	switch l {
	case LayerFallback:
		return "fallback"
	case LayerPlatform:
		return "platform"
	case LayerEnvironment:
		return "environment"
	case LayerOverride:
		return "override"
	case LayerPolicy:
		return "policy"
	default:
		return "unknown"
	}
}

// Request bundles everything Build needs to resolve one component's
// configuration.
type Request struct {
	ComponentType   string
	ComponentName   string
	Environment     string
	Framework       string
	IsProduction    bool
	Fallbacks       map[string]interface{} // fallback layer (lowest priority)
	PlatformDefault map[string]interface{} // platform-defaults layer
	EnvDefaults     map[string]interface{} // environments.<env>.defaults, used both as the environment layer and as ${env:} lookup table
	Overrides       map[string]interface{} // component-overrides layer
	PolicyOverrides map[string]interface{} // policy-overrides layer (highest priority)
	Justification   string
	AppendPaths     map[string]bool
	PolicyAllowlist []string // justification strings the active framework accepts in prod
	ManifestLabels  map[string]interface{}
	ComponentLabels map[string]interface{}
}

// Result is the outcome of building one component's resolved config.
type Result struct {
	Config       map[string]interface{}
	SourceLayers []string // which layers contributed a non-empty delta, in application order
	Labels       map[string]interface{}
	Report       *errs.Report
}

// Build applies the 5-layer precedence chain: deep
// merge lowest to highest, evaluate the policy-override escape hatch,
// then interpolate ${env:}/${envIs:} tokens (${ref:...} is left for
// the resolver). Security floor checks run on the fallback layer
// alone, before any merge, since only Layer 1 is required to be
// environment-invariant and safe by construction.
func Build(req Request) Result {
	report := &errs.Report{}

	if safety := ValidateFallbackSafety(req.ComponentType, req.Fallbacks); safety.HasErrors() {
		report.Diagnostics = append(report.Diagnostics, safety.Diagnostics...)
	}

	sourceLayers := []string{}
	merged := map[string]interface{}{}
	addLayer := func(name string, layer map[string]interface{}) {
		if len(layer) == 0 {
			return
		}
		merged = MergeLayer(merged, layer, req.AppendPaths)
		sourceLayers = append(sourceLayers, name)
	}

	addLayer(LayerFallback.String(), req.Fallbacks)
	addLayer(LayerPlatform.String(), req.PlatformDefault)
	addLayer(LayerEnvironment.String(), req.EnvDefaults)
	addLayer(LayerOverride.String(), req.Overrides)

	if len(req.PolicyOverrides) > 0 {
		if policyErr := evaluatePolicyOverride(req); policyErr != nil {
			report.Add(policyErr)
		} else {
			addLayer(LayerPolicy.String(), req.PolicyOverrides)
		}
	}

	interpolated, interpReport := Interpolate(merged, req.Environment, req.EnvDefaults)
	report.Diagnostics = append(report.Diagnostics, interpReport.Diagnostics...)

	labels := map[string]interface{}{}
	if err := mergoDeepCopy(&labels, req.ManifestLabels); err != nil {
		report.Add(errs.New(errs.CodeInternal, fmt.Sprintf("failed to merge manifest labels: %v", err)))
	}
	if err := mergoDeepCopy(&labels, req.ComponentLabels); err != nil {
		report.Add(errs.New(errs.CodeInternal, fmt.Sprintf("failed to merge component labels: %v", err)))
	}

	return Result{
		Config:       interpolated,
		SourceLayers: sourceLayers,
		Labels:       labels,
		Report:       report,
	}
}

// evaluatePolicyOverride implements the escape-hatch rule: a
// policy.overrides with no justification is always rejected; in
// production under a fedramp-* framework it is rejected unless the
// justification matches the framework's allowlist.
func evaluatePolicyOverride(req Request) *errs.Diagnostic {
	if req.Justification == "" {
		return errs.New(errs.CodePolicyOverrideRejected, "policy.overrides requires a non-empty justification").
			WithHint("add policy.justification explaining why this override is necessary")
	}

	isFedramp := req.Framework == "fedramp-moderate" || req.Framework == "fedramp-high"
	if req.IsProduction && isFedramp {
		for _, allowed := range req.PolicyAllowlist {
			if allowed == req.Justification {
				return nil
			}
		}
		return errs.New(errs.CodePolicyOverrideRejected,
			fmt.Sprintf("policy.overrides rejected: framework %q forbids overrides in production unless justification is allowlisted", req.Framework)).
			WithHint("request an allowlist entry in the framework's platform-config, or move this value to a non-production environment")
	}

	return nil
}

// Package resolver implements the dependency-graph resolution engine:
// given a validated, hydrated manifest it builds the component
// dependency graph, topologically orders synthesis, invokes each
// component's Synth contract, binds outgoing edges through the
// Capability/Binder Matrix, and resolves ${ref:...} observation edges
// once every component has been synthesized.
package resolver

import (
	"fmt"

	"github.com/platformforge/svc/internal/capability"
	"github.com/platformforge/svc/internal/configbuilder"
	"github.com/platformforge/svc/internal/errs"
	"github.com/platformforge/svc/internal/manifest"
	"github.com/platformforge/svc/internal/registry/components"
	"github.com/platformforge/svc/internal/schema"
)

// BindingEdge is a resolved source -> target wiring, recorded in
// declaration order for deterministic IR emission.
type BindingEdge struct {
	Source     string
	Target     string
	Capability string
	Access     string
	Result     capability.BindingResult
}

// ResolvedComponent is one component's post-synthesis record.
type ResolvedComponent struct {
	Name           string
	Type           string
	ResolvedConfig map[string]interface{}
	InjectedEnv    map[string]string
	Capabilities   components.Capabilities
	Resources      []components.ResourceDeclaration
	SourceLayers   []string
	Labels         map[string]interface{}
}

// Result is the resolver's full output, ready for IR emission (C9).
type Result struct {
	Order              []string
	ResolvedComponents map[string]ResolvedComponent
	Bindings           []BindingEdge
}

// Request bundles everything Resolve needs.
type Request struct {
	Manifest         *manifest.Manifest
	Environment      string
	ComponentReg     *components.Registry
	CapabilityReg    *capability.Registry
	SchemaReg        *schema.Registry
	PlatformDefaults map[string]map[string]interface{} // componentType -> Layer-4 defaults
	AppendPaths      map[string]bool
	PolicyAllowlist  []string
}

// Resolve runs the full C6 pipeline. It halts (returning a report with
// errors) before synthesis if the graph itself is invalid (dangling
// refs/binds, binding cycles); per-component build/bind/ref errors are
// collected and returned together once every component has been
// attempted, consistent with "collect within a stage"
// allowance.
func Resolve(req Request) (*Result, *errs.Report) {
	report := &errs.Report{}
	m := req.Manifest

	nodes, declIndex, edges, graphReport := buildGraph(m)
	report.Diagnostics = append(report.Diagnostics, graphReport.Diagnostics...)
	if report.HasErrors() {
		return nil, report
	}

	cycleReport := detectCycles(nodes, edges)
	report.Diagnostics = append(report.Diagnostics, cycleReport.Diagnostics...)
	if report.HasErrors() {
		return nil, report
	}

	order := topoSortMutationOnly(nodes, declIndex, edges)

	byName := map[string]manifest.ComponentSpec{}
	for _, c := range m.Components {
		byName[c.Name] = c
	}

	isProd := req.Environment == "prod" || req.Environment == "production"

	resolved := map[string]ResolvedComponent{}
	var bindings []BindingEdge

	for _, name := range order {
		spec := byName[name]
		comp, ok := req.ComponentReg.Lookup(spec.Type)
		if !ok {
			report.Add(errs.New(errs.CodeUnknownComponentType, fmt.Sprintf("component %q has unregistered type %q", name, spec.Type)).
				WithPath(fmt.Sprintf("components[%d].type", declIndex[name])))
			continue
		}

		buildResult := configbuilder.Build(configbuilder.Request{
			ComponentType:   spec.Type,
			ComponentName:   spec.Name,
			Environment:     req.Environment,
			Framework:       m.ComplianceFramework,
			IsProduction:    isProd,
			Fallbacks:       comp.Schema().Fallbacks,
			PlatformDefault: req.PlatformDefaults[spec.Type],
			EnvDefaults:     envDefaultsFor(m, req.Environment),
			Overrides:       configbuilder.MergeAll(req.AppendPaths, spec.Config, spec.Overrides),
			PolicyOverrides: spec.Policy.Overrides,
			Justification:   spec.Policy.Justification,
			AppendPaths:     req.AppendPaths,
			PolicyAllowlist: req.PolicyAllowlist,
			ManifestLabels:  m.Labels,
			ComponentLabels: spec.Labels,
		})
		report.Diagnostics = append(report.Diagnostics, buildResult.Report.Diagnostics...)

		if req.SchemaReg != nil {
			schemaReport, err := req.SchemaReg.ValidateComponentConfig(spec.Type, fmt.Sprintf("components[%d].config", declIndex[name]), buildResult.Config)
			if err != nil {
				report.Add(errs.New(errs.CodeInternal, err.Error()))
			} else {
				report.Diagnostics = append(report.Diagnostics, schemaReport.Diagnostics...)
			}
		}

		caps, resourceDecls, err := comp.Synth(components.SynthContext{
			ComponentName:  spec.Name,
			ResolvedConfig: buildResult.Config,
			Environment:    req.Environment,
			Framework:      m.ComplianceFramework,
		})
		if err != nil {
			report.Add(errs.New(errs.CodeInternal, fmt.Sprintf("component %q failed to synthesize: %v", name, err)))
			continue
		}

		for key, data := range caps {
			shapeReport := req.CapabilityReg.ValidateShape(key, data, fmt.Sprintf("components[%d]", declIndex[name]))
			report.Diagnostics = append(report.Diagnostics, shapeReport.Diagnostics...)
		}

		resolved[name] = ResolvedComponent{
			Name:           name,
			Type:           spec.Type,
			ResolvedConfig: buildResult.Config,
			InjectedEnv:    map[string]string{},
			Capabilities:   caps,
			Resources:      resourceDecls,
			SourceLayers:   buildResult.SourceLayers,
			Labels:         buildResult.Labels,
		}
	}

	if report.HasErrors() {
		return nil, report
	}

	for _, name := range order {
		spec := byName[name]
		sourceRecord := resolved[name]

		for i, b := range spec.Binds {
			target, ok := resolved[b.To]
			if !ok {
				continue // already reported as UnknownComponentType above
			}
			data, ok := target.Capabilities[b.Capability]
			if !ok {
				report.Add(errs.New(errs.CodeUnknownCapability, fmt.Sprintf("component %q does not provide capability %q", b.To, b.Capability)).
					WithPath(fmt.Sprintf("components[%d].binds[%d]", declIndex[name], i)))
				continue
			}

			result, diag := req.CapabilityReg.Bind(capability.BindingContext{
				SourceType:     spec.Type,
				SourceName:     spec.Name,
				TargetType:     target.Type,
				TargetName:     target.Name,
				Capability:     b.Capability,
				Access:         capability.AccessLevel(b.Access),
				CapabilityData: data,
				EnvAliases:     b.Env,
				Options:        b.Options,
				Framework:      m.ComplianceFramework,
			})
			if diag != nil {
				report.Add(diag.WithPath(fmt.Sprintf("components[%d].binds[%d]", declIndex[name], i)))
				continue
			}

			for envName, value := range result.EnvVars {
				sourceRecord.InjectedEnv[envName] = value
			}
			bindings = append(bindings, BindingEdge{
				Source:     name,
				Target:     b.To,
				Capability: b.Capability,
				Access:     b.Access,
				Result:     result,
			})
		}
		resolved[name] = sourceRecord
	}

	if report.HasErrors() {
		return nil, report
	}

	for _, name := range order {
		record := resolved[name]
		substituted, refErrs := resolveObservationRefs(record.ResolvedConfig, resolved, fmt.Sprintf("components[%d]", declIndex[name]), req.CapabilityReg)
		report.Diagnostics = append(report.Diagnostics, refErrs...)
		record.ResolvedConfig = substituted
		resolved[name] = record
	}

	if report.HasErrors() {
		return nil, report
	}

	return &Result{Order: order, ResolvedComponents: resolved, Bindings: bindings}, report
}

// envDefaultsFor returns the named environment's defaults map, or an
// empty map if the environment is unknown (schema validation upstream
// is responsible for flagging an unknown active environment; the
// resolver stays permissive here to keep its own contract narrow).
func envDefaultsFor(m *manifest.Manifest, env string) map[string]interface{} {
	if e, ok := m.Environments[env]; ok {
		return e.Defaults
	}
	return map[string]interface{}{}
}

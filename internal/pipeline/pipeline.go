package pipeline

import (
	"fmt"
	"time"

	"github.com/platformforge/svc/internal/compliance"
	"github.com/platformforge/svc/internal/errs"
	"github.com/platformforge/svc/internal/governance"
	"github.com/platformforge/svc/internal/manifest"
	"github.com/platformforge/svc/internal/resolver"
)

// Request bundles everything one compilation run needs.
type Request struct {
	EntrypointPath string
	Environment    string
	Registries     *Registries
	SynthesisDate  time.Time
	AppendPaths    map[string]bool // dotted config paths that merge by append rather than replace
}

// Result is the pipeline's full output: a resolved, hardened,
// governance-audited compilation, ready for IR emission (C9).
type Result struct {
	Manifest         *manifest.Manifest
	LoadReport       *manifest.LoadReport
	Resolved         *resolver.Result
	HardeningActions []compliance.HardeningAction
	SuppressionAudit []governance.AuditEntry
}

// ValidateResult is the output of stages 1-2 alone: a parsed,
// base-schema-valid manifest. It carries no resolved config, no
// capabilities, and no environment-specific data, since neither stage
// needs an active environment to run (spec.md §4.4, §6: `validate`
// takes no `--env`).
type ValidateResult struct {
	Manifest   *manifest.Manifest
	LoadReport *manifest.LoadReport
}

// RunValidateOnly executes stages 1-2 of the pipeline: Parse ->
// SchemaValidate. This is the full contract of the `validate`
// command (spec.md §6 CLI table: "validate | Run stages 1-2"); it
// never touches ContextHydrate/Resolve, ComplianceHarden, or
// Governance, none of which validate requires or can run without a
// target environment.
func RunValidateOnly(req Request) (*ValidateResult, *errs.Report) {
	report := &errs.Report{}

	// C1: Parse.
	raw, loadReport, err := manifest.Load(req.EntrypointPath)
	if err != nil {
		report.Add(toDiagnostic(err))
		return nil, report
	}

	// C2: SchemaValidate (base manifest shape).
	baseReport, err := req.Registries.Schema.ValidateBase(raw)
	if err != nil {
		report.Add(toDiagnostic(err))
		return nil, report
	}
	report.Diagnostics = append(report.Diagnostics, baseReport.Diagnostics...)
	if report.HasErrors() {
		return nil, report
	}

	m, err := manifest.Decode(raw)
	if err != nil {
		report.Add(toDiagnostic(err))
		return nil, report
	}

	frameworkKnown := false
	for _, f := range knownFrameworks {
		if f == m.ComplianceFramework {
			frameworkKnown = true
			break
		}
	}
	if !frameworkKnown {
		report.Add(errs.New(errs.CodeSchemaViolation, fmt.Sprintf("unknown complianceFramework %q", m.ComplianceFramework)).
			WithPath("complianceFramework").
			WithHint(fmt.Sprintf("known frameworks: %v", knownFrameworks)))
		return nil, report
	}

	return &ValidateResult{Manifest: m, LoadReport: loadReport}, report
}

// Run executes the full pipeline: Parse -> SchemaValidate ->
// ContextHydrate/Resolve -> ComplianceHarden -> Governance. Each stage
// halts the pipeline on its own errors (fail-fast between stages);
// within a stage, every diagnostic found is collected before halting.
// Stages 1-2 are delegated to RunValidateOnly; Run picks up from
// there once an Environment is known to be required.
func Run(req Request) (*Result, *errs.Report) {
	validated, report := RunValidateOnly(req)
	if report.HasErrors() {
		return nil, report
	}
	m := validated.Manifest
	loadReport := validated.LoadReport

	if _, ok := m.Environments[req.Environment]; !ok {
		report.Add(errs.New(errs.CodeUnresolvedEnvVar, fmt.Sprintf("unknown environment %q", req.Environment)).
			WithPath("environments").
			WithHint(fmt.Sprintf("declare environments.%s or pass an --env that exists in the manifest", req.Environment)))
		return nil, report
	}

	frameworkCfg, err := compliance.LoadFramework(m.ComplianceFramework)
	if err != nil {
		report.Add(errs.New(errs.CodeInternal, err.Error()))
		return nil, report
	}

	// C3/C5/C6: ContextHydrate + SemanticValidate (configbuilder,
	// schema-per-component, synth, capability bind, ref resolution).
	resolved, resolveReport := resolver.Resolve(resolver.Request{
		Manifest:         m,
		Environment:      req.Environment,
		ComponentReg:     req.Registries.Components,
		CapabilityReg:    req.Registries.Capability,
		SchemaReg:        req.Registries.Schema,
		PlatformDefaults: frameworkCfg.Defaults,
		AppendPaths:      req.AppendPaths,
		PolicyAllowlist:  frameworkCfg.PolicyOverrideAllowlist,
	})
	if resolveReport != nil {
		report.Diagnostics = append(report.Diagnostics, resolveReport.Diagnostics...)
	}
	if report.HasErrors() {
		return nil, report
	}

	// C7: Compliance Hardening.
	hardenResult := compliance.Harden(resolved, m.ComplianceFramework, req.Environment)
	report.Diagnostics = append(report.Diagnostics, hardenResult.Report.Diagnostics...)
	if report.HasErrors() {
		return nil, report
	}

	// C8: Governance.
	componentNames := map[string]bool{}
	for _, c := range m.Components {
		componentNames[c.Name] = true
	}
	audit, govReport := governance.Evaluate(m, componentNames, req.SynthesisDate)
	report.Diagnostics = append(report.Diagnostics, govReport.Diagnostics...)
	if report.HasErrors() {
		return nil, report
	}

	return &Result{
		Manifest:         m,
		LoadReport:       loadReport,
		Resolved:         resolved,
		HardeningActions: hardenResult.Actions,
		SuppressionAudit: audit,
	}, report
}

var knownFrameworks = []string{"commercial", "fedramp-moderate", "fedramp-high"}

// toDiagnostic normalizes a raw error into a *errs.Diagnostic: the
// manifest/schema packages already return *errs.Diagnostic for
// user-facing failures, so this only needs a fallback for the rare
// case a lower layer returns a plain error.
func toDiagnostic(err error) *errs.Diagnostic {
	if d, ok := err.(*errs.Diagnostic); ok {
		return d
	}
	return errs.New(errs.CodeInternal, err.Error())
}

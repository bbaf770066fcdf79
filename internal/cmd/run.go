package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/platformforge/svc/internal/cliutil"
	"github.com/platformforge/svc/internal/pipeline"
)

// registries is built once and shared across every invocation in a
// process; registering component/capability/binder strategies has no
// per-compilation state.
var registries = pipeline.NewRegistries()

// exitCode is set by whichever command ran and read back by Execute.
var exitCode int

func renderer() *cliutil.Renderer {
	return cliutil.New(os.Stdout, ciMode, noColor)
}

// runPipeline resolves the manifest, compiles it for env, and renders
// any diagnostics produced. It returns nil if compilation failed,
// having already set exitCode exit-code mapping.
func runPipeline(env string) *pipeline.Result {
	path, err := findManifest(manifestPath)
	if err != nil {
		renderer().Error(err.Error())
		exitCode = 2
		return nil
	}

	result, report := pipeline.Run(pipeline.Request{
		EntrypointPath: path,
		Environment:    env,
		Registries:     registries,
		SynthesisDate:  time.Now(),
	})

	r := renderer()
	if report.HasErrors() {
		r.RenderReport(report)
		r.Error(fmt.Sprintf("compilation failed with %d diagnostic(s)", len(report.Diagnostics)))
		exitCode = report.ExitCode()
		return nil
	}

	for _, action := range result.HardeningActions {
		r.Info(fmt.Sprintf("%s.%s: %s", action.Component, action.Field, action.Action))
	}
	for _, entry := range result.SuppressionAudit {
		r.Info(fmt.Sprintf("suppression %s honored for %s (audit %s)", entry.ID, entry.Owner, entry.AuditID))
	}

	exitCode = 0
	return result
}

// runValidateOnly resolves the manifest and runs stages 1-2 only
// (Parse + SchemaValidate), rendering any diagnostics produced. It
// returns nil if either stage failed, having already set exitCode.
// Unlike runPipeline, it never requires a target environment.
func runValidateOnly() *pipeline.ValidateResult {
	path, err := findManifest(manifestPath)
	if err != nil {
		renderer().Error(err.Error())
		exitCode = 2
		return nil
	}

	result, report := pipeline.RunValidateOnly(pipeline.Request{
		EntrypointPath: path,
		Registries:     registries,
	})

	r := renderer()
	if report.HasErrors() {
		r.RenderReport(report)
		r.Error(fmt.Sprintf("validation failed with %d diagnostic(s)", len(report.Diagnostics)))
		exitCode = report.ExitCode()
		return nil
	}

	exitCode = 0
	return result
}

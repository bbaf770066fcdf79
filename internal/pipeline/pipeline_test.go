package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFullCompilation(t *testing.T) {
	result, report := Run(Request{
		EntrypointPath: "testdata/basic/service.yml",
		Environment:    "prod",
		Registries:     NewRegistries(),
		SynthesisDate:  time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC),
	})
	require.False(t, report.HasErrors(), "%v", report.Diagnostics)
	require.NotNil(t, result)

	assert.Equal(t, "checkout-api", result.Manifest.Service)

	db := result.Resolved.ResolvedComponents["customer-db"]
	assert.Equal(t, true, db.ResolvedConfig["encryptionAtRest"])
	assert.Equal(t, true, db.ResolvedConfig["multiAZ"])
	assert.Equal(t, 35, db.ResolvedConfig["backupRetentionDays"])

	api := result.Resolved.ResolvedComponents["user-api"]
	assert.Equal(t, db.Capabilities["db:postgres"]["host"], api.InjectedEnv["USER_API_HOST"])

	require.Len(t, result.HardeningActions, 3)

	require.Len(t, result.SuppressionAudit, 1)
	assert.Equal(t, "AwsSolutions-IAM5", result.SuppressionAudit[0].ID)
}

func TestRunValidateOnlyStopsAfterSchemaStage(t *testing.T) {
	// badenv declares only the "qa" environment, which stage 3 would
	// reject for Environment: "prod" (see TestRunRejectsUnknownEnvironment);
	// stages 1-2 alone never look at Environment at all, so the same
	// manifest validates cleanly with no environment in play.
	result, report := RunValidateOnly(Request{
		EntrypointPath: "testdata/badenv/service.yml",
		Registries:     NewRegistries(),
	})
	require.False(t, report.HasErrors(), "%v", report.Diagnostics)
	require.NotNil(t, result)
	assert.Equal(t, "checkout-api", result.Manifest.Service)
}

func TestRunRejectsUnknownEnvironment(t *testing.T) {
	_, report := Run(Request{
		EntrypointPath: "testdata/badenv/service.yml",
		Environment:    "prod",
		Registries:     NewRegistries(),
		SynthesisDate:  time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC),
	})
	require.True(t, report.HasErrors())
	assert.Equal(t, "UnresolvedEnvVarError", string(report.Diagnostics[0].Code))
}

func TestRunEmptyComponentsCompilesSuccessfully(t *testing.T) {
	result, report := Run(Request{
		EntrypointPath: "testdata/empty/service.yml",
		Environment:    "dev",
		Registries:     NewRegistries(),
		SynthesisDate:  time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC),
	})
	require.False(t, report.HasErrors(), "%v", report.Diagnostics)
	require.NotNil(t, result)
	assert.Empty(t, result.Resolved.ResolvedComponents)
	assert.Empty(t, result.Resolved.Bindings)
}

func TestRunHaltsBeforeGovernanceOnResolverError(t *testing.T) {
	_, report := Run(Request{
		EntrypointPath: "testdata/danglingbind/service.yml",
		Environment:    "qa",
		Registries:     NewRegistries(),
		SynthesisDate:  time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC),
	})
	require.True(t, report.HasErrors())
	assert.Equal(t, "DanglingRefError", string(report.Diagnostics[0].Code))
}

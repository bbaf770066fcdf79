package ir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platformforge/svc/internal/pipeline"
)

func compileBasic(t *testing.T) *pipeline.Result {
	t.Helper()
	result, report := pipeline.Run(pipeline.Request{
		EntrypointPath: "../pipeline/testdata/basic/service.yml",
		Environment:    "prod",
		Registries:     pipeline.NewRegistries(),
		SynthesisDate:  time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC),
	})
	require.False(t, report.HasErrors(), "%v", report.Diagnostics)
	return result
}

func TestBuildAssemblesDocument(t *testing.T) {
	doc := Build("prod", compileBasic(t))

	assert.Equal(t, "checkout-api", doc.Service)
	assert.Equal(t, "prod", doc.Environment)
	assert.Equal(t, "fedramp-high", doc.ComplianceFramework)

	require.Contains(t, doc.ResolvedComponents, "customer-db")
	require.Contains(t, doc.ResolvedComponents, "user-api")
	assert.Equal(t, []string{"customer-db"}, doc.ResolvedComponents["user-api"].Bindings)

	require.Len(t, doc.Bindings, 1)
	assert.Equal(t, "user-api", doc.Bindings[0].Source)
	assert.Equal(t, "customer-db", doc.Bindings[0].Target)
	assert.NotEmpty(t, doc.Bindings[0].ID)
	assert.NotEmpty(t, doc.Bindings[0].EnvVars)

	require.Len(t, doc.SuppressionAudit, 1)
	require.Len(t, doc.HardeningActions, 3)
}

func TestMarshalCanonicalIsDeterministic(t *testing.T) {
	docA := Build("prod", compileBasic(t))
	docB := Build("prod", compileBasic(t))

	bytesA, err := docA.MarshalCanonical()
	require.NoError(t, err)
	bytesB, err := docB.MarshalCanonical()
	require.NoError(t, err)

	assert.Equal(t, bytesA, bytesB)
}

func TestMarshalPrettyIsValidAndIndented(t *testing.T) {
	doc := Build("prod", compileBasic(t))
	pretty, err := doc.MarshalPretty()
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\n  ")
	assert.NotEqual(t, byte('\n'), pretty[len(pretty)-1])
}

func TestBuildEmptyComponentsProducesEmptyMaps(t *testing.T) {
	result, report := pipeline.Run(pipeline.Request{
		EntrypointPath: "../pipeline/testdata/empty/service.yml",
		Environment:    "dev",
		Registries:     pipeline.NewRegistries(),
		SynthesisDate:  time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC),
	})
	require.False(t, report.HasErrors(), "%v", report.Diagnostics)

	doc := Build("dev", result)
	assert.Empty(t, doc.ResolvedComponents)
	assert.Empty(t, doc.Bindings)
	assert.Empty(t, doc.SuppressionAudit)
	assert.Empty(t, doc.HardeningActions)
}

package configbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platformforge/svc/internal/errs"
)

// service-environment default must win over a lower-priority platform
// default, even though neither is a direct component override.
func TestBuildPrecedenceAcrossLayers(t *testing.T) {
	req := Request{
		ComponentType: "rds-postgres",
		ComponentName: "primary-db",
		Environment:   "qa",
		Framework:     "fedramp-moderate",
		Fallbacks: map[string]interface{}{
			"instance": map[string]interface{}{"class": "db.t3.micro"},
		},
		PlatformDefault: map[string]interface{}{
			"instance": map[string]interface{}{"class": "db.r5.large"},
		},
		EnvDefaults: map[string]interface{}{
			"dbInstanceClass": "db.r5.xlarge",
		},
		Overrides: map[string]interface{}{
			"instance": map[string]interface{}{"class": "${env:dbInstanceClass}"},
		},
	}

	result := Build(req)
	require.False(t, result.Report.HasErrors())

	instance := result.Config["instance"].(map[string]interface{})
	assert.Equal(t, "db.r5.xlarge", instance["class"])
	assert.Contains(t, result.SourceLayers, "override")
}

// literal policy override beats every lower layer outright.
func TestBuildDirectOverrideWins(t *testing.T) {
	req := Request{
		ComponentType: "rds-postgres",
		ComponentName: "reporting-db",
		Environment:   "prod",
		Framework:     "commercial",
		Fallbacks: map[string]interface{}{
			"instance": map[string]interface{}{"class": "db.t3.micro"},
		},
		PlatformDefault: map[string]interface{}{
			"instance": map[string]interface{}{"class": "db.r5.large"},
		},
		EnvDefaults: map[string]interface{}{
			"dbInstanceClass": "db.r5.xlarge",
		},
		Overrides: map[string]interface{}{
			"instance": map[string]interface{}{"class": "${env:dbInstanceClass}"},
		},
		PolicyOverrides: map[string]interface{}{
			"instance": map[string]interface{}{"class": "db.r5.4xlarge"},
		},
		Justification: "capacity spike approved by platform team",
	}

	result := Build(req)
	require.False(t, result.Report.HasErrors())

	instance := result.Config["instance"].(map[string]interface{})
	assert.Equal(t, "db.r5.4xlarge", instance["class"])
	assert.Contains(t, result.SourceLayers, "policy")
}

func TestBuildRejectsPolicyOverrideWithoutJustification(t *testing.T) {
	req := Request{
		ComponentType: "rds-postgres",
		Environment:   "prod",
		Framework:     "commercial",
		PolicyOverrides: map[string]interface{}{
			"instance": map[string]interface{}{"class": "db.r5.4xlarge"},
		},
	}

	result := Build(req)
	require.True(t, result.Report.HasErrors())
	assert.Equal(t, errs.CodePolicyOverrideRejected, result.Report.First().Code)
	assert.NotContains(t, result.SourceLayers, "policy")
}

func TestBuildRejectsProdFedrampOverrideNotAllowlisted(t *testing.T) {
	req := Request{
		ComponentType: "rds-postgres",
		Environment:   "prod",
		Framework:     "fedramp-high",
		IsProduction:  true,
		PolicyOverrides: map[string]interface{}{
			"instance": map[string]interface{}{"class": "db.r5.4xlarge"},
		},
		Justification:   "unapproved reason",
		PolicyAllowlist: []string{"approved emergency capacity change"},
	}

	result := Build(req)
	require.True(t, result.Report.HasErrors())
	assert.Equal(t, errs.CodePolicyOverrideRejected, result.Report.First().Code)
}

func TestBuildAllowsProdFedrampOverrideWhenAllowlisted(t *testing.T) {
	req := Request{
		ComponentType: "rds-postgres",
		Environment:   "prod",
		Framework:     "fedramp-high",
		IsProduction:  true,
		PolicyOverrides: map[string]interface{}{
			"instance": map[string]interface{}{"class": "db.r5.4xlarge"},
		},
		Justification:   "approved emergency capacity change",
		PolicyAllowlist: []string{"approved emergency capacity change"},
	}

	result := Build(req)
	require.False(t, result.Report.HasErrors())
	assert.Contains(t, result.SourceLayers, "policy")
}

func TestBuildRejectsUnsafeFallback(t *testing.T) {
	req := Request{
		ComponentType: "rest-api-gateway",
		Environment:   "dev",
		Framework:     "commercial",
		Fallbacks: map[string]interface{}{
			"cors": map[string]interface{}{
				"allowOrigins": []interface{}{"*"},
			},
		},
	}

	result := Build(req)
	require.True(t, result.Report.HasErrors())
	assert.Equal(t, errs.CodeComplianceViolation, result.Report.First().Code)
}

func TestBuildMergesManifestAndComponentLabels(t *testing.T) {
	req := Request{
		ComponentType:   "worker",
		Environment:     "dev",
		Framework:       "commercial",
		ManifestLabels:  map[string]interface{}{"team": "platform", "tier": "1"},
		ComponentLabels: map[string]interface{}{"tier": "2"},
	}

	result := Build(req)
	require.False(t, result.Report.HasErrors())
	assert.Equal(t, "platform", result.Labels["team"])
	assert.Equal(t, "2", result.Labels["tier"])
}

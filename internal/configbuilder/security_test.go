package configbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/platformforge/svc/internal/errs"
)

func TestValidateFallbackSafetyAcceptsCleanFallback(t *testing.T) {
	report := ValidateFallbackSafety("rds-postgres", map[string]interface{}{
		"instance": map[string]interface{}{"class": "db.t3.micro"},
	})
	assert.False(t, report.HasErrors())
}

func TestValidateFallbackSafetyRejectsNonEmptyCORSOrigin(t *testing.T) {
	report := ValidateFallbackSafety("rest-api-gateway", map[string]interface{}{
		"cors": map[string]interface{}{
			"allowOrigins": []interface{}{"https://example.com"},
		},
	})
	assert.True(t, report.HasErrors())
	assert.Equal(t, errs.CodeComplianceViolation, report.First().Code)
}

func TestValidateFallbackSafetyRejectsWildcardMethod(t *testing.T) {
	report := ValidateFallbackSafety("rest-api-gateway", map[string]interface{}{
		"cors": map[string]interface{}{
			"allowMethods": []interface{}{"*"},
		},
	})
	assert.True(t, report.HasErrors())
}

func TestValidateFallbackSafetyRejectsCredentialedCORS(t *testing.T) {
	report := ValidateFallbackSafety("rest-api-gateway", map[string]interface{}{
		"cors": map[string]interface{}{"allowCredentials": true},
	})
	assert.True(t, report.HasErrors())
}

func TestValidateFallbackSafetyRejectsPublicAccess(t *testing.T) {
	report := ValidateFallbackSafety("s3-bucket", map[string]interface{}{
		"publiclyAccessible": true,
	})
	assert.True(t, report.HasErrors())
}

func TestValidateFallbackSafetyRejectsHardcodedURL(t *testing.T) {
	report := ValidateFallbackSafety("worker", map[string]interface{}{
		"endpoint": "https://internal.example.com/api",
	})
	assert.True(t, report.HasErrors())
}

func TestValidateFallbackSafetyRejectsHardcodedIP(t *testing.T) {
	report := ValidateFallbackSafety("worker", map[string]interface{}{
		"endpoint": "10.0.4.22",
	})
	assert.True(t, report.HasErrors())
}

func TestValidateFallbackSafetyRejectsHardcodedDomain(t *testing.T) {
	report := ValidateFallbackSafety("worker", map[string]interface{}{
		"host": "legacy.corp.internal.com",
	})
	assert.True(t, report.HasErrors())
}

func TestValidateFallbackSafetyNestedPathsReported(t *testing.T) {
	report := ValidateFallbackSafety("worker", map[string]interface{}{
		"queues": []interface{}{
			map[string]interface{}{"publicAccess": true},
		},
	})
	assert.True(t, report.HasErrors())
	assert.Contains(t, report.First().Path, "queues")
}

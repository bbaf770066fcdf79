package capability

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platformforge/svc/internal/errs"
)

type fakeBinder struct {
	sourceType string
	capability string
	access     []AccessLevel
}

func (f fakeBinder) SourceType() string           { return f.sourceType }
func (f fakeBinder) Capability() string           { return f.capability }
func (f fakeBinder) SupportedAccess() []AccessLevel { return f.access }

func (f fakeBinder) CanHandle(sourceType, capability string, access AccessLevel) bool {
	if sourceType != f.sourceType || capability != f.capability {
		return false
	}
	for _, a := range f.access {
		if a == access {
			return true
		}
	}
	return false
}

func (f fakeBinder) Bind(ctx BindingContext) (BindingResult, error) {
	return BindingResult{
		EnvVars: map[string]string{
			fmt.Sprintf("%s_HOST", ctx.SourceName): fmt.Sprintf("%v", ctx.CapabilityData["host"]),
		},
		AccessGrants: []string{string(ctx.Access)},
	}, nil
}

func (f fakeBinder) Compatibility() []CompatibilityEntry {
	return []CompatibilityEntry{{SourceType: f.sourceType, Capability: f.capability, Access: f.access}}
}

func TestRegisterAndLookupBinder(t *testing.T) {
	r := NewRegistry()
	r.RegisterBinder(fakeBinder{sourceType: "lambda-api", capability: "db:postgres", access: []AccessLevel{AccessReadWrite}})

	strategy, ok := r.Lookup("lambda-api", "db:postgres")
	require.True(t, ok)
	assert.Equal(t, "lambda-api", strategy.SourceType())

	_, ok = r.Lookup("lambda-api", "queue:sqs")
	assert.False(t, ok)
}

func TestBindSucceeds(t *testing.T) {
	r := NewRegistry()
	r.RegisterBinder(fakeBinder{sourceType: "lambda-api", capability: "db:postgres", access: []AccessLevel{AccessReadWrite}})

	result, diag := r.Bind(BindingContext{
		SourceType:     "lambda-api",
		SourceName:     "USER_API",
		Capability:     "db:postgres",
		Access:         AccessReadWrite,
		CapabilityData: map[string]interface{}{"host": "customer-db.internal"},
	})
	require.Nil(t, diag)
	assert.Equal(t, "customer-db.internal", result.EnvVars["USER_API_HOST"])
}

func TestBindUnknownCapability(t *testing.T) {
	r := NewRegistry()
	_, diag := r.Bind(BindingContext{SourceType: "lambda-api", Capability: "queue:sqs", Access: AccessConsume})
	require.NotNil(t, diag)
	assert.Equal(t, errs.CodeUnknownCapability, diag.Code)
}

func TestBindUnsupportedAccess(t *testing.T) {
	r := NewRegistry()
	r.RegisterBinder(fakeBinder{sourceType: "lambda-api", capability: "db:postgres", access: []AccessLevel{AccessRead}})

	_, diag := r.Bind(BindingContext{SourceType: "lambda-api", Capability: "db:postgres", Access: AccessAdmin})
	require.NotNil(t, diag)
	assert.Equal(t, errs.CodeUnsupportedAccess, diag.Code)
}

func TestValidateShapeRequiredFieldMissing(t *testing.T) {
	r := NewRegistry()
	r.RegisterCapabilityShape("db:postgres", DataShape{
		"host":   FieldSpec{Type: "string", Required: true},
		"port":   FieldSpec{Type: "integer", Required: true},
		"dbName": FieldSpec{Type: "string", Required: false},
	})

	report := r.ValidateShape("db:postgres", map[string]interface{}{"host": "x"}, "components[0]")
	require.True(t, report.HasErrors())
	assert.Equal(t, errs.CodeCapabilityShapeMismatch, report.First().Code)
}

func TestValidateShapeTypeMismatch(t *testing.T) {
	r := NewRegistry()
	r.RegisterCapabilityShape("db:postgres", DataShape{
		"port": FieldSpec{Type: "integer", Required: true},
	})

	report := r.ValidateShape("db:postgres", map[string]interface{}{"port": "5432"}, "components[0]")
	require.True(t, report.HasErrors())
}

func TestValidateShapeAccepts(t *testing.T) {
	r := NewRegistry()
	r.RegisterCapabilityShape("db:postgres", DataShape{
		"host": FieldSpec{Type: "string", Required: true},
		"port": FieldSpec{Type: "integer", Required: true},
	})

	report := r.ValidateShape("db:postgres", map[string]interface{}{"host": "x", "port": 5432}, "components[0]")
	assert.False(t, report.HasErrors())
}

func TestValidateShapeUnknownCapability(t *testing.T) {
	r := NewRegistry()
	report := r.ValidateShape("bogus:thing", map[string]interface{}{}, "components[0]")
	require.True(t, report.HasErrors())
	assert.Equal(t, errs.CodeUnknownCapability, report.First().Code)
}

func TestOptimizationRatio(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 1.0, r.OptimizationRatio())

	r.RegisterBinder(fakeBinder{sourceType: "lambda-api", capability: "db:postgres", access: []AccessLevel{AccessRead}})
	r.RegisterBinder(fakeBinder{sourceType: "lambda-api", capability: "queue:sqs", access: []AccessLevel{AccessPublish}})
	r.RegisterBinder(fakeBinder{sourceType: "worker", capability: "queue:sqs", access: []AccessLevel{AccessConsume}})

	// 3 strategies registered across 2 source types -> 1.5
	assert.Equal(t, 1.5, r.OptimizationRatio())
}

func TestSortedSourceTypes(t *testing.T) {
	r := NewRegistry()
	r.RegisterBinder(fakeBinder{sourceType: "worker", capability: "queue:sqs"})
	r.RegisterBinder(fakeBinder{sourceType: "lambda-api", capability: "db:postgres"})
	assert.Equal(t, []string{"lambda-api", "worker"}, r.SortedSourceTypes())
}

package binders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platformforge/svc/internal/capability"
)

func TestLambdaAPIBindsToPostgres(t *testing.T) {
	cap := capability.NewRegistry()
	RegisterAll(cap)

	result, diag := cap.Bind(capability.BindingContext{
		SourceType: "lambda-api",
		SourceName: "user-api",
		TargetType: "rds-postgres",
		TargetName: "customer-db",
		Capability: "db:postgres",
		Access:     capability.AccessReadWrite,
		CapabilityData: map[string]interface{}{
			"host":      "customer-db.internal",
			"port":      5432,
			"dbName":    "customer_db_prod",
			"secretArn": "arn:aws:secretsmanager:::secret:x",
		},
	})
	require.Nil(t, diag)
	assert.Equal(t, "customer-db.internal", result.EnvVars["USER_API_HOST"])
	assert.Equal(t, "5432", result.EnvVars["USER_API_PORT"])
	assert.Equal(t, "customer_db_prod", result.EnvVars["USER_API_DB_NAME"])
	assert.NotEmpty(t, result.EnvVars["USER_API_SECRET_ARN"])
	assert.Contains(t, result.NetworkRequirements, "shared-security-group")
}

func TestWorkerConsumesQueue(t *testing.T) {
	cap := capability.NewRegistry()
	RegisterAll(cap)

	result, diag := cap.Bind(capability.BindingContext{
		SourceType:     "worker",
		SourceName:     "order-processor",
		Capability:     "queue:sqs",
		Access:         capability.AccessConsume,
		CapabilityData: map[string]interface{}{"queueUrl": "https://sqs.internal/q", "queueArn": "arn:aws:sqs:::q"},
	})
	require.Nil(t, diag)
	assert.Equal(t, "https://sqs.internal/q", result.EnvVars["ORDER_PROCESSOR_QUEUE_URL"])
}

func TestUnsupportedAccessRejected(t *testing.T) {
	cap := capability.NewRegistry()
	RegisterAll(cap)

	_, diag := cap.Bind(capability.BindingContext{
		SourceType: "lambda-api",
		SourceName: "user-api",
		Capability: "db:postgres",
		Access:     capability.AccessPublish,
	})
	require.NotNil(t, diag)
}

func TestFedrampBindingRequiresEncryptionInTransit(t *testing.T) {
	cap := capability.NewRegistry()
	RegisterAll(cap)

	result, diag := cap.Bind(capability.BindingContext{
		SourceType:     "lambda-api",
		SourceName:     "user-api",
		Capability:     "db:postgres",
		Access:         capability.AccessRead,
		Framework:      "fedramp-high",
		CapabilityData: map[string]interface{}{"host": "x"},
	})
	require.Nil(t, diag)
	assert.Contains(t, result.PostBindConstraints, "encryption-in-transit-required")
}

func TestEnvAliasOverride(t *testing.T) {
	cap := capability.NewRegistry()
	RegisterAll(cap)

	result, diag := cap.Bind(capability.BindingContext{
		SourceType:     "lambda-api",
		SourceName:     "user-api",
		Capability:     "db:postgres",
		Access:         capability.AccessRead,
		CapabilityData: map[string]interface{}{"host": "customer-db.internal"},
		EnvAliases:     map[string]string{"DATABASE_HOST": "host"},
	})
	require.Nil(t, diag)
	assert.Equal(t, "customer-db.internal", result.EnvVars["DATABASE_HOST"])
}

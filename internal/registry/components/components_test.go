package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHasAllEightTypes(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{
		"lambda-api", "rds-postgres", "redis-cache", "rest-api-gateway",
		"s3-bucket", "sqs-queue", "vpc-net", "worker",
	}, r.Types())
}

func TestRDSPostgresSynthExposesDBPostgres(t *testing.T) {
	r := NewRegistry()
	c, ok := r.Lookup("rds-postgres")
	require.True(t, ok)

	caps, resources, err := c.Synth(SynthContext{
		ComponentName: "customer-db",
		Environment:   "prod",
		ResolvedConfig: map[string]interface{}{
			"instance": map[string]interface{}{"class": "db.r5.large"},
		},
	})
	require.NoError(t, err)
	require.Contains(t, caps, "db:postgres")
	assert.NotEmpty(t, caps["db:postgres"]["host"])
	assert.Equal(t, 5432, caps["db:postgres"]["port"])
	assert.Len(t, resources, 1)
	assert.Equal(t, "rds-instance", resources[0].Kind)
	assert.Equal(t, "db.r5.large", resources[0].Properties["instanceClass"])
}

func TestSQSQueueFifoNaming(t *testing.T) {
	r := NewRegistry()
	c, _ := r.Lookup("sqs-queue")
	caps, _, err := c.Synth(SynthContext{
		ComponentName:  "orders",
		Environment:    "qa",
		ResolvedConfig: map[string]interface{}{"fifo": true},
	})
	require.NoError(t, err)
	assert.Contains(t, caps["queue:sqs"]["queueUrl"], ".fifo")
}

func TestLambdaAPIExposesRestAndLambda(t *testing.T) {
	r := NewRegistry()
	c, _ := r.Lookup("lambda-api")
	caps, resources, err := c.Synth(SynthContext{
		ComponentName: "user-api",
		Environment:   "dev",
		ResolvedConfig: map[string]interface{}{
			"handler": "index.handler",
			"runtime": "nodejs20.x",
		},
	})
	require.NoError(t, err)
	assert.Contains(t, caps, "api:rest")
	assert.Contains(t, caps, "compute:lambda")
	assert.Len(t, resources, 2)
}

func TestSynthIsDeterministic(t *testing.T) {
	r := NewRegistry()
	c, _ := r.Lookup("s3-bucket")
	ctx := SynthContext{ComponentName: "assets", Environment: "prod"}

	caps1, res1, err1 := c.Synth(ctx)
	caps2, res2, err2 := c.Synth(ctx)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, caps1, caps2)
	assert.Equal(t, res1, res2)
}

func TestEveryComponentSchemaHasType(t *testing.T) {
	r := NewRegistry()
	for _, typ := range r.Types() {
		c, _ := r.Lookup(typ)
		assert.Equal(t, typ, c.Schema().Type)
	}
}

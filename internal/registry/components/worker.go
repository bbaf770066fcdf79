package components

import (
	"fmt"

	"github.com/platformforge/svc/internal/schema"
)

// Worker is a long-running background process exposing
// compute:worker; typically a consumer of queue:sqs via binds rather
// than an exposer of storage capabilities.
type Worker struct{}

func (Worker) Type() string { return "worker" }

func (Worker) Schema() schema.ComponentSchema {
	return schema.ComponentSchema{
		Type: "worker",
		Schema: map[string]interface{}{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []interface{}{"image"},
			"properties": map[string]interface{}{
				"image":    map[string]interface{}{"type": "string"},
				"replicas": map[string]interface{}{"type": "integer"},
				"cpuUnits": map[string]interface{}{"type": "integer"},
			},
		},
		Fallbacks: map[string]interface{}{
			"replicas": 1,
			"cpuUnits": 256,
		},
	}
}

func (c Worker) Synth(ctx SynthContext) (Capabilities, []ResourceDeclaration, error) {
	image, _ := stringField(ctx.ResolvedConfig, "image")
	replicas, ok := intField(ctx.ResolvedConfig, "replicas")
	if !ok {
		replicas = 1
	}

	serviceName := fmt.Sprintf("%s-%s", ctx.ComponentName, ctx.Environment)
	serviceArn := fmt.Sprintf("arn:aws:ecs:::service:%s", serviceName)

	caps := Capabilities{
		"compute:worker": {
			"serviceArn":  serviceArn,
			"serviceName": serviceName,
		},
	}

	resources := []ResourceDeclaration{
		{
			Kind: "worker-service",
			Name: resourceName("svc", ctx.ComponentName),
			Properties: map[string]interface{}{
				"image":    image,
				"replicas": replicas,
			},
		},
	}

	return caps, resources, nil
}

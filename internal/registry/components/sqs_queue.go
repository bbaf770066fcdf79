package components

import (
	"fmt"

	"github.com/platformforge/svc/internal/schema"
)

// SQSQueue is a managed message queue exposing queue:sqs.
type SQSQueue struct{}

func (SQSQueue) Type() string { return "sqs-queue" }

func (SQSQueue) Schema() schema.ComponentSchema {
	return schema.ComponentSchema{
		Type: "sqs-queue",
		Schema: map[string]interface{}{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]interface{}{
				"fifo":                   map[string]interface{}{"type": "boolean"},
				"visibilityTimeoutSeconds": map[string]interface{}{"type": "integer"},
				"messageRetentionSeconds":  map[string]interface{}{"type": "integer"},
			},
		},
		Fallbacks: map[string]interface{}{
			"fifo":                     false,
			"visibilityTimeoutSeconds": 30,
		},
	}
}

func (c SQSQueue) Synth(ctx SynthContext) (Capabilities, []ResourceDeclaration, error) {
	fifo, _ := boolField(ctx.ResolvedConfig, "fifo")
	visibility, ok := intField(ctx.ResolvedConfig, "visibilityTimeoutSeconds")
	if !ok {
		visibility = 30
	}

	name := fmt.Sprintf("%s-%s", ctx.ComponentName, ctx.Environment)
	if fifo {
		name += ".fifo"
	}
	queueURL := fmt.Sprintf("https://sqs.internal/queues/%s", name)
	queueArn := fmt.Sprintf("arn:aws:sqs:::%s", name)

	caps := Capabilities{
		"queue:sqs": {
			"queueUrl": queueURL,
			"queueArn": queueArn,
			"fifo":     fifo,
		},
	}

	resources := []ResourceDeclaration{
		{
			Kind: "sqs-queue",
			Name: resourceName("queue", ctx.ComponentName),
			Properties: map[string]interface{}{
				"fifo":                     fifo,
				"visibilityTimeoutSeconds": visibility,
			},
		},
	}

	return caps, resources, nil
}

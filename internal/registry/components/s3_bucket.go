package components

import (
	"fmt"

	"github.com/platformforge/svc/internal/schema"
)

// S3Bucket is a managed object store exposing bucket:s3.
type S3Bucket struct{}

func (S3Bucket) Type() string { return "s3-bucket" }

func (S3Bucket) Schema() schema.ComponentSchema {
	return schema.ComponentSchema{
		Type: "s3-bucket",
		Schema: map[string]interface{}{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]interface{}{
				"versioning":         map[string]interface{}{"type": "boolean"},
				"encryptionAtRest":   map[string]interface{}{"type": "boolean"},
				"publiclyAccessible": map[string]interface{}{"type": "boolean"},
			},
		},
		Fallbacks: map[string]interface{}{
			"versioning":         false,
			"publiclyAccessible": false,
		},
	}
}

func (c S3Bucket) Synth(ctx SynthContext) (Capabilities, []ResourceDeclaration, error) {
	encrypted, _ := boolField(ctx.ResolvedConfig, "encryptionAtRest")
	versioning, _ := boolField(ctx.ResolvedConfig, "versioning")

	bucketName := fmt.Sprintf("%s-%s", ctx.ComponentName, ctx.Environment)
	bucketArn := fmt.Sprintf("arn:aws:s3:::%s", bucketName)

	caps := Capabilities{
		"bucket:s3": {
			"bucketName": bucketName,
			"bucketArn":  bucketArn,
			"region":     "us-east-1",
		},
	}

	resources := []ResourceDeclaration{
		{
			Kind: "s3-bucket",
			Name: resourceName("bucket", ctx.ComponentName),
			Properties: map[string]interface{}{
				"versioning":       versioning,
				"encryptionAtRest": encrypted,
			},
		},
	}

	return caps, resources, nil
}

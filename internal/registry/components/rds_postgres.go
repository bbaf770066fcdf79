package components

import (
	"fmt"

	"github.com/platformforge/svc/internal/schema"
)

// RDSPostgres is a managed relational database exposing db:postgres.
type RDSPostgres struct{}

func (RDSPostgres) Type() string { return "rds-postgres" }

func (RDSPostgres) Schema() schema.ComponentSchema {
	return schema.ComponentSchema{
		Type: "rds-postgres",
		Schema: map[string]interface{}{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]interface{}{
				"instance": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"class": map[string]interface{}{"type": "string"},
					},
				},
				"storage": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"gb": map[string]interface{}{"type": "integer"},
					},
				},
				"multiAZ":          map[string]interface{}{"type": "boolean"},
				"encryptionAtRest": map[string]interface{}{"type": "boolean"},
				"backupRetentionDays": map[string]interface{}{"type": "integer"},
			},
		},
		Fallbacks: map[string]interface{}{
			"instance": map[string]interface{}{"class": "db.t3.micro"},
			"storage":  map[string]interface{}{"gb": 20},
		},
	}
}

func (c RDSPostgres) Synth(ctx SynthContext) (Capabilities, []ResourceDeclaration, error) {
	instanceClass, ok := stringField(ctx.ResolvedConfig, "instance", "class")
	if !ok {
		instanceClass = "db.t3.micro"
	}
	storageGB, ok := intField(ctx.ResolvedConfig, "storage", "gb")
	if !ok {
		storageGB = 20
	}
	multiAZ, _ := boolField(ctx.ResolvedConfig, "multiAZ")
	encrypted, _ := boolField(ctx.ResolvedConfig, "encryptionAtRest")

	dbName := fmt.Sprintf("%s_%s", underscored(ctx.ComponentName), ctx.Environment)
	host := fmt.Sprintf("%s.%s.internal", ctx.ComponentName, ctx.Environment)
	secretArn := fmt.Sprintf("arn:aws:secretsmanager:::secret:%s-%s/credentials", ctx.ComponentName, ctx.Environment)

	caps := Capabilities{
		"db:postgres": {
			"host":      host,
			"port":      5432,
			"dbName":    dbName,
			"secretArn": secretArn,
		},
	}

	resources := []ResourceDeclaration{
		{
			Kind: "rds-instance",
			Name: resourceName("db", ctx.ComponentName),
			Properties: map[string]interface{}{
				"instanceClass":    instanceClass,
				"storageGB":        storageGB,
				"multiAZ":          multiAZ,
				"encryptionAtRest": encrypted,
			},
		},
	}

	return caps, resources, nil
}

func underscored(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '-' {
			out = append(out, '_')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

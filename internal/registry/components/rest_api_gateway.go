package components

import (
	"fmt"

	"github.com/platformforge/svc/internal/schema"
)

// RESTAPIGateway fronts one or more backend components with a single
// public HTTP surface, exposing api:rest.
type RESTAPIGateway struct{}

func (RESTAPIGateway) Type() string { return "rest-api-gateway" }

func (RESTAPIGateway) Schema() schema.ComponentSchema {
	return schema.ComponentSchema{
		Type: "rest-api-gateway",
		Schema: map[string]interface{}{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]interface{}{
				"tlsMinVersion": map[string]interface{}{"type": "string"},
				"cors": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"allowOrigins":     map[string]interface{}{"type": "array"},
						"allowCredentials": map[string]interface{}{"type": "boolean"},
						"allowMethods":     map[string]interface{}{"type": "array"},
						"allowHeaders":     map[string]interface{}{"type": "array"},
					},
				},
			},
		},
		Fallbacks: map[string]interface{}{
			"tlsMinVersion": "1.2",
			"cors": map[string]interface{}{
				"allowOrigins": []interface{}{},
			},
		},
	}
}

func (c RESTAPIGateway) Synth(ctx SynthContext) (Capabilities, []ResourceDeclaration, error) {
	tlsMin, ok := stringField(ctx.ResolvedConfig, "tlsMinVersion")
	if !ok {
		tlsMin = "1.2"
	}

	apiID := fmt.Sprintf("%s-gw-%s", ctx.ComponentName, ctx.Environment)
	endpoint := fmt.Sprintf("https://%s.gateway.internal", apiID)

	caps := Capabilities{
		"api:rest": {
			"endpointUrl": endpoint,
			"apiId":       apiID,
		},
	}

	resources := []ResourceDeclaration{
		{
			Kind: "api-gateway",
			Name: resourceName("gw", ctx.ComponentName),
			Properties: map[string]interface{}{
				"tlsMinVersion": tlsMin,
			},
		},
	}

	return caps, resources, nil
}

package components

import (
	"fmt"

	"github.com/platformforge/svc/internal/schema"
)

// LambdaAPI is a serverless function fronted by its own invoke
// endpoint. It exposes api:rest so other components (or the developer)
// can observe its endpoint via ${ref:...}, and typically binds OUT to
// storage/queue capabilities rather than exposing any of its own.
type LambdaAPI struct{}

func (LambdaAPI) Type() string { return "lambda-api" }

func (LambdaAPI) Schema() schema.ComponentSchema {
	return schema.ComponentSchema{
		Type: "lambda-api",
		Schema: map[string]interface{}{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []interface{}{"handler", "runtime"},
			"properties": map[string]interface{}{
				"handler":      map[string]interface{}{"type": "string"},
				"runtime":      map[string]interface{}{"type": "string"},
				"memoryMB":     map[string]interface{}{"type": "integer"},
				"timeoutSeconds": map[string]interface{}{"type": "integer"},
			},
		},
		Fallbacks: map[string]interface{}{
			"memoryMB":       128,
			"timeoutSeconds": 3,
		},
	}
}

func (c LambdaAPI) Synth(ctx SynthContext) (Capabilities, []ResourceDeclaration, error) {
	handler, _ := stringField(ctx.ResolvedConfig, "handler")
	runtime, _ := stringField(ctx.ResolvedConfig, "runtime")
	memoryMB, ok := intField(ctx.ResolvedConfig, "memoryMB")
	if !ok {
		memoryMB = 128
	}

	functionName := fmt.Sprintf("%s-%s", ctx.ComponentName, ctx.Environment)
	functionArn := fmt.Sprintf("arn:aws:lambda:::function:%s", functionName)
	apiID := fmt.Sprintf("%s-api", ctx.ComponentName)
	endpoint := fmt.Sprintf("https://%s.execute-api.internal/%s", apiID, ctx.Environment)

	caps := Capabilities{
		"api:rest": {
			"endpointUrl": endpoint,
			"apiId":       apiID,
		},
		"compute:lambda": {
			"functionArn":  functionArn,
			"functionName": functionName,
		},
	}

	resources := []ResourceDeclaration{
		{
			Kind: "lambda-function",
			Name: resourceName("fn", ctx.ComponentName),
			Properties: map[string]interface{}{
				"handler":  handler,
				"runtime":  runtime,
				"memoryMB": memoryMB,
			},
		},
		{
			Kind: "http-api-route",
			Name: resourceName("route", ctx.ComponentName),
			Properties: map[string]interface{}{
				"apiId": apiID,
			},
		},
	}

	return caps, resources, nil
}

package components

import (
	"fmt"

	"github.com/platformforge/svc/internal/schema"
)

// RedisCache is a managed in-memory cache exposing cache:redis.
type RedisCache struct{}

func (RedisCache) Type() string { return "redis-cache" }

func (RedisCache) Schema() schema.ComponentSchema {
	return schema.ComponentSchema{
		Type: "redis-cache",
		Schema: map[string]interface{}{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]interface{}{
				"nodeType":      map[string]interface{}{"type": "string"},
				"numNodes":      map[string]interface{}{"type": "integer"},
				"encryptionInTransit": map[string]interface{}{"type": "boolean"},
			},
		},
		Fallbacks: map[string]interface{}{
			"nodeType": "cache.t3.micro",
			"numNodes": 1,
		},
	}
}

func (c RedisCache) Synth(ctx SynthContext) (Capabilities, []ResourceDeclaration, error) {
	nodeType, ok := stringField(ctx.ResolvedConfig, "nodeType")
	if !ok {
		nodeType = "cache.t3.micro"
	}
	numNodes, ok := intField(ctx.ResolvedConfig, "numNodes")
	if !ok {
		numNodes = 1
	}

	endpoint := fmt.Sprintf("%s.%s.cache.internal", ctx.ComponentName, ctx.Environment)

	caps := Capabilities{
		"cache:redis": {
			"endpoint": endpoint,
			"port":     6379,
		},
	}

	resources := []ResourceDeclaration{
		{
			Kind: "redis-cluster",
			Name: resourceName("cache", ctx.ComponentName),
			Properties: map[string]interface{}{
				"nodeType": nodeType,
				"numNodes": numNodes,
			},
		},
	}

	return caps, resources, nil
}

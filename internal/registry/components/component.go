// Package components implements the eight component types a manifest
// may declare. Each type satisfies the Component interface as a
// capability set rather than a class hierarchy, so shared behavior
// (tagging, naming conventions) is composed via free functions instead
// of inheritance.
package components

import (
	"fmt"

	"github.com/platformforge/svc/internal/capability"
	"github.com/platformforge/svc/internal/schema"
)

// SynthContext is everything a component's Synth method needs: its
// resolved configuration, its own name, and the compilation's
// environment/framework for naming and policy decisions that must
// remain deterministic and offline.
type SynthContext struct {
	ComponentName string
	ResolvedConfig map[string]interface{}
	Environment    string
	Framework      string
}

// ResourceDeclaration is one synthesized cloud resource a component
// contributes to the plan. It is deliberately provider-agnostic: the
// template backend (out of scope for the core) maps Kind
// to a concrete cloud resource type.
type ResourceDeclaration struct {
	Kind       string                 `json:"kind"`
	Name       string                 `json:"name"`
	Properties map[string]interface{} `json:"properties"`
}

// Capabilities maps a capability key to the data it exposes.
type Capabilities map[string]map[string]interface{}

// Component is the interface every registered component type
// implements.
type Component interface {
	Type() string
	Synth(ctx SynthContext) (Capabilities, []ResourceDeclaration, error)
	Schema() schema.ComponentSchema
}

// EnvPrefix derives the conventional environment-variable prefix for a
// component name: upper-cased, hyphens to underscores. Binder
// strategies use this to name injected variables ({PREFIX}_HOST, etc).
func EnvPrefix(componentName string) string {
	out := make([]rune, 0, len(componentName))
	for _, r := range componentName {
		if r == '-' {
			out = append(out, '_')
			continue
		}
		out = append(out, r)
	}
	return toUpper(string(out))
}

func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

// stringField reads a string field at path from resolved config and
// reports whether it was present as a string; callers supply their own
// default when it is absent, which keeps Synth total.
func stringField(cfg map[string]interface{}, path ...string) (string, bool) {
	var cur interface{} = cfg
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return "", false
		}
		cur, ok = m[p]
		if !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	return s, ok
}

func intField(cfg map[string]interface{}, path ...string) (int, bool) {
	var cur interface{} = cfg
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return 0, false
		}
		cur, ok = m[p]
		if !ok {
			return 0, false
		}
	}
	switch v := cur.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func boolField(cfg map[string]interface{}, path ...string) (bool, bool) {
	var cur interface{} = cfg
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return false, false
		}
		cur, ok = m[p]
		if !ok {
			return false, false
		}
	}
	b, ok := cur.(bool)
	return b, ok
}

// capabilityShapes returns the DataShape registrations every component
// type in this package needs; Registry wiring (internal/registry) uses
// this to populate the capability.Registry once at process start.
func capabilityShapes() map[string]capability.DataShape {
	return map[string]capability.DataShape{
		"db:postgres": {
			"host":      capability.FieldSpec{Type: "string", Required: true},
			"port":      capability.FieldSpec{Type: "integer", Required: true},
			"dbName":    capability.FieldSpec{Type: "string", Required: true},
			"secretArn": capability.FieldSpec{Type: "string", Required: true},
		},
		"queue:sqs": {
			"queueUrl": capability.FieldSpec{Type: "string", Required: true},
			"queueArn": capability.FieldSpec{Type: "string", Required: true},
			"fifo":     capability.FieldSpec{Type: "boolean", Required: false},
		},
		"bucket:s3": {
			"bucketName": capability.FieldSpec{Type: "string", Required: true},
			"bucketArn":  capability.FieldSpec{Type: "string", Required: true},
			"region":     capability.FieldSpec{Type: "string", Required: true},
		},
		"net:vpc": {
			"vpcId":            capability.FieldSpec{Type: "string", Required: true},
			"securityGroupId":  capability.FieldSpec{Type: "string", Required: true},
			"privateSubnetIds": capability.FieldSpec{Type: "string", Required: false},
		},
		"cache:redis": {
			"endpoint": capability.FieldSpec{Type: "string", Required: true},
			"port":     capability.FieldSpec{Type: "integer", Required: true},
		},
		"api:rest": {
			"endpointUrl": capability.FieldSpec{Type: "string", Required: true},
			"apiId":       capability.FieldSpec{Type: "string", Required: true},
		},
		"compute:lambda": {
			"functionArn": capability.FieldSpec{Type: "string", Required: true},
			"functionName": capability.FieldSpec{Type: "string", Required: true},
		},
		"compute:worker": {
			"serviceArn":  capability.FieldSpec{Type: "string", Required: true},
			"serviceName": capability.FieldSpec{Type: "string", Required: true},
		},
	}
}

func resourceName(kind, componentName string) string {
	return fmt.Sprintf("%s-%s", componentName, kind)
}

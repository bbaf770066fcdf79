package components

import (
	"fmt"

	"github.com/platformforge/svc/internal/schema"
)

// VPCNet is a network boundary exposing net:vpc; other components
// bind to it to request shared security-group / subnet membership.
type VPCNet struct{}

func (VPCNet) Type() string { return "vpc-net" }

func (VPCNet) Schema() schema.ComponentSchema {
	return schema.ComponentSchema{
		Type: "vpc-net",
		Schema: map[string]interface{}{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]interface{}{
				"cidr":        map[string]interface{}{"type": "string"},
				"azCount":     map[string]interface{}{"type": "integer"},
				"natGateways": map[string]interface{}{"type": "boolean"},
			},
		},
		Fallbacks: map[string]interface{}{
			"cidr":    "10.0.0.0/16",
			"azCount": 2,
		},
	}
}

func (c VPCNet) Synth(ctx SynthContext) (Capabilities, []ResourceDeclaration, error) {
	cidr, ok := stringField(ctx.ResolvedConfig, "cidr")
	if !ok {
		cidr = "10.0.0.0/16"
	}
	azCount, ok := intField(ctx.ResolvedConfig, "azCount")
	if !ok {
		azCount = 2
	}

	vpcID := fmt.Sprintf("vpc-%s-%s", ctx.ComponentName, ctx.Environment)
	sgID := fmt.Sprintf("sg-%s-%s", ctx.ComponentName, ctx.Environment)

	caps := Capabilities{
		"net:vpc": {
			"vpcId":           vpcID,
			"securityGroupId": sgID,
		},
	}

	resources := []ResourceDeclaration{
		{
			Kind: "vpc",
			Name: resourceName("vpc", ctx.ComponentName),
			Properties: map[string]interface{}{
				"cidr":    cidr,
				"azCount": azCount,
			},
		},
	}

	return caps, resources, nil
}

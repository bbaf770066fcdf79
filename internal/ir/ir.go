// Package ir implements the intermediate-representation emitter: the
// final, immutable compiled artifact produced after every other stage
// has succeeded, plus its canonical, byte-for-byte-deterministic JSON
// encoding.
package ir

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/platformforge/svc/internal/compliance"
	"github.com/platformforge/svc/internal/governance"
	"github.com/platformforge/svc/internal/pipeline"
	"github.com/platformforge/svc/internal/registry/components"
)

// bindingNamespace seeds the deterministic UUIDs assigned to each
// resolved binding edge, mirroring governance's auditNamespace: a
// stable per-edge identifier derived from the edge's own content, not
// a random source, so the IR stays byte-identical across reruns of an
// unchanged manifest.
var bindingNamespace = uuid.MustParse("a27d9b2e-4b7a-4e21-9f2e-0f0f7b9e5c3a")

// ResolvedComponentIR is one component's entry in resolvedComponents.
type ResolvedComponentIR struct {
	Type           string                          `json:"type"`
	ResolvedConfig map[string]interface{}          `json:"resolvedConfig"`
	InjectedEnv    map[string]string               `json:"injectedEnv,omitempty"`
	Capabilities   components.Capabilities         `json:"capabilities"`
	Resources      []components.ResourceDeclaration `json:"resources"`
	Bindings       []string                        `json:"bindings"`
	SourceLayers   []string                        `json:"sourceLayers"`
}

// BindingIR is one resolved source -> target wiring action.
type BindingIR struct {
	ID                  string            `json:"id"`
	Source              string            `json:"source"`
	Target              string            `json:"target"`
	Capability          string            `json:"capability"`
	Access              string            `json:"access"`
	EnvVars             map[string]string `json:"envVars"`
	AccessGrants        []string          `json:"accessGrants"`
	NetworkRequirements []string          `json:"networkRequirements,omitempty"`
	PostBindConstraints []string          `json:"postBindConstraints,omitempty"`
}

// Document is the complete compiled artifact: immutable once built,
// serialized once, never mutated in place.
type Document struct {
	Service             string                         `json:"service"`
	Environment         string                         `json:"environment"`
	ComplianceFramework string                         `json:"complianceFramework"`
	ResolvedComponents  map[string]ResolvedComponentIR `json:"resolvedComponents"`
	Bindings            []BindingIR                    `json:"bindings"`
	Warnings            []string                        `json:"warnings"`
	HardeningActions    []compliance.HardeningAction    `json:"hardeningActions"`
	SuppressionAudit    []governance.AuditEntry         `json:"suppressionAudit"`
}

// Build assembles the IR Document from a completed pipeline run. It
// performs no validation of its own: every invariant the IR promises
// has already been enforced by the stage that produced pipeline.Result.
func Build(env string, result *pipeline.Result) *Document {
	doc := &Document{
		Service:             result.Manifest.Service,
		Environment:         env,
		ComplianceFramework: result.Manifest.ComplianceFramework,
		ResolvedComponents:  map[string]ResolvedComponentIR{},
		HardeningActions:    result.HardeningActions,
		SuppressionAudit:    result.SuppressionAudit,
	}
	if doc.HardeningActions == nil {
		doc.HardeningActions = []compliance.HardeningAction{}
	}
	if doc.SuppressionAudit == nil {
		doc.SuppressionAudit = []governance.AuditEntry{}
	}

	outgoing := map[string][]string{}
	for _, b := range result.Resolved.Bindings {
		id := uuid.NewSHA1(bindingNamespace, []byte(b.Source+"|"+b.Target+"|"+b.Capability+"|"+b.Access)).String()
		doc.Bindings = append(doc.Bindings, BindingIR{
			ID:                  id,
			Source:              b.Source,
			Target:              b.Target,
			Capability:          b.Capability,
			Access:              b.Access,
			EnvVars:             orEmptyMap(b.Result.EnvVars),
			AccessGrants:        orEmpty(b.Result.AccessGrants),
			NetworkRequirements: b.Result.NetworkRequirements,
			PostBindConstraints: b.Result.PostBindConstraints,
		})
		outgoing[b.Source] = append(outgoing[b.Source], b.Target)
	}
	if doc.Bindings == nil {
		doc.Bindings = []BindingIR{}
	}

	for _, name := range result.Resolved.Order {
		rc := result.Resolved.ResolvedComponents[name]
		doc.ResolvedComponents[name] = ResolvedComponentIR{
			Type:           rc.Type,
			ResolvedConfig: rc.ResolvedConfig,
			InjectedEnv:    rc.InjectedEnv,
			Capabilities:   orEmptyCaps(rc.Capabilities),
			Resources:      orEmptyResources(rc.Resources),
			Bindings:       orEmpty(outgoing[name]),
			SourceLayers:   rc.SourceLayers,
		}
	}

	doc.Warnings = []string{}

	return doc
}

// MarshalCanonical produces the byte-for-byte-deterministic encoding
// used for diffing two compilations:
// compact, sorted map keys (the default for encoding/json on Go maps),
// declaration-order-preserving sequences, no surrounding indentation.
func (d *Document) MarshalCanonical() ([]byte, error) {
	return json.Marshal(d)
}

// MarshalPretty produces the human-facing rendering written to stdout
// or --out by default.
func (d *Document) MarshalPretty() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	// encoding/json's Encoder always appends a trailing newline; trim it
	// so callers control their own line endings when writing to --out.
	if len(out) > 0 && out[len(out)-1] == '\n' {
		out = out[:len(out)-1]
	}
	return out, nil
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyCaps(c components.Capabilities) components.Capabilities {
	if c == nil {
		return components.Capabilities{}
	}
	return c
}

func orEmptyResources(r []components.ResourceDeclaration) []components.ResourceDeclaration {
	if r == nil {
		return []components.ResourceDeclaration{}
	}
	return r
}

// Package schema implements the Schema Registry: a
// base manifest schema plus one JSON-Schema document per registered
// component type, each validated on its own (no combined master schema
// is built) with github.com/xeipuuv/gojsonschema — the JSON-Schema library this
// platform's sibling gateway-controller already uses for policy
// validation (wso2-api-platform/gateway/gateway-controller/pkg/config/policy_validator.go).
package schema

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"github.com/platformforge/svc/internal/errs"
)

// ComponentSchema is the JSON-Schema document describing one
// component type's `config` object, plus the hardcoded Layer-1
// fallback values used when no higher layer supplies a key.
type ComponentSchema struct {
	Type      string
	Schema    map[string]interface{}
	Fallbacks map[string]interface{}
}

// Registry holds the component-type schemas registered at process
// start. It is built once and treated as immutable thereafter.
type Registry struct {
	types map[string]ComponentSchema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]ComponentSchema)}
}

// Register adds a component type's schema and fallback defaults.
// Registering the same type twice overwrites the previous entry,
// treating re-registration as upsert (used in tests to stub out a
// type's schema).
func (r *Registry) Register(cs ComponentSchema) {
	r.types[cs.Type] = cs
}

// Lookup returns the schema registered for typ, if any.
func (r *Registry) Lookup(typ string) (ComponentSchema, bool) {
	cs, ok := r.types[typ]
	return cs, ok
}

// RegisteredTypes returns the sorted list of registered component
// type tags, for deterministic diagnostics and schema composition.
func (r *Registry) RegisteredTypes() []string {
	out := make([]string, 0, len(r.types))
	for t := range r.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// baseSchema is the top-level manifest shape. Component-type-specific config schemas are validated
// separately by ValidateComponentConfig rather than inlined into one
// discriminated-union document, since gojsonschema's draft-4 support
// has no clean `if`/`then` discriminator — the registry instead
// dispatches by `components[*].type` itself.
var baseSchema = map[string]interface{}{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type":    "object",
	"required": []interface{}{"service", "components"},
	"properties": map[string]interface{}{
		"service": map[string]interface{}{
			"type":      "string",
			"pattern":   "^[a-z][a-z0-9-]{0,62}$",
			"minLength": 1,
			"maxLength": 63,
		},
		"owner": map[string]interface{}{"type": "string"},
		"complianceFramework": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"commercial", "fedramp-moderate", "fedramp-high"},
		},
		"environments": map[string]interface{}{"type": "object"},
		"components": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"name", "type"},
				"properties": map[string]interface{}{
					"name": map[string]interface{}{"type": "string"},
					"type": map[string]interface{}{"type": "string"},
				},
			},
		},
		"governance": map[string]interface{}{"type": "object"},
		"labels":     map[string]interface{}{"type": "object"},
	},
}

// ComposeMasterSchema returns the base manifest schema. The registered
// component types are reported separately (RegisteredTypes) since each
// is validated independently against its own schema by
// ValidateComponentConfig — this keeps schema-composition errors
// attributable to a single component rather than to an opaque union
// branch.
func (r *Registry) ComposeMasterSchema() map[string]interface{} {
	return baseSchema
}

// ValidateBase validates the raw manifest document against the base
// schema, returning a Report of every violation found (schema
// violations are collected, not short-circuited).
func (r *Registry) ValidateBase(raw interface{}) (*errs.Report, error) {
	return validateAgainst(baseSchema, raw, "")
}

// ValidateComponentConfig validates a single component's config map
// against its registered type's schema. An unregistered type produces
// an UnknownComponentTypeError diagnostic.
func (r *Registry) ValidateComponentConfig(componentType string, path string, config map[string]interface{}) (*errs.Report, error) {
	cs, ok := r.types[componentType]
	if !ok {
		report := &errs.Report{}
		report.Add(errs.New(errs.CodeUnknownComponentType, fmt.Sprintf("component type %q is not registered", componentType)).
			WithPath(path).
			WithHint(fmt.Sprintf("known types: %v", r.RegisteredTypes())))
		return report, nil
	}
	return validateAgainst(cs.Schema, config, path)
}

func validateAgainst(schemaDoc map[string]interface{}, doc interface{}, path string) (*errs.Report, error) {
	schemaLoader := gojsonschema.NewGoLoader(schemaDoc)
	docLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, errs.New(errs.CodeInternal, fmt.Sprintf("schema compilation failed: %v", err))
	}

	report := &errs.Report{}
	for _, re := range result.Errors() {
		fieldPath := path
		if re.Field() != "(root)" {
			if fieldPath == "" {
				fieldPath = re.Field()
			} else {
				fieldPath = fieldPath + "." + re.Field()
			}
		}
		report.Add(errs.New(errs.CodeSchemaViolation, re.Description()).
			WithPath(fieldPath).
			WithHint(fmt.Sprintf("rule: %s", re.Type())))
	}
	return report, nil
}

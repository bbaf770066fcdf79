// Package capability implements the capability/binder matrix: the
// registry of component types, the capabilities they expose or
// require, and the binder strategies that connect a source component
// to a target capability by an access level.
//
// Lookup is the central contract: given a source component type and a
// target capability key, find the one BinderStrategy that can wire
// them. The registry keys a map of maps so that lookup is O(1) against
// the number of registered (sourceType, capabilityKey) pairs rather
// than a linear scan over every strategy.
package capability

import (
	"fmt"
	"sort"

	"github.com/platformforge/svc/internal/errs"
)

// AccessLevel enumerates the access levels a BindingRequest may declare.
type AccessLevel string

const (
	AccessRead      AccessLevel = "read"
	AccessWrite     AccessLevel = "write"
	AccessReadWrite AccessLevel = "readwrite"
	AccessAdmin     AccessLevel = "admin"
	AccessPublish   AccessLevel = "publish"
	AccessConsume   AccessLevel = "consume"
	AccessExecute   AccessLevel = "execute"
)

// DataShape describes the required and optional fields a capability's
// exposed data must carry.
type DataShape map[string]FieldSpec

// FieldSpec describes one field of a capability's data shape.
type FieldSpec struct {
	Type     string // "string", "integer", "boolean"
	Required bool
}

// Capability is a typed, named contract a component exposes, keyed
// "<category>:<type>" (e.g. "db:postgres", "queue:sqs").
type Capability struct {
	Key       string
	DataShape DataShape
}

// CompatibilityEntry documents one (sourceType, capability, access)
// triple a BinderStrategy supports, surfaced for documentation and
// `svc validate --explain`-style tooling.
type CompatibilityEntry struct {
	SourceType string
	Capability string
	Access     []AccessLevel
}

// BindingContext is everything a BinderStrategy needs to produce a
// BindingResult for one edge.
type BindingContext struct {
	SourceType     string
	SourceName     string
	TargetType     string
	TargetName     string
	Capability     string
	Access         AccessLevel
	CapabilityData map[string]interface{} // the target's exposed capability data, post-synthesis
	EnvAliases     map[string]string      // binds[].env override: envVarName -> capabilityField
	Options        map[string]interface{}
	Framework      string
}

// BindingResult is what a successful Bind call produces: environment variables to inject into the source, access
// grants, network requirements, and optional post-bind constraints.
type BindingResult struct {
	EnvVars              map[string]string // envVarName -> resolved value
	AccessGrants         []string          // human-readable least-privilege grant descriptions
	NetworkRequirements  []string          // e.g. "shared-security-group", "same-subnet"
	PostBindConstraints  []string          // e.g. "encryption-in-transit-required"
}

// BinderStrategy wires a source component to a target capability.
type BinderStrategy interface {
	SourceType() string
	Capability() string
	SupportedAccess() []AccessLevel
	CanHandle(sourceType, capability string, access AccessLevel) bool
	Bind(ctx BindingContext) (BindingResult, error)
	Compatibility() []CompatibilityEntry
}

// ComponentClass records the static facts C5 knows about a component
// type: which capabilities it provides and which it may require.
type ComponentClass struct {
	Type                 string
	ProvidedCapabilities []string
	RequiredCapabilities []string
}

// Registry is the O(1) (sourceType, capabilityKey) -> BinderStrategy
// matrix plus the capability-shape and component-class tables.
type Registry struct {
	strategies map[string]map[string]BinderStrategy // sourceType -> capabilityKey -> strategy
	shapes     map[string]DataShape                 // capabilityKey -> shape
	classes    map[string]ComponentClass            // componentType -> class
	registered int                                   // total strategies registered, for the optimization-ratio diagnostic
}

// NewRegistry returns an empty matrix.
func NewRegistry() *Registry {
	return &Registry{
		strategies: map[string]map[string]BinderStrategy{},
		shapes:     map[string]DataShape{},
		classes:    map[string]ComponentClass{},
	}
}

// RegisterCapabilityShape records the data shape a capability key must
// conform to.
func (r *Registry) RegisterCapabilityShape(key string, shape DataShape) {
	r.shapes[key] = shape
}

// RegisterComponentClass records the static capability facts for a
// component type.
func (r *Registry) RegisterComponentClass(c ComponentClass) {
	r.classes[c.Type] = c
}

// RegisterBinder indexes a strategy by its (sourceType, capability)
// pair. A later registration for the same pair replaces the earlier
// one, matching the schema registry's upsert semantics.
func (r *Registry) RegisterBinder(s BinderStrategy) {
	inner, ok := r.strategies[s.SourceType()]
	if !ok {
		inner = map[string]BinderStrategy{}
		r.strategies[s.SourceType()] = inner
	}
	inner[s.Capability()] = s
	r.registered++
}

// Lookup returns the binder strategy for (sourceType, capabilityKey),
// or false if none is registered.
func (r *Registry) Lookup(sourceType, capabilityKey string) (BinderStrategy, bool) {
	inner, ok := r.strategies[sourceType]
	if !ok {
		return nil, false
	}
	s, ok := inner[capabilityKey]
	return s, ok
}

// CapabilityShape returns the registered data shape for a capability
// key, or false if unregistered.
func (r *Registry) CapabilityShape(key string) (DataShape, bool) {
	s, ok := r.shapes[key]
	return s, ok
}

// ComponentClass returns the registered class for a component type, or
// false if unregistered.
func (r *Registry) ComponentClass(componentType string) (ComponentClass, bool) {
	c, ok := r.classes[componentType]
	return c, ok
}

// OptimizationRatio reports the registry's worst-case linear-scan
// length (total strategies registered) against the actual lookup
// depth (number of source types, since a lookup is one map access
// plus one nested map access regardless of how many strategies share
// a source type). A ratio of 1 means no benefit over a linear scan;
// values above 1 confirm the indexed lookup is paying for itself.
func (r *Registry) OptimizationRatio() float64 {
	if len(r.strategies) == 0 {
		return 1
	}
	return float64(r.registered) / float64(len(r.strategies))
}

// Bind resolves the strategy for ctx's (SourceType, Capability),
// checks access-level support, and invokes it. Returns
// UnknownCapabilityError if no strategy handles the pair,
// UnsupportedAccessError if the strategy exists but rejects ctx.Access.
func (r *Registry) Bind(ctx BindingContext) (BindingResult, *errs.Diagnostic) {
	strategy, ok := r.Lookup(ctx.SourceType, ctx.Capability)
	if !ok {
		return BindingResult{}, errs.New(errs.CodeUnknownCapability,
			fmt.Sprintf("no binder strategy connects source type %q to capability %q", ctx.SourceType, ctx.Capability)).
			WithHint("check for a typo in binds[].capability, or that the target component actually provides this capability")
	}
	if !strategy.CanHandle(ctx.SourceType, ctx.Capability, ctx.Access) {
		return BindingResult{}, errs.New(errs.CodeUnsupportedAccess,
			fmt.Sprintf("binder for %s -> %s does not support access level %q", ctx.SourceType, ctx.Capability, ctx.Access)).
			WithHint(fmt.Sprintf("supported access levels: %v", strategy.SupportedAccess()))
	}
	result, err := strategy.Bind(ctx)
	if err != nil {
		return BindingResult{}, errs.New(errs.CodeUnsupportedAccess, err.Error())
	}
	return result, nil
}

// ValidateShape checks that data carries every required field of the
// capability's declared shape and that each present field's Go-native
// type matches the declared type. Returns CapabilityShapeMismatch
// diagnostics, one per offending field.
func (r *Registry) ValidateShape(capabilityKey string, data map[string]interface{}, path string) *errs.Report {
	report := &errs.Report{}
	shape, ok := r.shapes[capabilityKey]
	if !ok {
		report.Add(errs.New(errs.CodeUnknownCapability, fmt.Sprintf("capability %q is not registered", capabilityKey)).WithPath(path))
		return report
	}

	for field, spec := range shape {
		v, present := data[field]
		if !present {
			if spec.Required {
				report.Add(errs.New(errs.CodeCapabilityShapeMismatch,
					fmt.Sprintf("capability %q is missing required field %q", capabilityKey, field)).WithPath(path))
			}
			continue
		}
		if !typeMatches(v, spec.Type) {
			report.Add(errs.New(errs.CodeCapabilityShapeMismatch,
				fmt.Sprintf("capability %q field %q: expected type %q", capabilityKey, field, spec.Type)).WithPath(path))
		}
	}
	return report
}

func typeMatches(v interface{}, want string) bool {
	switch want {
	case "string":
		_, ok := v.(string)
		return ok
	case "integer":
		switch v.(type) {
		case int, int32, int64:
			return true
		default:
			return false
		}
	case "boolean":
		_, ok := v.(bool)
		return ok
	default:
		return true
	}
}

// SortedSourceTypes returns the registered source types in sorted
// order, for deterministic iteration (e.g. documentation generation).
func (r *Registry) SortedSourceTypes() []string {
	out := make([]string, 0, len(r.strategies))
	for k := range r.strategies {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

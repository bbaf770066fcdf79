package components

import (
	"sort"

	"github.com/platformforge/svc/internal/capability"
)

// Registry holds the build-once, immutable set of known component
// types.
type Registry struct {
	byType map[string]Component
}

// NewRegistry constructs the registry with all eight built-in
// component types registered.
func NewRegistry() *Registry {
	r := &Registry{byType: map[string]Component{}}
	for _, c := range []Component{
		LambdaAPI{},
		RDSPostgres{},
		SQSQueue{},
		S3Bucket{},
		VPCNet{},
		RedisCache{},
		RESTAPIGateway{},
		Worker{},
	} {
		r.byType[c.Type()] = c
	}
	return r
}

// Lookup returns the component implementation for a type tag.
func (r *Registry) Lookup(componentType string) (Component, bool) {
	c, ok := r.byType[componentType]
	return c, ok
}

// Types returns every registered component type, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.byType))
	for t := range r.byType {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// RegisterCapabilityShapes populates cap with the DataShape of every
// capability this package's component types expose. Called once at
// process start alongside NewRegistry.
func RegisterCapabilityShapes(cap *capability.Registry) {
	for key, shape := range capabilityShapes() {
		cap.RegisterCapabilityShape(key, shape)
	}
}

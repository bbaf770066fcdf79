// Package pipeline wires the individual compilation stages (manifest
// loading, schema validation, config hydration, capability resolution,
// compliance hardening, governance evaluation) into a single
// fail-fast-between-stages, collect-within-stage pipeline.
package pipeline

import (
	"github.com/platformforge/svc/internal/capability"
	"github.com/platformforge/svc/internal/registry/binders"
	"github.com/platformforge/svc/internal/registry/components"
	"github.com/platformforge/svc/internal/schema"
)

// Registries bundles the three process-lifetime registries: component schemas, component
// implementations, and the capability/binder matrix. A single set is
// built once per process and reused across compilations.
type Registries struct {
	Schema     *schema.Registry
	Components *components.Registry
	Capability *capability.Registry
}

// NewRegistries builds and wires the full registry set: every
// component type's schema is registered, its capability shapes are
// registered, and every (sourceType, capability) binder strategy is
// registered against the capability matrix.
func NewRegistries() *Registries {
	compReg := components.NewRegistry()
	capReg := capability.NewRegistry()
	schemaReg := schema.NewRegistry()

	for _, typ := range compReg.Types() {
		comp, _ := compReg.Lookup(typ)
		schemaReg.Register(comp.Schema())
	}

	components.RegisterCapabilityShapes(capReg)
	binders.RegisterAll(capReg)

	return &Registries{Schema: schemaReg, Components: compReg, Capability: capReg}
}

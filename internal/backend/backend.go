// Package backend implements the deployment-target abstraction behind
// `svc up`/`svc destroy`/`svc diff`. Because synthesis never performs
// live cloud lookups (the engine is an offline, single-shot compiler),
// the shipped backend persists the IR to the local filesystem rather
// than calling out to a provisioning API; a real cloud backend is
// explicitly out of scope.
package backend

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/platformforge/svc/internal/ir"
)

// Backend is the deployment-target contract. Apply persists (and in a
// real backend, would provision) the compiled IR; Destroy tears down
// whatever Apply created for the given service/environment pair.
type Backend interface {
	Apply(doc *ir.Document) error
	Destroy(service, environment string) error
}

// PlanPath returns the default path `svc diff` reads as its baseline
// and `svc up` writes its last-applied snapshot to.
func PlanPath(service, environment string) string {
	return filepath.Join(".svc", fmt.Sprintf("last-plan.%s.%s.json", service, environment))
}

// NullBackend writes the IR to disk under BaseDir and reports success;
// it performs no provisioning of any kind.
type NullBackend struct {
	BaseDir string
}

// NewNullBackend returns a NullBackend rooted at baseDir. An empty
// baseDir defaults to the current working directory.
func NewNullBackend(baseDir string) *NullBackend {
	if baseDir == "" {
		baseDir = "."
	}
	return &NullBackend{BaseDir: baseDir}
}

// Apply writes doc's canonical JSON encoding to
// BaseDir/.svc/last-plan.<service>.<env>.json, creating the directory
// if needed.
func (b *NullBackend) Apply(doc *ir.Document) error {
	path := filepath.Join(b.BaseDir, PlanPath(doc.Service, doc.Environment))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("backend: creating plan directory: %w", err)
	}
	data, err := doc.MarshalCanonical()
	if err != nil {
		return fmt.Errorf("backend: encoding IR: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("backend: writing plan file: %w", err)
	}
	return nil
}

// Destroy removes the last-applied plan file for service/environment.
// A missing file is not an error: destroying an environment that was
// never applied is a no-op.
func (b *NullBackend) Destroy(service, environment string) error {
	path := filepath.Join(b.BaseDir, PlanPath(service, environment))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("backend: removing plan file: %w", err)
	}
	return nil
}

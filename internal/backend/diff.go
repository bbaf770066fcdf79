package backend

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/platformforge/svc/internal/ir"
)

// ChangeKind classifies one entry in a Diff result.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
	ChangeModified ChangeKind = "modified"
)

// Change is one component or binding that differs between the
// baseline and the freshly compiled IR.
type Change struct {
	Kind ChangeKind `json:"kind"`
	Path string     `json:"path"`
}

// Result is the full comparison between two compilations of the same
// service/environment pair.
type Result struct {
	Changed bool     `json:"changed"`
	Changes []Change `json:"changes"`
}

// LoadBaseline reads and decodes a previously emitted IR document from
// path. A missing baseline is reported distinctly from the decoded
// document, so the caller (svc diff) can treat "never applied" as
// every component being newly added rather than a hard failure.
func LoadBaseline(path string) (*ir.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("backend: reading baseline %s: %w", path, err)
	}
	var doc ir.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("backend: decoding baseline %s: %w", path, err)
	}
	return &doc, nil
}

// Diff compares baseline (the previously applied IR, possibly nil if
// none exists yet) against current (the freshly compiled IR) at the
// granularity of resolved components and bindings — the two things an
// operator reviewing a plan cares about before approving it.
func Diff(baseline, current *ir.Document) Result {
	result := Result{}

	var baseComponents map[string]ir.ResolvedComponentIR
	var baseBindingByID map[string]ir.BindingIR
	if baseline != nil {
		baseComponents = baseline.ResolvedComponents
		baseBindingByID = bindingsByID(baseline.Bindings)
	}
	curBindingByID := bindingsByID(current.Bindings)

	names := map[string]bool{}
	for name := range baseComponents {
		names[name] = true
	}
	for name := range current.ResolvedComponents {
		names[name] = true
	}
	for _, name := range sortedNames(names) {
		before, hadBefore := baseComponents[name]
		after, hasAfter := current.ResolvedComponents[name]
		switch {
		case !hadBefore && hasAfter:
			result.Changes = append(result.Changes, Change{Kind: ChangeAdded, Path: "resolvedComponents." + name})
		case hadBefore && !hasAfter:
			result.Changes = append(result.Changes, Change{Kind: ChangeRemoved, Path: "resolvedComponents." + name})
		case !sameEncoding(before, after):
			result.Changes = append(result.Changes, Change{Kind: ChangeModified, Path: "resolvedComponents." + name})
		}
	}

	ids := map[string]bool{}
	for id := range baseBindingByID {
		ids[id] = true
	}
	for id := range curBindingByID {
		ids[id] = true
	}
	for _, id := range sortedNames(ids) {
		before, hadBefore := baseBindingByID[id]
		after, hasAfter := curBindingByID[id]
		switch {
		case !hadBefore && hasAfter:
			result.Changes = append(result.Changes, Change{Kind: ChangeAdded, Path: fmt.Sprintf("bindings[%s -> %s]", after.Source, after.Target)})
		case hadBefore && !hasAfter:
			result.Changes = append(result.Changes, Change{Kind: ChangeRemoved, Path: fmt.Sprintf("bindings[%s -> %s]", before.Source, before.Target)})
		case !sameEncoding(before, after):
			result.Changes = append(result.Changes, Change{Kind: ChangeModified, Path: fmt.Sprintf("bindings[%s -> %s]", after.Source, after.Target)})
		}
	}

	result.Changed = len(result.Changes) > 0
	return result
}

func bindingsByID(bindings []ir.BindingIR) map[string]ir.BindingIR {
	out := make(map[string]ir.BindingIR, len(bindings))
	for _, b := range bindings {
		out[b.ID] = b
	}
	return out
}

func sortedNames(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// sameEncoding reports whether a and b encode to the same JSON. A
// baseline decoded from disk holds float64 numbers and nil maps where a
// fresh compilation holds ints and empty maps, so the encodings are
// compared rather than the Go values.
func sameEncoding(a, b interface{}) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}

package resolver

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/platformforge/svc/internal/errs"
	"github.com/platformforge/svc/internal/manifest"
)

// edgeKind distinguishes a binds.to dependency (mutation — the source
// needs the target synthesized first to receive injected env vars)
// from a ${ref:...} observation edge (read-only, never creates a
// binding, and may safely cycle).
type edgeKind int

const (
	edgeMutation edgeKind = iota
	edgeObservation
)

type edge struct {
	from, to string
	kind     edgeKind
}

// refPattern extracts the three ${ref:name.capability.field} segments.
// capability keys are "<category>:<type>" and never contain a dot, so
// splitting on the first two dots is unambiguous.
var refPattern = regexp.MustCompile(`\$\{ref:([^.}]+)\.([^.}]+)\.([^}]+)\}`)

type refOccurrence struct {
	targetName string
	capability string
	field      string
}

// findRefs returns every ${ref:...} occurrence found anywhere inside v.
func findRefs(v interface{}) []refOccurrence {
	var out []refOccurrence
	var walk func(interface{})
	walk = func(v interface{}) {
		switch vv := v.(type) {
		case map[string]interface{}:
			for _, child := range vv {
				walk(child)
			}
		case []interface{}:
			for _, child := range vv {
				walk(child)
			}
		case string:
			for _, m := range refPattern.FindAllStringSubmatch(vv, -1) {
				out = append(out, refOccurrence{targetName: m[1], capability: m[2], field: m[3]})
			}
		}
	}
	walk(v)
	return out
}

// buildGraph derives the dependency graph from a manifest's binds and
// raw config/overrides: one node per component,
// a mutation edge per binds.to, an observation edge per ${ref:...}
// occurrence found in config, overrides, or policy.overrides.
func buildGraph(m *manifest.Manifest) (nodes []string, index map[string]int, edges []edge, report *errs.Report) {
	report = &errs.Report{}
	index = map[string]int{}
	for i, c := range m.Components {
		if _, dup := index[c.Name]; dup {
			report.Add(errs.New(errs.CodeSchemaViolation, fmt.Sprintf("duplicate component name %q", c.Name)).
				WithPath(fmt.Sprintf("components[%d].name", i)))
			continue
		}
		index[c.Name] = i
		nodes = append(nodes, c.Name)
	}

	for i, c := range m.Components {
		for j, b := range c.Binds {
			if _, ok := index[b.To]; !ok {
				report.Add(errs.New(errs.CodeDanglingRef, fmt.Sprintf("component %q binds to unknown component %q", c.Name, b.To)).
					WithPath(fmt.Sprintf("components[%d].binds[%d].to", i, j)))
				continue
			}
			edges = append(edges, edge{from: c.Name, to: b.To, kind: edgeMutation})
		}

		for _, src := range []interface{}{c.Config, c.Overrides, c.Policy.Overrides} {
			for _, ref := range findRefs(src) {
				if _, ok := index[ref.targetName]; !ok {
					report.Add(errs.New(errs.CodeDanglingRef, fmt.Sprintf("component %q references unknown component %q via ${ref:...}", c.Name, ref.targetName)).
						WithPath(fmt.Sprintf("components[%d]", i)))
					continue
				}
				edges = append(edges, edge{from: c.Name, to: ref.targetName, kind: edgeObservation})
			}
		}
	}

	return nodes, index, edges, report
}

// detectCycles reports every cycle in the graph that contains at
// least one mutation edge: pure observation
// cycles are allowed. Returns one BindingCycleError per offending
// cycle found via DFS.
func detectCycles(nodes []string, edges []edge) *errs.Report {
	report := &errs.Report{}
	adj := map[string][]edge{}
	for _, e := range edges {
		adj[e.from] = append(adj[e.from], e)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var path []string
	var pathEdgeKinds []edgeKind
	seenCycles := map[string]bool{}

	var visit func(n string)
	visit = func(n string) {
		color[n] = gray
		path = append(path, n)
		for _, e := range adj[n] {
			if color[e.to] == white {
				pathEdgeKinds = append(pathEdgeKinds, e.kind)
				visit(e.to)
				pathEdgeKinds = pathEdgeKinds[:len(pathEdgeKinds)-1]
			} else if color[e.to] == gray {
				cycleStart := indexOf(path, e.to)
				cyclePath := append(append([]string{}, path[cycleStart:]...), e.to)
				hasMutation := e.kind == edgeMutation
				for _, k := range pathEdgeKinds[cycleStart:] {
					if k == edgeMutation {
						hasMutation = true
					}
				}
				key := fmt.Sprintf("%v", cyclePath)
				if hasMutation && !seenCycles[key] {
					seenCycles[key] = true
					report.Add(errs.New(errs.CodeBindingCycle, fmt.Sprintf("binding cycle detected: %v", cyclePath)).
						WithHint("break the cycle by removing one of the mutating binds in the path"))
				}
			}
		}
		path = path[:len(path)-1]
		color[n] = black
	}

	for _, n := range nodes {
		if color[n] == white {
			visit(n)
		}
	}

	return report
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// topoSortMutationOnly returns a stable topological order of nodes
// using only mutation edges — a component must be synthesized before
// any component that binds to it. Ties (independent components) break
// by declaration order.
func topoSortMutationOnly(nodes []string, declOrder map[string]int, edges []edge) []string {
	// dependency: source depends on target, so target must come first.
	dependsOn := map[string]map[string]bool{}
	inDegree := map[string]int{}
	for _, n := range nodes {
		dependsOn[n] = map[string]bool{}
		inDegree[n] = 0
	}
	for _, e := range edges {
		if e.kind != edgeMutation {
			continue
		}
		if !dependsOn[e.from][e.to] {
			dependsOn[e.from][e.to] = true
		}
	}
	// Each node's remaining unmet dependency count starts at the number
	// of distinct components it binds to.
	for n := range dependsOn {
		inDegree[n] = len(dependsOn[n])
	}

	var ready []string
	for _, n := range nodes {
		if inDegree[n] == 0 {
			ready = append(ready, n)
		}
	}

	var order []string
	done := map[string]bool{}
	for len(order) < len(nodes) {
		sort.Slice(ready, func(i, j int) bool { return declOrder[ready[i]] < declOrder[ready[j]] })
		if len(ready) == 0 {
			// Defensive: should not happen since mutation cycles are
			// already rejected by detectCycles before this runs.
			for _, n := range nodes {
				if !done[n] {
					order = append(order, n)
					done[n] = true
				}
			}
			break
		}
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		done[next] = true

		for _, n := range nodes {
			if done[n] || n == next {
				continue
			}
			if dependsOn[n][next] {
				inDegree[n]--
				if inDegree[n] == 0 {
					alreadyReady := false
					for _, r := range ready {
						if r == n {
							alreadyReady = true
						}
					}
					if !alreadyReady {
						ready = append(ready, n)
					}
				}
			}
		}
	}

	return order
}

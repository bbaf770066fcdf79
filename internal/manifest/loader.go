package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/platformforge/svc/internal/errs"
)

// MaxIncludeDepth bounds $ref recursion.
const MaxIncludeDepth = 8

// Load reads entrypointPath (YAML or JSON), recursively splices any
// $ref file inclusions found at any node, and returns the raw,
// generic document tree plus a report of what was included.
//
// All $ref targets are resolved relative to the directory containing
// the file that declared them, and MUST resolve to a path within the
// root directory (the entrypoint's directory) — any path that
// escapes it is a PathTraversalError.
func Load(entrypointPath string) (interface{}, *LoadReport, error) {
	root, err := filepath.Abs(filepath.Dir(entrypointPath))
	if err != nil {
		return nil, nil, errs.New(errs.CodeIO, fmt.Sprintf("cannot resolve manifest root: %v", err))
	}

	l := &loader{root: root, report: &LoadReport{EntrypointPath: entrypointPath}}
	absEntry, err := filepath.Abs(entrypointPath)
	if err != nil {
		return nil, nil, errs.New(errs.CodeIO, fmt.Sprintf("cannot resolve manifest path: %v", err))
	}

	doc, err := l.loadFile(absEntry, nil, 0)
	if err != nil {
		return nil, nil, err
	}
	return doc, l.report, nil
}

type loader struct {
	root   string
	report *LoadReport
}

// loadFile reads and parses path, then recursively resolves $ref nodes
// within it. chain is the stack of canonical paths currently being
// included (to detect cycles); depth is the current include depth.
func (l *loader) loadFile(path string, chain []string, depth int) (interface{}, error) {
	canon, err := l.sandbox(path)
	if err != nil {
		return nil, err
	}

	for _, seen := range chain {
		if seen == canon {
			return nil, errs.New(errs.CodeRefCycle, fmt.Sprintf("$ref cycle detected: %s", strings.Join(append(chain, canon), " -> ")))
		}
	}
	if depth > MaxIncludeDepth {
		return nil, errs.New(errs.CodeMaxDepth, fmt.Sprintf("$ref inclusion exceeds max depth of %d at %s", MaxIncludeDepth, canon))
	}

	data, err := os.ReadFile(canon)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.CodeRefNotFound, fmt.Sprintf("referenced file not found: %s", canon))
		}
		return nil, errs.New(errs.CodeIO, fmt.Sprintf("failed to read %s: %v", canon, err))
	}

	var node interface{}
	if err := unmarshalAny(canon, data, &node); err != nil {
		return nil, err
	}

	l.report.IncludedFiles = append(l.report.IncludedFiles, canon)

	nextChain := append(append([]string{}, chain...), canon)
	return l.resolveRefs(node, filepath.Dir(canon), nextChain, depth+1)
}

// resolveRefs walks node recursively, splicing any $ref found at a
// mapping node. Peer keys alongside $ref shallow-override the
// referenced content
func (l *loader) resolveRefs(node interface{}, dir string, chain []string, depth int) (interface{}, error) {
	switch v := node.(type) {
	case map[string]interface{}:
		if refVal, ok := v["$ref"]; ok {
			refPath, ok := refVal.(string)
			if !ok {
				return nil, errs.New(errs.CodeInvalidInterpolation, "$ref value must be a string path")
			}
			if filepath.IsAbs(refPath) {
				return nil, errs.New(errs.CodePathTraversal, fmt.Sprintf("$ref path must be relative: %s", refPath))
			}
			target := filepath.Join(dir, refPath)
			included, err := l.loadFile(target, chain, depth)
			if err != nil {
				return nil, err
			}

			merged, err := shallowOverride(included, v)
			if err != nil {
				return nil, err
			}
			return l.resolveRefs(merged, dir, chain, depth)
		}

		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			resolved, err := l.resolveRefs(val, dir, chain, depth)
			if err != nil {
				return nil, err
			}
			out[key] = resolved
		}
		return out, nil

	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			resolved, err := l.resolveRefs(item, dir, chain, depth)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil

	default:
		return node, nil
	}
}

// shallowOverride layers peer keys (everything in overlay but $ref)
// over the included document at the top level only.
func shallowOverride(included interface{}, overlay map[string]interface{}) (interface{}, error) {
	includedMap, ok := included.(map[string]interface{})
	if !ok {
		// Included content isn't a mapping; peer keys (besides $ref) make
		// no sense to apply, so only allow a bare $ref in that case.
		if len(overlay) > 1 {
			return nil, errs.New(errs.CodeInvalidInterpolation, "$ref target is not a mapping; cannot apply peer key overrides")
		}
		return included, nil
	}

	out := make(map[string]interface{}, len(includedMap)+len(overlay))
	for k, v := range includedMap {
		out[k] = v
	}
	for k, v := range overlay {
		if k == "$ref" {
			continue
		}
		out[k] = v
	}
	return out, nil
}

// sandbox canonicalizes path and rejects anything outside l.root.
func (l *loader) sandbox(path string) (string, error) {
	if filepath.IsAbs(path) == false {
		return "", errs.New(errs.CodePathTraversal, fmt.Sprintf("$ref path must be relative: %s", path))
	}
	canon, err := filepath.Abs(path)
	if err != nil {
		return "", errs.New(errs.CodeIO, fmt.Sprintf("cannot canonicalize %s: %v", path, err))
	}
	canon, err = filepath.EvalSymlinks(canon)
	if err != nil {
		if os.IsNotExist(err) {
			// Let the caller's ReadFile surface RefNotFoundError with a
			// precise path; symlink resolution only matters for files that
			// exist.
			canon, err = filepath.Abs(path)
			if err != nil {
				return "", errs.New(errs.CodeIO, err.Error())
			}
		} else {
			return "", errs.New(errs.CodeIO, fmt.Sprintf("cannot resolve symlinks for %s: %v", path, err))
		}
	}

	rel, err := filepath.Rel(l.root, canon)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errs.New(errs.CodePathTraversal, fmt.Sprintf("path escapes manifest root: %s", path))
	}
	return canon, nil
}

// unmarshalAny parses data as YAML or JSON (JSON is valid YAML 1.2, so
// a single yaml.Unmarshal handles both) into a generic
// map[string]interface{}/[]interface{} tree, normalizing map key types
// to string so downstream code never has to deal with
// map[interface{}]interface{}.
func unmarshalAny(path string, data []byte, out *interface{}) error {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		if strings.HasSuffix(strings.ToLower(path), ".json") {
			return errs.New(errs.CodeJsonSyntax, fmt.Sprintf("%s: %v", path, err))
		}
		return errs.New(errs.CodeYamlSyntax, fmt.Sprintf("%s: %v", path, err))
	}
	*out = normalize(raw)
	return nil
}

// normalize recursively converts map[string]interface{} consistently;
// yaml.v3 already decodes mappings as map[string]interface{} (unlike
// yaml.v2's map[interface{}]interface{}), but nested slices/maps still
// need walking to apply the same normalization deeply when sourced
// from mixed parsers.
func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, vv := range val {
			out[k] = normalize(vv)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, vv := range val {
			out[i] = normalize(vv)
		}
		return out
	default:
		return val
	}
}

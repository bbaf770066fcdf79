// Package configbuilder implements the 5-layer configuration
// precedence engine: hardcoded fallbacks, platform
// defaults, service environment defaults, component overrides, and
// policy overrides are deep-merged into a single ResolvedConfig, then
// interpolated and validated.
//
// The merge itself is a small, typed, schema-aware primitive rather
// than a generic library: sequence-replace vs. scalar-overwrite vs.
// null-delete depend on the field's schema, not on a one-size-fits-all
// merge function, so MergeLayer/mergeAt hand-roll the recursive walk
// directly. dario.cat/mergo is used elsewhere in this package
// (mergoDeepCopy, below) for the one merge this engine does that fits
// its struct-overwrite semantics exactly: unioning manifest-level and
// component-level labels, where null-delete and wholesale sequence
// replacement don't apply.
package configbuilder

import (
	"dario.cat/mergo"
)

// MergeLayer deep-merges high over low: high wins on every key it
// defines. Both maps are left untouched; a new map is returned.
//
//   - Mappings merge recursively.
//   - Sequences are replaced wholesale, never concatenated, unless key
//     is present in appendPaths (dot-separated path from this call's
//     root) in which case the two sequences are concatenated
//     (schema-marked `merge:append` fields).
//   - Scalars overwrite.
//   - An explicit null in high deletes the key from the result.
func MergeLayer(low, high map[string]interface{}, appendPaths map[string]bool) map[string]interface{} {
	return mergeAt(low, high, "", appendPaths)
}

func mergeAt(low, high map[string]interface{}, prefix string, appendPaths map[string]bool) map[string]interface{} {
	out := cloneMap(low)

	for k, hv := range high {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}

		if hv == nil {
			delete(out, k)
			continue
		}

		lv, exists := out[k]
		if !exists {
			out[k] = deepCopy(hv)
			continue
		}

		switch hvt := hv.(type) {
		case map[string]interface{}:
			if lvt, ok := lv.(map[string]interface{}); ok {
				out[k] = mergeAt(lvt, hvt, path, appendPaths)
			} else {
				out[k] = deepCopy(hvt)
			}
		case []interface{}:
			if appendPaths[path] {
				if lvt, ok := lv.([]interface{}); ok {
					combined := make([]interface{}, 0, len(lvt)+len(hvt))
					combined = append(combined, deepCopySlice(lvt)...)
					combined = append(combined, deepCopySlice(hvt)...)
					out[k] = combined
					continue
				}
			}
			out[k] = deepCopySlice(hvt)
		default:
			out[k] = hvt
		}
	}

	return out
}

// MergeAll merges layers lowest-priority first, highest-priority last
// — i.e. layers[len(layers)-1] wins ties.
func MergeAll(appendPaths map[string]bool, layers ...map[string]interface{}) map[string]interface{} {
	result := map[string]interface{}{}
	for _, l := range layers {
		result = MergeLayer(result, l, appendPaths)
	}
	return result
}

// mergoDeepCopy merges src over dst with mergo's override semantics.
// Build uses it to union manifest-level and component-level labels,
// where null-delete and wholesale sequence replacement do not apply.
func mergoDeepCopy(dst, src interface{}) error {
	return mergo.Merge(dst, src, mergo.WithOverride)
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(v interface{}) interface{} {
	switch vv := v.(type) {
	case map[string]interface{}:
		return cloneMap(vv)
	case []interface{}:
		return deepCopySlice(vv)
	default:
		return vv
	}
}

func deepCopySlice(s []interface{}) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = deepCopy(v)
	}
	return out
}

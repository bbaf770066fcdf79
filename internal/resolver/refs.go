package resolver

import (
	"fmt"

	"github.com/platformforge/svc/internal/capability"
	"github.com/platformforge/svc/internal/errs"
)

// resolveObservationRefs walks cfg and replaces every ${ref:...} token
// with the referenced component's exposed capability field value.
// Resolution is strict: only
// fields actually listed in the capability's declared shape may be
// observed.
func resolveObservationRefs(cfg map[string]interface{}, resolved map[string]ResolvedComponent, path string, capReg *capability.Registry) (map[string]interface{}, []*errs.Diagnostic) {
	var diags []*errs.Diagnostic
	out := substituteRefs(cfg, resolved, path, capReg, &diags)
	return out.(map[string]interface{}), diags
}

func substituteRefs(v interface{}, resolved map[string]ResolvedComponent, path string, capReg *capability.Registry, diags *[]*errs.Diagnostic) interface{} {
	switch vv := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(vv))
		for k, val := range vv {
			out[k] = substituteRefs(val, resolved, path, capReg, diags)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(vv))
		for i, val := range vv {
			out[i] = substituteRefs(val, resolved, path, capReg, diags)
		}
		return out
	case string:
		return substituteRefString(vv, resolved, path, capReg, diags)
	default:
		return v
	}
}

func substituteRefString(s string, resolved map[string]ResolvedComponent, path string, capReg *capability.Registry, diags *[]*errs.Diagnostic) interface{} {
	matches := refPattern.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}

	resolveOne := func(targetName, capabilityKey, field string) (interface{}, bool) {
		target, ok := resolved[targetName]
		if !ok {
			*diags = append(*diags, errs.New(errs.CodeDanglingRef, fmt.Sprintf("${ref:...} targets unknown component %q", targetName)).WithPath(path))
			return nil, false
		}
		data, ok := target.Capabilities[capabilityKey]
		if !ok {
			*diags = append(*diags, errs.New(errs.CodeUnknownCapability, fmt.Sprintf("component %q does not provide capability %q", targetName, capabilityKey)).WithPath(path))
			return nil, false
		}
		if shape, ok := capReg.CapabilityShape(capabilityKey); ok {
			if _, declared := shape[field]; !declared {
				*diags = append(*diags, errs.New(errs.CodeCapabilityFieldMissing, fmt.Sprintf("capability %q has no declared field %q", capabilityKey, field)).WithPath(path))
				return nil, false
			}
		}
		value, ok := data[field]
		if !ok {
			*diags = append(*diags, errs.New(errs.CodeCapabilityFieldMissing, fmt.Sprintf("component %q capability %q has no value for field %q", targetName, capabilityKey, field)).WithPath(path))
			return nil, false
		}
		return value, true
	}

	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(s) {
		m := matches[0]
		value, ok := resolveOne(s[m[2]:m[3]], s[m[4]:m[5]], s[m[6]:m[7]])
		if !ok {
			return s
		}
		return value
	}

	result := ""
	last := 0
	for _, m := range matches {
		result += s[last:m[0]]
		value, ok := resolveOne(s[m[2]:m[3]], s[m[4]:m[5]], s[m[6]:m[7]])
		if !ok {
			result += s[m[0]:m[1]]
		} else {
			result += fmt.Sprintf("%v", value)
		}
		last = m[1]
	}
	result += s[last:]
	return result
}

package configbuilder

import (
	"fmt"
	"regexp"

	"github.com/platformforge/svc/internal/errs"
)

// interpPattern matches ${kind:payload} tokens. Interpolation runs
// after merge and before schema validation.
var interpPattern = regexp.MustCompile(`\$\{(env|envIs|ref):([^}]+)\}`)

// Interpolate walks cfg recursively and resolves ${env:key} and
// ${envIs:value} tokens found inside string scalars. ${ref:...}
// tokens are left untouched — they are resolved later by the resolver
// (C6) once the target component has been synthesized, and must never
// create a binding themselves.
//
// A string value containing ONLY a single token is replaced with the
// token's native value (the env default's own scalar type for
// ${env:}, a bool for ${envIs:}); a string containing a token
// plus surrounding text has the token's string form substituted in
// place, like shell variable expansion.
func Interpolate(cfg map[string]interface{}, env string, envDefaults map[string]interface{}) (map[string]interface{}, *errs.Report) {
	report := &errs.Report{}
	out := interpolateValue(cfg, env, envDefaults, "", report)
	return out.(map[string]interface{}), report
}

func interpolateValue(v interface{}, env string, envDefaults map[string]interface{}, path string, report *errs.Report) interface{} {
	switch vv := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(vv))
		for k, val := range vv {
			childPath := k
			if path != "" {
				childPath = path + "." + k
			}
			out[k] = interpolateValue(val, env, envDefaults, childPath, report)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(vv))
		for i, val := range vv {
			out[i] = interpolateValue(val, env, envDefaults, fmt.Sprintf("%s[%d]", path, i), report)
		}
		return out
	case string:
		return interpolateString(vv, env, envDefaults, path, report)
	default:
		return v
	}
}

func interpolateString(s string, env string, envDefaults map[string]interface{}, path string, report *errs.Report) interface{} {
	matches := interpPattern.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}

	// A string that is exactly one token resolves to the token's native
	// type (bool for envIs, whatever scalar type for env); otherwise we
	// substitute string forms in place.
	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(s) {
		kind := s[matches[0][2]:matches[0][3]]
		payload := s[matches[0][4]:matches[0][5]]
		return resolveToken(kind, payload, env, envDefaults, path, report)
	}

	result := ""
	last := 0
	for _, m := range matches {
		result += s[last:m[0]]
		kind := s[m[2]:m[3]]
		payload := s[m[4]:m[5]]
		resolved := resolveToken(kind, payload, env, envDefaults, path, report)
		result += fmt.Sprintf("%v", resolved)
		last = m[1]
	}
	result += s[last:]
	return result
}

func resolveToken(kind, payload string, env string, envDefaults map[string]interface{}, path string, report *errs.Report) interface{} {
	switch kind {
	case "env":
		val, ok := lookupDotted(envDefaults, payload)
		if !ok {
			report.Add(errs.New(errs.CodeUnresolvedEnvVar, fmt.Sprintf("${env:%s} is not defined in environments.%s.defaults", payload, env)).
				WithPath(path).
				WithHint(fmt.Sprintf("add %q under environments.%s.defaults", payload, env)))
			return nil
		}
		return val
	case "envIs":
		return env == payload
	case "ref":
		// Left for the resolver; re-wrap so the original token survives
		// unchanged in the merged/interpolated config.
		return fmt.Sprintf("${ref:%s}", payload)
	default:
		report.Add(errs.New(errs.CodeInvalidInterpolation, fmt.Sprintf("unknown interpolation kind %q", kind)).WithPath(path))
		return nil
	}
}

func lookupDotted(m map[string]interface{}, dotted string) (interface{}, bool) {
	v, ok := m[dotted]
	return v, ok
}

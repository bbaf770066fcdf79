package configbuilder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/platformforge/svc/internal/errs"
)

var (
	urlPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	ipPattern  = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)
)

// ValidateFallbackSafety enforces the Layer-1 hardening rule:
// hardcoded fallbacks must be safe, minimal, and environment-invariant.
// It walks the fallback map looking for forbidden shapes (non-empty
// CORS origins, credentialed or wildcard CORS, public-access flags set
// to true, and hardcoded URLs, IP literals or domain names; instance
// sizes are not checked) and returns every violation found rather than
// stopping at the first (fallbacks are typically reviewed in bulk by
// a platform engineer, not fixed one at a time).
func ValidateFallbackSafety(componentType string, fallbacks map[string]interface{}) *errs.Report {
	report := &errs.Report{}
	walkFallbacks(componentType, fallbacks, "", report)
	return report
}

func walkFallbacks(componentType string, v interface{}, path string, report *errs.Report) {
	switch vv := v.(type) {
	case map[string]interface{}:
		checkCORS(componentType, vv, path, report)
		checkPublicAccess(componentType, vv, path, report)
		for k, val := range vv {
			childPath := k
			if path != "" {
				childPath = path + "." + k
			}
			walkFallbacks(componentType, val, childPath, report)
		}
	case []interface{}:
		for i, val := range vv {
			walkFallbacks(componentType, val, fmt.Sprintf("%s[%d]", path, i), report)
		}
	case string:
		checkHardcodedEndpoint(componentType, vv, path, report)
	}
}

func checkCORS(componentType string, m map[string]interface{}, path string, report *errs.Report) {
	cors, ok := m["cors"].(map[string]interface{})
	if !ok {
		return
	}
	if origins, ok := cors["allowOrigins"].([]interface{}); ok && len(origins) > 0 {
		report.Add(securityViolation(componentType, "cors.allowOrigins fallback must be empty", path))
	}
	if creds, ok := cors["allowCredentials"].(bool); ok && creds {
		report.Add(securityViolation(componentType, "cors.allowCredentials fallback must not be true", path))
	}
	for _, key := range []string{"allowMethods", "allowHeaders"} {
		if list, ok := cors[key].([]interface{}); ok {
			for _, v := range list {
				if s, ok := v.(string); ok && s == "*" {
					report.Add(securityViolation(componentType, fmt.Sprintf("cors.%s fallback must not contain a wildcard", key), path))
				}
			}
		}
	}
}

func checkPublicAccess(componentType string, m map[string]interface{}, path string, report *errs.Report) {
	for _, key := range []string{"publicAccess", "public", "publiclyAccessible"} {
		if v, ok := m[key].(bool); ok && v {
			report.Add(securityViolation(componentType, fmt.Sprintf("%s fallback must not be true", key), path))
		}
	}
}

func checkHardcodedEndpoint(componentType string, value string, path string, report *errs.Report) {
	if value == "" {
		return
	}
	if urlPattern.MatchString(value) || ipPattern.MatchString(value) {
		report.Add(securityViolation(componentType, fmt.Sprintf("fallback value %q looks like a hardcoded external URL or IP literal", value), path))
	}
	if strings.Count(value, ".") >= 1 && looksLikeDomain(value) {
		report.Add(securityViolation(componentType, fmt.Sprintf("fallback value %q looks like a hardcoded domain name", value), path))
	}
}

func looksLikeDomain(s string) bool {
	knownTLDs := []string{".com", ".net", ".org", ".io", ".dev", ".gov"}
	lower := strings.ToLower(s)
	for _, tld := range knownTLDs {
		if strings.HasSuffix(lower, tld) {
			return true
		}
	}
	return false
}

func securityViolation(componentType, message, path string) *errs.Diagnostic {
	return errs.New(errs.CodeComplianceViolation, fmt.Sprintf("component type %q: %s", componentType, message)).
		WithPath(path).
		WithHint("Layer-1 hardcoded fallbacks must be safe and environment-invariant; move this value to platform defaults or service environment defaults instead")
}

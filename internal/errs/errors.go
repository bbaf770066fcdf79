// Package errs defines the diagnostic taxonomy shared by every stage of
// the compilation pipeline. Every failure mode in the
// pipeline is represented as a Diagnostic rather than a bare error, so
// that the CLI can render a stable machine code, a human sentence, a
// remediation hint, and a JSON pointer path uniformly in both human and
// --ci output modes.
package errs

import "fmt"

// Code is a stable machine-readable error identifier.
type Code string

const (
	// $ref resolution (C1).
	CodeYamlSyntax      Code = "YamlSyntaxError"
	CodeJsonSyntax       Code = "JsonSyntaxError"
	CodeRefNotFound      Code = "RefNotFoundError"
	CodeRefCycle         Code = "RefCycleError"
	CodeMaxDepth         Code = "MaxDepthError"
	CodePathTraversal    Code = "PathTraversalError"

	// Schema stage (C2).
	CodeSchemaViolation      Code = "SchemaViolation"
	CodeUnknownComponentType Code = "UnknownComponentTypeError"

	// Hydration stage (C3).
	CodeUnresolvedEnvVar   Code = "UnresolvedEnvVarError"
	CodeConfigMerge        Code = "ConfigMergeError"
	CodeInvalidInterpolation Code = "InvalidInterpolation"

	// Semantic stage (C5/C6).
	CodeDanglingRef             Code = "DanglingRefError"
	CodeUnknownCapability        Code = "UnknownCapabilityError"
	CodeCapabilityFieldMissing   Code = "CapabilityFieldMissingError"
	CodeBindingCycle             Code = "BindingCycleError"
	CodeUnsupportedAccess        Code = "UnsupportedAccessError"
	CodeCapabilityShapeMismatch  Code = "CapabilityShapeMismatch"

	// Hardening (C7).
	CodeComplianceViolation Code = "ComplianceViolation"

	// Governance (C8).
	CodeGovernanceRecordInvalid Code = "GovernanceRecordInvalid"
	CodeSuppressionExpired      Code = "SuppressionExpiredError"
	CodeDanglingSuppression     Code = "DanglingSuppressionError"

	// Escape hatch.
	CodePolicyOverrideRejected Code = "PolicyOverrideRejected"

	// Runtime.
	CodeIO       Code = "IoError"
	CodeInternal Code = "InternalError"
)

// exitCodes maps each taxonomy category to the process exit code
// mandated by: 2 for user-configuration errors, 1 for
// runtime errors. Diff-specific exit code 3 is applied by the diff
// command directly, not by Diagnostic.
var exitCodes = map[Code]int{
	CodeYamlSyntax:              2,
	CodeJsonSyntax:               2,
	CodeRefNotFound:              2,
	CodeRefCycle:                 2,
	CodeMaxDepth:                 2,
	CodePathTraversal:            2,
	CodeSchemaViolation:          2,
	CodeUnknownComponentType:     2,
	CodeUnresolvedEnvVar:         2,
	CodeConfigMerge:              2,
	CodeInvalidInterpolation:     2,
	CodeDanglingRef:              2,
	CodeUnknownCapability:        2,
	CodeCapabilityFieldMissing:   2,
	CodeBindingCycle:             2,
	CodeUnsupportedAccess:        2,
	CodeCapabilityShapeMismatch:  2,
	CodeComplianceViolation:      2,
	CodeGovernanceRecordInvalid:  2,
	CodeSuppressionExpired:       2,
	CodeDanglingSuppression:      2,
	CodePolicyOverrideRejected:   2,
	CodeIO:                       1,
	CodeInternal:                 1,
}

// Diagnostic is a single structured finding: a stable code, a human
// sentence naming the offender, a remediation hint, and (where
// applicable) a JSON pointer path into the manifest plus a line/column
// when the offending value came from YAML/JSON source text.
type Diagnostic struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if d.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", d.Code, d.Message, d.Path)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// ExitCode returns the process exit code this diagnostic's category maps to.
func (d *Diagnostic) ExitCode() int {
	if code, ok := exitCodes[d.Code]; ok {
		return code
	}
	return 1
}

// New constructs a Diagnostic with the given code and message.
func New(code Code, message string) *Diagnostic {
	return &Diagnostic{Code: code, Message: message}
}

// WithPath returns a copy of d with Path set.
func (d *Diagnostic) WithPath(path string) *Diagnostic {
	c := *d
	c.Path = path
	return &c
}

// WithHint returns a copy of d with Hint set.
func (d *Diagnostic) WithHint(hint string) *Diagnostic {
	c := *d
	c.Hint = hint
	return &c
}

// WithLocation returns a copy of d with Line/Column set.
func (d *Diagnostic) WithLocation(line, column int) *Diagnostic {
	c := *d
	c.Line = line
	c.Column = column
	return &c
}

// Report aggregates diagnostics produced within a single pipeline
// stage, so a stage can collect multiple violations of the same kind
// before halting.
type Report struct {
	Diagnostics []*Diagnostic `json:"diagnostics,omitempty"`
}

// Add appends a diagnostic to the report.
func (r *Report) Add(d *Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// HasErrors reports whether the report carries any diagnostic.
func (r *Report) HasErrors() bool {
	return len(r.Diagnostics) > 0
}

// First returns the first diagnostic, or nil if the report is empty.
func (r *Report) First() *Diagnostic {
	if len(r.Diagnostics) == 0 {
		return nil
	}
	return r.Diagnostics[0]
}

// ExitCode returns the highest-priority exit code across all
// diagnostics (runtime errors at 1 take precedence over
// user-configuration errors at 2, since an IoError usually means the
// user-configuration errors could not even be fully determined).
func (r *Report) ExitCode() int {
	best := 0
	for _, d := range r.Diagnostics {
		code := d.ExitCode()
		if best == 0 || code < best {
			best = code
		}
	}
	return best
}

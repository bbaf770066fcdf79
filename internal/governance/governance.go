// Package governance implements the governance policy evaluator:
// validation of cdk-nag style suppression records against the
// manifest and the synthesis date.
package governance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/platformforge/svc/internal/errs"
	"github.com/platformforge/svc/internal/manifest"
)

// auditNamespace seeds the deterministic (v5) UUIDs assigned to
// accepted suppression records: the audit trail needs a stable
// identifier per record without breaking the compiler's
// byte-for-byte determinism guarantee, so it is derived from the
// record's own content rather than drawn from a random source.
var auditNamespace = uuid.MustParse("6f3f6b3e-6e6e-4f2e-9b1a-8f6f8f7a2b11")

// AuditEntry is one suppression record accepted into the IR's
// suppressionAudit").
type AuditEntry struct {
	AuditID       string   `json:"auditId"`
	ID            string   `json:"id"`
	Justification string   `json:"justification"`
	Owner         string   `json:"owner"`
	ExpiresOn     string   `json:"expiresOn"`
	AppliesTo     []string `json:"appliesTo"`
}

// auditID deterministically derives a UUID for a suppression record
// from its identity fields, so recompiling the same manifest yields
// the same audit trail.
func auditID(rec manifest.SuppressionRecord) string {
	name := strings.Join(append([]string{rec.ID, rec.Owner, rec.ExpiresOn}, appliesToNames(rec.AppliesTo)...), "|")
	return uuid.NewSHA1(auditNamespace, []byte(name)).String()
}

func appliesToNames(applies []manifest.AppliesTo) []string {
	out := make([]string, len(applies))
	for i, a := range applies {
		out[i] = a.Component
	}
	return out
}

// Evaluate validates every suppression record declared under
// governance.cdkNag.suppress against the required-fields, expiry, and
// dangling-reference rules, using synthesisDate as
// "now" so compilation remains deterministic and offline.
func Evaluate(m *manifest.Manifest, componentNames map[string]bool, synthesisDate time.Time) ([]AuditEntry, *errs.Report) {
	report := &errs.Report{}
	var audit []AuditEntry

	for i, rec := range m.Governance.CDKNag.Suppress {
		path := fmt.Sprintf("governance.cdkNag.suppress[%d]", i)

		missing := []string{}
		if rec.ID == "" {
			missing = append(missing, "id")
		}
		if rec.Justification == "" {
			missing = append(missing, "justification")
		}
		if rec.Owner == "" {
			missing = append(missing, "owner")
		}
		if rec.ExpiresOn == "" {
			missing = append(missing, "expiresOn")
		}
		if len(rec.AppliesTo) == 0 {
			missing = append(missing, "appliesTo")
		}
		if len(missing) > 0 {
			report.Add(errs.New(errs.CodeGovernanceRecordInvalid,
				fmt.Sprintf("suppression record missing required field(s): %v", missing)).WithPath(path))
			continue
		}

		expires, err := time.Parse("2006-01-02", rec.ExpiresOn)
		if err != nil {
			report.Add(errs.New(errs.CodeGovernanceRecordInvalid,
				fmt.Sprintf("suppression record %q has invalid expiresOn %q: must be ISO-8601 date", rec.ID, rec.ExpiresOn)).WithPath(path))
			continue
		}
		if !expires.After(synthesisDate) {
			report.Add(errs.New(errs.CodeSuppressionExpired,
				fmt.Sprintf("suppression record %q expired on %s", rec.ID, rec.ExpiresOn)).
				WithPath(path).
				WithHint("renew the waiver with a new expiresOn date or remove the suppression"))
			continue
		}

		applies := make([]string, 0, len(rec.AppliesTo))
		dangling := false
		for j, a := range rec.AppliesTo {
			if !componentNames[a.Component] {
				report.Add(errs.New(errs.CodeDanglingSuppression,
					fmt.Sprintf("suppression record %q applies to unknown component %q", rec.ID, a.Component)).
					WithPath(fmt.Sprintf("%s.appliesTo[%d]", path, j)))
				dangling = true
				continue
			}
			applies = append(applies, a.Component)
		}
		if dangling {
			continue
		}

		audit = append(audit, AuditEntry{
			AuditID:       auditID(rec),
			ID:            rec.ID,
			Justification: rec.Justification,
			Owner:         rec.Owner,
			ExpiresOn:     rec.ExpiresOn,
			AppliesTo:     applies,
		})
	}

	return audit, report
}

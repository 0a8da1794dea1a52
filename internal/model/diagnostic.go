package model

import "fmt"

// Locator pinpoints where a Finding originated: a field name and/or row index
// and/or catalog logical name. Any subset may be set; absent fields are
// zero-valued (RowIndex 0 means "not a row-scoped finding").
type Locator struct {
	Catalog  string
	Field    string
	RowIndex int // 1-based; 0 = not applicable
}

func (l Locator) String() string {
	switch {
	case l.Catalog != "" && l.Field != "" && l.RowIndex > 0:
		return fmt.Sprintf("%s[row %d].%s", l.Catalog, l.RowIndex, l.Field)
	case l.Catalog != "" && l.RowIndex > 0:
		return fmt.Sprintf("%s[row %d]", l.Catalog, l.RowIndex)
	case l.Catalog != "" && l.Field != "":
		return fmt.Sprintf("%s.%s", l.Catalog, l.Field)
	case l.Catalog != "":
		return l.Catalog
	case l.Field != "":
		return l.Field
	default:
		return ""
	}
}

// Finding is one diagnostic entry produced while validating a submission.
type Finding struct {
	Severity      Severity
	Scope         Scope
	Locator       Locator
	Message       string
	ObservedValue *string
	RuleName      string
}

// DiagnosticStatus summarizes a Diagnostic's overall outcome.
type DiagnosticStatus string

const (
	StatusSuccess DiagnosticStatus = "success"
	StatusWarning DiagnosticStatus = "warning"
	StatusError   DiagnosticStatus = "error"
)

// Diagnostic is the ordered list of Findings from one validation pass.
// Findings are emitted in evaluation order (scope order outer, declaration
// order inner, row order innermost) — this is asserted on directly by tests
// (spec.md §4.4 "Ordering contract").
type Diagnostic struct {
	Findings []Finding
}

// Add appends a Finding, preserving emission order.
func (d *Diagnostic) Add(f Finding) {
	d.Findings = append(d.Findings, f)
}

// HasErrors reports whether any Finding has ERROR severity.
func (d *Diagnostic) HasErrors() bool {
	for _, f := range d.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasErrorsForCatalog reports whether any ERROR Finding is scoped (directly
// or via its locator) to the given catalog logical name. Used by the
// Validator's early-stop policy (spec.md §4.4).
func (d *Diagnostic) HasErrorsForCatalog(catalog string) bool {
	for _, f := range d.Findings {
		if f.Severity == SeverityError && f.Locator.Catalog == catalog {
			return true
		}
	}
	return false
}

// Status computes the overall outcome: success if no ERROR Finding is
// present, warning if only WARNINGs, error otherwise.
func (d *Diagnostic) Status() DiagnosticStatus {
	hasWarning := false
	for _, f := range d.Findings {
		switch f.Severity {
		case SeverityError:
			return StatusError
		case SeverityWarning:
			hasWarning = true
		}
	}
	if hasWarning {
		return StatusWarning
	}
	return StatusSuccess
}

// Merge appends another Diagnostic's Findings in order.
func (d *Diagnostic) Merge(other Diagnostic) {
	d.Findings = append(d.Findings, other.Findings...)
}

package taxonomy

import "strings"

// Severity classifies how serious a validation reason is.
type Severity string

const (
	// SeverityError marks reasons that make a submission invalid.
	SeverityError Severity = "error"

	// SeverityWarning marks reasons the submitter should review but that
	// do not block the submission by themselves.
	SeverityWarning Severity = "warning"
)

// Entry describes one reason code in the taxonomy.
type Entry struct {
	// Code is the stable reason code (unqualified).
	Code string

	// Label is a short human-readable name for the reason.
	Label string

	// Description is a template describing the problem. It may reference
	// variables as {name}.
	Description string

	// Severity is the reason severity. Defaults to error when the source
	// document omits or misspells it.
	Severity Severity

	// SuggestedFix is a template describing how to fix the problem.
	SuggestedFix string

	// Variables lists the variable names the templates reference.
	Variables []string
}

// Taxonomy is the immutable catalog of reason codes. Construct it with
// Load or Parse; never mutate it after construction.
type Taxonomy struct {
	entries map[string]Entry
}

// BaseCode strips the ":field" qualifier from a reason code, if present.
// "missing_field:receipt_images" becomes "missing_field".
func BaseCode(code string) string {
	if idx := strings.Index(code, ":"); idx >= 0 {
		return code[:idx]
	}
	return code
}

// QualifiedField returns the field qualifier of a reason code, or "" if
// the code is unqualified.
func QualifiedField(code string) string {
	if idx := strings.Index(code, ":"); idx >= 0 {
		return code[idx+1:]
	}
	return ""
}

// Lookup returns the entry for a reason code. Field-qualified codes are
// resolved by their base code.
func (t *Taxonomy) Lookup(code string) (Entry, bool) {
	entry, ok := t.entries[BaseCode(code)]
	return entry, ok
}

// Has returns true if the reason code (or its base code) exists.
func (t *Taxonomy) Has(code string) bool {
	_, ok := t.entries[BaseCode(code)]
	return ok
}

// Severity returns the severity for a reason code, defaulting to error
// for unknown codes.
func (t *Taxonomy) Severity(code string) Severity {
	if entry, ok := t.Lookup(code); ok {
		return entry.Severity
	}
	return SeverityError
}

// Len returns the number of entries in the taxonomy.
func (t *Taxonomy) Len() int {
	return len(t.entries)
}

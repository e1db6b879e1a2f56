package engine

import "mercator-hq/ruler/pkg/taxonomy"

// Status is the overall outcome of one evaluation.
type Status string

const (
	// StatusOK means every check passed.
	StatusOK Status = "OK"

	// StatusNG means at least one check failed.
	StatusNG Status = "NG"
)

// Check is the outcome of a single constraint evaluation. Checks are
// transient: they exist only within one Evaluate call.
type Check struct {
	// Valid is false when the constraint failed.
	Valid bool

	// Reason is the reason code for a failed check, empty for a passing
	// one. Missing-field reasons are field-qualified ("code:fieldKey").
	Reason string
}

// pass is the passing check.
func pass() Check { return Check{Valid: true} }

// fail builds a failing check with the given reason code.
func fail(reason string) Check { return Check{Valid: false, Reason: reason} }

// Result is the outcome of evaluating one rule against one submission.
type Result struct {
	// ClauseID identifies the evaluated rule.
	ClauseID string `json:"clause_id"`

	// Status is OK when ReasonCodes is empty, NG otherwise.
	Status Status `json:"status"`

	// ReasonCodes lists the failing reason codes, deduplicated with
	// first-occurrence order preserved.
	ReasonCodes []string `json:"reasons"`

	// Diagnostics expands each reason code via the taxonomy.
	Diagnostics []taxonomy.Diagnostic `json:"diagnostics"`

	// ErrorCount is the number of error-severity diagnostics.
	ErrorCount int `json:"error_count"`

	// WarningCount is the number of warning-severity diagnostics.
	WarningCount int `json:"warning_count"`

	// Variables is the substitution bag the diagnostics were rendered
	// with, exposed for clients that re-render templates.
	Variables map[string]any `json:"variables,omitempty"`
}

// evalState tracks the orchestration progress through one evaluation.
// Transitions are linear; the terminal state is always reached.
type evalState int

const (
	stateNotEvaluated evalState = iota
	stateFieldsChecked
	stateConstraintsChecked
	stateVariablesBuilt
	stateResolved
)

// dedupeReasons removes duplicate reason codes keeping first occurrence
// order.
func dedupeReasons(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

// Package engine implements the declarative rule-evaluation core.
//
// Given a rule definition (required fields plus a nested constraint tree)
// and a map of submitted values, the engine determines pass/fail status,
// produces a deduplicated ordered list of typed reason codes, and expands
// each reason into a diagnostic via the reason taxonomy.
//
// Evaluation is stateless and request-parallel: the rule, the taxonomy,
// and the engine configuration are immutable after construction, so a
// single Evaluator can be shared by any number of goroutines without
// locks. All per-call state lives in the evaluation context and the
// returned Result.
//
// Constraint-level failures are data, not errors: malformed constraint
// nodes are skipped, unknown reason codes expand to fallback diagnostics,
// and Evaluate never panics or returns an error for rule-authoring
// mistakes. The only fatal conditions in this system are malformed
// rulebook or taxonomy documents at load time, which are handled by the
// rulebook/parser and taxonomy packages.
package engine

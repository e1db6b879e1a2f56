// Package taxonomy holds the reason taxonomy: the catalog mapping reason
// codes to human-facing labels, description templates, severities, and
// suggested-fix templates.
//
// The taxonomy is loaded once from a JSON document and is immutable
// afterwards, so concurrent evaluations can share it without locks.
// Lookups strip the ":field" qualifier that the engine appends to
// missing-field codes. Unknown codes expand to a generic fallback
// diagnostic instead of failing: the rule-authoring surface is open-ended
// and an unmapped code must never abort an evaluation.
package taxonomy

// Ruler is a declarative expense-rule evaluation service.
//
// It loads a rulebook of expense clauses, evaluates submitted expense
// data against each clause's constraint tree, and reports structured
// reason codes from a shared taxonomy:
//   - Required-field and type checking per clause
//   - Amount ceilings, thresholds, and per-person formulas
//   - Date windows, frequency caps, and accommodation constraints
//   - Human-readable diagnostics with template substitution
//
// Usage:
//
//	# Start the server with default configuration
//	ruler run
//
//	# Start with a custom configuration file
//	ruler run --config /etc/ruler/config.yaml
//
//	# Validate rulebook and taxonomy files without serving
//	ruler validate --rulebook rules/ --taxonomy reasons.json
//
//	# Show version information
//	ruler version
package main

func main() {
	Execute()
}

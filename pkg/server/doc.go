// Package server provides the HTTP API for the ruler service: rule
// listing and inspection, submission evaluation, health, and metrics.
//
// Routes:
//
//	GET  /health               service liveness and rule-set status
//	GET  /rules                list loaded rules
//	GET  /rules/{clause_id}    inspect one rule
//	POST /rules/evaluate       evaluate a submission against a rule
//	GET  /metrics              Prometheus exposition (when enabled)
//
// Evaluation requests carry the clause ID and the submitted field
// values:
//
//	{
//	  "clause_id": "meals-001",
//	  "inputs": [
//	    {"key": "amount", "value": 4200},
//	    {"key": "recognized_at", "value": "2024-03-11"}
//	  ]
//	}
//
// The response is the full evaluation result: status, reason codes,
// and expanded diagnostics.
package server

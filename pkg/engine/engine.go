package engine

import (
	"fmt"
	"log/slog"

	"mercator-hq/ruler/pkg/rulebook"
	"mercator-hq/ruler/pkg/taxonomy"
)

// FrequencyCounter reports how many times an employee already submitted
// under a clause within a period. Implementations live in the history
// package; a nil counter turns frequency constraints into structural
// pass-throughs.
type FrequencyCounter interface {
	// Count returns the number of prior submissions by employee under
	// clauseID within the named period ("month", "quarter", "year").
	Count(employeeID, clauseID, period string) (int, error)
}

// Evaluator evaluates expense submissions against rulebook rules. It is
// stateless across calls and safe for concurrent use.
type Evaluator struct {
	taxonomy  *taxonomy.Taxonomy
	config    *Config
	clock     Clock
	frequency FrequencyCounter
	logger    *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock replaces the system clock, used by tests and replay tooling.
func WithClock(clock Clock) Option {
	return func(e *Evaluator) { e.clock = clock }
}

// WithFrequencyCounter wires a submission-history counter into frequency
// constraints.
func WithFrequencyCounter(counter FrequencyCounter) Option {
	return func(e *Evaluator) { e.frequency = counter }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// New creates an Evaluator over the given taxonomy and configuration. A
// nil config uses DefaultConfig.
func New(tax *taxonomy.Taxonomy, cfg *Config, opts ...Option) (*Evaluator, error) {
	if tax == nil {
		return nil, fmt.Errorf("taxonomy is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	e := &Evaluator{
		taxonomy: tax,
		config:   cfg,
		clock:    SystemClock(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Evaluate runs one submission through a rule and returns the complete
// result: reason codes, expanded diagnostics, severity counts, and the
// variable bag. It never returns an error; malformed rule content
// degrades to skipped constraints.
func (e *Evaluator) Evaluate(rule *rulebook.Rule, given map[string]any) *Result {
	if rule == nil {
		return &Result{Status: StatusOK, ReasonCodes: []string{}, Diagnostics: []taxonomy.Diagnostic{}}
	}
	if given == nil {
		given = map[string]any{}
	}

	ec := &evalContext{rule: rule, given: given}

	fieldChecks, missing := e.checkRequiredFields(rule, given)
	ec.add(fieldChecks...)
	ec.missing = missing
	ec.state = stateFieldsChecked

	e.analyzeTree(ec)
	ec.state = stateConstraintsChecked

	variables := e.buildVariables(ec)
	ec.state = stateVariablesBuilt

	result := e.resolve(ec, variables)
	ec.state = stateResolved

	e.logger.Debug("evaluation complete",
		"clause_id", rule.ClauseID,
		"status", string(result.Status),
		"reasons", len(result.ReasonCodes),
	)

	return result
}

// resolve folds the accumulated checks into the final Result.
func (e *Evaluator) resolve(ec *evalContext, variables map[string]any) *Result {
	var reasons []string
	for _, check := range ec.checks {
		if !check.Valid && check.Reason != "" {
			reasons = append(reasons, check.Reason)
		}
	}
	reasons = dedupeReasons(reasons)

	fields := make(map[string]taxonomy.FieldInfo, len(ec.missing))
	for _, m := range ec.missing {
		fields[m.Code] = taxonomy.FieldInfo{DisplayName: m.DisplayName, Context: m.Context}
	}

	diagnostics := e.taxonomy.ExpandWithFields(reasons, variables, fields)
	errors, warnings := taxonomy.CountBySeverity(diagnostics)

	status := StatusOK
	if len(reasons) > 0 {
		status = StatusNG
	}

	return &Result{
		ClauseID:     ec.rule.ClauseID,
		Status:       status,
		ReasonCodes:  reasons,
		Diagnostics:  diagnostics,
		ErrorCount:   errors,
		WarningCount: warnings,
		Variables:    variables,
	}
}

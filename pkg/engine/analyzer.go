package engine

import (
	"mercator-hq/ruler/pkg/rulebook"
)

// evalContext carries the per-call state of one evaluation. It is created
// inside Evaluate and never shared, which keeps the Evaluator itself
// stateless.
type evalContext struct {
	rule    *rulebook.Rule
	given   map[string]any
	checks  []Check
	missing []missingField
	state   evalState
}

// add appends checks produced by one constraint.
func (ec *evalContext) add(checks ...Check) {
	ec.checks = append(ec.checks, checks...)
}

// booleanShorthands maps bare boolean leaves of the constraint tree to
// implicit presence checks. Declared as an ordered table for determinism.
var booleanShorthands = []struct {
	Key   string
	Field string
	Code  string
}{
	{"receipt_required", "receipt_images", "missing_receipt_images"},
	{"invoice_number_required", "invoice_registration_number", "missing_invoice_number"},
	{"project_code_required", "project_code", "missing_project_code"},
	{"pre_approval_required", "pre_approval_id", "missing_pre_approval"},
}

// analyzeTree walks the rule's constraint tree depth-first in authored
// order and flattens every produced check into the context. Malformed or
// unrecognized nodes are skipped, never fatal.
func (e *Evaluator) analyzeTree(ec *evalContext) {
	if ec.rule.Constraints.IsObject() {
		e.walkNode(ec, ec.rule.Constraints, 0)
	}
}

// walkNode classifies each tree entry in priority order: explicit
// constraint node, specialized container, nested map, boolean shorthand,
// implicit numeric ceiling. Any other scalar is reserved for future
// constraint kinds and ignored.
func (e *Evaluator) walkNode(ec *evalContext, node *rulebook.Node, depth int) {
	if depth > e.config.MaxTreeDepth {
		e.logger.Warn("constraint tree exceeds maximum depth, skipping subtree",
			"clause_id", ec.rule.ClauseID,
			"max_depth", e.config.MaxTreeDepth,
		)
		return
	}

	for _, entry := range node.Entries {
		value := entry.Value

		switch {
		case value.IsObject():
			if spec, ok := value.AsConstraint(); ok {
				e.dispatchConstraint(ec, spec)
				continue
			}
			if rulebook.IsContainerKey(entry.Key) {
				e.dispatchContainer(ec, entry.Key, value)
				continue
			}
			e.walkNode(ec, value, depth+1)

		case value.Kind == rulebook.KindBool && value.Bool:
			e.evaluateBooleanShorthand(ec, entry.Key)

		case value.Kind == rulebook.KindNumber && entry.Key == "max_amount":
			e.evaluateImplicitCeiling(ec, value.Num)

		default:
			// Scalar leaf with no assigned meaning; ignore.
		}
	}
}

// dispatchConstraint routes an explicit constraint node to its evaluator.
// Unknown kinds are ignored explicitly rather than shape-sniffed.
func (e *Evaluator) dispatchConstraint(ec *evalContext, spec *rulebook.ConstraintSpec) {
	evaluate, ok := constraintEvaluators[spec.Kind]
	if !ok {
		e.logger.Debug("ignoring constraint of unknown kind",
			"clause_id", ec.rule.ClauseID,
			"kind", string(spec.Kind),
			"field", spec.FieldName,
		)
		return
	}
	ec.add(evaluate(e, spec, ec.given)...)
}

// dispatchContainer routes a specialized container to its processor.
func (e *Evaluator) dispatchContainer(ec *evalContext, key string, node *rulebook.Node) {
	switch key {
	case rulebook.ContainerAmountConstraints:
		ec.add(e.processAmountConstraints(node, ec.given)...)
	case rulebook.ContainerDynamicAmountFormula:
		ec.add(e.processDynamicAmountFormula(node, ec.given)...)
	case rulebook.ContainerFrequencyConstraints:
		ec.add(e.processFrequencyConstraints(ec, node)...)
	case rulebook.ContainerSpecialThresholds:
		ec.add(e.processSpecialThresholds(node, ec.given)...)
	}
}

// evaluateBooleanShorthand applies the fixed shorthand table for bare
// boolean leaves (e.g. receipt_required: true).
func (e *Evaluator) evaluateBooleanShorthand(ec *evalContext, key string) {
	for _, shorthand := range booleanShorthands {
		if shorthand.Key != key {
			continue
		}
		if isEmptyValue(ec.given[shorthand.Field]) {
			ec.add(fail(shorthand.Code))
		}
		return
	}
}

// evaluateImplicitCeiling applies a bare numeric max_amount leaf against
// the submitted amount.
func (e *Evaluator) evaluateImplicitCeiling(ec *evalContext, max float64) {
	amount, ok := asNumber(ec.given["amount"])
	if !ok {
		return
	}
	if amount > max {
		ec.add(fail(codeAmountExceedsLimit))
	}
}

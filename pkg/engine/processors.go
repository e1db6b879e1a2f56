package engine

import (
	"mercator-hq/ruler/pkg/rulebook"
)

// processAmountConstraints evaluates the named JPY bounds of an
// amount_constraints container against the submitted amount.
func (e *Evaluator) processAmountConstraints(node *rulebook.Node, given map[string]any) []Check {
	amount, ok := asNumber(given["amount"])
	if !ok {
		return nil
	}

	var checks []Check

	if max, ok := node.GetNumber("max_amount_jpy"); ok && amount > max {
		checks = append(checks, fail(codeAmountExceedsLimit))
	}

	if max, ok := node.GetNumber("per_person_max_amount_jpy"); ok && amount > max {
		checks = append(checks, fail(codeAmountExceedsLimit))
	}

	if min, ok := node.GetNumber("per_person_min_amount_jpy"); ok {
		exclusive, _ := node.GetBool("per_person_min_exclusive")
		if belowMinimum(amount, min, exclusive) {
			checks = append(checks, fail(codeAmountBelowMinimum))
		}
	}

	if max, ok := node.GetNumber("item_unit_max_amount_jpy"); ok && amount > max {
		checks = append(checks, fail(codeAmountExceedsLimit))
	}

	if min, ok := node.GetNumber("item_unit_min_amount_jpy"); ok {
		// The item-unit minimum is inclusive unless the rule opts out.
		inclusive := true
		if flag, ok := node.GetBool("item_unit_min_inclusive"); ok {
			inclusive = flag
		}
		if belowMinimum(amount, min, !inclusive) {
			checks = append(checks, fail(codeAmountBelowMinimum))
		}
	}

	return checks
}

// processDynamicAmountFormula computes the expected amount as
// unit_amount_jpy * given[variable] and fails when the submitted amount
// exceeds it. A missing variable is a no-op.
func (e *Evaluator) processDynamicAmountFormula(node *rulebook.Node, given map[string]any) []Check {
	formulaType, _ := node.GetString("type")
	unitAmount, haveUnit := node.GetNumber("unit_amount_jpy")
	variable, haveVar := node.GetString("variable")
	if formulaType == "" || !haveUnit || !haveVar {
		return nil
	}

	multiplier, ok := asNumber(given[variable])
	if !ok {
		return nil
	}

	amount, ok := asNumber(given["amount"])
	if !ok {
		return nil
	}

	if amount > unitAmount*multiplier {
		return []Check{fail(codeAmountExceedsLimit)}
	}
	return nil
}

// processFrequencyConstraints checks max_occurrences_per_period against
// the submission-history counter when one is configured. Without a
// counter the container is a structural pass-through, preserving the
// historical behavior of rulebooks authored before history tracking
// existed.
func (e *Evaluator) processFrequencyConstraints(ec *evalContext, node *rulebook.Node) []Check {
	if e.frequency == nil {
		return nil
	}

	limits := node.Get("max_occurrences_per_period")
	if !limits.IsObject() {
		return nil
	}

	scope, _ := limits.GetString("scope")
	count, haveCount := limits.GetNumber("count")
	period, _ := limits.GetString("period")
	if scope != "person" || !haveCount || period == "" {
		return nil
	}

	employee, ok := asString(ec.given["employee_id"])
	if !ok || employee == "" {
		return nil
	}

	prior, err := e.frequency.Count(employee, ec.rule.ClauseID, period)
	if err != nil {
		e.logger.Warn("frequency lookup failed, skipping constraint",
			"clause_id", ec.rule.ClauseID,
			"employee_id", employee,
			"period", period,
			"error", err,
		)
		return nil
	}

	if float64(prior) >= count {
		code := codeFrequencyLimitExceeded
		if authored, ok := node.GetString("reason_code"); ok && authored != "" {
			code = authored
		}
		return []Check{fail(code)}
	}

	return nil
}

// processSpecialThresholds forwards presence-shaped threshold entries to
// the presence check. Other entry shapes are reserved for future
// threshold kinds and are ignored.
func (e *Evaluator) processSpecialThresholds(node *rulebook.Node, given map[string]any) []Check {
	var checks []Check

	for _, entry := range node.Entries {
		value := entry.Value
		if !value.IsObject() {
			continue
		}

		fieldName, ok := value.GetString("field_name")
		if !ok || fieldName == "" {
			continue
		}

		code, ok := value.GetString("reason_code")
		if !ok || code == "" {
			code = codeAmountExceedsLimit
		}

		if isEmptyValue(given[fieldName]) {
			checks = append(checks, fail(code))
		}
	}

	return checks
}

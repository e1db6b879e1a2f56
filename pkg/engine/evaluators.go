package engine

import (
	"mercator-hq/ruler/pkg/rulebook"
)

// Fixed reason codes emitted by the evaluators, matching the reason
// taxonomy document.
const (
	codeInvalidEnum            = "invalid_enum_value"
	codeInvalidDate            = "invalid_date"
	codeInvalidCurrency        = "invalid_currency"
	codeInvalidReceiptType     = "invalid_receipt_type"
	codeAmountExceedsLimit     = "amount_exceeds_limit"
	codeAmountBelowMinimum     = "amount_below_minimum"
	codeFutureDateNotAllowed   = "future_date_not_allowed"
	codeDateTooOld             = "date_too_old"
	codeWeekendRestriction     = "weekend_expense_restriction"
	codeAccommodationPeriod    = "invalid_accommodation_period"
	codeFrequencyLimitExceeded = "frequency_limit_exceeded"
)

// evaluatorFunc evaluates one explicit constraint node. Evaluators are
// pure: they fire only when their operands are present (a missing operand
// is a silent no-op, presence is the presence checker's job) and report
// failures as checks, never as errors.
type evaluatorFunc func(e *Evaluator, spec *rulebook.ConstraintSpec, given map[string]any) []Check

// constraintEvaluators is the closed dispatch table over constraint
// kinds. Unknown kinds are ignored by the analyzer, not dispatched.
var constraintEvaluators = map[rulebook.ConstraintKind]evaluatorFunc{
	rulebook.ConstraintRequired:           evaluateRequired,
	rulebook.ConstraintFormat:             evaluateFormat,
	rulebook.ConstraintRange:              evaluateRange,
	rulebook.ConstraintDateValidation:     evaluateDate,
	rulebook.ConstraintBusinessRule:       evaluateBusinessRule,
	rulebook.ConstraintFieldType:          evaluateFieldType,
	rulebook.ConstraintAmountConstraint:   evaluateAmountConstraint,
	rulebook.ConstraintAccommodationDates: evaluateAccommodationDates,
}

// evaluateRequired fails when the named field is empty.
func evaluateRequired(e *Evaluator, spec *rulebook.ConstraintSpec, given map[string]any) []Check {
	if isEmptyValue(given[spec.FieldName]) {
		return []Check{fail(spec.ReasonCode)}
	}
	return []Check{pass()}
}

// evaluateFormat checks the declared format_type: date (YYYY-MM-DD),
// currency (allow-list membership), or enum (allowed_values membership).
func evaluateFormat(e *Evaluator, spec *rulebook.ConstraintSpec, given map[string]any) []Check {
	value := given[spec.FieldName]
	if isEmptyValue(value) {
		return nil
	}

	formatType, _ := spec.Params.GetString("format_type")
	valid := true

	switch formatType {
	case "date":
		_, valid = parseDate(value)
	case "currency":
		s, ok := asString(value)
		valid = ok && e.config.allowsCurrency(s)
	case "enum":
		allowed := spec.Params.Get("allowed_values").StringList()
		if len(allowed) > 0 {
			s, ok := asString(value)
			valid = ok && contains(allowed, s)
		}
	}

	if !valid {
		return []Check{fail(spec.ReasonCode)}
	}
	return []Check{pass()}
}

// evaluateRange checks a numeric value against min_value/max_value. Either
// bound may be absent.
func evaluateRange(e *Evaluator, spec *rulebook.ConstraintSpec, given map[string]any) []Check {
	value := given[spec.FieldName]
	if isEmptyValue(value) {
		return nil
	}

	num, ok := asNumber(value)
	if !ok {
		return []Check{pass()}
	}

	if min, ok := spec.Params.GetNumber("min_value"); ok && num < min {
		return []Check{fail(spec.ReasonCode)}
	}
	if max, ok := spec.Params.GetNumber("max_value"); ok && num > max {
		return []Check{fail(spec.ReasonCode)}
	}
	return []Check{pass()}
}

// evaluateDate runs the calendar checks: future dates, submission window,
// weekend restriction. An unparseable date fails with invalid_date and
// skips the remaining checks.
func evaluateDate(e *Evaluator, spec *rulebook.ConstraintSpec, given map[string]any) []Check {
	value := given[spec.FieldName]
	if isEmptyValue(value) {
		return nil
	}

	date, ok := parseDate(value)
	if !ok {
		return []Check{fail(codeInvalidDate)}
	}

	now := e.clock.Now()
	var checks []Check

	if flag, _ := spec.Params.GetBool("future_dates_not_allowed"); flag && date.After(now) {
		checks = append(checks, fail(codeFutureDateNotAllowed))
	}

	window := e.config.SubmissionWindowDays
	if days, ok := spec.Params.GetNumber("submission_window_days"); ok {
		window = int(days)
	}
	if int(now.Sub(date).Hours()/24) > window {
		checks = append(checks, fail(codeDateTooOld))
	}

	if flag, _ := spec.Params.GetBool("weekend_expenses_not_allowed"); flag && isWeekend(date) {
		checks = append(checks, fail(codeWeekendRestriction))
	}

	// holiday_expenses_not_allowed needs a holiday calendar; declared
	// extension point, currently always passes.

	return checks
}

// evaluateBusinessRule runs membership checks for currency and receipt
// type. File-format and duplicate-submission checks are declared extension
// points that currently always pass.
func evaluateBusinessRule(e *Evaluator, spec *rulebook.ConstraintSpec, given map[string]any) []Check {
	if isEmptyValue(given[spec.FieldName]) {
		return nil
	}

	var checks []Check

	if flag, _ := spec.Params.GetBool("currency_validation"); flag {
		if currency, ok := asString(given["currency"]); ok && currency != "" {
			ok := e.config.allowsCurrency(currency)
			if allowed := spec.Params.Get("allowed_currencies").StringList(); len(allowed) > 0 {
				ok = contains(allowed, currency)
			}
			if !ok {
				checks = append(checks, fail(codeInvalidCurrency))
			}
		}
	}

	if flag, _ := spec.Params.GetBool("receipt_type_validation"); flag {
		if receiptType, ok := asString(given["receipt_type"]); ok && receiptType != "" {
			ok := e.config.allowsReceiptType(receiptType)
			if allowed := spec.Params.Get("allowed_receipt_types").StringList(); len(allowed) > 0 {
				ok = contains(allowed, receiptType)
			}
			if !ok {
				checks = append(checks, fail(codeInvalidReceiptType))
			}
		}
	}

	return checks
}

// evaluateFieldType is the generic type-shape check: enum membership, date
// parseability, money/integer positivity.
func evaluateFieldType(e *Evaluator, spec *rulebook.ConstraintSpec, given map[string]any) []Check {
	value := given[spec.FieldName]
	if isEmptyValue(value) {
		return nil
	}

	fieldType, _ := spec.Params.GetString("field_type")

	switch fieldType {
	case "enum":
		allowed := spec.Params.Get("allowed_values").StringList()
		if len(allowed) > 0 {
			s, ok := asString(value)
			if !ok || !contains(allowed, s) {
				return []Check{fail(codeInvalidEnum)}
			}
		}
	case "date":
		if _, ok := parseDate(value); !ok {
			return []Check{fail(codeInvalidDate)}
		}
	case "money", "integer":
		num, ok := asNumber(value)
		if !ok || num <= 0 {
			return []Check{fail(codeAmountExceedsLimit)}
		}
	}

	return nil
}

// evaluateAmountConstraint is the generalized bound check: max_amount,
// min_amount (optionally exclusive), and the per-person variants.
func evaluateAmountConstraint(e *Evaluator, spec *rulebook.ConstraintSpec, given map[string]any) []Check {
	value := given[spec.FieldName]
	if isEmptyValue(value) {
		return nil
	}

	num, ok := asNumber(value)
	if !ok {
		return nil
	}

	var checks []Check

	if max, ok := spec.Params.GetNumber("max_amount"); ok && num > max {
		checks = append(checks, fail(codeAmountExceedsLimit))
	}

	if min, ok := spec.Params.GetNumber("min_amount"); ok {
		exclusive, _ := spec.Params.GetBool("min_exclusive")
		if belowMinimum(num, min, exclusive) {
			checks = append(checks, fail(codeAmountBelowMinimum))
		}
	}

	if max, ok := spec.Params.GetNumber("per_person_max_amount"); ok && num > max {
		checks = append(checks, fail(codeAmountExceedsLimit))
	}

	if min, ok := spec.Params.GetNumber("per_person_min_amount"); ok {
		exclusive, _ := spec.Params.GetBool("per_person_min_exclusive")
		if belowMinimum(num, min, exclusive) {
			checks = append(checks, fail(codeAmountBelowMinimum))
		}
	}

	return checks
}

// belowMinimum applies the exclusivity flag: an exclusive minimum rejects
// the boundary value itself.
func belowMinimum(value, min float64, exclusive bool) bool {
	if exclusive {
		return value <= min
	}
	return value < min
}

// evaluateAccommodationDates requires both check_in_date and
// check_out_date and fails when check-out precedes check-in. The failure
// code falls back to invalid_date when the taxonomy does not define
// invalid_accommodation_period.
func evaluateAccommodationDates(e *Evaluator, spec *rulebook.ConstraintSpec, given map[string]any) []Check {
	checkIn, haveIn := given["check_in_date"]
	checkOut, haveOut := given["check_out_date"]
	if !haveIn || !haveOut || isEmptyValue(checkIn) || isEmptyValue(checkOut) {
		return nil
	}

	inDate, okIn := parseDate(checkIn)
	outDate, okOut := parseDate(checkOut)
	if !okIn || !okOut {
		return []Check{fail(codeInvalidDate)}
	}

	if outDate.Before(inDate) {
		code := codeAccommodationPeriod
		if !e.taxonomy.Has(code) {
			code = codeInvalidDate
		}
		return []Check{fail(code)}
	}

	return []Check{pass()}
}

package engine

import (
	"strconv"
	"strings"

	"mercator-hq/ruler/pkg/rulebook"
)

// variableOverrides maps constraint-tree keys to the template variable
// they set. Ordered table for deterministic collection.
var variableOverrides = []struct {
	Key      string
	Variable string
	// Ceiling variables keep the most restrictive (smallest) value when a
	// tree authors the same variable more than once.
	Ceiling bool
}{
	{"max_amount_jpy", "limit", true},
	{"per_person_max_amount_jpy", "threshold", false},
	{"per_person_max_amount_jpy", "limit", true},
	{"per_person_min_amount_jpy", "minimum", false},
	{"item_unit_max_amount_jpy", "item_unit_limit", false},
	{"item_unit_min_amount_jpy", "item_unit_minimum", false},
	{"max_amount", "limit", true},
	{"min_amount", "minimum", false},
	{"submission_window_days", "submission_window", false},
	{"max_file_size_mb", "max_size", false},
	{"unit_amount_jpy", "unit_amount", false},
	{"max_occurrences_per_period", "max_frequency", false},
	{"custom_threshold", "threshold", false},
}

// buildVariables assembles the template-variable bag for taxonomy
// expansion: engine defaults first, then echoes of the submitted input,
// then values authored in the rule's constraint tree. Later layers win,
// except ceiling variables where the smallest authored value wins.
func (e *Evaluator) buildVariables(ec *evalContext) map[string]any {
	now := e.clock.Now()
	cfg := e.config

	vars := map[string]any{
		"threshold":          cfg.DefaultThreshold,
		"limit":              cfg.DefaultLimit,
		"minimum":            cfg.DefaultMinimum,
		"max_size":           cfg.MaxFileSize,
		"submission_window":  cfg.SubmissionWindowDays,
		"allowed_currencies": strings.Join(cfg.Currencies, ", "),
		"allowed_formats":    strings.Join(cfg.FileFormats, ", "),
		"allowed_types":      strings.Join(cfg.ReceiptTypes, ", "),
		"allowed_approvers":  strings.Join(cfg.Approvers, ", "),
		"current_date":       now.Format(DateLayout),
		"min_date":           now.AddDate(-5, 0, 0).Format(DateLayout),
		"max_date":           now.AddDate(1, 0, 0).Format(DateLayout),
	}

	category := ec.rule.CategoryLabel("en")
	if category == "" {
		category = "unknown"
	}
	vars["category"] = category

	e.echoInputs(vars, ec.given)
	e.collectOverrides(vars, ec.rule.Constraints, 0)

	return vars
}

// inputEchoes maps submitted field keys to the template variable they
// echo into.
var inputEchoes = []struct {
	Field    string
	Variable string
}{
	{"amount", "amount"},
	{"project_code", "project_code"},
	{"approver", "approver_name"},
	{"receipt_type", "receipt_type"},
	{"route", "route"},
	{"destination", "destination"},
	{"purpose", "purpose"},
	{"payment_details", "payment_details"},
	{"num_nights", "num_nights"},
	{"num_people", "num_people"},
	{"check_in_date", "check_in_date"},
	{"check_out_date", "check_out_date"},
}

// echoInputs copies submitted values into the variable bag so templates
// can reference what the employee actually entered.
func (e *Evaluator) echoInputs(vars map[string]any, given map[string]any) {
	for _, echo := range inputEchoes {
		if value, ok := given[echo.Field]; ok && !isEmptyValue(value) {
			vars[echo.Variable] = value
		}
	}

	currency := "JPY"
	if s, ok := asString(given["currency"]); ok && s != "" {
		currency = s
	}
	vars["currency"] = currency

	if date, ok := asString(given["recognized_at"]); ok && date != "" {
		vars["date"] = date
	}

	if amount, ok := asNumber(given["amount"]); ok {
		vars["receipt_amount"] = amount
		vars["submitted_amount"] = amount
	}
}

// collectOverrides walks the constraint tree and applies authored values
// to the variable bag. Ceiling variables keep the smallest value seen so
// a nested stricter limit is the one diagnostics report.
func (e *Evaluator) collectOverrides(vars map[string]any, node *rulebook.Node, depth int) {
	if !node.IsObject() || depth > e.config.MaxTreeDepth {
		return
	}

	for _, entry := range node.Entries {
		value := entry.Value

		if value.Kind == rulebook.KindNumber {
			e.applyOverride(vars, entry.Key, value.Num)
			continue
		}

		if value.Kind == rulebook.KindString {
			e.applyStringOverride(vars, entry.Key, value.Str)
			continue
		}

		if value.IsObject() {
			// max_occurrences_per_period authors its limit as a nested
			// count rather than a bare number.
			if entry.Key == "max_occurrences_per_period" {
				if count, ok := value.GetNumber("count"); ok {
					e.applyOverride(vars, entry.Key, count)
				}
			}
			e.collectOverrides(vars, value, depth+1)
		}
	}
}

// applyOverride applies one authored number to every variable the key
// maps to. A key may map to more than one variable, like
// per_person_max_amount_jpy which sets both threshold and limit.
func (e *Evaluator) applyOverride(vars map[string]any, key string, num float64) {
	for _, override := range variableOverrides {
		if override.Key != key {
			continue
		}
		if override.Ceiling {
			if current, ok := asNumber(vars[override.Variable]); ok && current <= num {
				continue
			}
		}
		vars[override.Variable] = num
	}
}

// applyStringOverride handles string-authored values. Numeric strings go
// through the normal numeric path; anything else replaces non-ceiling
// variables verbatim.
func (e *Evaluator) applyStringOverride(vars map[string]any, key, raw string) {
	if num, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		e.applyOverride(vars, key, num)
		return
	}
	for _, override := range variableOverrides {
		if override.Key != key || override.Ceiling {
			continue
		}
		vars[override.Variable] = raw
	}
}

package parser

import (
	"fmt"

	"mercator-hq/ruler/pkg/rulebook"
)

// validate performs structural validation of a parsed rulebook. All
// problems are collected before returning so one load reports everything.
func (p *Parser) validate(book *rulebook.Rulebook, sourcePath string) error {
	verr := &ValidationError{FilePath: sourcePath}

	if len(book.Rules) == 0 {
		verr.Add("rulebook contains no rules")
	}

	seen := make(map[string]bool)
	for i, rule := range book.Rules {
		if rule.ClauseID == "" {
			verr.Add("rule %d: missing clause_id", i)
			continue
		}
		if seen[rule.ClauseID] {
			verr.Add("clause %s: duplicate clause_id", rule.ClauseID)
		}
		seen[rule.ClauseID] = true

		p.validateFields(rule, verr)
		p.validateTree(rule, verr)
	}

	if verr.HasProblems() {
		return verr
	}
	return nil
}

// validateFields checks the rule's field specs.
func (p *Parser) validateFields(rule *rulebook.Rule, verr *ValidationError) {
	keys := make(map[string]bool)
	for i, field := range rule.Fields {
		if field == nil {
			verr.Add("clause %s: field %d is null", rule.ClauseID, i)
			continue
		}
		if field.Key == "" {
			verr.Add("clause %s: field %d: missing key", rule.ClauseID, i)
			continue
		}
		if keys[field.Key] {
			verr.Add("clause %s: duplicate field key %q", rule.ClauseID, field.Key)
		}
		keys[field.Key] = true

		if !field.Type.IsKnown() {
			verr.Add("clause %s: field %q: unknown type %q", rule.ClauseID, field.Key, field.Type)
		}
		if field.Type == rulebook.FieldTypeEnum && len(field.AllowedValues) == 0 {
			verr.Add("clause %s: field %q: enum field declares no allowed_values", rule.ClauseID, field.Key)
		}
	}
}

// validateTree walks the constraint tree checking explicit constraint
// nodes and the nesting depth limit.
func (p *Parser) validateTree(rule *rulebook.Rule, verr *ValidationError) {
	if rule.Constraints == nil {
		return
	}
	if !rule.Constraints.IsObject() {
		verr.Add("clause %s: validation_rules must be an object, got %s",
			rule.ClauseID, rule.Constraints.Kind)
		return
	}
	p.walkTree(rule, rule.Constraints, "validation_rules", 0, verr)
}

func (p *Parser) walkTree(rule *rulebook.Rule, node *rulebook.Node, path string, depth int, verr *ValidationError) {
	if depth > p.config.MaxTreeDepth {
		verr.Add("clause %s: %s: constraint tree exceeds maximum depth %d",
			rule.ClauseID, path, p.config.MaxTreeDepth)
		return
	}

	if spec, ok := node.AsConstraint(); ok {
		if spec.FieldName == "" {
			verr.Add("clause %s: %s: constraint has empty field_name", rule.ClauseID, path)
		}
		if spec.ReasonCode == "" {
			verr.Add("clause %s: %s: constraint has empty reason_code", rule.ClauseID, path)
		}
		if !spec.Kind.IsKnown() {
			verr.Add("clause %s: %s: unknown constraint kind %q", rule.ClauseID, path, spec.Kind)
		}
	}

	if !node.IsObject() {
		return
	}
	for _, entry := range node.Entries {
		if entry.Value.IsObject() {
			p.walkTree(rule, entry.Value, fmt.Sprintf("%s.%s", path, entry.Key), depth+1, verr)
		}
	}
}

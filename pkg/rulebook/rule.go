package rulebook

// Rulebook is the root document: a versioned collection of expense rules.
type Rulebook struct {
	// Version is the rulebook document version (free-form, e.g. "2024.1").
	Version string

	// Rules contains all rules in document order.
	Rules []*Rule
}

// Rule represents one declarative policy unit (a clause). It bundles the
// required input fields and the constraint tree that governs them.
type Rule struct {
	// ClauseID is the unique identifier of this rule within the rulebook.
	ClauseID string

	// Category holds localized expense category labels keyed by language
	// code (e.g. "en", "ja").
	Category map[string]string

	// Fields lists the input fields this rule knows about, in authored
	// order. Fields marked Required participate in the presence check.
	Fields []*FieldSpec

	// Constraints is the nested validation-rule tree. It may be nil for
	// rules that only declare required fields.
	Constraints *Node

	// SourceFile is the path of the rulebook file this rule came from.
	SourceFile string
}

// Field returns the field spec with the given key, or nil if the rule does
// not declare it.
func (r *Rule) Field(key string) *FieldSpec {
	for _, f := range r.Fields {
		if f.Key == key {
			return f
		}
	}
	return nil
}

// RequiredFields returns the subset of fields marked required, preserving
// authored order.
func (r *Rule) RequiredFields() []*FieldSpec {
	var required []*FieldSpec
	for _, f := range r.Fields {
		if f.Required {
			required = append(required, f)
		}
	}
	return required
}

// CategoryLabel returns the category label for the given language, falling
// back to English and then to any available language.
func (r *Rule) CategoryLabel(lang string) string {
	if label, ok := r.Category[lang]; ok {
		return label
	}
	if label, ok := r.Category["en"]; ok {
		return label
	}
	for _, label := range r.Category {
		return label
	}
	return ""
}

// FindRule returns the rule with the given clause ID, or nil if the
// rulebook does not contain it.
func (b *Rulebook) FindRule(clauseID string) *Rule {
	for _, r := range b.Rules {
		if r.ClauseID == clauseID {
			return r
		}
	}
	return nil
}

// RuleCount returns the number of rules in the rulebook.
func (b *Rulebook) RuleCount() int {
	return len(b.Rules)
}

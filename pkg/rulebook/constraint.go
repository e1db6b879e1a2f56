package rulebook

// ConstraintKind identifies the kind of an explicit constraint node.
// The vocabulary is closed: the analyzer dispatches on these values and
// ignores anything else.
type ConstraintKind string

const (
	ConstraintRequired           ConstraintKind = "required"
	ConstraintFormat             ConstraintKind = "format"
	ConstraintRange              ConstraintKind = "range"
	ConstraintDateValidation     ConstraintKind = "date_validation"
	ConstraintBusinessRule       ConstraintKind = "business_rule"
	ConstraintFieldType          ConstraintKind = "field_type"
	ConstraintAmountConstraint   ConstraintKind = "amount_constraint"
	ConstraintAccommodationDates ConstraintKind = "accommodation_dates"
)

// KnownConstraintKinds lists every constraint kind the engine evaluates.
var KnownConstraintKinds = []ConstraintKind{
	ConstraintRequired,
	ConstraintFormat,
	ConstraintRange,
	ConstraintDateValidation,
	ConstraintBusinessRule,
	ConstraintFieldType,
	ConstraintAmountConstraint,
	ConstraintAccommodationDates,
}

// IsKnown returns true if the kind is part of the closed vocabulary.
func (k ConstraintKind) IsKnown() bool {
	for _, known := range KnownConstraintKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Container names trigger the specialized constraint processors instead of
// per-node dispatch.
const (
	ContainerAmountConstraints    = "amount_constraints"
	ContainerDynamicAmountFormula = "dynamic_amount_formula"
	ContainerFrequencyConstraints = "frequency_constraints"
	ContainerSpecialThresholds    = "special_thresholds"
)

// IsContainerKey returns true if the object key names a specialized
// constraint container.
func IsContainerKey(key string) bool {
	switch key {
	case ContainerAmountConstraints,
		ContainerDynamicAmountFormula,
		ContainerFrequencyConstraints,
		ContainerSpecialThresholds:
		return true
	default:
		return false
	}
}

// ConstraintSpec is the normalized view of an explicit constraint node:
// an object carrying a field name, a reason code, and a kind tag.
type ConstraintSpec struct {
	Kind       ConstraintKind
	FieldName  string
	ReasonCode string
	Params     *Node // the full node, for kind-specific parameters
}

// AsConstraint recognizes an explicit constraint node by structural shape.
// A node qualifies when it is an object with both "field_name" and
// "reason_code" string members. The kind tag defaults to "required" when
// absent, mirroring how rulebooks are authored.
func (n *Node) AsConstraint() (*ConstraintSpec, bool) {
	if !n.IsObject() {
		return nil, false
	}
	fieldName, ok := n.GetString("field_name")
	if !ok {
		return nil, false
	}
	reasonCode, ok := n.GetString("reason_code")
	if !ok {
		return nil, false
	}

	kind := ConstraintRequired
	if tag, ok := n.GetString("type"); ok && tag != "" {
		kind = ConstraintKind(tag)
	}

	return &ConstraintSpec{
		Kind:       kind,
		FieldName:  fieldName,
		ReasonCode: reasonCode,
		Params:     n,
	}, true
}

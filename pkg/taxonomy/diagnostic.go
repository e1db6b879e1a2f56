package taxonomy

// Diagnostic is the expanded, template-substituted presentation of one
// reason code in an evaluation result.
type Diagnostic struct {
	// Code is the reason code as emitted, including any field qualifier.
	Code string `json:"code"`

	// Label is the short human-readable name of the reason.
	Label string `json:"label"`

	// Description is the substituted description text.
	Description string `json:"description"`

	// Severity is the reason severity.
	Severity Severity `json:"severity"`

	// SuggestedFix is the substituted fix suggestion, empty when the
	// taxonomy does not define one.
	SuggestedFix string `json:"suggested_fix,omitempty"`

	// RequiredVariables lists the variables the templates reference.
	RequiredVariables []string `json:"required_variables,omitempty"`
}

// FieldInfo carries the resolved presentation of one missing field: the
// display name and the sentence explaining why the field is required.
type FieldInfo struct {
	DisplayName string
	Context     string
}

// genericFieldContext is used when no richer context is known for a
// field-qualified reason.
const genericFieldContext = "This field is required for proper expense validation and processing."

// Expand turns reason codes into diagnostics, substituting template
// variables. Codes absent from the taxonomy degrade to a generic fallback
// diagnostic; expansion never fails.
func (t *Taxonomy) Expand(codes []string, variables map[string]any) []Diagnostic {
	return t.ExpandWithFields(codes, variables, nil)
}

// ExpandWithFields is Expand with per-code field presentation: fields maps
// a full (qualified) reason code to the display name and context resolved
// for that field. Field-qualified codes without an entry fall back to the
// raw field key from the qualifier.
func (t *Taxonomy) ExpandWithFields(codes []string, variables map[string]any, fields map[string]FieldInfo) []Diagnostic {
	diagnostics := make([]Diagnostic, 0, len(codes))

	for _, code := range codes {
		vars := variables
		if field := QualifiedField(code); field != "" {
			info, ok := fields[code]
			if !ok {
				info = FieldInfo{DisplayName: field, Context: genericFieldContext}
			}
			vars = overlayFieldVariables(variables, info)
		}

		entry, ok := t.Lookup(code)
		if !ok {
			diagnostics = append(diagnostics, Diagnostic{Code: code, Severity: SeverityError})
			continue
		}

		diagnostics = append(diagnostics, Diagnostic{
			Code:              code,
			Label:             entry.Label,
			Description:       Substitute(entry.Description, vars),
			Severity:          entry.Severity,
			SuggestedFix:      Substitute(entry.SuggestedFix, vars),
			RequiredVariables: entry.Variables,
		})
	}

	return diagnostics
}

// overlayFieldVariables copies the variable bag and sets field_name and
// field_context for one field-qualified reason.
func overlayFieldVariables(variables map[string]any, info FieldInfo) map[string]any {
	vars := make(map[string]any, len(variables)+2)
	for k, v := range variables {
		vars[k] = v
	}
	vars["field_name"] = info.DisplayName
	if info.Context != "" {
		vars["field_context"] = info.Context
	} else {
		vars["field_context"] = genericFieldContext
	}
	return vars
}

// CountBySeverity returns the number of diagnostics at each severity.
func CountBySeverity(diagnostics []Diagnostic) (errors, warnings int) {
	for _, d := range diagnostics {
		switch d.Severity {
		case SeverityWarning:
			warnings++
		default:
			errors++
		}
	}
	return errors, warnings
}

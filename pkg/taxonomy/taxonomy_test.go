package taxonomy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDocument = `{
	"reason_taxonomy": {
		"missing_field": {
			"label": "Missing Field",
			"description": "{field_name} is required. {field_context}",
			"severity": "error",
			"suggested_fix": "Provide a value for {field_name}.",
			"variables": ["field_name", "field_context"]
		},
		"amount_exceeds_limit": {
			"label": "Amount Exceeds Limit",
			"description": "Amount {amount} exceeds the limit of {limit} {currency}.",
			"severity": "error",
			"variables": ["amount", "limit", "currency"]
		},
		"weekend_expense_restriction": {
			"label": "Weekend Expense",
			"description": "Expense was recognized on a weekend.",
			"severity": "warning"
		},
		"odd_severity": {
			"label": "Odd",
			"description": "Severity value is not recognized.",
			"severity": "critical"
		}
	}
}`

func TestParse(t *testing.T) {
	tax, err := Parse([]byte(sampleDocument), "reasons.json")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if tax.Len() != 4 {
		t.Errorf("Len() = %d, want 4", tax.Len())
	}

	entry, ok := tax.Lookup("missing_field")
	if !ok {
		t.Fatal("missing_field not found")
	}
	if entry.Label != "Missing Field" || entry.Severity != SeverityError {
		t.Errorf("entry = %+v", entry)
	}
	if len(entry.Variables) != 2 {
		t.Errorf("Variables = %v", entry.Variables)
	}

	// Field-qualified codes resolve through their base code.
	if !tax.Has("missing_field:receipt_images") {
		t.Error("qualified code did not resolve")
	}

	if tax.Severity("weekend_expense_restriction") != SeverityWarning {
		t.Error("warning severity not preserved")
	}

	// Unrecognized severities degrade to error.
	if tax.Severity("odd_severity") != SeverityError {
		t.Error("unknown severity did not default to error")
	}
	if tax.Severity("no_such_code") != SeverityError {
		t.Error("unknown code severity did not default to error")
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{not json`},
		{"empty taxonomy", `{"reason_taxonomy": {}}`},
		{"no taxonomy key", `{"reasons": {}}`},
		{"invalid utf8", "{\"reason_taxonomy\": {\"a\": {\"label\": \"\xff\xfe\"}}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data), "reasons.json"); err == nil {
				t.Error("Parse() succeeded, want error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reasons.json")
	if err := os.WriteFile(path, []byte(sampleDocument), 0o644); err != nil {
		t.Fatal(err)
	}

	tax, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tax.Len() != 4 {
		t.Errorf("Len() = %d", tax.Len())
	}

	_, err = Load(filepath.Join(dir, "missing.json"))
	if err == nil {
		t.Fatal("Load() succeeded for missing file")
	}
	if !strings.Contains(err.Error(), "file not found") {
		t.Errorf("error = %v", err)
	}
}

func TestExpandWithFields(t *testing.T) {
	tax, err := Parse([]byte(sampleDocument), "reasons.json")
	if err != nil {
		t.Fatal(err)
	}

	variables := map[string]any{
		"amount":   15000.0,
		"limit":    10000.0,
		"currency": "JPY",
	}
	fields := map[string]FieldInfo{
		"missing_field:receipt_images": {
			DisplayName: "Receipt Images",
			Context:     "Attach a photo of the receipt.",
		},
	}

	codes := []string{
		"missing_field:receipt_images",
		"missing_field:project_code",
		"amount_exceeds_limit",
		"totally_unknown",
	}
	diagnostics := tax.ExpandWithFields(codes, variables, fields)
	if len(diagnostics) != 4 {
		t.Fatalf("got %d diagnostics", len(diagnostics))
	}

	if got := diagnostics[0].Description; got != "Receipt Images is required. Attach a photo of the receipt." {
		t.Errorf("resolved field description = %q", got)
	}
	if got := diagnostics[0].SuggestedFix; got != "Provide a value for Receipt Images." {
		t.Errorf("suggested fix = %q", got)
	}

	// Unresolved qualified codes fall back to the raw field key and the
	// generic context sentence.
	if !strings.HasPrefix(diagnostics[1].Description, "project_code is required.") {
		t.Errorf("fallback field description = %q", diagnostics[1].Description)
	}

	if got := diagnostics[2].Description; got != "Amount 15000 exceeds the limit of 10000 JPY." {
		t.Errorf("amount description = %q", got)
	}

	// Unknown codes degrade to a bare diagnostic, never an error.
	if diagnostics[3].Code != "totally_unknown" || diagnostics[3].Severity != SeverityError || diagnostics[3].Label != "" {
		t.Errorf("unknown-code diagnostic = %+v", diagnostics[3])
	}
}

func TestCountBySeverity(t *testing.T) {
	diagnostics := []Diagnostic{
		{Code: "a", Severity: SeverityError},
		{Code: "b", Severity: SeverityWarning},
		{Code: "c", Severity: SeverityError},
		{Code: "d"},
	}
	errs, warns := CountBySeverity(diagnostics)
	if errs != 3 || warns != 1 {
		t.Errorf("CountBySeverity() = %d, %d, want 3, 1", errs, warns)
	}
}

package rulebook

import (
	"encoding/json"
	"testing"
)

func TestNodePreservesKeyOrder(t *testing.T) {
	// Keys deliberately out of lexical order.
	data := `{"zebra": 1, "apple": {"nested_b": true, "nested_a": false}, "mango": [1, 2]}`

	var node Node
	if err := json.Unmarshal([]byte(data), &node); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !node.IsObject() || len(node.Entries) != 3 {
		t.Fatalf("node = %+v", node)
	}
	wantKeys := []string{"zebra", "apple", "mango"}
	for i, want := range wantKeys {
		if node.Entries[i].Key != want {
			t.Errorf("Entries[%d].Key = %q, want %q", i, node.Entries[i].Key, want)
		}
	}

	nested := node.Get("apple")
	if nested.Entries[0].Key != "nested_b" || nested.Entries[1].Key != "nested_a" {
		t.Errorf("nested order lost: %+v", nested.Entries)
	}

	// Marshal round-trips in the same order.
	out, err := json.Marshal(&node)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"zebra":1,"apple":{"nested_b":true,"nested_a":false},"mango":[1,2]}`
	if string(out) != want {
		t.Errorf("Marshal() = %s, want %s", out, want)
	}
}

func TestNodeAccessors(t *testing.T) {
	var node Node
	data := `{
		"name": "meals",
		"limit": 5000,
		"strict": true,
		"missing_value": null,
		"codes": ["a", "b", 3]
	}`
	if err := json.Unmarshal([]byte(data), &node); err != nil {
		t.Fatal(err)
	}

	if s, ok := node.GetString("name"); !ok || s != "meals" {
		t.Errorf("GetString = %q, %v", s, ok)
	}
	if f, ok := node.GetNumber("limit"); !ok || f != 5000 {
		t.Errorf("GetNumber = %v, %v", f, ok)
	}
	if b, ok := node.GetBool("strict"); !ok || !b {
		t.Errorf("GetBool = %v, %v", b, ok)
	}
	if _, ok := node.GetString("limit"); ok {
		t.Error("GetString succeeded on a number")
	}
	if node.Get("nope") != nil {
		t.Error("Get returned non-nil for absent key")
	}

	// Non-string array elements are skipped.
	list := node.Get("codes").StringList()
	if len(list) != 2 || list[0] != "a" || list[1] != "b" {
		t.Errorf("StringList = %v", list)
	}

	// nil receivers are safe.
	var nilNode *Node
	if nilNode.IsObject() || nilNode.IsScalar() || nilNode.Get("x") != nil {
		t.Error("nil node accessors not safe")
	}
}

func TestNodeRejectsMalformedJSON(t *testing.T) {
	for _, data := range []string{`{`, `{"a": }`, `[1, 2`, `{"a": 1} trailing`} {
		var node Node
		if err := json.Unmarshal([]byte(data), &node); err == nil {
			t.Errorf("Unmarshal(%q) succeeded, want error", data)
		}
	}
}

func TestAsConstraint(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantOK   bool
		wantKind ConstraintKind
	}{
		{
			name:     "explicit kind",
			data:     `{"type": "date_validation", "field_name": "check_in_date", "reason_code": "invalid_date"}`,
			wantOK:   true,
			wantKind: ConstraintDateValidation,
		},
		{
			name:     "kind defaults to required",
			data:     `{"field_name": "amount", "reason_code": "missing_field"}`,
			wantOK:   true,
			wantKind: ConstraintRequired,
		},
		{
			name:     "unknown kind is still recognized",
			data:     `{"type": "graph_isomorphism", "field_name": "x", "reason_code": "y"}`,
			wantOK:   true,
			wantKind: ConstraintKind("graph_isomorphism"),
		},
		{
			name:   "missing reason_code",
			data:   `{"field_name": "amount"}`,
			wantOK: false,
		},
		{
			name:   "missing field_name",
			data:   `{"reason_code": "missing_field"}`,
			wantOK: false,
		},
		{
			name:   "scalar node",
			data:   `5000`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var node Node
			if err := json.Unmarshal([]byte(tt.data), &node); err != nil {
				t.Fatal(err)
			}
			spec, ok := node.AsConstraint()
			if ok != tt.wantOK {
				t.Fatalf("AsConstraint() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && spec.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", spec.Kind, tt.wantKind)
			}
		})
	}

	if IsContainerKey("amount_constraints") != true || IsContainerKey("validation_rules") != false {
		t.Error("IsContainerKey misclassifies keys")
	}
}

func TestFieldSpecDecode(t *testing.T) {
	var field FieldSpec
	data := `{
		"key": "receipt_images",
		"type": "string",
		"required": true,
		"label": {"en": "Receipt Images", "ja": "領収書画像"},
		"metadata": {"receipt_required": true}
	}`
	if err := json.Unmarshal([]byte(data), &field); err != nil {
		t.Fatal(err)
	}
	if field.DisplayName("ja") != "領収書画像" || field.DisplayName("en") != "Receipt Images" {
		t.Errorf("DisplayName = %q / %q", field.DisplayName("ja"), field.DisplayName("en"))
	}
	if !field.HasFlag("receipt_required") || field.HasFlag("approval_required") {
		t.Error("metadata flags wrong")
	}

	// Plain-string labels land under "en"; untyped fields default to string.
	var plain FieldSpec
	if err := json.Unmarshal([]byte(`{"key": "purpose", "label": "Purpose"}`), &plain); err != nil {
		t.Fatal(err)
	}
	if plain.Type != FieldTypeString || plain.DisplayName("en") != "Purpose" {
		t.Errorf("plain = %+v", plain)
	}

	// Display name falls back to description, then purpose, then key.
	fallback := FieldSpec{Key: "route", Purpose: "Travel route"}
	if fallback.DisplayName("en") != "Travel route" {
		t.Errorf("DisplayName fallback = %q", fallback.DisplayName("en"))
	}
	bare := FieldSpec{Key: "route"}
	if bare.DisplayName("en") != "route" {
		t.Errorf("DisplayName bare = %q", bare.DisplayName("en"))
	}
}

func TestRuleHelpers(t *testing.T) {
	rule := &Rule{
		ClauseID: "travel-001",
		Category: map[string]string{"ja": "出張"},
		Fields: []*FieldSpec{
			{Key: "amount", Required: true},
			{Key: "memo"},
			{Key: "destination", Required: true},
		},
	}

	if rule.Field("memo") == nil || rule.Field("nope") != nil {
		t.Error("Field lookup wrong")
	}

	required := rule.RequiredFields()
	if len(required) != 2 || required[0].Key != "amount" || required[1].Key != "destination" {
		t.Errorf("RequiredFields = %v", required)
	}

	// No English label: fall back to any available language.
	if rule.CategoryLabel("en") != "出張" {
		t.Errorf("CategoryLabel = %q", rule.CategoryLabel("en"))
	}

	book := &Rulebook{Rules: []*Rule{rule}}
	if book.FindRule("travel-001") != rule || book.FindRule("x") != nil {
		t.Error("FindRule wrong")
	}
	if book.RuleCount() != 1 {
		t.Error("RuleCount wrong")
	}
}

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestJSONFormatter(t *testing.T) {
	formatter := NewFormatter(FormatJSON)

	var buf bytes.Buffer
	if err := formatter.FormatTo(&buf, map[string]int{"rules": 3}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var decoded map[string]int
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["rules"] != 3 {
		t.Errorf("rules = %d, want 3", decoded["rules"])
	}
}

func TestTextFormatterIsDefault(t *testing.T) {
	formatter := NewFormatter(OutputFormat("yaml"))
	if _, ok := formatter.(*TextFormatter); !ok {
		t.Errorf("NewFormatter(unknown) = %T, want *TextFormatter", formatter)
	}

	var buf bytes.Buffer
	if err := formatter.FormatTo(&buf, "3 rules valid"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if !strings.Contains(buf.String(), "3 rules valid") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("rulebook.path", "file not found")
	if !strings.Contains(err.Error(), "rulebook.path") {
		t.Errorf("Error() = %q, want field name included", err.Error())
	}
}

func TestCommandErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := NewCommandError("validate", cause)
	if !errors.Is(err, cause) {
		t.Error("CommandError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "validate") {
		t.Errorf("Error() = %q", err.Error())
	}
}

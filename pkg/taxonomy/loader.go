package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"
)

// taxonomyJSON is the wire representation of the taxonomy document.
type taxonomyJSON struct {
	ReasonTaxonomy map[string]entryJSON `json:"reason_taxonomy"`
}

// entryJSON is the wire representation of one taxonomy entry.
type entryJSON struct {
	Label        string   `json:"label"`
	Description  string   `json:"description"`
	Severity     string   `json:"severity"`
	SuggestedFix string   `json:"suggested_fix"`
	Variables    []string `json:"variables"`
}

// LoadError indicates the taxonomy document could not be loaded. Taxonomy
// load failures are fatal at startup.
type LoadError struct {
	FilePath string
	Message  string
	Cause    error
}

// Error returns the error message.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("taxonomy %s: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("taxonomy %s: %s", e.FilePath, e.Message)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Load reads and parses a taxonomy JSON file.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{FilePath: path, Message: "file not found", Cause: err}
		}
		return nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}
	return Parse(data, path)
}

// Parse parses taxonomy bytes. The sourcePath is used only for error
// reporting.
func Parse(data []byte, sourcePath string) (*Taxonomy, error) {
	if !utf8.Valid(data) {
		return nil, &LoadError{FilePath: sourcePath, Message: "file contains invalid UTF-8 encoding"}
	}

	var doc taxonomyJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{FilePath: sourcePath, Message: "JSON parsing failed", Cause: err}
	}

	if len(doc.ReasonTaxonomy) == 0 {
		return nil, &LoadError{FilePath: sourcePath, Message: "document contains no reason_taxonomy entries"}
	}

	entries := make(map[string]Entry, len(doc.ReasonTaxonomy))
	for code, raw := range doc.ReasonTaxonomy {
		if code == "" {
			return nil, &LoadError{FilePath: sourcePath, Message: "empty reason code"}
		}

		severity := Severity(raw.Severity)
		if severity != SeverityError && severity != SeverityWarning {
			severity = SeverityError
		}

		entries[code] = Entry{
			Code:         code,
			Label:        raw.Label,
			Description:  raw.Description,
			Severity:     severity,
			SuggestedFix: raw.SuggestedFix,
			Variables:    raw.Variables,
		}
	}

	return &Taxonomy{entries: entries}, nil
}

// FromEntries builds a taxonomy from in-memory entries. Intended for
// tests and embedded defaults.
func FromEntries(entries []Entry) *Taxonomy {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.Severity != SeverityError && e.Severity != SeverityWarning {
			e.Severity = SeverityError
		}
		m[e.Code] = e
	}
	return &Taxonomy{entries: m}
}

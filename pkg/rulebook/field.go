package rulebook

import (
	"encoding/json"
	"fmt"
)

// FieldType represents the declared type of an input field.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeEnum    FieldType = "enum"
	FieldTypeDate    FieldType = "date"
	FieldTypeMoney   FieldType = "money"
	FieldTypeInteger FieldType = "integer"
)

// KnownFieldTypes lists all field types the parser accepts.
var KnownFieldTypes = []FieldType{
	FieldTypeString,
	FieldTypeEnum,
	FieldTypeDate,
	FieldTypeMoney,
	FieldTypeInteger,
}

// IsKnown returns true if the field type is one of the closed set.
func (t FieldType) IsKnown() bool {
	for _, known := range KnownFieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// FieldSpec describes one input field a rule expects.
type FieldSpec struct {
	// Key is the submitted-value key (e.g. "amount", "receipt_images").
	Key string

	// Type is the declared field type. Defaults to string.
	Type FieldType

	// Required marks the field as mandatory for submissions.
	Required bool

	// AllowedValues restricts enum fields to a closed value set.
	AllowedValues []string

	// Label holds the localized display name, keyed by language code.
	// Rulebooks may author it as a plain string, in which case it is
	// stored under the "en" key.
	Label map[string]string

	// Description is a free-form field description.
	Description string

	// Purpose explains what the field is collected for.
	Purpose string

	// Metadata carries boolean requirement flags (receipt_required,
	// approval_required, ...) used to derive missing-field reason codes.
	Metadata map[string]bool
}

// DisplayName resolves a human-readable name for the field: localized
// label first (preferring the given language, then English, then any),
// then description, then purpose, then the raw key.
func (f *FieldSpec) DisplayName(lang string) string {
	if len(f.Label) > 0 {
		if label, ok := f.Label[lang]; ok && label != "" {
			return label
		}
		if label, ok := f.Label["en"]; ok && label != "" {
			return label
		}
		for _, label := range f.Label {
			if label != "" {
				return label
			}
		}
	}
	if f.Description != "" {
		return f.Description
	}
	if f.Purpose != "" {
		return f.Purpose
	}
	return f.Key
}

// HasFlag returns true if the metadata flag with the given name is set.
func (f *FieldSpec) HasFlag(name string) bool {
	return f.Metadata[name]
}

// fieldSpecJSON is the wire representation of a field spec.
type fieldSpecJSON struct {
	Key           string          `json:"key"`
	Type          string          `json:"type"`
	Required      bool            `json:"required"`
	AllowedValues []string        `json:"allowed_values"`
	Label         json.RawMessage `json:"label"`
	Description   string          `json:"description"`
	Purpose       string          `json:"purpose"`
	Metadata      map[string]bool `json:"metadata"`
}

// UnmarshalJSON decodes a field spec, accepting both string and localized
// object forms for the label.
func (f *FieldSpec) UnmarshalJSON(data []byte) error {
	var raw fieldSpecJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	f.Key = raw.Key
	f.Type = FieldType(raw.Type)
	if f.Type == "" {
		f.Type = FieldTypeString
	}
	f.Required = raw.Required
	f.AllowedValues = raw.AllowedValues
	f.Description = raw.Description
	f.Purpose = raw.Purpose
	f.Metadata = raw.Metadata

	if len(raw.Label) > 0 {
		label, err := decodeLabel(raw.Label)
		if err != nil {
			return fmt.Errorf("field %q: %w", raw.Key, err)
		}
		f.Label = label
	}

	return nil
}

// decodeLabel decodes a label that is either a plain string or an object
// of language code to text.
func decodeLabel(data json.RawMessage) (map[string]string, error) {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		if asString == "" {
			return nil, nil
		}
		return map[string]string{"en": asString}, nil
	}

	var asMap map[string]string
	if err := json.Unmarshal(data, &asMap); err != nil {
		return nil, fmt.Errorf("label must be a string or an object of language to text: %w", err)
	}
	return asMap, nil
}

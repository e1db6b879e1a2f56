package parser

import (
	"encoding/json"
	"os"
	"unicode/utf8"

	"mercator-hq/ruler/pkg/rulebook"
)

// Parser loads rulebook documents from JSON.
type Parser struct {
	config *Config
}

// Config contains parser limits.
type Config struct {
	// MaxFileSize is the maximum rulebook file size in bytes.
	MaxFileSize int64

	// MaxTreeDepth is the maximum nesting depth accepted for constraint
	// trees. Deeper trees fail validation.
	MaxTreeDepth int
}

// DefaultConfig returns the default parser configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxFileSize:  10 * 1024 * 1024, // 10 MB
		MaxTreeDepth: 32,
	}
}

// New creates a parser with the given configuration. A nil configuration
// uses defaults.
func New(config *Config) *Parser {
	if config == nil {
		config = DefaultConfig()
	}
	return &Parser{config: config}
}

// rulebookJSON is the wire representation of a rulebook document.
type rulebookJSON struct {
	Version string      `json:"version"`
	Rules   []*ruleJSON `json:"rules"`
}

// ruleJSON is the wire representation of a single rule.
type ruleJSON struct {
	ClauseID        string            `json:"clause_id"`
	ExpenseCategory map[string]string `json:"expense_category"`
	RequiredFields  struct {
		Inputs []*rulebook.FieldSpec `json:"inputs"`
	} `json:"required_fields"`
	ValidationRules *rulebook.Node `json:"validation_rules"`
}

// ParseFile loads, parses, and validates a rulebook file.
func (p *Parser) ParseFile(path string) (*rulebook.Rulebook, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{FilePath: path, Message: "file not found", Cause: err}
		}
		return nil, &LoadError{FilePath: path, Message: "failed to access file", Cause: err}
	}

	if !info.Mode().IsRegular() {
		return nil, &LoadError{FilePath: path, Message: "not a regular file"}
	}

	if info.Size() > p.config.MaxFileSize {
		return nil, &LoadError{FilePath: path, Message: "file exceeds maximum size"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}

	return p.Parse(data, path)
}

// Parse parses and validates rulebook bytes. The sourcePath is used only
// for error reporting.
func (p *Parser) Parse(data []byte, sourcePath string) (*rulebook.Rulebook, error) {
	if !utf8.Valid(data) {
		return nil, &LoadError{FilePath: sourcePath, Message: "file contains invalid UTF-8 encoding"}
	}

	var doc rulebookJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{FilePath: sourcePath, Message: "JSON parsing failed", Cause: err}
	}

	book := &rulebook.Rulebook{Version: doc.Version}
	for _, raw := range doc.Rules {
		if raw == nil {
			continue
		}
		book.Rules = append(book.Rules, &rulebook.Rule{
			ClauseID:    raw.ClauseID,
			Category:    raw.ExpenseCategory,
			Fields:      raw.RequiredFields.Inputs,
			Constraints: raw.ValidationRules,
			SourceFile:  sourcePath,
		})
	}

	if err := p.validate(book, sourcePath); err != nil {
		return nil, err
	}

	return book, nil
}

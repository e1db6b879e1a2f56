package parser

import (
	"fmt"
	"strings"
)

// LoadError indicates a rulebook file could not be read.
type LoadError struct {
	FilePath string
	Message  string
	Cause    error
}

// Error returns the error message.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rulebook %s: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("rulebook %s: %s", e.FilePath, e.Message)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ParseError indicates a rulebook document is not valid JSON or does not
// match the expected document shape.
type ParseError struct {
	FilePath string
	Message  string
	Cause    error
}

// Error returns the error message.
func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rulebook %s: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("rulebook %s: %s", e.FilePath, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError indicates a structurally invalid rulebook. It collects
// every problem found so a single load reports the full picture.
type ValidationError struct {
	FilePath string
	Problems []string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("rulebook %s: validation error: %s", e.FilePath, e.Problems[0])
	}
	return fmt.Sprintf("rulebook %s: %d validation errors:\n  - %s",
		e.FilePath, len(e.Problems), strings.Join(e.Problems, "\n  - "))
}

// Add records a validation problem.
func (e *ValidationError) Add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// HasProblems returns true if any validation problem was recorded.
func (e *ValidationError) HasProblems() bool {
	return len(e.Problems) > 0
}

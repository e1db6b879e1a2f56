// Package config defines the ruler service configuration: YAML loading,
// defaults, validation, and RULER_* environment variable overrides.
//
// The loading sequence is:
//  1. Parse YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate the final configuration
package config

// Package parser loads and validates expense rulebook documents.
//
// Rulebooks are JSON files. Parsing happens in two stages: decoding into
// the rulebook data model (with the constraint tree kept in authored
// order), then structural validation of the result. Validation failures
// are fatal at load time and carry the file path, clause ID, and tree path
// of every problem so operators can fix the document; nothing from this
// package surfaces as an evaluation result.
package parser

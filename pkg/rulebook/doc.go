// Package rulebook defines the data model for expense rulebooks.
//
// A rulebook is a JSON document containing declarative rules (clauses).
// Each rule bundles an identifier, the set of input fields it expects, and
// a nested tree of validation constraints. Rules are parsed once at load
// time and treated as immutable for the lifetime of the process; all
// per-evaluation state lives in the engine package.
//
// The constraint tree is represented by Node, an order-preserving JSON
// tree. Standard map decoding would lose the authored key order, which the
// evaluation engine relies on for reproducible reason ordering, so Node
// implements its own decoder on top of json.Decoder tokens.
package rulebook

package rulebook

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NodeKind identifies the JSON shape of a constraint-tree node.
type NodeKind int

const (
	KindNull NodeKind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindBool
)

// String returns the kind name for error messages.
func (k NodeKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one node of the constraint tree. Objects keep their entries in
// authored order, which makes tree traversal deterministic across runs.
type Node struct {
	Kind    NodeKind
	Entries []Entry // object members, in authored order
	Items   []*Node // array elements
	Str     string  // string value
	Num     float64 // number value
	Bool    bool    // boolean value
}

// Entry is a single key/value member of an object node.
type Entry struct {
	Key   string
	Value *Node
}

// IsObject returns true if the node is a JSON object.
func (n *Node) IsObject() bool { return n != nil && n.Kind == KindObject }

// IsScalar returns true if the node is a string, number, bool, or null.
func (n *Node) IsScalar() bool {
	return n != nil && (n.Kind == KindString || n.Kind == KindNumber || n.Kind == KindBool || n.Kind == KindNull)
}

// Get returns the value for the given object key, or nil if the node is
// not an object or the key is absent.
func (n *Node) Get(key string) *Node {
	if !n.IsObject() {
		return nil
	}
	for _, e := range n.Entries {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// GetString returns the string value for the given object key.
func (n *Node) GetString(key string) (string, bool) {
	v := n.Get(key)
	if v == nil || v.Kind != KindString {
		return "", false
	}
	return v.Str, true
}

// GetNumber returns the numeric value for the given object key.
func (n *Node) GetNumber(key string) (float64, bool) {
	v := n.Get(key)
	if v == nil || v.Kind != KindNumber {
		return 0, false
	}
	return v.Num, true
}

// GetBool returns the boolean value for the given object key.
func (n *Node) GetBool(key string) (bool, bool) {
	v := n.Get(key)
	if v == nil || v.Kind != KindBool {
		return false, false
	}
	return v.Bool, true
}

// StringList returns the node's array elements as strings, skipping
// non-string elements.
func (n *Node) StringList() []string {
	if n == nil || n.Kind != KindArray {
		return nil
	}
	var out []string
	for _, item := range n.Items {
		if item.Kind == KindString {
			out = append(out, item.Str)
		}
	}
	return out
}

// Interface converts the node to plain Go values (map[string]any loses
// ordering; this is only for template variables and API responses).
func (n *Node) Interface() any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindNull:
		return nil
	case KindString:
		return n.Str
	case KindNumber:
		return n.Num
	case KindBool:
		return n.Bool
	case KindArray:
		out := make([]any, 0, len(n.Items))
		for _, item := range n.Items {
			out = append(out, item.Interface())
		}
		return out
	case KindObject:
		out := make(map[string]any, len(n.Entries))
		for _, e := range n.Entries {
			out[e.Key] = e.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// UnmarshalJSON decodes the node from JSON, preserving object key order.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	decoded, err := decodeNode(dec)
	if err != nil {
		return err
	}

	// Reject trailing content after the value.
	if dec.More() {
		return fmt.Errorf("unexpected trailing content after JSON value")
	}

	*n = *decoded
	return nil
}

// decodeNode reads one complete JSON value from the decoder token stream.
func decodeNode(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

// decodeToken turns the current token (plus any nested content) into a Node.
func decodeToken(dec *json.Decoder, tok json.Token) (*Node, error) {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", v)
		}
	case string:
		return &Node{Kind: KindString, Str: v}, nil
	case json.Number:
		num, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", v.String(), err)
		}
		return &Node{Kind: KindNumber, Num: num}, nil
	case bool:
		return &Node{Kind: KindBool, Bool: v}, nil
	case nil:
		return &Node{Kind: KindNull}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v (%T)", tok, tok)
	}
}

// decodeObject reads object members until the closing brace, keeping the
// authored member order.
func decodeObject(dec *json.Decoder) (*Node, error) {
	node := &Node{Kind: KindObject}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}

		value, err := decodeNode(dec)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}

		node.Entries = append(node.Entries, Entry{Key: key, Value: value})
	}

	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return node, nil
}

// decodeArray reads array elements until the closing bracket.
func decodeArray(dec *json.Decoder) (*Node, error) {
	node := &Node{Kind: KindArray}

	for dec.More() {
		item, err := decodeNode(dec)
		if err != nil {
			return nil, err
		}
		node.Items = append(node.Items, item)
	}

	// Consume the closing ']'.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return node, nil
}

// MarshalJSON encodes the node back to JSON, preserving object key order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeNode(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeNode(buf *bytes.Buffer, n *Node) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		data, err := json.Marshal(n.Str)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindNumber:
		data, err := json.Marshal(n.Num)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindBool:
		data, err := json.Marshal(n.Bool)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeNode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, e := range n.Entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(e.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := encodeNode(buf, e.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("cannot encode node of kind %s", n.Kind)
	}
	return nil
}

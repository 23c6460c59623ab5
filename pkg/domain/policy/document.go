package policy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Document is a complete managed-policy object, keyed by policy name.
type Document map[string]Value

// Keys returns the policy names in sorted order.
func (d Document) Keys() []string {
	return slices.Sorted(maps.Keys(d))
}

// Clone returns a shallow copy; Values are immutable so this is sufficient.
func (d Document) Clone() Document {
	return maps.Clone(d)
}

// Equal reports whether both documents hold the same key/value pairs.
func (d Document) Equal(o Document) bool {
	return maps.EqualFunc(d, o, Value.Equal)
}

// Merge copies every entry of src into d, overwriting existing keys.
func (d Document) Merge(src map[string]Value) {
	for k, v := range src {
		d[k] = v
	}
}

// Encode serializes the document with two-space indentation and a trailing
// newline. Keys are emitted in sorted order.
func (d Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]Value(d)); err != nil {
		return nil, fmt.Errorf("encode policy document: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeDocument converts a decoded JSON object into a Document.
func DecodeDocument(raw map[string]any) (Document, error) {
	doc := make(Document, len(raw))
	for key, item := range raw {
		v, err := FromJSON(item)
		if err != nil {
			return nil, fmt.Errorf("policy %q: %w", key, err)
		}
		doc[key] = v
	}
	return doc, nil
}

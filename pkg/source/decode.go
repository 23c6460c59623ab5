// Package source loads policy documents from files and URLs.
//
// Input may be plain JSON or JSON with comments and trailing commas (JSONC /
// JSON5). Every document is checked against the schema table's JSON Schema
// before it is converted into a policy.Document.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
	"github.com/xeipuuv/gojsonschema"
	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
)

var (
	ErrNotObject = errors.New("policy document must be a JSON object")
	ErrSyntax    = errors.New("invalid JSON")
)

var documentSchema = gojsonschema.NewBytesLoader([]byte(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object"
}`))

// Decode parses JSON or JSONC into a Document. Only the document shape is
// checked here; per-key types are left to policy.Validate so that the first
// mismatch is reported in the usual way.
func Decode(data []byte) (policy.Document, error) {
	raw, plain, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	result, err := gojsonschema.Validate(documentSchema, gojsonschema.NewBytesLoader(plain))
	if err != nil {
		return nil, fmt.Errorf("schema check: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrNotObject, strings.Join(msgs, "; "))
	}

	obj, _ := raw.(map[string]any)
	return policy.DecodeDocument(obj)
}

// LoadFile reads and decodes a local policy file.
func LoadFile(path string) (policy.Document, error) {
	// #nosec G304 -- path is supplied by the operator on the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// SchemaCheck validates an encoded document against the full schema table
// and returns one message per violation. It is used by doctor and watch to
// describe every problem in an existing file at once.
func SchemaCheck(data []byte) ([]string, error) {
	_, plain, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(policy.JSONSchema()),
		gojsonschema.NewBytesLoader(plain),
	)
	if err != nil {
		return nil, fmt.Errorf("schema check: %w", err)
	}
	var issues []string
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return issues, nil
}

// decodeRaw parses JSONC keeping number literals exact, and returns the
// decoded tree together with its plain JSON encoding for gojsonschema.
// Numbers come back as json.Number.
func decodeRaw(data []byte) (any, []byte, error) {
	// Unmarshal rejects trailing data; the stream decoder does not.
	var syntaxOnly any
	if err := json5.Unmarshal(data, &syntaxOnly); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	dec := json5.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	raw, err := normalizeNumbers(raw)
	if err != nil {
		return nil, nil, err
	}

	plain, err := json.Marshal(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return raw, plain, nil
}

// normalizeNumbers rewrites json5 number literals as canonical json.Number
// text. Integers keep every digit.
func normalizeNumbers(v any) (any, error) {
	switch t := v.(type) {
	case json5.Number:
		return toJSONNumber(string(t))
	case map[string]any:
		for k, item := range t {
			n, err := normalizeNumbers(item)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case []any:
		for i, item := range t {
			n, err := normalizeNumbers(item)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	default:
		return v, nil
	}
}

func toJSONNumber(lit string) (json.Number, error) {
	n, err := strconv.ParseInt(lit, 10, 64)
	if err == nil {
		return json.Number(strconv.FormatInt(n, 10)), nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return "", &policy.UnsupportedValueError{Got: "number (out of range)"}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return "", fmt.Errorf("%w: number %s", ErrSyntax, lit)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", fmt.Errorf("%w: number %s is not finite", ErrSyntax, lit)
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

package policy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// Kind is the type tag of a policy value.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindString
	KindStringList
)

// String returns the name used in validation messages and the JSON schema.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindString:
		return "string"
	case KindStringList:
		return "list of strings"
	default:
		return "invalid"
	}
}

// Value is a single policy value: a boolean, an integer, a string or a list
// of strings. The zero Value is invalid.
type Value struct {
	kind Kind
	b    bool
	i    int64
	s    string
	list []string
}

func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

func Int(v int64) Value { return Value{kind: KindInt, i: v} }

func String(v string) Value { return Value{kind: KindString, s: v} }

// StringList copies items so the caller's slice can be reused.
func StringList(items ...string) Value {
	return Value{kind: KindStringList, list: slices.Clone(items)}
}

// Kind reports the type tag.
func (v Value) Kind() Kind { return v.kind }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

func (v Value) AsStringList() ([]string, bool) {
	return slices.Clone(v.list), v.kind == KindStringList
}

// Equal compares tag and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindString:
		return v.s == o.s
	case KindStringList:
		return slices.Equal(v.list, o.list)
	default:
		return true
	}
}

// Interface returns the plain Go representation used for JSON encoding.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindString:
		return v.s
	case KindStringList:
		if v.list == nil {
			return []string{}
		}
		return v.list
	default:
		return nil
	}
}

func (v Value) GoString() string {
	return fmt.Sprintf("policy.Value{%s: %v}", v.kind, v.Interface())
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindInvalid {
		return nil, fmt.Errorf("cannot marshal invalid policy value")
	}
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromJSON(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// UnsupportedValueError reports a decoded JSON value that has no Kind.
type UnsupportedValueError struct {
	Got string
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("unsupported policy value of type %s", e.Got)
}

// maxExactFloatInt is the largest magnitude below which every integer has an
// exact float64 representation.
const maxExactFloatInt = 1 << 53

// intFromFloat accepts integral floats that convert to int64 without loss.
func intFromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return Value{}, &UnsupportedValueError{Got: "number (non-integer)"}
	}
	if math.Abs(f) >= maxExactFloatInt {
		return Value{}, &UnsupportedValueError{Got: "number (out of range)"}
	}
	return Int(int64(f)), nil
}

// FromJSON converts a value produced by a JSON decoder into a Value.
// Numbers are accepted as float64, int64, int or json.Number and must be
// integral.
func FromJSON(raw any) (Value, error) {
	switch t := raw.(type) {
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float64:
		return intFromFloat(t)
	case json.Number:
		if n, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return Int(n), nil
		} else if errors.Is(err, strconv.ErrRange) {
			return Value{}, &UnsupportedValueError{Got: "number (out of range)"}
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, &UnsupportedValueError{Got: "number (non-integer)"}
		}
		return intFromFloat(f)
	case []string:
		return StringList(t...), nil
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return Value{}, &UnsupportedValueError{Got: "list (non-string items)"}
			}
			items = append(items, s)
		}
		return StringList(items...), nil
	case nil:
		return Value{}, &UnsupportedValueError{Got: "null"}
	case map[string]any:
		return Value{}, &UnsupportedValueError{Got: "object"}
	default:
		return Value{}, &UnsupportedValueError{Got: fmt.Sprintf("%T", raw)}
	}
}

package policy_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
)

func allSubsets() []policy.Selection {
	ids := policy.CategoryIDs()
	var out []policy.Selection
	for mask := 0; mask < 1<<len(ids); mask++ {
		var enabled []policy.CategoryID
		for i, id := range ids {
			if mask&(1<<i) != 0 {
				enabled = append(enabled, id)
			}
		}
		sel, err := policy.NewSelection(enabled...)
		if err != nil {
			panic(err)
		}
		out = append(out, sel)
	}
	return out
}

func TestBuild_AlwaysValid(t *testing.T) {
	for _, sel := range allSubsets() {
		doc := policy.Build(sel)
		if err := policy.Validate(doc); err != nil {
			t.Fatalf("Build(%v) failed validation: %v", sel.IDs(), err)
		}
	}
}

// passthroughKeys are category keys intentionally absent from the schema
// table.
var passthroughKeys = map[string]bool{"BraveVPNDisabled": true}

func TestCategoryKeysAreDeclared(t *testing.T) {
	for _, c := range policy.Categories() {
		for key, v := range c.Policies {
			kind, ok := policy.ExpectedKind(key)
			if !ok {
				if !passthroughKeys[key] {
					t.Errorf("category %s: key %s missing from schema", c.ID, key)
				}
				continue
			}
			if kind != v.Kind() {
				t.Errorf("category %s: key %s is %s, schema says %s", c.ID, key, v.Kind(), kind)
			}
		}
	}
	for key := range policy.BasePolicies() {
		if _, ok := policy.ExpectedKind(key); !ok {
			t.Errorf("base key %s missing from schema", key)
		}
	}
}

func TestValidate_BraveVPNDisabledAcceptsIntegerAndBool(t *testing.T) {
	for _, v := range []policy.Value{policy.Int(1), policy.Bool(true)} {
		if err := policy.Validate(policy.Document{"BraveVPNDisabled": v}); err != nil {
			t.Errorf("BraveVPNDisabled=%v rejected: %v", v, err)
		}
	}
}

func TestBuild_EmptySelection(t *testing.T) {
	doc := policy.Build(policy.Selection{})
	if !doc.Equal(policy.BasePolicies()) {
		t.Fatalf("expected only base policies, got %v", doc.Keys())
	}
	for _, c := range policy.Categories() {
		for key := range c.Policies {
			if _, ok := doc[key]; ok {
				t.Errorf("unexpected category key %s in empty build", key)
			}
		}
	}
}

func TestBuild_DisjointUnion(t *testing.T) {
	ai, _ := policy.NewSelection(policy.CategoryAI)
	priv, _ := policy.NewSelection(policy.CategoryPrivacy)
	both, _ := policy.NewSelection(policy.CategoryAI, policy.CategoryPrivacy)

	merged := policy.Build(ai)
	merged.Merge(policy.Build(priv))

	if !merged.Equal(policy.Build(both)) {
		t.Fatal("build({AI}) merged with build({Privacy}) should equal build({AI, Privacy})")
	}
}

func TestBuild_DoesNotAliasCategoryData(t *testing.T) {
	sel, _ := policy.NewSelection(policy.CategoryTelemetry)
	doc := policy.Build(sel)
	doc["MetricsReportingEnabled"] = policy.Bool(true)

	again := policy.Build(sel)
	if v, _ := again["MetricsReportingEnabled"].AsBool(); v {
		t.Fatal("mutating a built document changed category data")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     policy.Document
		wantErr bool
		wantKey string
	}{
		{
			name: "valid",
			doc: policy.Document{
				"BraveAIChatEnabled":      policy.Bool(false),
				"MetricsReportingEnabled": policy.Bool(false),
			},
		},
		{
			name:    "string where boolean expected",
			doc:     policy.Document{"MetricsReportingEnabled": policy.String("false")},
			wantErr: true,
			wantKey: "MetricsReportingEnabled",
		},
		{
			name: "undeclared key passes through",
			doc:  policy.Document{"SomeFutureKey": policy.Int(42)},
		},
		{
			name:    "list expected",
			doc:     policy.Document{"CookiesSessionOnlyForUrls": policy.String("https://example.com")},
			wantErr: true,
			wantKey: "CookiesSessionOnlyForUrls",
		},
		{
			name: "first mismatch in key order",
			doc: policy.Document{
				"SyncDisabled":     policy.Int(1),
				"BrowserSignin":    policy.Bool(false),
				"WebRtcIPHandling": policy.String("default"),
			},
			wantErr: true,
			wantKey: "BrowserSignin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Validate(tt.doc)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, policy.ErrTypeMismatch) {
				t.Fatalf("expected ErrTypeMismatch, got %v", err)
			}
			var mismatch *policy.TypeMismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("expected *TypeMismatchError, got %T", err)
			}
			if mismatch.Key != tt.wantKey {
				t.Fatalf("expected key %s, got %s", tt.wantKey, mismatch.Key)
			}
		})
	}
}

func TestTypeMismatchError_Message(t *testing.T) {
	err := &policy.TypeMismatchError{Key: "SyncDisabled", Expected: policy.KindBool, Actual: policy.KindString}
	want := `policy "SyncDisabled" should be boolean, got string`
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestAdvisories(t *testing.T) {
	doc := policy.Document{"ComponentUpdatesEnabled": policy.Bool(false)}
	if got := policy.Advisories(doc); len(got) != 1 {
		t.Fatalf("expected 1 advisory, got %v", got)
	}
	if got := policy.Advisories(policy.Build(policy.SelectionFor(policy.Profiles()[0]))); len(got) != 0 {
		t.Fatalf("strict profile should raise no advisories, got %v", got)
	}
}

func TestUndeclaredKeys(t *testing.T) {
	doc := policy.Document{
		"ZetaKey":      policy.Bool(true),
		"AlphaKey":     policy.Int(1),
		"SyncDisabled": policy.Bool(true),
	}
	got := policy.UndeclaredKeys(doc)
	if len(got) != 2 || got[0] != "AlphaKey" || got[1] != "ZetaKey" {
		t.Fatalf("unexpected undeclared keys: %v", got)
	}
}

func TestDocument_RoundTrip(t *testing.T) {
	doc := policy.Build(policy.SelectionFor(policy.Profiles()[0]))
	doc["CookiesSessionOnlyForUrls"] = policy.StringList("https://a.example", "https://b.example")
	doc["DiskCacheSize"] = policy.Int(math.MaxInt64)
	doc["ExampleNegative"] = policy.Int(-(1<<53 + 1))

	data, err := doc.Encode()
	if err != nil {
		t.Fatal(err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		t.Fatalf("encoded document is not JSON: %v", err)
	}
	back, err := policy.DecodeDocument(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(doc) {
		t.Fatal("round-trip changed the document")
	}
}

func TestValue_UnmarshalKeepsLargeIntegers(t *testing.T) {
	var v policy.Value
	if err := json.Unmarshal([]byte("9007199254740993"), &v); err != nil {
		t.Fatal(err)
	}
	if !v.Equal(policy.Int(9007199254740993)) {
		t.Fatalf("got %v", v)
	}
}

func TestDocument_EncodeIndent(t *testing.T) {
	doc := policy.Document{"SyncDisabled": policy.Bool(true)}
	data, err := doc.Encode()
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"SyncDisabled\": true\n}\n"
	if string(data) != want {
		t.Fatalf("got %q, want %q", data, want)
	}
}

func TestFromJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    policy.Kind
		wantErr bool
	}{
		{"bool", true, policy.KindBool, false},
		{"integral float", float64(2), policy.KindInt, false},
		{"json number", json.Number("7"), policy.KindInt, false},
		{"json number max int64", json.Number("9223372036854775807"), policy.KindInt, false},
		{"json number exponent", json.Number("1e3"), policy.KindInt, false},
		{"json number overflow", json.Number("9223372036854775808"), policy.KindInvalid, true},
		{"json number fraction", json.Number("2.5"), policy.KindInvalid, true},
		{"float beyond exact range", float64(1 << 53), policy.KindInvalid, true},
		{"float max int64", float64(math.MaxInt64), policy.KindInvalid, true},
		{"string", "x", policy.KindString, false},
		{"string list", []any{"a", "b"}, policy.KindStringList, false},
		{"empty list", []any{}, policy.KindStringList, false},
		{"fraction", 1.5, policy.KindInvalid, true},
		{"mixed list", []any{"a", 1.0}, policy.KindInvalid, true},
		{"object", map[string]any{}, policy.KindInvalid, true},
		{"null", nil, policy.KindInvalid, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := policy.FromJSON(tt.in)
			if tt.wantErr {
				var unsupported *policy.UnsupportedValueError
				if !errors.As(err, &unsupported) {
					t.Fatalf("expected UnsupportedValueError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.Kind() != tt.want {
				t.Fatalf("got kind %s, want %s", v.Kind(), tt.want)
			}
		})
	}
}

func TestJSONSchema(t *testing.T) {
	var parsed struct {
		Type       string                    `json:"type"`
		Properties map[string]map[string]any `json:"properties"`
	}
	if err := json.Unmarshal(policy.JSONSchema(), &parsed); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if parsed.Type != "object" {
		t.Fatalf("expected object schema, got %s", parsed.Type)
	}
	if got := parsed.Properties["BrowserSignin"]["type"]; got != "integer" {
		t.Fatalf("BrowserSignin type = %v", got)
	}
	if len(parsed.Properties) != len(policy.SchemaKeys()) {
		t.Fatalf("schema has %d properties, table has %d", len(parsed.Properties), len(policy.SchemaKeys()))
	}
}

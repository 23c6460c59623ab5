package source

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
)

const jsoncDoc = `// ZeroBrave policies
{
  /* telemetry */
  "MetricsReportingEnabled": false,
  "HomepageLocation": "https://example.com//not-a-comment",
  "BrowserSignin": 0,
  "CookiesSessionOnlyForUrls": ["https://a.example"],
}`

func TestDecode_JSONC(t *testing.T) {
	doc, err := Decode([]byte(jsoncDoc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc) != 4 {
		t.Fatalf("expected 4 policies, got %d", len(doc))
	}
	if v, ok := doc["HomepageLocation"].AsString(); !ok || !strings.Contains(v, "//not-a-comment") {
		t.Fatalf("string containing // was altered: %q", v)
	}
	if doc["BrowserSignin"].Kind() != policy.KindInt {
		t.Fatalf("BrowserSignin should decode as integer, got %s", doc["BrowserSignin"].Kind())
	}
	if err := policy.Validate(doc); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"array", `["a"]`, ErrNotObject},
		{"string", `"policies"`, ErrNotObject},
		{"broken", `{"a": `, ErrSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.in))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDecode_UnsupportedValue(t *testing.T) {
	_, err := Decode([]byte(`{"ExtensionSettings": {"*": {}}}`))
	var unsupported *policy.UnsupportedValueError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedValueError, got %v", err)
	}
}

func TestDecode_KeepsWrongTypesForValidator(t *testing.T) {
	doc, err := Decode([]byte(`{"MetricsReportingEnabled": "false"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !errors.Is(policy.Validate(doc), policy.ErrTypeMismatch) {
		t.Fatal("expected the validator to reject the string value")
	}
}

func TestDecode_LargeIntegers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
	}{
		{"beyond float precision", `{"DiskCacheSize": 9007199254740993}`, 9007199254740993},
		{"max int64", `{"DiskCacheSize": 9223372036854775807}`, math.MaxInt64},
		{"min int64", `{"DiskCacheSize": -9223372036854775808}`, math.MinInt64},
		{"exponent", `{"DiskCacheSize": 1e3}`, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte(tt.in))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got, ok := doc["DiskCacheSize"].AsInt(); !ok || got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecode_RejectsUnrepresentableIntegers(t *testing.T) {
	for _, in := range []string{
		`{"DiskCacheSize": 9223372036854775808}`,
		`{"DiskCacheSize": 1e20}`,
	} {
		_, err := Decode([]byte(in))
		var unsupported *policy.UnsupportedValueError
		if !errors.As(err, &unsupported) {
			t.Errorf("%s: expected UnsupportedValueError, got %v", in, err)
		}
	}
}

func TestDecode_EncodedDocumentRoundTrips(t *testing.T) {
	doc := policy.Document{
		"DiskCacheSize":    policy.Int(math.MaxInt64),
		"BrowserSignin":    policy.Int(9007199254740993),
		"SyncDisabled":     policy.Bool(true),
		"HomepageLocation": policy.String("https://example.com"),
	}
	data, err := doc.Encode()
	if err != nil {
		t.Fatal(err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !back.Equal(doc) {
		t.Fatalf("round-trip changed the document:\n%s", data)
	}
}

func TestDecode_TrailingData(t *testing.T) {
	if _, err := Decode([]byte(`{"SyncDisabled": true} {}`)); !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.json")
	if err := os.WriteFile(path, []byte(jsoncDoc), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestSchemaCheck(t *testing.T) {
	issues, err := SchemaCheck([]byte(`{"SyncDisabled": "yes", "BrowserSignin": 0, "Unknown": [1]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 1 || !strings.Contains(issues[0], "SyncDisabled") {
		t.Fatalf("expected one SyncDisabled issue, got %v", issues)
	}
}

func TestFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/policies.json":
			fmt.Fprint(w, jsoncDoc)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := &Fetcher{Client: srv.Client(), Timeout: 2 * time.Second, Attempts: 1}

	doc, err := f.Fetch(context.Background(), srv.URL+"/policies.json")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, ok := doc["MetricsReportingEnabled"]; !ok {
		t.Fatal("fetched document is missing MetricsReportingEnabled")
	}

	if _, err := f.Fetch(context.Background(), srv.URL+"/missing.json"); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestFetcher_RetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int32
	}{
		{"not found is final", http.StatusNotFound, 1},
		{"forbidden is final", http.StatusForbidden, 1},
		{"server error is retried", http.StatusServiceUnavailable, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			f := &Fetcher{Client: srv.Client(), Timeout: 2 * time.Second, Attempts: 3}
			_, err := f.Fetch(context.Background(), srv.URL)
			var status *HTTPStatusError
			if !errors.As(err, &status) || status.Status != tt.status {
				t.Fatalf("expected HTTP %d error, got %v", tt.status, err)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Fatalf("got %d requests, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestFetcher_TooLarge(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprintf(w, `{"HomepageLocation": "%s"}`, strings.Repeat("a", maxDocumentBytes))
	}))
	defer srv.Close()

	f := &Fetcher{Client: srv.Client(), Timeout: 2 * time.Second, Attempts: 2}
	_, err := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("oversized document should not be retried, got %d requests", calls.Load())
	}
}

func TestHTTPStatusError(t *testing.T) {
	err := &HTTPStatusError{URL: "https://x", Status: 503}
	if err.Error() != "download https://x failed: HTTP 503" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

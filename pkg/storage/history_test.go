package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/zerobrave/pkg/domain/audit"
)

func TestHistoryFile_LogAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.jsonl")
	h := NewHistoryFile(path)
	h.now = func() time.Time { return time.Date(2026, 5, 1, 8, 30, 0, 123456789, time.Local) }

	events, err := h.Load()
	if err != nil || len(events) != 0 {
		t.Fatalf("expected empty history, got %v (%v)", events, err)
	}

	if err := h.Log(audit.ActionApplied, map[string]any{"policies": 41, "categories": []string{"ai", "sync"}}); err != nil {
		t.Fatalf("log: %v", err)
	}
	if err := h.Log(audit.ActionRestored, map[string]any{"backup": "/etc/brave/x_1"}); err != nil {
		t.Fatalf("log: %v", err)
	}

	events, err = h.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Action != audit.ActionApplied || events[1].Action != audit.ActionRestored {
		t.Fatalf("unexpected actions: %s, %s", events[0].Action, events[1].Action)
	}
	if events[1].PrevHash != events[0].Hash {
		t.Fatal("second event is not chained to the first")
	}
	if v := audit.Verify(events); len(v) != 0 {
		t.Fatalf("reloaded history should verify, got %v", v)
	}
}

func TestHistoryFile_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	h := NewHistoryFile(path)
	if err := h.Log(audit.ActionApplied, nil); err != nil {
		t.Fatal(err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("not json\n\n")
	_ = f.Close()

	events, err := h.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
}

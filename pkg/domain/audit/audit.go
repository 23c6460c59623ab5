// Package audit is the hash-chained history of policy runs.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Action names a recorded change to the managed policy file.
type Action string

const (
	ActionApplied  Action = "policy.applied"
	ActionRestored Action = "policy.restored"
)

// Event is one entry of the run history.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Action    Action         `json:"action"`
	Actor     string         `json:"actor"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	PrevHash  string         `json:"prev_hash,omitempty"`
	Hash      string         `json:"hash,omitempty"`
}

// CalculateHash returns the SHA-256 of the event's fields, each terminated
// by a NUL byte so adjacent fields cannot run together.
func (e *Event) CalculateHash() string {
	h := sha256.New()
	for _, field := range []string{
		e.PrevHash,
		e.ID,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		string(e.Action),
		e.Actor,
		canonicalJSON(e.Metadata),
	} {
		io.WriteString(h, field)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalJSON renders metadata with sorted keys; encoding/json orders map
// keys itself.
func canonicalJSON(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprint(m)
	}
	return string(data)
}

// Logger records audit events. Services depend on this interface rather
// than on the history file.
type Logger interface {
	Log(action Action, metadata map[string]any) error
}

// Verify walks the chain and describes every broken link or altered event.
func Verify(events []Event) []string {
	var violations []string
	lastHash := ""

	for i, e := range events {
		if e.PrevHash != lastHash {
			violations = append(violations, fmt.Sprintf("event %d (%s): previous hash mismatch, history broken", i, e.ID))
		}
		if e.Hash != e.CalculateHash() {
			violations = append(violations, fmt.Sprintf("event %d (%s): content hash mismatch, possible tampering", i, e.ID))
		}
		lastHash = e.Hash
	}

	return violations
}

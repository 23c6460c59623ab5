package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/zerobrave/pkg/domain/audit"
	"github.com/google/uuid"
)

// HistoryFile is the JSON Lines run history. It implements audit.Logger.
type HistoryFile struct {
	path  string
	actor string
	now   func() time.Time
}

func NewHistoryFile(path string) *HistoryFile {
	return &HistoryFile{path: filepath.Clean(path), actor: currentActor(), now: time.Now}
}

// currentActor prefers the invoking user when running under sudo.
func currentActor() string {
	if name := os.Getenv("SUDO_USER"); name != "" {
		return name
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}

func (h *HistoryFile) Path() string {
	return h.path
}

// Log appends an event chained to the last recorded one.
func (h *HistoryFile) Log(action audit.Action, metadata map[string]any) error {
	events, err := h.Load()
	if err != nil {
		return err
	}
	prevHash := ""
	if len(events) > 0 {
		prevHash = events[len(events)-1].Hash
	}

	event := audit.Event{
		ID:        uuid.NewString(),
		Timestamp: h.now().UTC(),
		Action:    action,
		Actor:     h.actor,
		Metadata:  metadata,
		PrevHash:  prevHash,
	}
	event.Hash = event.CalculateHash()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(h.path), 0700); err != nil {
		return ioErr("mkdir", filepath.Dir(h.path), err)
	}
	// #nosec G304 -- path comes from the operator's config directory
	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return ioErr("open", h.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return ioErr("append", h.path, err)
	}
	return nil
}

// Load returns all events, oldest first. A missing file is an empty history.
func (h *HistoryFile) Load() ([]audit.Event, error) {
	// #nosec G304 -- path comes from the operator's config directory
	data, err := os.ReadFile(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, ioErr("read", h.path, err)
	}

	var events []audit.Event
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var e audit.Event
		if err := json.Unmarshal(line, &e); err != nil {
			continue // Skip malformed lines
		}
		events = append(events, e)
	}
	return events, nil
}

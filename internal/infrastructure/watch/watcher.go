// Package watch reports changes to the managed-policy file.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change is a debounced modification of the watched policy file.
type Change struct {
	Path string
	// Op is one of "create", "write", "remove", "rename", "chmod".
	Op string
}

// Removed reports whether the file is gone after the change.
func (c Change) Removed() bool {
	return c.Op == "remove" || c.Op == "rename"
}

// PolicyWatcher watches one file. The parent directory is watched so the
// atomic temp-file-and-rename replacement used by writers is observed.
type PolicyWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func(Change)
}

// NewPolicyWatcher starts watching the directory containing path. The
// directory must exist.
func NewPolicyWatcher(path string, debounce time.Duration, onChange func(Change)) (*PolicyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	clean := filepath.Clean(path)
	if err := w.Add(filepath.Dir(clean)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(clean), err)
	}
	if debounce == 0 {
		debounce = 300 * time.Millisecond
	}
	return &PolicyWatcher{
		watcher:  w,
		path:     clean,
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// Run delivers changes until ctx is cancelled.
func (w *PolicyWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	d := newDebouncer(w.debounce, func(c Change) {
		if w.onChange != nil {
			w.onChange(c)
		}
	})
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			op := opName(event.Op)
			if op == "" {
				continue
			}
			d.trigger(Change{Path: w.path, Op: op})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func opName(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	case op.Has(fsnotify.Chmod):
		return "chmod"
	default:
		return ""
	}
}

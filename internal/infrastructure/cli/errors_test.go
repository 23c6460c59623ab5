package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/zerobrave/internal/infrastructure/system"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/platform"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
	"github.com/felixgeelhaar/zerobrave/pkg/source"
	"github.com/felixgeelhaar/zerobrave/pkg/storage"
)

func TestCLIError(t *testing.T) {
	t.Run("Error with cause", func(t *testing.T) {
		cause := errors.New("root cause")
		e := NewCLIError("something failed", "try this", cause)
		if e.Error() != "something failed: root cause" {
			t.Fatalf("unexpected: %s", e.Error())
		}
		if e.ExitCode != 1 {
			t.Fatalf("expected exit code 1, got %d", e.ExitCode)
		}
	})

	t.Run("Error without cause", func(t *testing.T) {
		e := NewCLIError("something failed", "try this", nil)
		if e.Error() != "something failed" {
			t.Fatalf("unexpected: %s", e.Error())
		}
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root")
		e := NewCLIError("msg", "", cause)
		if !errors.Is(e, cause) {
			t.Fatal("errors.Is should match wrapped cause")
		}
	})
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantCLI  bool
	}{
		{
			name: "nil returns nil",
			err:  nil,
		},
		{
			name:     "type mismatch",
			err:      &policy.TypeMismatchError{Key: "BraveRewardsDisabled", Expected: policy.KindBool, Actual: policy.KindString},
			wantCode: ExitValidation,
			wantCLI:  true,
		},
		{
			name:     "unsupported value",
			err:      fmt.Errorf("decode: %w", &policy.UnsupportedValueError{Got: "null"}),
			wantCode: ExitValidation,
			wantCLI:  true,
		},
		{
			name:     "not an object",
			err:      source.ErrNotObject,
			wantCode: ExitValidation,
			wantCLI:  true,
		},
		{
			name:     "document too large",
			err:      source.ErrTooLarge,
			wantCode: ExitValidation,
			wantCLI:  true,
		},
		{
			name:     "not elevated",
			err:      &system.PermissionError{OS: platform.Linux},
			wantCode: ExitPermission,
			wantCLI:  true,
		},
		{
			name:     "write denied",
			err:      &storage.IOError{Op: "write", Path: "/etc/brave", Err: storage.ErrPermission},
			wantCode: ExitPermission,
			wantCLI:  true,
		},
		{
			name:     "unsupported platform",
			err:      fmt.Errorf("%w: plan9", platform.ErrUnsupportedPlatform),
			wantCode: ExitUnsupportedPlatform,
			wantCLI:  true,
		},
		{
			name:     "no backup",
			err:      storage.ErrNoBackupFound,
			wantCode: ExitNoBackup,
			wantCLI:  true,
		},
		{
			name:     "interrupted",
			err:      fmt.Errorf("menu: %w", context.Canceled),
			wantCode: ExitInterrupted,
			wantCLI:  true,
		},
		{
			name:     "io failure",
			err:      &storage.IOError{Op: "rename", Path: "/x", Err: errors.New("read-only file system")},
			wantCode: ExitFailure,
			wantCLI:  true,
		},
		{
			name:     "unknown error passes through",
			err:      errors.New("something else"),
			wantCode: ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MapError(tt.err)
			if tt.err == nil {
				if result != nil {
					t.Fatalf("expected nil, got %v", result)
				}
				return
			}

			var cliErr *CLIError
			isCLI := errors.As(result, &cliErr)
			if isCLI != tt.wantCLI {
				t.Fatalf("CLIError = %v, want %v (%v)", isCLI, tt.wantCLI, result)
			}
			if code := ExitCode(result); code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d", code, tt.wantCode)
			}
			if isCLI && tt.wantCode != ExitInterrupted && !errors.Is(result, tt.err) {
				t.Fatal("mapped error should wrap the original")
			}
		})
	}
}

func TestMapError_AlreadyMapped(t *testing.T) {
	orig := NewCLIError("already", "hint", nil)
	if got := MapError(orig); got != orig {
		t.Fatalf("expected the same CLIError back, got %v", got)
	}
}

func TestMapError_MismatchHint(t *testing.T) {
	err := MapError(&policy.TypeMismatchError{Key: "DiskCacheSize", Expected: policy.KindInt, Actual: policy.KindString})
	var cliErr *CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("expected CLIError, got %v", err)
	}
	if want := "DiskCacheSize must be of type integer; run 'zerobrave schema' to see every declared type"; cliErr.Hint != want {
		t.Fatalf("hint = %q, want %q", cliErr.Hint, want)
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Fatal("nil error should exit 0")
	}
	if ExitCode(errors.New("x")) != ExitFailure {
		t.Fatal("plain error should exit 1")
	}
}

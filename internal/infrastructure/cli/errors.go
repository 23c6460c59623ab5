package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/felixgeelhaar/zerobrave/internal/infrastructure/system"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/platform"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
	"github.com/felixgeelhaar/zerobrave/pkg/source"
	"github.com/felixgeelhaar/zerobrave/pkg/storage"
)

// Process exit codes.
const (
	ExitFailure             = 1
	ExitValidation          = 2
	ExitPermission          = 3
	ExitUnsupportedPlatform = 4
	ExitNoBackup            = 5
	ExitInterrupted         = 130
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: ExitFailure,
	}
}

func withCode(e *CLIError, code int) *CLIError {
	e.ExitCode = code
	return e
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var mismatch *policy.TypeMismatchError
	if errors.As(err, &mismatch) {
		return withCode(NewCLIError(
			"policy validation failed",
			fmt.Sprintf("%s must be of type %s; run 'zerobrave schema' to see every declared type", mismatch.Key, mismatch.Expected),
			err,
		), ExitValidation)
	}

	var unsupported *policy.UnsupportedValueError
	if errors.As(err, &unsupported) {
		return withCode(NewCLIError(
			"policy document contains an unsupported value",
			"Policy values must be booleans, integers, strings or lists of strings",
			err,
		), ExitValidation)
	}

	var permErr *system.PermissionError
	if errors.As(err, &permErr) {
		hint := "Run with sudo: sudo zerobrave"
		if permErr.OS == platform.Windows {
			hint = "Run from a terminal opened with 'Run as administrator'"
		}
		return withCode(NewCLIError("insufficient permissions", hint, err), ExitPermission)
	}

	var ioErr *storage.IOError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, tea.ErrProgramKilled):
		return withCode(NewCLIError("interrupted", "", nil), ExitInterrupted)
	case errors.Is(err, source.ErrNotObject), errors.Is(err, source.ErrSyntax):
		return withCode(NewCLIError("invalid policy document", "Check the file with 'zerobrave preview --local <file>'", err), ExitValidation)
	case errors.Is(err, source.ErrTooLarge):
		return withCode(NewCLIError("policy document too large", "Policy documents are limited to 1 MiB", err), ExitValidation)
	case errors.Is(err, platform.ErrUnsupportedPlatform):
		return withCode(NewCLIError("unsupported platform", "Pass --target to write the policy file to an explicit path", err), ExitUnsupportedPlatform)
	case errors.Is(err, storage.ErrNoBackupFound):
		return withCode(NewCLIError("no backup found", "Back up before writing with 'zerobrave --backup'", err), ExitNoBackup)
	case errors.Is(err, storage.ErrPermission), errors.Is(err, system.ErrPermission):
		return withCode(NewCLIError("permission denied", "Run with sudo or as administrator", err), ExitPermission)
	case errors.Is(err, policy.ErrUnknownProfile):
		return NewCLIError("unknown profile", "Choose one of strict, balanced or minimal", err)
	case errors.Is(err, policy.ErrUnknownCategory):
		return NewCLIError("unknown category", "Run 'zerobrave categories' to list valid names", err)
	case errors.As(err, &ioErr):
		return NewCLIError("file operation failed", "", err)
	}

	return err
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode
	}
	return ExitFailure
}

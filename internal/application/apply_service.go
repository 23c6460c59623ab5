package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/zerobrave/internal/domain/run"
	"github.com/felixgeelhaar/zerobrave/internal/infrastructure/system"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/audit"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/platform"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
	"github.com/felixgeelhaar/zerobrave/pkg/storage"
	"github.com/google/uuid"
)

// PolicyStore is the subset of storage.PolicyStore the services use.
type PolicyStore interface {
	Path() string
	Write(doc policy.Document) error
	Backup(now time.Time) (*storage.BackupHandle, error)
	Restore() (*storage.BackupHandle, error)
}

// ApplyRequest describes one apply run.
type ApplyRequest struct {
	Document     policy.Document
	DryRun       bool
	Backup       bool
	SkipChecks   bool
	GrantFlatpak bool
	// Origin describes where Document came from, e.g. "profile:strict".
	Origin string
}

// ApplyResult reports what a run did.
type ApplyResult struct {
	RunID      string
	Path       string
	Document   policy.Document
	Preview    []byte
	Backup     *storage.BackupHandle
	Advisories []string
	Undeclared []string
	Written    bool
}

// ApplyService validates a policy document and writes it to the managed
// policy location.
type ApplyService struct {
	store  PolicyStore
	host   system.Host
	os     platform.OS
	logger *slog.Logger
	audit  audit.Logger
	now    func() time.Time
}

func NewApplyService(store PolicyStore, host system.Host, target platform.OS, logger *slog.Logger) *ApplyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApplyService{store: store, host: host, os: target, logger: logger, now: time.Now}
}

// WithAudit records every successful write in l.
func (s *ApplyService) WithAudit(l audit.Logger) *ApplyService {
	s.audit = l
	return s
}

// Apply runs PermissionCheck, Validate and then either the dry-run preview
// or the optional backup followed by the write. Nothing on disk changes
// unless validation succeeded.
func (s *ApplyService) Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)

	machine, err := run.NewMachine(runID, req.DryRun)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{RunID: runID, Path: s.store.Path(), Document: req.Document}

	if err := preflight(ctx, s.host, s.os, req.SkipChecks, logger); err != nil {
		return nil, err
	}
	if err := machine.Fire(run.EventCheck); err != nil {
		return nil, err
	}

	if err := policy.Validate(req.Document); err != nil {
		logger.Error("policy validation failed", "error", err)
		return nil, err
	}
	if err := machine.Fire(run.EventValidate); err != nil {
		return nil, err
	}
	result.Advisories = policy.Advisories(req.Document)
	for _, msg := range result.Advisories {
		logger.Warn(msg)
	}
	result.Undeclared = policy.UndeclaredKeys(req.Document)
	if len(result.Undeclared) > 0 {
		logger.Debug("passing through undeclared policies", "keys", result.Undeclared)
	}

	if req.DryRun {
		if err := machine.Fire(run.EventPreview); err != nil {
			return nil, err
		}
		preview, err := req.Document.Encode()
		if err != nil {
			return nil, err
		}
		result.Preview = preview
		logger.Info("dry run: nothing written", "path", result.Path, "policies", len(req.Document))
		return result, nil
	}

	if req.Backup {
		if err := machine.Fire(run.EventBackup); err != nil {
			return nil, err
		}
		handle, err := s.store.Backup(s.now())
		if err != nil {
			return nil, fmt.Errorf("backup before write: %w", err)
		}
		if handle == nil {
			logger.Info("no existing policies file to back up")
		} else {
			logger.Info("backup created", "path", handle.Path)
		}
		result.Backup = handle
	}

	if err := machine.Fire(run.EventWrite); err != nil {
		return nil, err
	}
	if err := s.store.Write(req.Document); err != nil {
		return nil, err
	}
	result.Written = true
	logger.Info("policies written", "path", result.Path, "policies", len(req.Document))

	meta := map[string]any{
		"run_id":   runID,
		"path":     result.Path,
		"policies": len(req.Document),
	}
	if req.Origin != "" {
		meta["origin"] = req.Origin
	}
	if result.Backup != nil {
		meta["backup"] = result.Backup.Path
	}
	recordAudit(s.audit, audit.ActionApplied, meta, logger)

	s.handleFlatpak(ctx, req.GrantFlatpak, logger)
	return result, nil
}

func (s *ApplyService) handleFlatpak(ctx context.Context, grant bool, logger *slog.Logger) {
	if s.os != platform.Linux || s.host == nil || !s.host.FlatpakInstalled(ctx) {
		return
	}
	if !grant {
		logger.Warn("Brave is installed as a Flatpak and cannot read system policies without an override; rerun with --grant-flatpak")
		return
	}
	if err := s.host.GrantFlatpakAccess(ctx, platform.LinuxPolicyRoot); err != nil {
		logger.Error("flatpak override failed", "error", err)
		return
	}
	logger.Info("flatpak access granted", "path", platform.LinuxPolicyRoot)
}

func recordAudit(l audit.Logger, action audit.Action, meta map[string]any, logger *slog.Logger) {
	if l == nil {
		return
	}
	if err := l.Log(action, meta); err != nil {
		logger.Warn("failed to record run history", "error", err)
	}
}

// preflight is the PermissionCheck step shared by apply and restore.
func preflight(ctx context.Context, host system.Host, target platform.OS, skip bool, logger *slog.Logger) error {
	if skip || host == nil {
		logger.Debug("skipping permission and installation checks")
		return nil
	}
	if err := system.CheckPermissions(host, target); err != nil {
		logger.Error("permission check failed", "error", err)
		return err
	}
	if !host.BraveInstalled() {
		logger.Warn("Brave browser not detected, proceeding anyway")
	}
	return nil
}

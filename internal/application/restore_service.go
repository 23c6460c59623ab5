package application

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/zerobrave/internal/domain/run"
	"github.com/felixgeelhaar/zerobrave/internal/infrastructure/system"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/audit"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/platform"
	"github.com/felixgeelhaar/zerobrave/pkg/storage"
	"github.com/google/uuid"
)

// RestoreService puts the most recent backup back in place.
type RestoreService struct {
	store  PolicyStore
	host   system.Host
	os     platform.OS
	logger *slog.Logger
	audit  audit.Logger
}

func NewRestoreService(store PolicyStore, host system.Host, target platform.OS, logger *slog.Logger) *RestoreService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RestoreService{store: store, host: host, os: target, logger: logger}
}

// WithAudit records every successful restore in l.
func (s *RestoreService) WithAudit(l audit.Logger) *RestoreService {
	s.audit = l
	return s
}

// Restore copies the latest backup over the live file without validating it.
func (s *RestoreService) Restore(ctx context.Context, skipChecks bool) (*storage.BackupHandle, error) {
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)

	machine, err := run.NewMachine(runID, false)
	if err != nil {
		return nil, err
	}
	if err := preflight(ctx, s.host, s.os, skipChecks, logger); err != nil {
		return nil, err
	}
	if err := machine.Fire(run.EventCheck); err != nil {
		return nil, err
	}
	if err := machine.Fire(run.EventRestore); err != nil {
		return nil, err
	}

	handle, err := s.store.Restore()
	if err != nil {
		logger.Error("restore failed", "error", err)
		return nil, err
	}
	logger.Info("restored from backup", "backup", handle.Path, "path", s.store.Path())
	recordAudit(s.audit, audit.ActionRestored, map[string]any{
		"run_id": runID,
		"path":   s.store.Path(),
		"backup": handle.Path,
	}, logger)
	return handle, nil
}

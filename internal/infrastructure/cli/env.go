package cli

import (
	"log/slog"
	"os"

	"github.com/felixgeelhaar/zerobrave/internal/application"
	"github.com/felixgeelhaar/zerobrave/internal/infrastructure/config"
	"github.com/felixgeelhaar/zerobrave/internal/infrastructure/logging"
	"github.com/felixgeelhaar/zerobrave/internal/infrastructure/system"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/platform"
	"github.com/felixgeelhaar/zerobrave/pkg/storage"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Replaced in tests.
var (
	newHost       = func() system.Host { return system.NewLocalHost() }
	isInteractive = func() bool {
		return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	}
)

// environment is everything a command needs, resolved from flags and the
// config file.
type environment struct {
	cfg     *config.Config
	logger  *slog.Logger
	os      platform.OS
	store   *storage.PolicyStore
	history *storage.HistoryFile
	host    system.Host
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

func loadConfig() (*config.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

func historyFile() (*storage.HistoryFile, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	return storage.NewHistoryFile(config.HistoryPath(path)), nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	return logging.New(cmd.ErrOrStderr(), logging.Options{
		Level: cfg.LogLevel,
		Debug: debugLog,
		Quiet: quiet,
	})
}

// loadEnvironment resolves the policy path in the order --target,
// config policy_path, platform default.
func loadEnvironment(cmd *cobra.Command) (*environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}

	target := platform.Current()
	path := targetPath
	if path == "" {
		path = cfg.PolicyPath
	}
	if path == "" {
		path, err = platform.ResolvePolicyPath(target)
		if err != nil {
			return nil, err
		}
	}
	logger.Debug("resolved policy path", "os", target, "path", path)

	history, err := historyFile()
	if err != nil {
		return nil, err
	}

	return &environment{
		cfg:     cfg,
		logger:  logger,
		os:      target,
		store:   storage.NewPolicyStore(path),
		history: history,
		host:    newHost(),
	}, nil
}

func (e *environment) applyService() *application.ApplyService {
	return application.NewApplyService(e.store, e.host, e.os, e.logger).WithAudit(e.history)
}

func (e *environment) restoreService() *application.RestoreService {
	return application.NewRestoreService(e.store, e.host, e.os, e.logger).WithAudit(e.history)
}

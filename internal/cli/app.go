package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/precario/internal/catalog"
	"github.com/roach88/precario/internal/config"
	"github.com/roach88/precario/internal/importer"
	"github.com/roach88/precario/internal/logging"
	"github.com/roach88/precario/internal/metrics"
	"github.com/roach88/precario/internal/store"
)

// app is the wiring shared by commands that touch the catalog.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	backend store.Backend
	svc     *catalog.Service
}

// loadConfig reads --config (or precario.yaml when present) and applies the
// --db and --driver overrides. An explicit --config must exist.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	path := o.ConfigPath
	if path == "" {
		path = config.DefaultPath
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.DBPath != "" {
		cfg.Store.Path = o.DBPath
	}
	if o.Driver != "" {
		cfg.Store.Driver = o.Driver
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// commandLogger logs to stderr as JSON. One-shot commands only report
// warnings unless --verbose is set.
func (o *RootOptions) commandLogger(cmd *cobra.Command) (*zap.Logger, error) {
	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	return logging.NewWriter(cmd.ErrOrStderr(), level)
}

// openApp loads config and opens the store. Failures are reported through f
// and come back as ExitCommandError.
func (o *RootOptions) openApp(cmd *cobra.Command, f *OutputFormatter) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, setupError(f, "load configuration", err)
	}
	logger, err := o.commandLogger(cmd)
	if err != nil {
		return nil, setupError(f, "initialize logger", err)
	}
	return newApp(cfg, logger, nil, f)
}

func newApp(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics, f *OutputFormatter) (*app, error) {
	if dir := filepath.Dir(cfg.Store.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, setupError(f, "create store directory", err)
		}
	}

	backend, err := store.OpenBackend(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, setupError(f, "open store", err)
	}
	f.VerboseLog("Opened %s store at %s", cfg.Store.Driver, cfg.Store.Path)

	svc := catalog.NewService(backend, backend, catalog.NewMillisGenerator(), logger)
	return &app{cfg: cfg, logger: logger, metrics: m, backend: backend, svc: svc}, nil
}

func (a *app) importer() (*importer.Importer, error) {
	return importer.New(a.svc, a.logger, a.metrics)
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func setupError(f *OutputFormatter, message string, err error) error {
	_ = f.Error(ErrCodeConfig, fmt.Sprintf("%s: %v", message, err), nil)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeConfig, message), err)
}

func usageError(f *OutputFormatter, message string) error {
	_ = f.Error(ErrCodeUsage, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeUsage, message))
}

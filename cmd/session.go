package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/karen-go/internal/config"
	"github.com/nibzard/karen-go/internal/dispatch"
	"github.com/nibzard/karen-go/internal/logging"
	"github.com/nibzard/karen-go/internal/metrics"
	"github.com/nibzard/karen-go/internal/storage"
	"github.com/nibzard/karen-go/internal/storage/jsonfile"
	"github.com/nibzard/karen-go/internal/storage/postgres"
	"github.com/nibzard/karen-go/internal/storage/sqlite"
)

// session bundles everything a command needs to run task commands.
type session struct {
	cfg        *config.Config
	logger     *log.Logger
	store      storage.Store
	sessionLog *logging.SessionLogger
	metrics    *metrics.Metrics
	dispatcher *dispatch.Dispatcher
	// loadErr is set when stored tasks could not be read; the session then
	// starts with an empty list.
	loadErr error
}

func openSession(ctx context.Context, cfg *config.Config) (*session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := newLogger(cfg)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var sessionLog *logging.SessionLogger
	if cfg.SessionLog {
		sessionLog, err = logging.NewSessionLogger(cfg.LogDir, cfg.ProjectRoot)
		if err != nil {
			logger.Warn("session log disabled", "err", err)
			sessionLog = nil
		} else {
			logger.Debug("session log", "path", sessionLog.LogPath)
		}
	}

	m := metrics.New()
	d := dispatch.New(nil, store,
		dispatch.WithLogger(logger),
		dispatch.WithSessionLog(sessionLog),
		dispatch.WithMetrics(m),
	)

	s := &session{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		sessionLog: sessionLog,
		metrics:    m,
		dispatcher: d,
	}
	s.loadErr = d.Load(ctx)
	return s, nil
}

// Close flushes metrics and releases the store and the session log.
func (s *session) Close() error {
	var errs []error
	if err := s.metrics.WriteFile(s.cfg.MetricsFile); err != nil {
		errs = append(errs, err)
	}
	if err := s.sessionLog.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close session log: %w", err))
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}

func newLogger(cfg *config.Config) *log.Logger {
	return logging.NewConsoleFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
}

// openStore selects the storage backend named in the config.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case storage.DriverJSON:
		return jsonfile.New(cfg.DataFile, jsonfile.ValidationOptions{SchemaPath: cfg.SchemaFile}), nil
	case storage.DriverSQLite:
		if err := ensureParentDir(cfg.Storage.DSN); err != nil {
			return nil, err
		}
		return sqlite.New(ctx, cfg.Storage.DSN)
	case storage.DriverPostgres:
		return postgres.New(ctx, cfg.Storage.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

// ensureParentDir creates the directory holding a sqlite file. URIs and
// in-memory databases are left alone.
func ensureParentDir(dsn string) error {
	if dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	return nil
}

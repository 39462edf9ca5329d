package app

import (
	"fmt"
	"os"
	"path/filepath"

	"tvc-go/internal/config"
	"tvc-go/internal/daemon"
	"tvc-go/internal/database"
	"tvc-go/internal/database/migrations"
	"tvc-go/internal/fs"
	"tvc-go/internal/hash"
	"tvc-go/internal/tvc"
)

// App is the application layer between the CLI and the core services.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and manages resource lifecycles on Close.
type App struct {
	cfg      *config.Config
	registry tvc.Registry
	fsmgr    tvc.FilesystemManager
	manager  *tvc.Manager
	clock    tvc.Clock
	logger   tvc.Logger
	logFile  *os.File
}

// New creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Monitor", "Start").
// The caller must call Close when done.
func New(cfg *config.Config, operation string) (*App, error) {
	fsmgr := fs.NewOSFilesystemManager()

	registry, err := openRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening registry: %w", err)
	}

	slogger, logFile, err := newLogger(cfg.LogDir, operation)
	if err != nil {
		registry.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	clock := tvc.RealClock{}
	return &App{
		cfg:      cfg,
		registry: registry,
		fsmgr:    fsmgr,
		manager:  tvc.NewManager(registry, fsmgr, clock, logger),
		clock:    clock,
		logger:   logger,
		logFile:  logFile,
	}, nil
}

// Manager returns the monitored-directories manager.
func (a *App) Manager() *tvc.Manager {
	return a.manager
}

// Registry returns the monitored-directories registry.
func (a *App) Registry() tvc.Registry {
	return a.registry
}

// OpenTree resolves rawDir and builds a Service over its metadata directory.
// The returned close function releases the tree's version store.
func (a *App) OpenTree(rawDir string) (*tvc.Service, func() error, error) {
	p, err := a.fsmgr.Resolve(rawDir)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving path: %w", err)
	}
	if !p.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", tvc.ErrNotADirectory, p.String())
	}

	store, err := openTreeStore(a.cfg, p.Metadata())
	if err != nil {
		return nil, nil, fmt.Errorf("opening version store: %w", err)
	}

	hasher, err := a.newHasher(p.String())
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	svc := tvc.NewService(p, store, a.fsmgr, hasher, a.logger, a.clock, a.cfg.Frequency())
	return svc, store.Close, nil
}

// Daemon builds the polling daemon over the registry.
func (a *App) Daemon() *daemon.Daemon {
	return daemon.New(a.registry, a.OpenTree, a.logger, a.cfg.Frequency(), a.cfg.Watch.Enabled, a.cfg.Debounce())
}

// newHasher merges the configured ignore patterns with the tree's own
// ignore file, if any.
func (a *App) newHasher(root string) (tvc.TreeHasher, error) {
	patterns := append([]string{}, a.cfg.Filesystem.Ignore...)

	filePatterns, err := fs.ParseIgnoreFile(filepath.Join(root, fs.IgnoreFileName))
	if err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	patterns = append(patterns, filePatterns...)

	return hash.NewHasher(patterns), nil
}

// Close releases the registry and the log file.
func (a *App) Close() error {
	var firstErr error

	if err := a.registry.Close(); err != nil {
		firstErr = fmt.Errorf("closing registry: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}

func openRegistry(cfg *config.Config) (tvc.Registry, error) {
	switch cfg.Database.Type {
	case "sqlite", "":
		return database.OpenRegistry(cfg.BaseDir)
	case "memory":
		db, err := database.OpenConnection(":memory:")
		if err != nil {
			return nil, err
		}
		if err := migrations.RegistryUp(db); err != nil {
			db.Close()
			return nil, err
		}
		return database.NewSQLiteRegistryFromDB(db), nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Database.Type)
	}
}

func openTreeStore(cfg *config.Config, metaDir string) (tvc.Store, error) {
	switch cfg.Database.Type {
	case "sqlite", "":
		return database.OpenTreeStore(metaDir)
	case "memory":
		db, err := database.OpenConnection(":memory:")
		if err != nil {
			return nil, err
		}
		if err := migrations.TreeUp(db); err != nil {
			db.Close()
			return nil, err
		}
		return database.NewSQLiteStoreFromDB(db), nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Database.Type)
	}
}

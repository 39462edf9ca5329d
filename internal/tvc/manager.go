package tvc

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

// Manager maintains the registry of monitored directories the daemon polls.
type Manager struct {
	registry Registry
	fsmgr    FilesystemManager
	clock    Clock
	logger   Logger
}

// NewManager creates a Manager over the given registry.
func NewManager(registry Registry, fsmgr FilesystemManager, clock Clock, logger Logger) *Manager {
	return &Manager{
		registry: registry,
		fsmgr:    fsmgr,
		clock:    clock,
		logger:   logger,
	}
}

// Monitor registers a directory for polling. The path must exist and be a
// directory; it is stored in absolute, canonical form.
func (m *Manager) Monitor(rawPath string) (*MonitoredDirectory, error) {
	p, err := m.fsmgr.Resolve(rawPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, rawPath)
		}
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if !p.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, p.String())
	}

	dir := &MonitoredDirectory{Path: p.String(), AddedAt: m.clock.Now()}
	if err := m.registry.Add(dir); err != nil {
		return nil, err
	}

	m.logger.Info("directory monitored", "path", dir.Path)
	return dir, nil
}

// Unmonitor deregisters a directory. The path is normalized to absolute form
// but not required to exist, so a deleted tree can still be deregistered.
func (m *Manager) Unmonitor(rawPath string) error {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}

	if err := m.registry.Remove(absPath); err != nil {
		return err
	}

	m.logger.Info("directory unmonitored", "path", absPath)
	return nil
}

// Directories returns all monitored directories ordered by path.
func (m *Manager) Directories() ([]*MonitoredDirectory, error) {
	return m.registry.List()
}

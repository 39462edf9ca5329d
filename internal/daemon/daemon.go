// Package daemon implements the periodic snapshot loop over all
// monitored directories.
package daemon

import (
	"context"
	"fmt"
	"time"

	"tvc-go/internal/tvc"
)

// ServiceOpener opens a Service for a monitored directory. The returned
// close function must be called once the service is no longer needed.
type ServiceOpener func(dir string) (*tvc.Service, func() error, error)

// Daemon runs snapshot checks for every monitored directory on a fixed
// interval. The desired run state is persisted in the registry, which
// lets a separate process request a stop.
type Daemon struct {
	registry  tvc.Registry
	open      ServiceOpener
	logger    tvc.Logger
	frequency time.Duration
	watch     bool
	debounce  time.Duration
}

func New(registry tvc.Registry, open ServiceOpener, logger tvc.Logger, frequency time.Duration, watch bool, debounce time.Duration) *Daemon {
	return &Daemon{
		registry:  registry,
		open:      open,
		logger:    logger,
		frequency: frequency,
		watch:     watch,
		debounce:  debounce,
	}
}

// Run executes the check loop until the context is cancelled or a stop
// is requested through the registry. It records the running state on
// entry and the stopped state on exit.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.registry.SetDesiredDaemonState(tvc.DaemonRunning); err != nil {
		return fmt.Errorf("recording daemon state: %w", err)
	}
	defer func() {
		if err := d.registry.SetDesiredDaemonState(tvc.DaemonStopped); err != nil {
			d.logger.Error("failed to record stopped state", "error", err)
		}
	}()

	var wake <-chan struct{}
	if d.watch {
		dirs, err := d.registry.List()
		if err != nil {
			return fmt.Errorf("listing monitored directories: %w", err)
		}
		trigger, err := newWatchTrigger(dirs, d.debounce, d.logger)
		if err != nil {
			return fmt.Errorf("starting filesystem watch: %w", err)
		}
		defer trigger.Close()
		wake = trigger.C
	}

	d.logger.Info("daemon started", "frequency", d.frequency.String(), "watch", d.watch)
	for {
		state, err := d.registry.DesiredDaemonState()
		if err != nil {
			return fmt.Errorf("reading daemon state: %w", err)
		}
		if state == tvc.DaemonStopped {
			d.logger.Info("stop requested")
			return nil
		}

		d.cycle(ctx)

		select {
		case <-ctx.Done():
			d.logger.Info("daemon stopping", "reason", ctx.Err().Error())
			return nil
		case <-time.After(d.frequency):
		case <-wake:
			d.logger.Info("woken by filesystem event")
		}
	}
}

// cycle runs one snapshot check for every monitored directory. Errors
// on individual directories are logged and do not stop the cycle.
func (d *Daemon) cycle(ctx context.Context) {
	dirs, err := d.registry.List()
	if err != nil {
		d.logger.Error("failed to list monitored directories", "error", err)
		return
	}

	for _, dir := range dirs {
		if ctx.Err() != nil {
			return
		}
		d.checkOne(dir.Path)
	}
}

func (d *Daemon) checkOne(path string) {
	svc, closeSvc, err := d.open(path)
	if err != nil {
		d.logger.Error("failed to open directory", "path", path, "error", err)
		return
	}
	defer func() {
		if err := closeSvc(); err != nil {
			d.logger.Error("failed to close directory", "path", path, "error", err)
		}
	}()

	if err := svc.Check(); err != nil {
		d.logger.Error("check failed", "path", path, "error", err)
	}
}

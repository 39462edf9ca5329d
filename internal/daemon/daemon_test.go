package daemon_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tvc-go/internal/daemon"
	"tvc-go/internal/fs"
	"tvc-go/internal/hash"
	"tvc-go/internal/testutil"
	"tvc-go/internal/tvc"
)

const testFrequency = 5 * time.Millisecond

// runDaemon runs d.Run in the background and returns a channel carrying its
// result.
func runDaemon(ctx context.Context, d *daemon.Daemon) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()
	return done
}

func waitFor(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not exit in time")
		return nil
	}
}

func noopOpener(dir string) (*tvc.Service, func() error, error) {
	return nil, nil, errors.New("no tree available")
}

func TestDaemon_Run(t *testing.T) {
	t.Run("exits when the context is cancelled", func(t *testing.T) {
		registry := testutil.NewTestRegistry(t)
		d := daemon.New(registry, noopOpener, tvc.NewNopLogger(), testFrequency, false, 0)

		ctx, cancel := context.WithCancel(context.Background())
		done := runDaemon(ctx, d)
		cancel()

		if err := waitFor(t, done); err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})

	t.Run("exits when a stop is requested through the registry", func(t *testing.T) {
		registry := testutil.NewTestRegistry(t)
		d := daemon.New(registry, noopOpener, tvc.NewNopLogger(), testFrequency, false, 0)

		done := runDaemon(context.Background(), d)

		// Give the loop a moment to record the running state, then
		// request a stop the way a separate process would.
		time.Sleep(20 * time.Millisecond)
		if err := registry.SetDesiredDaemonState(tvc.DaemonStopped); err != nil {
			t.Fatalf("SetDesiredDaemonState() error = %v", err)
		}

		if err := waitFor(t, done); err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})

	t.Run("records the stopped state on exit", func(t *testing.T) {
		registry := testutil.NewTestRegistry(t)
		d := daemon.New(registry, noopOpener, tvc.NewNopLogger(), testFrequency, false, 0)

		ctx, cancel := context.WithCancel(context.Background())
		done := runDaemon(ctx, d)
		cancel()
		waitFor(t, done)

		state, err := registry.DesiredDaemonState()
		if err != nil {
			t.Fatalf("DesiredDaemonState() error = %v", err)
		}
		if state != tvc.DaemonStopped {
			t.Errorf("state after exit = %q, want %q", state, tvc.DaemonStopped)
		}
	})

	t.Run("opener errors do not stop the loop", func(t *testing.T) {
		registry := testutil.NewTestRegistry(t)
		dir := &tvc.MonitoredDirectory{Path: t.TempDir(), AddedAt: time.Now()}
		if err := registry.Add(dir); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		opened := make(chan struct{}, 16)
		opener := func(string) (*tvc.Service, func() error, error) {
			select {
			case opened <- struct{}{}:
			default:
			}
			return nil, nil, errors.New("open failed")
		}

		d := daemon.New(registry, opener, tvc.NewNopLogger(), testFrequency, false, 0)
		ctx, cancel := context.WithCancel(context.Background())
		done := runDaemon(ctx, d)

		// The loop must survive at least two failing cycles.
		for i := 0; i < 2; i++ {
			select {
			case <-opened:
			case <-time.After(5 * time.Second):
				t.Fatal("daemon stopped opening directories")
			}
		}

		cancel()
		if err := waitFor(t, done); err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})

	t.Run("commits changes in monitored directories", func(t *testing.T) {
		registry := testutil.NewTestRegistry(t)
		workDir := t.TempDir()
		testutil.WriteFile(t, workDir, "file.txt", "content")
		if err := registry.Add(&tvc.MonitoredDirectory{Path: workDir, AddedAt: time.Now()}); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		store := testutil.NewTestStore(t)
		fsmgr := fs.NewOSFilesystemManager()
		committed := make(chan struct{}, 1)

		opener := func(dir string) (*tvc.Service, func() error, error) {
			root, err := fsmgr.Resolve(dir)
			if err != nil {
				return nil, nil, err
			}
			svc := tvc.NewService(root, store, fsmgr, hash.NewHasher(nil), tvc.NewNopLogger(), tvc.RealClock{}, testFrequency)
			return svc, func() error {
				select {
				case committed <- struct{}{}:
				default:
				}
				return nil
			}, nil
		}

		d := daemon.New(registry, opener, tvc.NewNopLogger(), testFrequency, false, 0)
		ctx, cancel := context.WithCancel(context.Background())
		done := runDaemon(ctx, d)

		select {
		case <-committed:
		case <-time.After(5 * time.Second):
			t.Fatal("daemon never completed a check")
		}

		cancel()
		waitFor(t, done)

		versions, err := store.ListVersions()
		if err != nil {
			t.Fatalf("ListVersions() error = %v", err)
		}
		if len(versions) == 0 {
			t.Error("daemon produced no versions for a monitored directory")
		}
	})
}

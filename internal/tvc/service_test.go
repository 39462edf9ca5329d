package tvc_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tvc-go/internal/fs"
	"tvc-go/internal/testutil"
	"tvc-go/internal/tvc"
)

const testFrequency = 5 * time.Second

// fixture wires a Service over a real temp directory with a stubbed clock
// and hasher, so tests control time and change detection directly.
type fixture struct {
	svc    *tvc.Service
	dir    string
	store  tvc.Store
	clock  *testutil.StubClock
	hasher *testutil.StubHasher
	fsmgr  *fs.OSFilesystemManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	fsmgr := fs.NewOSFilesystemManager()
	root, err := fsmgr.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	store := testutil.NewTestStore(t)
	clock := testutil.FixedClock()
	hasher := testutil.NewStubHasher("Hello")

	svc := tvc.NewService(root, store, fsmgr, hasher, tvc.NewNopLogger(), clock, testFrequency)
	return &fixture{
		svc:    svc,
		dir:    dir,
		store:  store,
		clock:  clock,
		hasher: hasher,
		fsmgr:  fsmgr,
	}
}

// commit advances the clock past the frequency window, sets the hasher to
// checksum, runs a check, and returns the created version.
func (f *fixture) commit(t *testing.T, checksum string) *tvc.Version {
	t.Helper()

	f.clock.Advance(testFrequency)
	f.hasher.Set(checksum)
	if err := f.svc.Check(); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	v, err := f.svc.Resolve(checksum)
	if err != nil {
		t.Fatalf("Resolve(%q) after commit: %v", checksum, err)
	}
	return v
}

func (f *fixture) versionCount(t *testing.T) int {
	t.Helper()
	versions, err := f.store.ListVersions()
	if err != nil {
		t.Fatalf("ListVersions() error = %v", err)
	}
	return len(versions)
}

func (f *fixture) snapshotExists(name string) bool {
	_, err := os.Stat(filepath.Join(f.dir, tvc.MetadataDirName, name))
	return err == nil
}

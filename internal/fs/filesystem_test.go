package fs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tvc-go/internal/fs"
	"tvc-go/internal/testutil"
)

func TestOSFilesystemManager_Resolve(t *testing.T) {
	m := fs.NewOSFilesystemManager()

	t.Run("resolves a directory", func(t *testing.T) {
		dir := t.TempDir()

		p, err := m.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !p.IsDir() {
			t.Error("IsDir() = false for a directory")
		}
		if !filepath.IsAbs(p.String()) {
			t.Errorf("String() = %q, want absolute", p.String())
		}
	})

	t.Run("resolves a relative path to absolute", func(t *testing.T) {
		p, err := m.Resolve(".")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !filepath.IsAbs(p.String()) {
			t.Errorf("String() = %q, want absolute", p.String())
		}
	})

	t.Run("fails on missing path", func(t *testing.T) {
		if _, err := m.Resolve(filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Error("Resolve() expected error for missing path")
		}
	})
}

func TestOSFilesystemManager_CopyTree(t *testing.T) {
	m := fs.NewOSFilesystemManager()

	t.Run("copies nested content", func(t *testing.T) {
		src, dst := t.TempDir(), filepath.Join(t.TempDir(), "dst")
		testutil.WriteFile(t, src, "a.txt", "top")
		testutil.WriteFile(t, src, "sub/deep/b.txt", "nested")

		if err := m.CopyTree(src, dst, nil); err != nil {
			t.Fatalf("CopyTree() error = %v", err)
		}

		if got := testutil.ReadFile(t, filepath.Join(dst, "a.txt")); got != "top" {
			t.Errorf("a.txt = %q, want %q", got, "top")
		}
		if got := testutil.ReadFile(t, filepath.Join(dst, "sub", "deep", "b.txt")); got != "nested" {
			t.Errorf("sub/deep/b.txt = %q, want %q", got, "nested")
		}
	})

	t.Run("excludes only at the top level", func(t *testing.T) {
		src, dst := t.TempDir(), filepath.Join(t.TempDir(), "dst")
		testutil.WriteFile(t, src, "skip/x.txt", "top-level skip")
		testutil.WriteFile(t, src, "keep/skip/y.txt", "nested skip survives")

		exclude := func(name string) bool { return name == "skip" }
		if err := m.CopyTree(src, dst, exclude); err != nil {
			t.Fatalf("CopyTree() error = %v", err)
		}

		if _, err := os.Stat(filepath.Join(dst, "skip")); !os.IsNotExist(err) {
			t.Error("top-level excluded entry was copied")
		}
		if _, err := os.Stat(filepath.Join(dst, "keep", "skip", "y.txt")); err != nil {
			t.Errorf("nested entry sharing the excluded name was not copied: %v", err)
		}
	})

	t.Run("preserves modification times", func(t *testing.T) {
		src, dst := t.TempDir(), filepath.Join(t.TempDir(), "dst")
		path := testutil.WriteFile(t, src, "a.txt", "x")
		mtime := time.Date(1997, 10, 1, 12, 0, 0, 0, time.UTC)
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("Chtimes() error = %v", err)
		}

		if err := m.CopyTree(src, dst, nil); err != nil {
			t.Fatalf("CopyTree() error = %v", err)
		}

		info, err := os.Stat(filepath.Join(dst, "a.txt"))
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if !info.ModTime().Equal(mtime) {
			t.Errorf("mtime = %v, want %v", info.ModTime(), mtime)
		}
	})

	t.Run("creates the destination", func(t *testing.T) {
		src := t.TempDir()
		dst := filepath.Join(t.TempDir(), "a", "b", "c")

		if err := m.CopyTree(src, dst, nil); err != nil {
			t.Fatalf("CopyTree() error = %v", err)
		}
		if _, err := os.Stat(dst); err != nil {
			t.Errorf("destination was not created: %v", err)
		}
	})
}

func TestOSFilesystemManager_ClearTree(t *testing.T) {
	m := fs.NewOSFilesystemManager()

	t.Run("removes everything except excluded entries", func(t *testing.T) {
		root := t.TempDir()
		testutil.WriteFile(t, root, "a.txt", "x")
		testutil.WriteFile(t, root, "sub/b.txt", "y")
		testutil.WriteFile(t, root, "keep/c.txt", "z")

		exclude := func(name string) bool { return name == "keep" }
		if err := m.ClearTree(root, exclude); err != nil {
			t.Fatalf("ClearTree() error = %v", err)
		}

		entries, err := os.ReadDir(root)
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "keep" {
			t.Errorf("remaining entries = %v, want [keep]", entries)
		}
		if got := testutil.ReadFile(t, filepath.Join(root, "keep", "c.txt")); got != "z" {
			t.Errorf("keep/c.txt = %q, want %q", got, "z")
		}
	})

	t.Run("empty tree clears without error", func(t *testing.T) {
		if err := m.ClearTree(t.TempDir(), nil); err != nil {
			t.Errorf("ClearTree() error = %v", err)
		}
	})
}

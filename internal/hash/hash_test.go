package hash_test

import (
	"os"
	"testing"

	"tvc-go/internal/hash"
	"tvc-go/internal/testutil"
)

func hashTree(t *testing.T, dir string, ignore []string) string {
	t.Helper()
	sum, err := hash.NewHasher(ignore).HashTree(dir)
	if err != nil {
		t.Fatalf("HashTree() error = %v", err)
	}
	return sum
}

func TestHasher_HashTree(t *testing.T) {
	t.Run("is stable across repeated computation", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFile(t, dir, "a.txt", "hello")
		testutil.WriteFile(t, dir, "sub/b.txt", "world")

		first := hashTree(t, dir, nil)
		second := hashTree(t, dir, nil)
		if first != second {
			t.Errorf("checksums differ across runs: %q vs %q", first, second)
		}
	})

	t.Run("equal trees at different roots hash equal", func(t *testing.T) {
		one, two := t.TempDir(), t.TempDir()
		for _, dir := range []string{one, two} {
			testutil.WriteFile(t, dir, "a.txt", "hello")
			testutil.WriteFile(t, dir, "sub/b.txt", "world")
		}

		if hashTree(t, one, nil) != hashTree(t, two, nil) {
			t.Error("identical trees produced different checksums")
		}
	})

	t.Run("changes when content changes", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFile(t, dir, "a.txt", "before")
		before := hashTree(t, dir, nil)

		testutil.WriteFile(t, dir, "a.txt", "after!")
		if hashTree(t, dir, nil) == before {
			t.Error("checksum unchanged after content change")
		}
	})

	t.Run("changes when a file is renamed", func(t *testing.T) {
		dir := t.TempDir()
		old := testutil.WriteFile(t, dir, "a.txt", "same bytes")
		before := hashTree(t, dir, nil)

		if err := os.Rename(old, old+".bak"); err != nil {
			t.Fatalf("Rename() error = %v", err)
		}
		if hashTree(t, dir, nil) == before {
			t.Error("checksum unchanged after rename")
		}
	})

	t.Run("changes when a file is added or removed", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFile(t, dir, "a.txt", "x")
		before := hashTree(t, dir, nil)

		extra := testutil.WriteFile(t, dir, "b.txt", "y")
		withExtra := hashTree(t, dir, nil)
		if withExtra == before {
			t.Error("checksum unchanged after adding a file")
		}

		if err := os.Remove(extra); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if hashTree(t, dir, nil) != before {
			t.Error("checksum did not revert after removing the file")
		}
	})

	t.Run("ignores hidden entries and the metadata directory", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFile(t, dir, "a.txt", "x")
		before := hashTree(t, dir, nil)

		testutil.WriteFile(t, dir, ".hidden", "noise")
		testutil.WriteFile(t, dir, ".hiddendir/file.txt", "noise")
		testutil.WriteFile(t, dir, ".tvc/snapshot/a.txt", "noise")
		if hashTree(t, dir, nil) != before {
			t.Error("hidden entries affected the checksum")
		}
	})

	t.Run("ignores empty directories", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFile(t, dir, "a.txt", "x")
		before := hashTree(t, dir, nil)

		testutil.MkDir(t, dir, "empty")
		if hashTree(t, dir, nil) != before {
			t.Error("empty directory affected the checksum")
		}
	})

	t.Run("honors ignore patterns", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFile(t, dir, "a.txt", "x")
		before := hashTree(t, dir, []string{"*.log"})

		testutil.WriteFile(t, dir, "noise.log", "noise")
		testutil.WriteFile(t, dir, "sub/deep.log", "noise")
		if hashTree(t, dir, []string{"*.log"}) != before {
			t.Error("ignored files affected the checksum")
		}
		if hashTree(t, dir, nil) == before {
			t.Error("removing the pattern should expose the files")
		}
	})

	t.Run("ignored directories are pruned entirely", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFile(t, dir, "a.txt", "x")
		before := hashTree(t, dir, []string{"build"})

		testutil.WriteFile(t, dir, "build/out.bin", "noise")
		if hashTree(t, dir, []string{"build"}) != before {
			t.Error("files under an ignored directory affected the checksum")
		}
	})

	t.Run("empty tree hashes without error", func(t *testing.T) {
		sum := hashTree(t, t.TempDir(), nil)
		if sum == "" {
			t.Error("empty tree produced empty checksum")
		}
	})
}

// Package hash computes deterministic content checksums for directory trees.
//
// The checksum of a tree is the hex-encoded sha256 of a manifest listing
// every included file's slash-separated relative path together with the
// xxh3-128 hash of its contents, sorted by path. The scheme is stable across
// copy timing (only paths and bytes matter) and changes for any content or
// structural change to the included file set.
//
// Hidden entries (dot-prefixed names, including the metadata directory) are
// excluded at every level, as are paths matching the configured ignore
// patterns. Empty directories do not contribute to the checksum.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"tvc-go/internal/fs"
	"tvc-go/internal/tvc"
)

// Hasher computes tree checksums with an optional set of ignore patterns.
type Hasher struct {
	ignore *fs.IgnoreMatcher
}

// NewHasher creates a Hasher. ignorePatterns may be nil.
func NewHasher(ignorePatterns []string) *Hasher {
	return &Hasher{ignore: fs.NewIgnoreMatcher(ignorePatterns)}
}

// HashTree computes the checksum of the tree rooted at root.
func (h *Hasher) HashTree(root string) (string, error) {
	var lines []string

	err := filepath.WalkDir(root, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") || name == tvc.MetadataDirName {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("computing relative path for %s: %w", p, err)
		}
		if h.ignore.Match(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		sum, err := hashFile(p)
		if err != nil {
			return err
		}
		lines = append(lines, filepath.ToSlash(rel)+" "+sum+"\n")
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walking %s: %w", root, err)
	}

	// WalkDir visits entries in lexical order per directory, but the sort
	// pins the manifest order regardless of traversal details.
	sort.Strings(lines)

	manifest := sha256.New()
	for _, line := range lines {
		manifest.Write([]byte(line))
	}
	return hex.EncodeToString(manifest.Sum(nil)), nil
}

// hashFile computes the xxh3-128 hash of a file's contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	x := xxh3.New()
	if _, err := io.Copy(x, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	sum := x.Sum128().Bytes()
	return hex.EncodeToString(sum[:]), nil
}

// Compile-time check that Hasher implements tvc.TreeHasher
var _ tvc.TreeHasher = (*Hasher)(nil)

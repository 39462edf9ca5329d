package tvc

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DiffSummary reports a shallow comparison between the working tree and a
// snapshot copy. Entries are slash-separated paths relative to the tree root.
type DiffSummary struct {
	OnlyInWorking  []string // present in the working tree only
	OnlyInSnapshot []string // present in the snapshot copy only
	Differing      []string // files present in both but differing
}

// Empty reports whether the two trees compared identical.
func (d *DiffSummary) Empty() bool {
	return len(d.OnlyInWorking) == 0 && len(d.OnlyInSnapshot) == 0 && len(d.Differing) == 0
}

// Render formats the summary as tab-indented lines, one group per line.
func (d *DiffSummary) Render() string {
	if d.Empty() {
		return "\tidentical"
	}
	var b strings.Builder
	writeGroup := func(label string, entries []string) {
		if len(entries) == 0 {
			return
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "\t%s: %s", label, strings.Join(entries, " "))
	}
	writeGroup("only in working tree", d.OnlyInWorking)
	writeGroup("only in snapshot", d.OnlyInSnapshot)
	writeGroup("differing", d.Differing)
	return b.String()
}

// Compare performs a shallow, two-level comparison of workDir against
// snapDir: the top-level entries, plus the immediate entries of directories
// common to both sides. Files are compared by type, size and modification
// time; contents are not read. The metadata directory and the pseudo-entries
// "." and ".." are excluded.
func Compare(workDir, snapDir string) (*DiffSummary, error) {
	d := &DiffSummary{}
	if err := compareLevel(workDir, snapDir, "", 0, d); err != nil {
		return nil, err
	}
	sort.Strings(d.OnlyInWorking)
	sort.Strings(d.OnlyInSnapshot)
	sort.Strings(d.Differing)
	return d, nil
}

// maxDiffDepth bounds the comparison to two directory levels, matching the
// scope of the original shallow directory comparison.
const maxDiffDepth = 2

func compareLevel(workDir, snapDir, prefix string, depth int, d *DiffSummary) error {
	work, err := readNames(workDir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", workDir, err)
	}
	snap, err := readNames(snapDir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", snapDir, err)
	}

	for name := range work {
		if prefix == "" && name == MetadataDirName {
			continue
		}
		rel := path(prefix, name)
		if _, ok := snap[name]; !ok {
			d.OnlyInWorking = append(d.OnlyInWorking, rel)
			continue
		}
		w, s := work[name], snap[name]
		switch {
		case w.IsDir() != s.IsDir():
			d.Differing = append(d.Differing, rel)
		case w.IsDir():
			if depth+1 < maxDiffDepth {
				if err := compareLevel(filepath.Join(workDir, name), filepath.Join(snapDir, name), rel, depth+1, d); err != nil {
					return err
				}
			}
		case w.Size() != s.Size() || !w.ModTime().Equal(s.ModTime()):
			d.Differing = append(d.Differing, rel)
		}
	}

	for name := range snap {
		if prefix == "" && name == MetadataDirName {
			continue
		}
		if _, ok := work[name]; !ok {
			d.OnlyInSnapshot = append(d.OnlyInSnapshot, path(prefix, name))
		}
	}
	return nil
}

// readNames returns the directory's immediate entries keyed by name.
// A missing directory reads as empty so a snapshot compared against a
// since-deleted subtree still renders.
func readNames(dir string) (map[string]os.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]os.FileInfo{}, nil
		}
		return nil, err
	}
	m := make(map[string]os.FileInfo, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		m[e.Name()] = info
	}
	return m, nil
}

func path(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
